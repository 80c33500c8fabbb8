// Package cpu implements a cycle-exact interpreter for the 2A03's 6502
// derivative core. Every exported RunOneCycle call advances exactly one
// CPU clock; callers drive the chip the way hardware is driven, one
// tick at a time, instead of handing back a whole instruction's cycle
// count up front.
package cpu

import (
	"fmt"

	"github.com/kestrelcarver/nescore/pkg/logger"
)

// Status flag bits of P.
const (
	FlagCarry     = 1 << 0 // C
	FlagZero      = 1 << 1 // Z
	FlagInterrupt = 1 << 2 // I
	FlagDecimal   = 1 << 3 // D (stored, never acted on: no BCD mode)
	FlagBreak     = 1 << 4 // B (stack artifact only)
	FlagUnused    = 1 << 5 // - (stack artifact only, always reads 1)
	FlagOverflow  = 1 << 6 // V
	FlagNegative  = 1 << 7 // N
)

// Bus is the memory-mapped world the CPU clocks against. pkg/memory.Bus
// satisfies it; tests may supply a smaller fake.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, value uint8)
	NMIPending() bool
	ClearNMIPending()
	IRQPending() bool
	OAMDMAPending() bool
	OAMDMAPage() uint8
	ClearOAMDMA()
}

// inFlight is the instruction-in-flight record: everything a
// multi-cycle instruction needs to carry from one RunOneCycle call to
// the next. It replaces function-level static locals, and is
// semantically fresh at every i==0 boundary except for the fields an
// addressing mode explicitly threads forward.
type inFlight struct {
	i           int // sub-cycle index within the current opcode, 0 at fetch
	opcode      uint8
	entry       *opcodeEntry
	operand     uint8
	addr        uint16 // effective address, once resolved
	ptr         uint16 // zero-page pointer under construction
	baseAddr    uint16 // unindexed/uncorrected address, for page-cross re-reads
	pageCrossed bool
	serviceNMI  bool
	serviceIRQ  bool
	branchTaken bool
	pulled      uint8 // value most recently pulled from stack (RTI/PLA/PLP)

	dmaActive bool
	dmaCycle  int // 0..512
	dmaLatch  uint8
	dmaValue  uint8
}

// CPU holds the 2A03's architectural and instruction-scoped state.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16
	P  uint8

	Cycles  uint64
	Running bool

	bus Bus
	f   inFlight

	// Halt captures the fatal decode error that stopped the CPU, if any.
	// HaltOpcode/HaltPC record the byte and address it occurred at, for
	// the caller to build a precise nescore.DecodeError.
	Halt       error
	HaltOpcode uint8
	HaltPC     uint16
}

// New creates a CPU wired to bus. Reset must be called before clocking.
func New(bus Bus) *CPU {
	return &CPU{bus: bus, Running: true}
}

// Reset establishes power-on register state and vectors through
// 0xFFFC/0xFFFD: P=0x24, SP=0xFD, cycles=7.
func (c *CPU) Reset() {
	c.A = 0
	c.X = 0
	c.Y = 0
	c.SP = 0xFD
	c.P = FlagUnused | FlagInterrupt
	c.PC = c.read16(0xFFFC)
	c.Cycles = 7
	c.f = inFlight{}
	c.Running = true
	c.Halt = nil
	logger.LogCPU("reset: PC=$%04X SP=$%02X P=$%02X", c.PC, c.SP, c.P)
}

// RunOneCycle advances the CPU by exactly one clock: it is the chip's
// run_one_cycle operation. OAM DMA preempts normal instruction
// dispatch whenever the bus has latched a request.
func (c *CPU) RunOneCycle() {
	if !c.Running {
		return
	}
	c.Cycles++

	if c.f.dmaActive || (c.f.i == 0 && c.bus.OAMDMAPending()) {
		c.stepOAMDMA()
		return
	}

	if c.f.i == 0 {
		c.beginInstruction()
		return
	}

	c.continueInstruction()
}

// stepOAMDMA performs one clock of the 513-clock OAM DMA copy: one
// alignment cycle, then 256 alternating read/write pairs into PPU
// register 0x2004.
func (c *CPU) stepOAMDMA() {
	if !c.f.dmaActive {
		c.f.dmaActive = true
		c.f.dmaCycle = 0
		c.f.dmaLatch = c.bus.OAMDMAPage()
		logger.LogCPU("OAM DMA start: page=$%02X", c.f.dmaLatch)
	}

	cycle := c.f.dmaCycle
	c.f.dmaCycle++

	if cycle == 0 {
		return // alignment cycle
	}

	pairIndex := cycle - 1
	counter := uint8(pairIndex / 2)
	addr := uint16(c.f.dmaLatch)<<8 | uint16(counter)

	if pairIndex%2 == 0 {
		c.f.dmaValue = c.bus.Read(addr)
	} else {
		c.bus.Write(0x2004, c.f.dmaValue)
	}

	if c.f.dmaCycle >= 513 {
		c.f.dmaActive = false
		c.f.dmaCycle = 0
		c.bus.ClearOAMDMA()
		logger.LogCPU("OAM DMA complete")
	}
}

// beginInstruction executes sub-cycle 0: fetch the opcode, latch any
// pending NMI service request, and advance i to 1 for the next call.
func (c *CPU) beginInstruction() {
	serviceNMI := c.bus.NMIPending()
	if serviceNMI {
		c.bus.ClearNMIPending()
	}
	serviceIRQ := !serviceNMI && !c.getFlag(FlagInterrupt) && c.bus.IRQPending()

	opcode := c.read(c.PC)
	c.PC++

	c.f = inFlight{i: 1, opcode: opcode, serviceNMI: serviceNMI, serviceIRQ: serviceIRQ}

	if serviceNMI {
		logger.LogCPU("servicing NMI at PC=$%04X", c.PC)
		return
	}
	if serviceIRQ {
		logger.LogCPU("servicing IRQ at PC=$%04X", c.PC)
		return
	}

	entry := &opcodeTable[opcode]
	if entry.name == "" {
		c.HaltOpcode = opcode
		c.HaltPC = c.PC - 1
		c.fatal(fmt.Errorf("%w: opcode $%02X at PC=$%04X", ErrUnimplementedOpcode, opcode, c.PC-1))
		return
	}
	c.f.entry = entry
}

// continueInstruction dispatches sub-cycles 1.. of either the latched
// NMI service sequence or the in-flight opcode.
func (c *CPU) continueInstruction() {
	switch {
	case c.f.serviceNMI:
		c.stepNMI()
	case c.f.serviceIRQ:
		c.stepIRQ()
	default:
		c.stepOpcode()
	}
}

// stepNMI executes the 6-cycle remainder of the 7-cycle NMI sequence
// (sub-cycle 0 was the fetch-shaped cycle in beginInstruction).
func (c *CPU) stepNMI() {
	switch c.f.i {
	case 1:
		c.read(c.PC) // dummy fetch, discarded
	case 2:
		c.push(uint8(c.PC >> 8))
	case 3:
		c.push(uint8(c.PC))
	case 4:
		c.push(c.P&^FlagBreak | FlagUnused)
	case 5:
		c.f.addr = uint16(c.read(0xFFFA))
	case 6:
		hi := uint16(c.read(0xFFFB))
		c.PC = hi<<8 | c.f.addr
		c.setFlag(FlagInterrupt, true)
		c.f.i = -1 // reset to 0 below
	}
	c.f.i++
}

// stepIRQ executes the 6-cycle remainder of the 7-cycle maskable IRQ
// sequence: identical in shape to stepNMI but vectoring through
// 0xFFFE/0xFFFF, the path MMC3's scanline-counter IRQ and any other
// mapper interrupt line rides in on.
func (c *CPU) stepIRQ() {
	switch c.f.i {
	case 1:
		c.read(c.PC) // dummy fetch, discarded
	case 2:
		c.push(uint8(c.PC >> 8))
	case 3:
		c.push(uint8(c.PC))
	case 4:
		c.push(c.P&^FlagBreak | FlagUnused)
	case 5:
		c.f.addr = uint16(c.read(0xFFFE))
	case 6:
		hi := uint16(c.read(0xFFFF))
		c.PC = hi<<8 | c.f.addr
		c.setFlag(FlagInterrupt, true)
		c.f.i = -1 // reset to 0 below
	}
	c.f.i++
}

func (c *CPU) fatal(err error) {
	c.Halt = err
	c.Running = false
	logger.LogCPU("fatal: %v", err)
}

// Flag helpers.
func (c *CPU) getFlag(flag uint8) bool { return c.P&flag != 0 }

func (c *CPU) setFlag(flag uint8, value bool) {
	if value {
		c.P |= flag
	} else {
		c.P &^= flag
	}
}

// GetFlag exposes flag state for tests.
func (c *CPU) GetFlag(flag uint8) bool { return c.getFlag(flag) }

func (c *CPU) setNZ(v uint8) {
	c.setFlag(FlagZero, v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
}

// Memory helpers.
func (c *CPU) read(addr uint16) uint8     { return c.bus.Read(addr) }
func (c *CPU) write(addr uint16, v uint8) { c.bus.Write(addr, v) }

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read(addr))
	hi := uint16(c.read(addr + 1))
	return hi<<8 | lo
}

// Stack helpers: pushes write then decrement SP; pulls increment SP
// then read, matching 0x0100|SP addressing.
func (c *CPU) push(v uint8) {
	c.write(0x100|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pop() uint8 {
	c.SP++
	return c.read(0x100 | uint16(c.SP))
}
