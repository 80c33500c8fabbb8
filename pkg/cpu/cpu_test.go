package cpu

import "testing"

// fakeBus is a flat 64KB address space with scriptable NMI/IRQ/OAM-DMA
// signals, standing in for pkg/memory.Bus in isolation.
type fakeBus struct {
	mem [0x10000]uint8

	nmiPending bool
	irqPending bool

	oamDMAPending bool
	oamDMAPage    uint8
	oamWrites     []uint8
}

func (b *fakeBus) Read(addr uint16) uint8         { return b.mem[addr] }
func (b *fakeBus) Write(addr uint16, value uint8) { b.mem[addr] = value }
func (b *fakeBus) NMIPending() bool               { return b.nmiPending }
func (b *fakeBus) ClearNMIPending()                { b.nmiPending = false }
func (b *fakeBus) IRQPending() bool               { return b.irqPending }
func (b *fakeBus) OAMDMAPending() bool            { return b.oamDMAPending }
func (b *fakeBus) OAMDMAPage() uint8              { return b.oamDMAPage }
func (b *fakeBus) ClearOAMDMA()                   { b.oamDMAPending = false }

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	// Reset vector -> $8000.
	bus.mem[0xFFFC] = 0x00
	bus.mem[0xFFFD] = 0x80
	// IRQ/BRK vector -> $9000.
	bus.mem[0xFFFE] = 0x00
	bus.mem[0xFFFF] = 0x90
	// NMI vector -> $A000.
	bus.mem[0xFFFA] = 0x00
	bus.mem[0xFFFB] = 0xA0

	c := New(bus)
	c.Reset()
	return c, bus
}

func runCycles(c *CPU, n int) {
	for i := 0; i < n; i++ {
		c.RunOneCycle()
	}
}

func TestResetEstablishesPowerOnState(t *testing.T) {
	c, _ := newTestCPU()

	if c.PC != 0x8000 {
		t.Errorf("PC = $%04X, want $8000", c.PC)
	}
	if c.SP != 0xFD {
		t.Errorf("SP = $%02X, want $FD", c.SP)
	}
	if !c.GetFlag(FlagInterrupt) {
		t.Error("I flag should be set after reset")
	}
	if c.Cycles != 7 {
		t.Errorf("Cycles = %d, want 7", c.Cycles)
	}
}

// TestIRQServicedWhenUnmasked runs a CLI then idles with NOPs while an
// IRQ is asserted, confirming the CPU vectors to $9000 and sets the I
// flag once it services the interrupt.
func TestIRQServicedWhenUnmasked(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x58 // CLI
	for i := uint16(0x8001); i < 0x8100; i++ {
		bus.mem[i] = 0xEA // NOP
	}
	bus.irqPending = true

	// CLI takes 2 cycles; let it fully retire before the IRQ can be
	// serviced (the flag clear must be visible at the next instruction
	// boundary).
	runCycles(c, 2)
	if c.GetFlag(FlagInterrupt) {
		t.Fatal("I flag should be clear after CLI")
	}

	// Service the next instruction boundary: this should be the IRQ
	// sequence (7 cycles) rather than a NOP.
	runCycles(c, 7)

	if c.PC != 0x9000 {
		t.Errorf("PC = $%04X, want $9000 (IRQ vector)", c.PC)
	}
	if !c.GetFlag(FlagInterrupt) {
		t.Error("I flag should be set once the IRQ is serviced")
	}
}

// TestIRQMaskedByInterruptFlag confirms a pending IRQ is ignored while
// the I flag is set (the CPU's power-on default).
func TestIRQMaskedByInterruptFlag(t *testing.T) {
	c, bus := newTestCPU()
	for i := uint16(0x8000); i < 0x8100; i++ {
		bus.mem[i] = 0xEA // NOP
	}
	bus.irqPending = true

	runCycles(c, 20)

	if c.PC == 0x9000 {
		t.Error("IRQ should not be serviced while the I flag is set")
	}
}

// TestNMITakesPriorityOverIRQ has both signals pending at the same
// instruction boundary and confirms NMI wins: it vectors to $A000, not
// $9000, even with the I flag clear (NMI is non-maskable).
func TestNMITakesPriorityOverIRQ(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x58 // CLI
	for i := uint16(0x8001); i < 0x8100; i++ {
		bus.mem[i] = 0xEA
	}
	bus.irqPending = true

	runCycles(c, 2) // retire CLI
	// Raised only now: an NMI pending at the first fetch would be
	// serviced before CLI ran.
	bus.nmiPending = true
	runCycles(c, 7) // service the pending interrupt

	if c.PC != 0xA000 {
		t.Errorf("PC = $%04X, want $A000 (NMI should win over a simultaneous IRQ)", c.PC)
	}
	if bus.nmiPending {
		t.Error("NMI latch should be cleared once serviced")
	}
}

// TestOAMDMAStallsCPUFor513Cycles confirms a $4014-triggered DMA is
// drained entirely inside the CPU's own clocking before any further
// instruction executes.
func TestOAMDMAStallsCPUFor513Cycles(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0xEA // NOP, should not execute until DMA drains
	bus.oamDMAPending = true
	bus.oamDMAPage = 0x02

	runCycles(c, 513)

	if bus.oamDMAPending {
		t.Error("OAM DMA should be cleared after 513 cycles")
	}
	if c.PC != 0x8000 {
		t.Errorf("PC = $%04X, want $8000 (no instruction should have executed during DMA)", c.PC)
	}

	runCycles(c, 2)
	if c.PC != 0x8001 {
		t.Errorf("PC = $%04X, want $8001 (NOP should execute once DMA drains)", c.PC)
	}
}

// TestHaltsOnUnimplementedOpcode confirms an undefined opcode stops
// the CPU and records the precise failure site rather than silently
// continuing execution.
func TestHaltsOnUnimplementedOpcode(t *testing.T) {
	c, bus := newTestCPU()
	bus.mem[0x8000] = 0x02 // unassigned in opcodeTable

	runCycles(c, 5)

	if c.Running {
		t.Fatal("CPU should have halted on an unimplemented opcode")
	}
	if c.Halt == nil {
		t.Fatal("Halt should record the fatal error")
	}
	if c.HaltOpcode != 0x02 {
		t.Errorf("HaltOpcode = $%02X, want $02", c.HaltOpcode)
	}
	if c.HaltPC != 0x8000 {
		t.Errorf("HaltPC = $%04X, want $8000", c.HaltPC)
	}
}

// TestBasicLoadAndArithmetic is a small smoke test that a simple
// program executes and updates registers/flags as expected.
func TestBasicLoadAndArithmetic(t *testing.T) {
	c, bus := newTestCPU()
	program := []uint8{0xA9, 0x01, 0x69, 0x01, 0x85, 0x10} // LDA #1; ADC #1; STA $10
	copy(bus.mem[0x8000:], program)

	runCycles(c, 2+2+3)

	if c.A != 0x02 {
		t.Errorf("A = $%02X, want $02", c.A)
	}
	if bus.mem[0x10] != 0x02 {
		t.Errorf("mem[$10] = $%02X, want $02", bus.mem[0x10])
	}
}
