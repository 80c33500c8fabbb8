// Package memory implements the CPU/PPU shared bus: address decoding,
// mirroring, and the handful of inter-chip signals (NMI request, OAM
// DMA latch, VBlank) that the CPU and PPU would otherwise need direct
// references to each other to exchange.
package memory

import (
	"github.com/kestrelcarver/nescore/pkg/host"
	"github.com/kestrelcarver/nescore/pkg/logger"
)

type ppu interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

type apu interface {
	ReadRegister(addr uint16) uint8
	WriteRegister(addr uint16, value uint8)
}

type cartridge interface {
	ReadPRG(addr uint16) uint8
	WritePRG(addr uint16, value uint8)
	IsIRQPending() bool
}

// Bus is the CPU's view of the NES address space. It is the sole
// owner of the nmi_pending and OAM DMA latches: the PPU sets the
// former and the CPU consumes it, the CPU latches the latter from a
// $4014 write and consumes it over the following 513 clocks.
type Bus struct {
	RAM [2048]uint8

	PPU       ppu
	APU       apu
	Cartridge cartridge
	Host      host.Host

	nmiPending bool
	vblank     bool

	oamDMAPending bool
	oamDMAPage    uint8

	controllerShift  uint8
	controllerStrobe bool
}

// New creates a bus with no chips attached yet; SetX methods wire
// them in once constructed, mirroring the order a real console's
// board is assembled in.
func New() *Bus {
	return &Bus{}
}

func (b *Bus) SetPPU(p ppu)             { b.PPU = p }
func (b *Bus) SetAPU(a apu)             { b.APU = a }
func (b *Bus) SetCartridge(c cartridge) { b.Cartridge = c }
func (b *Bus) SetHost(h host.Host)      { b.Host = h }

// Read services a CPU read of the full 16-bit address space.
func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x7FF]
	case addr < 0x4000:
		if b.PPU != nil {
			return b.PPU.ReadRegister(0x2000 + addr&0x7)
		}
		return 0
	case addr == 0x4016:
		return b.readController()
	case addr == 0x4017:
		if b.APU != nil {
			return b.APU.ReadRegister(addr)
		}
		return 0
	case addr < 0x4020:
		if b.APU != nil {
			return b.APU.ReadRegister(addr)
		}
		return 0
	case addr >= 0x8000:
		if b.Cartridge != nil {
			return b.Cartridge.ReadPRG(addr)
		}
		return 0
	default:
		// $4020-$7FFF: SRAM/expansion window, stubbed (no
		// battery-backed PRG-RAM support).
		return 0
	}
}

// Write services a CPU write of the full 16-bit address space.
func (b *Bus) Write(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		b.RAM[addr&0x7FF] = value
	case addr < 0x4000:
		if b.PPU != nil {
			b.PPU.WriteRegister(0x2000+addr&0x7, value)
		}
	case addr == 0x4014:
		b.oamDMAPending = true
		b.oamDMAPage = value
		logger.LogCPU("OAM DMA requested: page=$%02X", value)
	case addr == 0x4016:
		b.writeController(value)
	case addr < 0x4020:
		if b.APU != nil {
			b.APU.WriteRegister(addr, value)
		}
	case addr >= 0x8000:
		if b.Cartridge != nil {
			b.Cartridge.WritePRG(addr, value)
		}
		// $4020-$7FFF falls through unhandled: SRAM/expansion window,
		// stubbed (writes ignored, no battery-backed PRG-RAM support).
	}
}

// readController implements the $4016 shift-register read: while
// strobe is held high the latch continuously resamples the host, so
// every read returns the A button's current state; once strobe drops,
// each read shifts out the next latched bit, MSB first, with 1s
// shifted in once all 8 buttons have been read.
func (b *Bus) readController() uint8 {
	if b.controllerStrobe {
		b.controllerShift = b.sampleController()
	}
	bit := (b.controllerShift >> 7) & 1
	if !b.controllerStrobe {
		b.controllerShift = (b.controllerShift << 1) | 1
	}
	return bit | 0x40
}

func (b *Bus) writeController(value uint8) {
	strobe := value&1 != 0
	if strobe {
		b.controllerShift = b.sampleController()
	}
	b.controllerStrobe = strobe
}

func (b *Bus) sampleController() uint8 {
	if b.Host != nil {
		return b.Host.SampleController()
	}
	return 0
}

// NMIPending reports whether the PPU has raised an NMI request the
// CPU has not yet begun servicing.
func (b *Bus) NMIPending() bool { return b.nmiPending }

// ClearNMIPending acknowledges the CPU's latch of a pending NMI.
func (b *Bus) ClearNMIPending() { b.nmiPending = false }

// SetNMIPending is called by the PPU at VBlank start when NMI-on-VBlank
// is enabled in PPUCTRL.
func (b *Bus) SetNMIPending() { b.nmiPending = true }

// SetVBlank records the PPU's VBlank edge. Nothing on the bus side
// consumes it yet (PPUSTATUS is authoritative for CPU-visible state),
// but it's tracked as its own signal per the inter-chip signal model.
func (b *Bus) SetVBlank(v bool) { b.vblank = v }

// VBlank reports the last VBlank edge the PPU signaled.
func (b *Bus) VBlank() bool { return b.vblank }

// IRQPending reports whether the cartridge's mapper is asserting its
// IRQ line (e.g. MMC3's scanline counter). Level-triggered: it stays
// true until the mapper's own register write clears it.
func (b *Bus) IRQPending() bool {
	return b.Cartridge != nil && b.Cartridge.IsIRQPending()
}

// PresentFrame forwards a finished frame to the host.
func (b *Bus) PresentFrame(frame *[256 * 240 * 3]byte) {
	if b.Host != nil {
		b.Host.PresentFrame(frame)
	}
}

// OAMDMAPending reports whether a $4014 write is waiting to be
// serviced by the CPU's DMA stall.
func (b *Bus) OAMDMAPending() bool { return b.oamDMAPending }

// OAMDMAPage returns the page latched by the pending $4014 write.
func (b *Bus) OAMDMAPage() uint8 { return b.oamDMAPage }

// ClearOAMDMA acknowledges that the CPU has finished the 513-clock
// transfer.
func (b *Bus) ClearOAMDMA() { b.oamDMAPending = false }
