// Package ppu implements a dot-accurate Picture Processing Unit: one
// call to RunOneCycle advances exactly one dot, matching the hardware
// 3:1 dot-to-clock ratio the master loop drives it at.
package ppu

import (
	"github.com/kestrelcarver/nescore/pkg/logger"
)

// PPUCTRL flags.
const (
	PPUCTRLNameTable   = 0x03
	PPUCTRLIncrement   = 0x04
	PPUCTRLSpriteTable = 0x08
	PPUCTRLBGTable     = 0x10
	PPUCTRLSpriteSize  = 0x20
	PPUCTRLMasterSlave = 0x40
	PPUCTRLNMIEnable   = 0x80
)

// PPUMASK flags.
const (
	PPUMASKGreyscale      = 0x01
	PPUMASKBGLeft         = 0x02
	PPUMASKSpriteLeft     = 0x04
	PPUMASKBGShow         = 0x08
	PPUMASKSpriteShow     = 0x10
	PPUMASKRedEmphasize   = 0x20
	PPUMASKGreenEmphasize = 0x40
	PPUMASKBlueEmphasize  = 0x80
)

// PPUSTATUS flags.
const (
	PPUSTATUSOverflow   = 0x20
	PPUSTATUSSprite0Hit = 0x40
	PPUSTATUSVBlank     = 0x80
)

// Cartridge is what the PPU needs from the cartridge: CHR access,
// nametable mirroring resolution, and the mapper IRQ hooks that ride
// on the PPU's A12 address line (mapper 4 / MMC3).
type Cartridge interface {
	ReadCHR(addr uint16) uint8
	WriteCHR(addr uint16, value uint8)
	ResolveNametable(addr uint16) uint16
	Step()
	IsIRQPending() bool
	ClearIRQ()
	NotifyA12(addr uint16, renderingEnabled bool)
}

// spriteSlot is one of the up to eight sprites active on the current
// scanline, latched during sprite evaluation and fetched at dots
// 257-320 for rendering on the *next* scanline.
type spriteSlot struct {
	patternLo uint8 // low pattern plane
	patternHi uint8 // high pattern plane
	x         uint8
	attr      uint8
	isSprite0 bool
}

// PPU holds the register file, scroll subsystem, rendering pipeline,
// and timing counters described by the PPU's data model.
type PPU struct {
	PPUCTRL   uint8
	PPUMASK   uint8
	PPUSTATUS uint8
	OAMADDR   uint8

	v, t uint16
	x    uint8
	w    bool

	OAM          [256]uint8
	secondaryOAM [32]uint8
	nametable    [0x800]uint8

	sprites     [8]spriteSlot
	spriteCount int

	// Background pipeline. Attribute shifters are 16-bit like the
	// pattern shifters so both select with the same (15-x) fine-x
	// index; each reload fills a whole byte with the latched bit
	// since one attribute value covers all 8 pixels of a tile.
	bgShiftLo, bgShiftHi uint16
	atShiftLo, atShiftHi uint16
	atLatchLo, atLatchHi bool
	ntByte, atByte       uint8
	tileLo, tileHi       uint8

	readBuffer uint8

	Cycle         int
	Scanline      int
	Frame         uint64
	evenFrame     bool
	FrameComplete bool

	suppressVBlank bool

	FrameBuffer [256 * 240 * 3]byte

	PaletteManager *PaletteManager

	Cartridge Cartridge
	bus       ppuBus
}

// ppuBus is the narrow slice of the bus the PPU drives: it sets the
// shared nmi_pending and vblank signals and delivers finished frames
// to the host. The PPU is the sole setter of both.
type ppuBus interface {
	SetNMIPending()
	SetVBlank(bool)
	PresentFrame(frame *[256 * 240 * 3]byte)
}

// New creates a PPU driven by bus for inter-chip signalling and frame
// delivery.
func New(bus ppuBus) *PPU {
	return &PPU{
		PaletteManager: NewPaletteManager(),
		bus:            bus,
		evenFrame:      true,
	}
}

// SetCartridge attaches the cartridge for CHR access and mirroring.
func (p *PPU) SetCartridge(cart Cartridge) { p.Cartridge = cart }

// Reset returns the PPU to its power-on state.
func (p *PPU) Reset() {
	p.PPUCTRL = 0
	p.PPUMASK = 0
	p.PPUSTATUS = 0
	p.OAMADDR = 0
	p.v, p.t, p.x, p.w = 0, 0, 0, false
	p.Cycle, p.Scanline = 0, 0
	p.Frame = 0
	p.evenFrame = true
	p.FrameComplete = false
	logger.LogPPU("reset")
}

func (p *PPU) renderingEnabled() bool {
	return p.PPUMASK&(PPUMASKBGShow|PPUMASKSpriteShow) != 0
}

func (p *PPU) bgEnabled() bool     { return p.PPUMASK&PPUMASKBGShow != 0 }
func (p *PPU) spritesEnabled() bool { return p.PPUMASK&PPUMASKSpriteShow != 0 }
