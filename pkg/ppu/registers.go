package ppu

import "github.com/kestrelcarver/nescore/pkg/logger"

// ReadRegister services a CPU read of $2000-$2007 (mirrored every 8
// bytes through $3FFF). Only PPUSTATUS, OAMDATA and PPUDATA have read
// side effects; the rest return the open-bus-ish last-written value of
// 0 since this core doesn't model the bus-latch decay real hardware
// exhibits.
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr % 8 {
	case 2:
		return p.readStatus()
	case 4:
		return p.OAM[p.OAMADDR]
	case 7:
		return p.readData()
	default:
		return 0
	}
}

// WriteRegister services a CPU write of $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	switch addr % 8 {
	case 0:
		p.PPUCTRL = value
		p.t = (p.t & 0xF3FF) | (uint16(value&0x03) << 10)
	case 1:
		p.PPUMASK = value
		p.PaletteManager.SetEmphasis(value)
	case 3:
		p.OAMADDR = value
	case 4:
		p.OAM[p.OAMADDR] = value
		p.OAMADDR++
	case 5:
		p.writeScroll(value)
	case 6:
		p.writeAddr(value)
	case 7:
		p.writeData(value)
	}
}

// readStatus implements the $2002 read-clears-VBlank-and-w semantics,
// including the race with the VBlank edge. Cycle is the next dot to
// run, so a read at dot 0 or 1 of scanline 241 lands before
// enterVBlank: it reads VBlank clear and suppresses that frame's flag,
// and with it the NMI. A read at dot 2 lands after dot 1 has set the
// flag and raised any NMI: it reads VBlank set, and that NMI stands.
func (p *PPU) readStatus() uint8 {
	result := p.PPUSTATUS
	if p.Scanline == 241 && p.Cycle < 3 {
		p.suppressVBlank = true
		if p.Cycle == 0 {
			result &^= PPUSTATUSVBlank
		}
	}
	p.PPUSTATUS &^= PPUSTATUSVBlank
	p.w = false
	return result
}

func (p *PPU) writeScroll(value uint8) {
	if !p.w {
		p.x = value & 0x07
		p.t = (p.t & 0xFFE0) | uint16(value>>3)
		p.w = true
		return
	}
	p.t = (p.t & 0x8FFF) | (uint16(value&0x07) << 12)
	p.t = (p.t & 0xFC1F) | (uint16(value&0xF8) << 2)
	p.w = false
}

func (p *PPU) writeAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(value&0x3F) << 8)
		p.w = true
		return
	}
	p.t = (p.t & 0xFF00) | uint16(value)
	p.v = p.t
	p.w = false
}

func (p *PPU) vramIncrement() uint16 {
	if p.PPUCTRL&PPUCTRLIncrement != 0 {
		return 32
	}
	return 1
}

func (p *PPU) readData() uint8 {
	addr := p.v & 0x3FFF
	var result uint8
	if addr < 0x3F00 {
		result = p.readBuffer
		p.readBuffer = p.readVRAM(addr)
	} else {
		result = p.readVRAM(addr)
		p.readBuffer = p.readVRAM(addr - 0x1000)
	}
	p.v += p.vramIncrement()
	return result
}

func (p *PPU) writeData(value uint8) {
	p.writeVRAM(p.v&0x3FFF, value)
	p.v += p.vramIncrement()
}

// readVRAM/writeVRAM route the PPU's own 14-bit address space: pattern
// tables to the cartridge's CHR, nametables through the mapper's
// mirroring resolution, and $3F00-$3FFF to palette RAM.
func (p *PPU) readVRAM(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		if p.Cartridge != nil {
			return p.Cartridge.ReadCHR(addr)
		}
		return 0
	case addr < 0x3F00:
		return p.nametable[p.resolveNametable(addr)]
	default:
		return p.PaletteManager.ReadPalette(uint8(addr & 0x1F))
	}
}

func (p *PPU) writeVRAM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		if p.Cartridge != nil {
			p.Cartridge.WriteCHR(addr, value)
		}
	case addr < 0x3F00:
		p.nametable[p.resolveNametable(addr)] = value
	default:
		p.PaletteManager.WritePalette(uint8(addr&0x1F), value)
	}
}

// resolveNametable defers to the cartridge's mapper for the mirroring
// decision instead of assuming horizontal/vertical itself; a mapper
// with no opinion (no Cartridge attached) falls back to horizontal.
func (p *PPU) resolveNametable(addr uint16) uint16 {
	if p.Cartridge != nil {
		return p.Cartridge.ResolveNametable(addr) & 0x7FF
	}
	logger.LogPPU("nametable access with no cartridge attached: $%04X", addr)
	return addr & 0x7FF
}
