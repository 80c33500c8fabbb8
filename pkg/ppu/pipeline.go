package ppu

import "github.com/kestrelcarver/nescore/pkg/logger"

// RunOneCycle advances the PPU by exactly one dot: 341 dots per
// scanline, 262 scanlines per frame, with the pre-render scanline
// (261) numbered like any other and the standard odd-frame skip of
// dot 0 on scanlines immediately following an odd frame's render.
func (p *PPU) RunOneCycle() {
	p.FrameComplete = false

	visible := p.Scanline >= 0 && p.Scanline <= 239
	prerender := p.Scanline == 261

	switch {
	case visible || prerender:
		p.renderDot(visible, prerender)
	case p.Scanline == 241 && p.Cycle == 1:
		p.enterVBlank()
	}

	p.evaluateNMI()
	p.advanceDot()
}

// evaluateNMI runs after every dot: whenever PPUSTATUS's VBlank flag and
// PPUCTRL's NMI-enable bit are both set, it raises nmi_pending and clears
// PPUCTRL's bit 7. Checking this unconditionally on every dot, rather than
// only at the VBlank edge, reproduces the "NMI retrigger" quirk where
// turning NMI-on-VBlank on in PPUCTRL while VBlank is already active fires
// a second NMI immediately.
func (p *PPU) evaluateNMI() {
	if p.PPUSTATUS&PPUSTATUSVBlank != 0 && p.PPUCTRL&PPUCTRLNMIEnable != 0 {
		p.PPUCTRL &^= PPUCTRLNMIEnable
		p.bus.SetNMIPending()
	}
}

func (p *PPU) renderDot(visible, prerender bool) {
	dot := p.Cycle

	if prerender && dot == 1 {
		p.PPUSTATUS &^= PPUSTATUSVBlank | PPUSTATUSSprite0Hit | PPUSTATUSOverflow
		p.suppressVBlank = false
		p.bus.SetVBlank(false)
	}

	if p.renderingEnabled() {
		fetching := (dot >= 1 && dot <= 256) || (dot >= 321 && dot <= 336)
		if fetching {
			p.fetchBackground(dot)
			if p.Cartridge != nil && dot%8 == 0 {
				p.Cartridge.NotifyA12(p.tileAddr(8), p.renderingEnabled())
			}
		}
		if visible && dot >= 1 && dot <= 256 {
			p.renderPixel(dot-1, p.Scanline)
		}
		if fetching {
			p.shiftBackground()
		}
		if dot == 256 {
			p.incrementY()
		}
		if dot == 257 {
			p.copyHorizontalBits()
			if visible {
				p.evaluateSprites(p.Scanline + 1)
			}
		}
		if prerender && dot >= 280 && dot <= 304 {
			p.copyVerticalBits()
		}
	} else if visible && dot >= 1 && dot <= 256 {
		p.renderPixel(dot-1, p.Scanline)
	}
}

// renderPixel multiplexes the background and sprite pipelines for one
// screen pixel, detects sprite-zero hit, and writes the resolved RGB
// triple into the framebuffer.
func (p *PPU) renderPixel(x, y int) {
	bg := p.backgroundPixel(x)
	spritePal, behindBG, isZero, hasSprite := p.spritePixel(x)

	var paletteAddr uint8
	switch {
	case bg == 0 && !hasSprite:
		paletteAddr = 0
	case bg == 0 && hasSprite:
		paletteAddr = spritePal | 0x10
	case bg != 0 && !hasSprite:
		paletteAddr = bg
	default:
		if isZero && x != 255 && p.bgEnabled() && p.spritesEnabled() {
			p.PPUSTATUS |= PPUSTATUSSprite0Hit
		}
		if behindBG {
			paletteAddr = bg
		} else {
			paletteAddr = spritePal | 0x10
		}
	}

	color := p.PaletteManager.RGB(paletteAddr)
	idx := (y*256 + x) * 3
	p.FrameBuffer[idx] = color[0]
	p.FrameBuffer[idx+1] = color[1]
	p.FrameBuffer[idx+2] = color[2]
}

// enterVBlank fires at (scanline 241, dot 1): it sets the VBlank flag and
// hands the finished frame to the host, unless a status read raced this
// exact edge and suppressed the flag. evaluateNMI, run immediately after
// on the same dot, is what actually raises nmi_pending.
func (p *PPU) enterVBlank() {
	if !p.suppressVBlank {
		p.PPUSTATUS |= PPUSTATUSVBlank
		p.bus.SetVBlank(true)
	}
	p.FrameComplete = true
	p.bus.PresentFrame(&p.FrameBuffer)
}

// advanceDot moves the dot/scanline/frame counters, applying the
// classic odd-frame skip: when rendering is enabled, odd frames omit
// dot 0 of the pre-render scanline's following scanline, shortening
// that frame by one PPU clock.
func (p *PPU) advanceDot() {
	p.Cycle++
	if p.Scanline == 261 && p.Cycle == 340 && !p.evenFrame && p.renderingEnabled() {
		p.Cycle = 341
	}
	if p.Cycle >= 341 {
		p.Cycle = 0
		p.Scanline++
		if p.Scanline >= 262 {
			p.Scanline = 0
			p.Frame++
			p.evenFrame = !p.evenFrame
			logger.LogPPU("frame %d complete", p.Frame)
		}
	}
}
