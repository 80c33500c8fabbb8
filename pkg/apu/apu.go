// Package apu stubs the Audio Processing Unit: register writes are
// absorbed and acknowledged, reads return 0 (or, for $4015, the fixed
// status byte of no channels active), and no sound is synthesized.
// Audio output is an explicit non-goal; this package exists so the
// bus has somewhere to route $4000-$4017 without special-casing it.
package apu

import "github.com/kestrelcarver/nescore/pkg/logger"

// APU is a stub sound chip: it tracks nothing but the frame-IRQ
// inhibit bit written through $4017 (no register read returns it), and
// otherwise discards everything written to it.
type APU struct {
	frameIRQInhibit bool
}

// New creates a stub APU.
func New() *APU {
	return &APU{}
}

// ReadRegister services a CPU read of $4000-$4017. Every address
// returns 0; for $4015 (status) that is the byte reporting every
// channel as silent/empty, since none are implemented.
func (a *APU) ReadRegister(addr uint16) uint8 {
	if addr == 0x4015 {
		return 0
	}
	return 0
}

// WriteRegister absorbs a CPU write to $4000-$4017. $4017 (frame
// counter control) is the only address this stub tracks, since its
// IRQ-inhibit bit is otherwise invisible dead state.
func (a *APU) WriteRegister(addr uint16, value uint8) {
	if addr == 0x4017 {
		a.frameIRQInhibit = value&0x40 != 0
		logger.LogAPU("frame counter write $%02X (IRQ inhibit=%v)", value, a.frameIRQInhibit)
	}
}

// Step is a no-op: this stub has no timers to advance.
func (a *APU) Step() {}
