// Package hostfake provides a capturing implementation of pkg/host.Host
// for tests: it records every presented frame and returns a scripted
// button snapshot instead of reading real input.
package hostfake

// Host is a fake host.Host. Buttons is consulted by SampleController;
// tests set it directly to script controller state. Frames accumulates
// every presented frame in arrival order.
type Host struct {
	Buttons     uint8
	Frames      []*[256 * 240 * 3]byte
	FrameCount  int
	lastPresent *[256 * 240 * 3]byte
}

// New returns a ready-to-use fake host with no buttons held.
func New() *Host {
	return &Host{}
}

// PresentFrame records the frame for later inspection.
func (h *Host) PresentFrame(frame *[256 * 240 * 3]byte) {
	h.FrameCount++
	h.lastPresent = frame
	cp := *frame
	h.Frames = append(h.Frames, &cp)
}

// SampleController returns the scripted button snapshot.
func (h *Host) SampleController() uint8 {
	return h.Buttons
}

// LastFrame returns the most recently presented frame, or nil if none.
func (h *Host) LastFrame() *[256 * 240 * 3]byte {
	return h.lastPresent
}
