// Package host names the narrow capability the emulator core needs
// from its external presentation layer: somewhere to put a finished
// frame, and a way to sample the current controller state. The core
// never owns a host; it only ever holds this two-method reference.
package host

// Host is what the bus needs from the outside world. It deliberately
// says nothing about windows, textures, audio devices, or key
// bindings — those belong to whatever implements it (pkg/display, or
// a test fake).
type Host interface {
	// PresentFrame delivers one completed 256x240 RGB frame. Called
	// once per (scanline 241, dot 1).
	PresentFrame(frame *[256 * 240 * 3]byte)

	// SampleController returns the current button snapshot in bit
	// order {A, B, Select, Start, Up, Down, Left, Right} from MSB to
	// LSB. Invoked by the bus's controller shift register.
	SampleController() uint8
}
