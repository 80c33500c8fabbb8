// Package display is the SDL2-backed host.Host implementation: a
// window, a streaming RGB24 texture the PPU's framebuffer is pushed
// into once per frame, an event pump mapping keyboard state onto a
// controller, and the frame-pacing loop that holds the emulator to the
// NES's real ~60.0988 Hz refresh rate.
package display

import (
	"runtime"
	"time"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/kestrelcarver/nescore/pkg/input"
	"github.com/kestrelcarver/nescore/pkg/logger"
	"github.com/kestrelcarver/nescore/pkg/nescore"
)

const (
	screenWidth  = 256
	screenHeight = 240
	windowScale  = 3
	windowTitle  = "nescore"

	// NTSC refresh rate: 1789773 / 29780.5 Hz.
	frameTime = time.Duration(16639267) * time.Nanosecond
)

// Display is a host.Host backed by an SDL2 window. Display owns the
// Controller it samples from; the caller feeds it the same *input.Controller
// the emulator's System was built with.
type Display struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pad     *input.Controller
	running bool
}

// New opens an SDL2 window sized for a 3x-scaled NES frame and returns
// a Display ready to use as a host.Host. pad is the controller keyboard
// events are applied to.
func New(pad *input.Controller) (*Display, error) {
	runtime.LockOSThread()

	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, &nescore.HostError{Op: "sdl.Init", Err: err}
	}

	window, err := sdl.CreateWindow(
		windowTitle,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		screenWidth*windowScale, screenHeight*windowScale,
		sdl.WINDOW_SHOWN,
	)
	if err != nil {
		sdl.Quit()
		return nil, &nescore.HostError{Op: "sdl.CreateWindow", Err: err}
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return nil, &nescore.HostError{Op: "sdl.CreateRenderer", Err: err}
	}
	renderer.SetDrawBlendMode(sdl.BLENDMODE_NONE)

	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGB24,
		sdl.TEXTUREACCESS_STREAMING,
		screenWidth, screenHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return nil, &nescore.HostError{Op: "sdl.CreateTexture", Err: err}
	}

	return &Display{
		window:   window,
		renderer: renderer,
		texture:  texture,
		pad:      pad,
		running:  true,
	}, nil
}

// Close tears down SDL resources.
func (d *Display) Close() {
	d.texture.Destroy()
	d.renderer.Destroy()
	d.window.Destroy()
	sdl.Quit()
}

// PresentFrame satisfies host.Host: it pushes the PPU's RGB24
// framebuffer into the streaming texture and blits it to the window,
// pacing output to frameTime.
func (d *Display) PresentFrame(frame *[256 * 240 * 3]byte) {
	start := time.Now()

	if err := d.texture.Update(nil, unsafe.Pointer(&frame[0]), screenWidth*3); err != nil {
		logger.LogError("texture update failed: %v", err)
		return
	}

	d.renderer.Clear()
	d.renderer.Copy(d.texture, nil, nil)
	d.renderer.Present()

	d.pumpEvents()

	if elapsed := time.Since(start); elapsed < frameTime {
		time.Sleep(frameTime - elapsed)
	}
}

// SampleController satisfies host.Host by returning the controller's
// current button snapshot.
func (d *Display) SampleController() uint8 {
	return d.pad.Snapshot()
}

// Running reports whether the window is still open; cmd/gones exits
// its loop once this goes false.
func (d *Display) Running() bool { return d.running }

func (d *Display) pumpEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			d.running = false
		case *sdl.KeyboardEvent:
			d.handleKey(e)
		}
	}
}

func (d *Display) handleKey(e *sdl.KeyboardEvent) {
	pressed := e.State == sdl.PRESSED

	switch e.Keysym.Sym {
	case sdl.K_z:
		d.pad.SetButton(input.ButtonA, pressed)
	case sdl.K_x:
		d.pad.SetButton(input.ButtonB, pressed)
	case sdl.K_a:
		d.pad.SetButton(input.ButtonSelect, pressed)
	case sdl.K_s:
		d.pad.SetButton(input.ButtonStart, pressed)
	case sdl.K_UP:
		d.pad.SetButton(input.ButtonUp, pressed)
	case sdl.K_DOWN:
		d.pad.SetButton(input.ButtonDown, pressed)
	case sdl.K_LEFT:
		d.pad.SetButton(input.ButtonLeft, pressed)
	case sdl.K_RIGHT:
		d.pad.SetButton(input.ButtonRight, pressed)
	case sdl.K_ESCAPE:
		d.running = false
	}
}
