// Package nes is the composition root: it wires the CPU, PPU, APU,
// bus, cartridge, controller and host together and drives the master
// clock. One CPU clock always advances the PPU by exactly three dots,
// in PPU, CPU, PPU, PPU order, matching the 2A03/2C02 pair's fixed 3:1
// dot-to-clock ratio.
package nes

import (
	"github.com/kestrelcarver/nescore/pkg/apu"
	"github.com/kestrelcarver/nescore/pkg/cartridge"
	"github.com/kestrelcarver/nescore/pkg/cpu"
	"github.com/kestrelcarver/nescore/pkg/host"
	"github.com/kestrelcarver/nescore/pkg/input"
	"github.com/kestrelcarver/nescore/pkg/logger"
	"github.com/kestrelcarver/nescore/pkg/memory"
	"github.com/kestrelcarver/nescore/pkg/nescore"
	"github.com/kestrelcarver/nescore/pkg/ppu"
)

// System is the assembled console: every chip plus the bus that
// connects them.
type System struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Bus       *memory.Bus
	Cartridge *cartridge.Cartridge
	Pad1      *input.Controller

	Cycles uint64
}

// New assembles a System with no cartridge loaded and no host attached.
// It can be reset and clocked as it is: with no cartridge, cartridge
// space reads 0, and with no host, frames and button samples are dropped.
func New() *System {
	bus := memory.New()

	sys := &System{
		Bus:  bus,
		APU:  apu.New(),
		Pad1: input.New(),
	}
	sys.PPU = ppu.New(bus)
	sys.CPU = cpu.New(bus)

	bus.SetPPU(sys.PPU)
	bus.SetAPU(sys.APU)

	return sys
}

// SetHost attaches the presentation/input capability the bus and PPU
// deliver frames to and sample buttons from.
func (s *System) SetHost(h host.Host) {
	s.Bus.SetHost(h)
}

// LoadCartridge wires a parsed cartridge into the bus and PPU.
func (s *System) LoadCartridge(cart *cartridge.Cartridge) {
	s.Cartridge = cart
	s.Bus.SetCartridge(cart)
	s.PPU.SetCartridge(cart)
}

// Reset establishes power-on state for every chip.
func (s *System) Reset() {
	s.CPU.Reset()
	s.PPU.Reset()
	s.Cycles = 0
	logger.LogInfo("system reset")
}

// RunOneClock advances the system by one CPU clock (three PPU dots).
// It returns a non-nil error exactly when the CPU has halted on a
// fatal condition (an unimplemented opcode); the caller should stop
// driving the loop.
func (s *System) RunOneClock() error {
	s.PPU.RunOneCycle()
	s.CPU.RunOneCycle()
	s.PPU.RunOneCycle()
	s.PPU.RunOneCycle()
	s.APU.Step()
	s.Cycles++

	if !s.CPU.Running && s.CPU.Halt != nil {
		return &nescore.DecodeError{Opcode: s.CPU.HaltOpcode, PC: s.CPU.HaltPC, Err: s.CPU.Halt}
	}
	return nil
}

// RunOneFrame clocks the system until the PPU completes a frame, or a
// fatal error halts the CPU first.
func (s *System) RunOneFrame() error {
	for !s.PPU.FrameComplete {
		if err := s.RunOneClock(); err != nil {
			return err
		}
	}
	return nil
}
