// Command gones runs the NES emulator core against a single ROM file.
// Usage: gones <rom-file>. Logging verbosity is controlled by the
// NESCORE_LOG_LEVEL environment variable, not a flag, so the CLI
// surface stays exactly one positional argument.
package main

import (
	"fmt"
	"os"

	"github.com/kestrelcarver/nescore/pkg/cartridge"
	"github.com/kestrelcarver/nescore/pkg/display"
	"github.com/kestrelcarver/nescore/pkg/logger"
	"github.com/kestrelcarver/nescore/pkg/nes"
	"github.com/kestrelcarver/nescore/pkg/nescore"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <rom-file>\n", os.Args[0])
		os.Exit(1)
	}
	romPath := os.Args[1]

	level := logger.GetLogLevelFromString(os.Getenv("NESCORE_LOG_LEVEL"))
	if err := logger.Initialize(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	if err := run(romPath); err != nil {
		logger.LogError("%v", err)
		os.Exit(1)
	}
}

func run(romPath string) error {
	file, err := os.Open(romPath)
	if err != nil {
		return &nescore.LoadError{Op: "open " + romPath, Err: err}
	}
	defer file.Close()

	cart, err := cartridge.LoadFromReader(file)
	if err != nil {
		return fmt.Errorf("loading %s: %w", romPath, err)
	}
	logger.LogInfo("loaded %s: %d KB PRG, mapper %d", romPath, len(cart.PRGROM)/1024, mapperNumber(cart))

	sys := nes.New()
	sys.LoadCartridge(cart)

	screen, err := display.New(sys.Pad1)
	if err != nil {
		return err
	}
	defer screen.Close()
	sys.SetHost(screen)

	sys.Reset()

	for screen.Running() {
		if err := sys.RunOneFrame(); err != nil {
			return err
		}
	}
	return nil
}

func mapperNumber(cart *cartridge.Cartridge) uint8 {
	return (cart.Header.Flags6 >> 4) | (cart.Header.Flags7 & 0xF0)
}
