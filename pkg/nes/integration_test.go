package nes

import (
	"bytes"
	"testing"

	"github.com/kestrelcarver/nescore/pkg/cartridge"
)

// createIntegrationROM builds a minimal iNES image with program placed
// at $8000 and every interrupt vector pointed at $8000.
func createIntegrationROM(program []uint8) []byte {
	rom := make([]byte, 0, 16+16384+8192)

	header := []byte{
		0x4E, 0x45, 0x53, 0x1A,
		0x01, 0x01,
		0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	rom = append(rom, header...)

	prgROM := make([]byte, 16384)
	copy(prgROM, program)
	prgROM[0x3FFA], prgROM[0x3FFB] = 0x00, 0x80 // NMI
	prgROM[0x3FFC], prgROM[0x3FFD] = 0x00, 0x80 // Reset
	prgROM[0x3FFE], prgROM[0x3FFF] = 0x00, 0x80 // IRQ
	rom = append(rom, prgROM...)

	rom = append(rom, make([]byte, 8192)...)
	return rom
}

func loadIntegrationROM(t *testing.T, program []uint8) *System {
	t.Helper()
	cart, err := cartridge.LoadFromReader(bytes.NewReader(createIntegrationROM(program)))
	if err != nil {
		t.Fatalf("failed to load test ROM: %v", err)
	}

	sys := New()
	sys.LoadCartridge(cart)
	sys.Reset()
	return sys
}

// TestIntegrationArithmeticAndStack exercises ADC/carry, branching,
// stack push/pull, INC and comparison in one program, mirroring a
// realistic mixed-instruction workload rather than one opcode at a
// time.
func TestIntegrationArithmeticAndStack(t *testing.T) {
	program := []uint8{
		0xA9, 0x10, // LDA #$10
		0x69, 0x20, // ADC #$20  -> A=$30, carry clear
		0x69, 0xE0, // ADC #$E0  -> A=$10, carry set
		0x85, 0x10, // STA $10
		0xB0, 0x02, // BCS +2 (taken, carry set)
		0xA9, 0xFF, // LDA #$FF (error marker, skipped)
		0x48,       // PHA
		0xA9, 0x55, // LDA #$55
		0x68,       // PLA -> A=$10
		0x85, 0x11, // STA $11
		0xE6, 0x11, // INC $11 -> $11
		0xA5, 0x11, // LDA $11
		0xC9, 0x11, // CMP #$11
		0xF0, 0x02, // BEQ +2 (taken)
		0xA9, 0xFF, // LDA #$FF (error marker, skipped)
		0x4C, 0x1C, 0x80, // JMP $801C (halt loop at this instruction)
	}

	sys := loadIntegrationROM(t, program)
	for i := 0; i < 10000 && sys.CPU.PC != 0x801C; i++ {
		if err := sys.RunOneClock(); err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
	}

	if sys.CPU.PC != 0x801C {
		t.Fatalf("program did not reach halt loop, PC=$%04X", sys.CPU.PC)
	}
	if v := sys.Bus.Read(0x10); v != 0x10 {
		t.Errorf("memory[$10] = $%02X, want $10", v)
	}
	if v := sys.Bus.Read(0x11); v != 0x11 {
		t.Errorf("memory[$11] = $%02X, want $11 (incremented pulled value)", v)
	}
}

// TestIntegrationInstructionCoverage drives a program touching the
// immediate, zero-page, implied, accumulator and relative addressing
// modes and every flag instruction at least once, checking
// only that the CPU runs to completion without halting.
func TestIntegrationInstructionCoverage(t *testing.T) {
	program := []uint8{
		0xA9, 0x42, 0xA2, 0x10, 0xA0, 0x20, // LDA/LDX/LDY immediate
		0x85, 0x00, 0x86, 0x01, 0x84, 0x02, // STA/STX/STY zero page
		0xAA, 0x8A, 0xA8, 0x98, 0x9A, 0xBA, // register transfers
		0x69, 0x08, 0xE9, 0x08, // ADC/SBC
		0xC9, 0x42, 0xE0, 0x42, 0xC0, 0x20, // CMP/CPX/CPY
		0x29, 0xFF, 0x09, 0x00, 0x49, 0x00, // AND/ORA/EOR
		0x0A, 0x4A, 0x2A, 0x6A, // ASL/LSR/ROL/ROR accumulator
		0xE8, 0xCA, 0xC8, 0x88, // INX/DEX/INY/DEY
		0xE6, 0x00, 0xC6, 0x00, // INC/DEC zero page
		0x18, 0x38, 0x58, 0x78, 0xB8, 0xD8, 0xF8, // flag clears/sets
		0x48, 0x68, 0x08, 0x28, // PHA/PLA/PHP/PLP
		0x10, 0x00, 0x30, 0x00, 0x50, 0x00, 0x70, 0x00, // branches, offset 0: taken or not,
		0x90, 0x00, 0xB0, 0x00, 0xD0, 0x00, 0xF0, 0x00, // execution goes on at the next one
		0x24, 0x00, // BIT
		0x4C, 0x4B, 0x80, // JMP $804B (halt loop at this instruction)
	}

	sys := loadIntegrationROM(t, program)
	for i := 0; i < 10000 && sys.CPU.PC != 0x804B; i++ {
		if err := sys.RunOneClock(); err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
	}

	if sys.CPU.PC != 0x804B {
		t.Fatalf("program did not reach halt loop, PC=$%04X", sys.CPU.PC)
	}
}

// createMapper1ROM builds a 32KB-PRG/16KB-CHR MMC1 (mapper 1) image
// with program copied into both 16KB banks so execution lands in
// valid code regardless of which bank is paged in at $8000.
func createMapper1ROM(program []uint8) []byte {
	rom := make([]byte, 0, 16+32768+16384)

	header := []byte{
		0x4E, 0x45, 0x53, 0x1A,
		0x02, 0x02,
		0x10, 0x00, // mapper 1, horizontal mirroring
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	rom = append(rom, header...)

	prgROM := make([]byte, 32768)
	copy(prgROM, program)
	copy(prgROM[16384:], program)
	for _, base := range []int{0, 16384} {
		prgROM[base+0x3FFA], prgROM[base+0x3FFB] = 0x00, 0x80
		prgROM[base+0x3FFC], prgROM[base+0x3FFD] = 0x00, 0x80
		prgROM[base+0x3FFE], prgROM[base+0x3FFF] = 0x00, 0x80
	}
	rom = append(rom, prgROM...)
	rom = append(rom, make([]byte, 16384)...)
	return rom
}

// TestIntegrationMapper1BankSwitch drives MMC1's serial shift-register
// protocol (5 single-bit writes per register) to set the control
// register and switch the PRG bank at $E000, confirming the CPU keeps
// executing correctly across the switch.
func TestIntegrationMapper1BankSwitch(t *testing.T) {
	program := []uint8{
		0xA9, 0x80, 0x8D, 0x00, 0x80, // LDA #$80; STA $8000 (MMC1 reset)

		0xA9, 0x0F, // LDA #$0F
		0x8D, 0x00, 0x80, // STA $8000 (bit 0)
		0x4A, 0x8D, 0x00, 0x80, // LSR A; STA $8000 (bit 1)
		0x4A, 0x8D, 0x00, 0x80, // LSR A; STA $8000 (bit 2)
		0x4A, 0x8D, 0x00, 0x80, // LSR A; STA $8000 (bit 3)
		0x4A, 0x8D, 0x00, 0x80, // LSR A; STA $8000 (bit 4, commits control reg)

		0xA9, 0x01, // LDA #$01
		0x8D, 0x00, 0xE0, // STA $E000 (bit 0)
		0x4A, 0x8D, 0x00, 0xE0, // LSR A; STA $E000 (bit 1)
		0x8D, 0x00, 0xE0, // STA $E000 (bit 2)
		0x8D, 0x00, 0xE0, // STA $E000 (bit 3)
		0x8D, 0x00, 0xE0, // STA $E000 (bit 4, commits PRG bank select)

		0xA9, 0x42, 0x85, 0x00, // LDA #$42; STA $00
		0xEA, // NOP (STA $00 finishes its write before PC reaches the halt loop)

		0x4C, 0x31, 0x80, // JMP $8031 (halt loop at this instruction)
	}

	cart, err := cartridge.LoadFromReader(bytes.NewReader(createMapper1ROM(program)))
	if err != nil {
		t.Fatalf("failed to load mapper 1 test ROM: %v", err)
	}

	sys := New()
	sys.LoadCartridge(cart)
	sys.Reset()

	for i := 0; i < 50000 && sys.CPU.PC != 0x8031; i++ {
		if err := sys.RunOneClock(); err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
	}

	if sys.CPU.PC != 0x8031 {
		t.Fatalf("program did not reach halt loop, PC=$%04X", sys.CPU.PC)
	}
	if v := sys.Bus.Read(0x0000); v != 0x42 {
		t.Errorf("memory[$00] = $%02X, want $42 (CPU should keep running after PRG bank switch)", v)
	}
}

// TestIntegrationCountingLoop drives a tight ADC/CMP/BNE loop to
// completion, the kind of workload that exercises backward branches
// and carry-flag-driven control flow repeatedly.
func TestIntegrationCountingLoop(t *testing.T) {
	program := []uint8{
		0xA9, 0x00, // LDA #$00
		0x69, 0x01, // loop: ADC #$01
		0xC9, 0xFF, // CMP #$FF
		0xD0, 0xFA, // BNE loop
		0x4C, 0x08, 0x80, // JMP $8008 (halt loop)
	}

	sys := loadIntegrationROM(t, program)
	for i := 0; i < 200000 && sys.CPU.A != 0xFF; i++ {
		if err := sys.RunOneClock(); err != nil {
			t.Fatalf("unexpected fatal error: %v", err)
		}
	}

	if sys.CPU.A != 0xFF {
		t.Fatalf("loop did not reach A=$FF, A=$%02X", sys.CPU.A)
	}
}
