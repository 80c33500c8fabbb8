package cpu

// opcodeTable is the fixed 256-entry dispatch table for sub-cycles
// beyond i==0. Entries left zero-valued (name=="") are unofficial
// opcodes and are fatal if ever fetched.
var opcodeTable [256]opcodeEntry

func init() {
	t := &opcodeTable

	// Loads.
	set(t, 0xA9, "LDA", modeImmediate, clsRead, withRead(opLDA))
	set(t, 0xA5, "LDA", modeZeroPage, clsRead, withRead(opLDA))
	set(t, 0xB5, "LDA", modeZeroPageX, clsRead, withRead(opLDA))
	set(t, 0xAD, "LDA", modeAbsolute, clsRead, withRead(opLDA))
	set(t, 0xBD, "LDA", modeAbsoluteX, clsRead, withRead(opLDA))
	set(t, 0xB9, "LDA", modeAbsoluteY, clsRead, withRead(opLDA))
	set(t, 0xA1, "LDA", modeIndexedIndirect, clsRead, withRead(opLDA))
	set(t, 0xB1, "LDA", modeIndirectIndexed, clsRead, withRead(opLDA))

	set(t, 0xA2, "LDX", modeImmediate, clsRead, withRead(opLDX))
	set(t, 0xA6, "LDX", modeZeroPage, clsRead, withRead(opLDX))
	set(t, 0xB6, "LDX", modeZeroPageY, clsRead, withRead(opLDX))
	set(t, 0xAE, "LDX", modeAbsolute, clsRead, withRead(opLDX))
	set(t, 0xBE, "LDX", modeAbsoluteY, clsRead, withRead(opLDX))

	set(t, 0xA0, "LDY", modeImmediate, clsRead, withRead(opLDY))
	set(t, 0xA4, "LDY", modeZeroPage, clsRead, withRead(opLDY))
	set(t, 0xB4, "LDY", modeZeroPageX, clsRead, withRead(opLDY))
	set(t, 0xAC, "LDY", modeAbsolute, clsRead, withRead(opLDY))
	set(t, 0xBC, "LDY", modeAbsoluteX, clsRead, withRead(opLDY))

	// Stores.
	set(t, 0x85, "STA", modeZeroPage, clsWrite, withWrite(opSTA))
	set(t, 0x95, "STA", modeZeroPageX, clsWrite, withWrite(opSTA))
	set(t, 0x8D, "STA", modeAbsolute, clsWrite, withWrite(opSTA))
	set(t, 0x9D, "STA", modeAbsoluteX, clsWrite, withWrite(opSTA))
	set(t, 0x99, "STA", modeAbsoluteY, clsWrite, withWrite(opSTA))
	set(t, 0x81, "STA", modeIndexedIndirect, clsWrite, withWrite(opSTA))
	set(t, 0x91, "STA", modeIndirectIndexed, clsWrite, withWrite(opSTA))

	set(t, 0x86, "STX", modeZeroPage, clsWrite, withWrite(opSTX))
	set(t, 0x96, "STX", modeZeroPageY, clsWrite, withWrite(opSTX))
	set(t, 0x8E, "STX", modeAbsolute, clsWrite, withWrite(opSTX))

	set(t, 0x84, "STY", modeZeroPage, clsWrite, withWrite(opSTY))
	set(t, 0x94, "STY", modeZeroPageX, clsWrite, withWrite(opSTY))
	set(t, 0x8C, "STY", modeAbsolute, clsWrite, withWrite(opSTY))

	// ALU reads.
	for _, m := range []struct {
		op   uint8
		mode addrMode
	}{{0x69, modeImmediate}, {0x65, modeZeroPage}, {0x75, modeZeroPageX}, {0x6D, modeAbsolute}, {0x7D, modeAbsoluteX}, {0x79, modeAbsoluteY}, {0x61, modeIndexedIndirect}, {0x71, modeIndirectIndexed}} {
		set(t, m.op, "ADC", m.mode, clsRead, withRead(opADC))
	}
	for _, m := range []struct {
		op   uint8
		mode addrMode
	}{{0xE9, modeImmediate}, {0xE5, modeZeroPage}, {0xF5, modeZeroPageX}, {0xED, modeAbsolute}, {0xFD, modeAbsoluteX}, {0xF9, modeAbsoluteY}, {0xE1, modeIndexedIndirect}, {0xF1, modeIndirectIndexed}} {
		set(t, m.op, "SBC", m.mode, clsRead, withRead(opSBC))
	}
	for _, m := range []struct {
		op   uint8
		mode addrMode
	}{{0x29, modeImmediate}, {0x25, modeZeroPage}, {0x35, modeZeroPageX}, {0x2D, modeAbsolute}, {0x3D, modeAbsoluteX}, {0x39, modeAbsoluteY}, {0x21, modeIndexedIndirect}, {0x31, modeIndirectIndexed}} {
		set(t, m.op, "AND", m.mode, clsRead, withRead(opAND))
	}
	for _, m := range []struct {
		op   uint8
		mode addrMode
	}{{0x09, modeImmediate}, {0x05, modeZeroPage}, {0x15, modeZeroPageX}, {0x0D, modeAbsolute}, {0x1D, modeAbsoluteX}, {0x19, modeAbsoluteY}, {0x01, modeIndexedIndirect}, {0x11, modeIndirectIndexed}} {
		set(t, m.op, "ORA", m.mode, clsRead, withRead(opORA))
	}
	for _, m := range []struct {
		op   uint8
		mode addrMode
	}{{0x49, modeImmediate}, {0x45, modeZeroPage}, {0x55, modeZeroPageX}, {0x4D, modeAbsolute}, {0x5D, modeAbsoluteX}, {0x59, modeAbsoluteY}, {0x41, modeIndexedIndirect}, {0x51, modeIndirectIndexed}} {
		set(t, m.op, "EOR", m.mode, clsRead, withRead(opEOR))
	}
	for _, m := range []struct {
		op   uint8
		mode addrMode
	}{{0xC9, modeImmediate}, {0xC5, modeZeroPage}, {0xD5, modeZeroPageX}, {0xCD, modeAbsolute}, {0xDD, modeAbsoluteX}, {0xD9, modeAbsoluteY}, {0xC1, modeIndexedIndirect}, {0xD1, modeIndirectIndexed}} {
		set(t, m.op, "CMP", m.mode, clsRead, withRead(opCMP))
	}
	set(t, 0xE0, "CPX", modeImmediate, clsRead, withRead(opCPX))
	set(t, 0xE4, "CPX", modeZeroPage, clsRead, withRead(opCPX))
	set(t, 0xEC, "CPX", modeAbsolute, clsRead, withRead(opCPX))
	set(t, 0xC0, "CPY", modeImmediate, clsRead, withRead(opCPY))
	set(t, 0xC4, "CPY", modeZeroPage, clsRead, withRead(opCPY))
	set(t, 0xCC, "CPY", modeAbsolute, clsRead, withRead(opCPY))
	set(t, 0x24, "BIT", modeZeroPage, clsRead, withRead(opBIT))
	set(t, 0x2C, "BIT", modeAbsolute, clsRead, withRead(opBIT))

	// Shifts/rotates: accumulator form + memory RMW forms.
	set(t, 0x0A, "ASL", modeAccumulator, clsRMW, withRMW(opASL))
	set(t, 0x06, "ASL", modeZeroPage, clsRMW, withRMW(opASL))
	set(t, 0x16, "ASL", modeZeroPageX, clsRMW, withRMW(opASL))
	set(t, 0x0E, "ASL", modeAbsolute, clsRMW, withRMW(opASL))
	set(t, 0x1E, "ASL", modeAbsoluteX, clsRMW, withRMW(opASL))

	set(t, 0x4A, "LSR", modeAccumulator, clsRMW, withRMW(opLSR))
	set(t, 0x46, "LSR", modeZeroPage, clsRMW, withRMW(opLSR))
	set(t, 0x56, "LSR", modeZeroPageX, clsRMW, withRMW(opLSR))
	set(t, 0x4E, "LSR", modeAbsolute, clsRMW, withRMW(opLSR))
	set(t, 0x5E, "LSR", modeAbsoluteX, clsRMW, withRMW(opLSR))

	set(t, 0x2A, "ROL", modeAccumulator, clsRMW, withRMW(opROL))
	set(t, 0x26, "ROL", modeZeroPage, clsRMW, withRMW(opROL))
	set(t, 0x36, "ROL", modeZeroPageX, clsRMW, withRMW(opROL))
	set(t, 0x2E, "ROL", modeAbsolute, clsRMW, withRMW(opROL))
	set(t, 0x3E, "ROL", modeAbsoluteX, clsRMW, withRMW(opROL))

	set(t, 0x6A, "ROR", modeAccumulator, clsRMW, withRMW(opROR))
	set(t, 0x66, "ROR", modeZeroPage, clsRMW, withRMW(opROR))
	set(t, 0x76, "ROR", modeZeroPageX, clsRMW, withRMW(opROR))
	set(t, 0x6E, "ROR", modeAbsolute, clsRMW, withRMW(opROR))
	set(t, 0x7E, "ROR", modeAbsoluteX, clsRMW, withRMW(opROR))

	set(t, 0xE6, "INC", modeZeroPage, clsRMW, withRMW(opINC))
	set(t, 0xF6, "INC", modeZeroPageX, clsRMW, withRMW(opINC))
	set(t, 0xEE, "INC", modeAbsolute, clsRMW, withRMW(opINC))
	set(t, 0xFE, "INC", modeAbsoluteX, clsRMW, withRMW(opINC))

	set(t, 0xC6, "DEC", modeZeroPage, clsRMW, withRMW(opDEC))
	set(t, 0xD6, "DEC", modeZeroPageX, clsRMW, withRMW(opDEC))
	set(t, 0xCE, "DEC", modeAbsolute, clsRMW, withRMW(opDEC))
	set(t, 0xDE, "DEC", modeAbsoluteX, clsRMW, withRMW(opDEC))

	// Register/flag/implied.
	set(t, 0xE8, "INX", modeImplied, clsImplied, withImpl(opINX))
	set(t, 0xC8, "INY", modeImplied, clsImplied, withImpl(opINY))
	set(t, 0xCA, "DEX", modeImplied, clsImplied, withImpl(opDEX))
	set(t, 0x88, "DEY", modeImplied, clsImplied, withImpl(opDEY))
	set(t, 0xAA, "TAX", modeImplied, clsImplied, withImpl(opTAX))
	set(t, 0xA8, "TAY", modeImplied, clsImplied, withImpl(opTAY))
	set(t, 0x8A, "TXA", modeImplied, clsImplied, withImpl(opTXA))
	set(t, 0x98, "TYA", modeImplied, clsImplied, withImpl(opTYA))
	set(t, 0xBA, "TSX", modeImplied, clsImplied, withImpl(opTSX))
	set(t, 0x9A, "TXS", modeImplied, clsImplied, withImpl(opTXS))
	set(t, 0x18, "CLC", modeImplied, clsImplied, withImpl(opCLC))
	set(t, 0x38, "SEC", modeImplied, clsImplied, withImpl(opSEC))
	set(t, 0x58, "CLI", modeImplied, clsImplied, withImpl(opCLI))
	set(t, 0x78, "SEI", modeImplied, clsImplied, withImpl(opSEI))
	set(t, 0xB8, "CLV", modeImplied, clsImplied, withImpl(opCLV))
	set(t, 0xD8, "CLD", modeImplied, clsImplied, withImpl(opCLD))
	set(t, 0xF8, "SED", modeImplied, clsImplied, withImpl(opSED))
	set(t, 0xEA, "NOP", modeImplied, clsImplied, withImpl(opNOP))

	// Branches.
	set(t, 0x90, "BCC", modeRelative, clsBranch, withBranch(brBCC))
	set(t, 0xB0, "BCS", modeRelative, clsBranch, withBranch(brBCS))
	set(t, 0xF0, "BEQ", modeRelative, clsBranch, withBranch(brBEQ))
	set(t, 0xD0, "BNE", modeRelative, clsBranch, withBranch(brBNE))
	set(t, 0x30, "BMI", modeRelative, clsBranch, withBranch(brBMI))
	set(t, 0x10, "BPL", modeRelative, clsBranch, withBranch(brBPL))
	set(t, 0x50, "BVC", modeRelative, clsBranch, withBranch(brBVC))
	set(t, 0x70, "BVS", modeRelative, clsBranch, withBranch(brBVS))

	// Jumps/subroutines/stack/interrupts.
	set(t, 0x4C, "JMP", modeAbsolute, clsJump)
	set(t, 0x6C, "JMP", modeIndirect, clsJump)
	set(t, 0x20, "JSR", modeAbsolute, clsJSR)
	set(t, 0x60, "RTS", modeImplied, clsRTS)
	set(t, 0x40, "RTI", modeImplied, clsRTI)
	set(t, 0x00, "BRK", modeImplied, clsBRK)

	set(t, 0x48, "PHA", modeImplied, clsPush, withWrite(opPHA))
	set(t, 0x08, "PHP", modeImplied, clsPush, withWrite(opPHP))
	set(t, 0x68, "PLA", modeImplied, clsPull, withPull(opPLA))
	set(t, 0x28, "PLP", modeImplied, clsPull, withPull(opPLP))
}

// set installs one opcode table entry; variadic opts lets each call
// site attach exactly the function pointer its class needs without a
// large positional literal.
func set(t *[256]opcodeEntry, op uint8, name string, mode addrMode, cls opClass, opts ...func(*opcodeEntry)) {
	e := opcodeEntry{name: name, mode: mode, cls: cls}
	for _, o := range opts {
		o(&e)
	}
	t[op] = e
}

func withRead(fn func(*CPU, uint8)) func(*opcodeEntry) {
	return func(e *opcodeEntry) { e.read = fn }
}
func withWrite(fn func(*CPU) uint8) func(*opcodeEntry) {
	return func(e *opcodeEntry) { e.write = fn }
}
func withRMW(fn func(*CPU, uint8) uint8) func(*opcodeEntry) {
	return func(e *opcodeEntry) { e.rmw = fn }
}
func withImpl(fn func(*CPU)) func(*opcodeEntry) {
	return func(e *opcodeEntry) { e.impl = fn }
}
func withBranch(fn func(*CPU) bool) func(*opcodeEntry) {
	return func(e *opcodeEntry) { e.branch = fn }
}
func withPull(fn func(*CPU, uint8)) func(*opcodeEntry) {
	return func(e *opcodeEntry) { e.pull = fn }
}

// Load/store operations.
func opLDA(c *CPU, v uint8) { c.A = v; c.setNZ(v) }
func opLDX(c *CPU, v uint8) { c.X = v; c.setNZ(v) }
func opLDY(c *CPU, v uint8) { c.Y = v; c.setNZ(v) }
func opSTA(c *CPU) uint8    { return c.A }
func opSTX(c *CPU) uint8    { return c.X }
func opSTY(c *CPU) uint8    { return c.Y }

// ALU operations.
func adcCore(c *CPU, v uint8) {
	carry := uint16(0)
	if c.getFlag(FlagCarry) {
		carry = 1
	}
	sum := uint16(c.A) + uint16(v) + carry
	result := uint8(sum)
	c.setFlag(FlagCarry, sum > 0xFF)
	c.setFlag(FlagOverflow, (c.A^result)&(v^result)&0x80 != 0)
	c.A = result
	c.setNZ(result)
}

func opADC(c *CPU, v uint8) { adcCore(c, v) }
func opSBC(c *CPU, v uint8) { adcCore(c, v^0xFF) }
func opAND(c *CPU, v uint8) { c.A &= v; c.setNZ(c.A) }
func opORA(c *CPU, v uint8) { c.A |= v; c.setNZ(c.A) }
func opEOR(c *CPU, v uint8) { c.A ^= v; c.setNZ(c.A) }

func cmpCore(c *CPU, reg, v uint8) {
	result := reg - v
	c.setFlag(FlagCarry, reg >= v)
	c.setFlag(FlagZero, reg == v)
	c.setFlag(FlagNegative, result&0x80 != 0)
}

func opCMP(c *CPU, v uint8) { cmpCore(c, c.A, v) }
func opCPX(c *CPU, v uint8) { cmpCore(c, c.X, v) }
func opCPY(c *CPU, v uint8) { cmpCore(c, c.Y, v) }

func opBIT(c *CPU, v uint8) {
	c.setFlag(FlagZero, c.A&v == 0)
	c.setFlag(FlagNegative, v&0x80 != 0)
	c.setFlag(FlagOverflow, v&0x40 != 0)
}

// Read-modify-write operations. Each returns the value to be written
// back (to memory, or to A for the accumulator addressing form).
func opASL(c *CPU, v uint8) uint8 {
	c.setFlag(FlagCarry, v&0x80 != 0)
	r := v << 1
	c.setNZ(r)
	return r
}

func opLSR(c *CPU, v uint8) uint8 {
	c.setFlag(FlagCarry, v&0x01 != 0)
	r := v >> 1
	c.setNZ(r) // N is always cleared by a right shift
	return r
}

func opROL(c *CPU, v uint8) uint8 {
	carryIn := uint8(0)
	if c.getFlag(FlagCarry) {
		carryIn = 1
	}
	c.setFlag(FlagCarry, v&0x80 != 0)
	r := v<<1 | carryIn
	c.setNZ(r)
	return r
}

func opROR(c *CPU, v uint8) uint8 {
	carryIn := uint8(0)
	if c.getFlag(FlagCarry) {
		carryIn = 1
	}
	c.setFlag(FlagCarry, v&0x01 != 0)
	r := v>>1 | carryIn<<7
	c.setNZ(r)
	return r
}

func opINC(c *CPU, v uint8) uint8 { r := v + 1; c.setNZ(r); return r }
func opDEC(c *CPU, v uint8) uint8 { r := v - 1; c.setNZ(r); return r }

// Register transfers and flag instructions.
func opINX(c *CPU) { c.X++; c.setNZ(c.X) }
func opINY(c *CPU) { c.Y++; c.setNZ(c.Y) }
func opDEX(c *CPU) { c.X--; c.setNZ(c.X) }
func opDEY(c *CPU) { c.Y--; c.setNZ(c.Y) }
func opTAX(c *CPU) { c.X = c.A; c.setNZ(c.X) }
func opTAY(c *CPU) { c.Y = c.A; c.setNZ(c.Y) }
func opTXA(c *CPU) { c.A = c.X; c.setNZ(c.A) }
func opTYA(c *CPU) { c.A = c.Y; c.setNZ(c.A) }
func opTSX(c *CPU) { c.X = c.SP; c.setNZ(c.X) }
func opTXS(c *CPU) { c.SP = c.X } // TXS does not touch NZ

func opCLC(c *CPU) { c.setFlag(FlagCarry, false) }
func opSEC(c *CPU) { c.setFlag(FlagCarry, true) }
func opCLI(c *CPU) { c.setFlag(FlagInterrupt, false) }
func opSEI(c *CPU) { c.setFlag(FlagInterrupt, true) }
func opCLV(c *CPU) { c.setFlag(FlagOverflow, false) }
func opCLD(c *CPU) { c.setFlag(FlagDecimal, false) }
func opSED(c *CPU) { c.setFlag(FlagDecimal, true) }
func opNOP(c *CPU) {}

// Branch conditions.
func brBCC(c *CPU) bool { return !c.getFlag(FlagCarry) }
func brBCS(c *CPU) bool { return c.getFlag(FlagCarry) }
func brBEQ(c *CPU) bool { return c.getFlag(FlagZero) }
func brBNE(c *CPU) bool { return !c.getFlag(FlagZero) }
func brBMI(c *CPU) bool { return c.getFlag(FlagNegative) }
func brBPL(c *CPU) bool { return !c.getFlag(FlagNegative) }
func brBVC(c *CPU) bool { return !c.getFlag(FlagOverflow) }
func brBVS(c *CPU) bool { return c.getFlag(FlagOverflow) }

// Stack operations.
func opPHA(c *CPU) uint8 { return c.A }
func opPHP(c *CPU) uint8 { return c.P | FlagBreak | FlagUnused }
func opPLA(c *CPU, v uint8) { c.A = v; c.setNZ(v) }
func opPLP(c *CPU, v uint8) {
	c.P = (c.P & (FlagBreak | FlagUnused)) | (v &^ (FlagBreak | FlagUnused))
}
