package cpu

// addrMode names a 6502 addressing mode. Each carries a fixed
// sub-cycle sequence (see stepOpcode), independent of which specific
// opcode uses it; only the instruction class (read/write/rmw/...)
// changes how the final operand is consumed.
type addrMode int

const (
	modeImplied addrMode = iota
	modeAccumulator
	modeImmediate
	modeZeroPage
	modeZeroPageX
	modeZeroPageY
	modeAbsolute
	modeAbsoluteX
	modeAbsoluteY
	modeIndirect // JMP only
	modeIndexedIndirect
	modeIndirectIndexed
	modeRelative
)

// opClass selects which side of an opcodeEntry's function pointers is
// wired up, and therefore how the addressing mode's final cycle
// behaves (a read off the bus, a write to it, or a read-modify-write).
type opClass int

const (
	clsRead opClass = iota
	clsWrite
	clsRMW
	clsImplied
	clsBranch
	clsJump
	clsJSR
	clsRTS
	clsRTI
	clsBRK
	clsPush
	clsPull
)

type opcodeEntry struct {
	name string
	mode addrMode
	cls  opClass

	read   func(c *CPU, value uint8)        // clsRead
	write  func(c *CPU) uint8                // clsWrite / clsPush
	rmw    func(c *CPU, value uint8) uint8   // clsRMW / modeAccumulator
	impl   func(c *CPU)                      // clsImplied
	branch func(c *CPU) bool                 // clsBranch
	pull   func(c *CPU, value uint8)         // clsPull
}

// finish resets the sub-cycle index, making the next RunOneCycle a
// fresh opcode fetch.
func (c *CPU) finish() { c.f.i = 0 }

// stepOpcode dispatches sub-cycle i of the in-flight instruction.
func (c *CPU) stepOpcode() {
	e := c.f.entry

	switch e.cls {
	case clsBranch:
		c.stepBranch()
		return
	case clsJump:
		if e.mode == modeIndirect {
			c.stepJMPIndirect()
		} else {
			c.stepJMPAbsolute()
		}
		return
	case clsJSR:
		c.stepJSR()
		return
	case clsRTS:
		c.stepRTS()
		return
	case clsRTI:
		c.stepRTI()
		return
	case clsBRK:
		c.stepBRK()
		return
	case clsPush:
		c.stepPush()
		return
	case clsPull:
		c.stepPull()
		return
	}

	switch e.mode {
	case modeImplied:
		c.stepImplied()
	case modeAccumulator:
		c.stepAccumulator()
	case modeImmediate:
		c.stepImmediate()
	case modeZeroPage:
		c.stepZeroPage()
	case modeZeroPageX:
		c.stepZeroPageIndexed(c.X)
	case modeZeroPageY:
		c.stepZeroPageIndexed(c.Y)
	case modeAbsolute:
		c.stepAbsolute()
	case modeAbsoluteX:
		c.stepAbsoluteIndexed(c.X)
	case modeAbsoluteY:
		c.stepAbsoluteIndexed(c.Y)
	case modeIndirect:
		c.stepJMPIndirect()
	case modeIndexedIndirect:
		c.stepIndexedIndirect()
	case modeIndirectIndexed:
		c.stepIndirectIndexed()
	}
}

func (c *CPU) stepImplied() {
	if c.f.i == 1 {
		c.f.entry.impl(c)
		c.finish()
	}
}

func (c *CPU) stepAccumulator() {
	if c.f.i == 1 {
		c.A = c.f.entry.rmw(c, c.A)
		c.finish()
	}
}

func (c *CPU) stepImmediate() {
	if c.f.i == 1 {
		v := c.read(c.PC)
		c.PC++
		c.f.entry.read(c, v)
		c.finish()
	}
}

func (c *CPU) stepZeroPage() {
	switch c.f.i {
	case 1:
		c.f.addr = uint16(c.read(c.PC))
		c.PC++
		c.i2()
	case 2:
		switch c.f.entry.cls {
		case clsWrite:
			c.write(c.f.addr, c.f.entry.write(c))
			c.finish()
		case clsRMW:
			c.f.operand = c.read(c.f.addr)
			c.i2()
		default: // clsRead
			c.f.entry.read(c, c.read(c.f.addr))
			c.finish()
		}
	case 3:
		c.write(c.f.addr, c.f.operand) // dummy write-back
		c.i2()
	case 4:
		c.write(c.f.addr, c.f.entry.rmw(c, c.f.operand))
		c.finish()
	}
}

func (c *CPU) stepZeroPageIndexed(index uint8) {
	switch c.f.i {
	case 1:
		c.f.baseAddr = uint16(c.read(c.PC))
		c.PC++
		c.i2()
	case 2:
		c.read(c.f.baseAddr) // dummy read at unindexed address
		c.f.addr = uint16(uint8(c.f.baseAddr) + index)
		c.i2()
	case 3:
		switch c.f.entry.cls {
		case clsWrite:
			c.write(c.f.addr, c.f.entry.write(c))
			c.finish()
		case clsRMW:
			c.f.operand = c.read(c.f.addr)
			c.i2()
		default:
			c.f.entry.read(c, c.read(c.f.addr))
			c.finish()
		}
	case 4:
		c.write(c.f.addr, c.f.operand)
		c.i2()
	case 5:
		c.write(c.f.addr, c.f.entry.rmw(c, c.f.operand))
		c.finish()
	}
}

func (c *CPU) stepAbsolute() {
	switch c.f.i {
	case 1:
		c.f.operand = c.read(c.PC) // low byte, parked
		c.PC++
		c.i2()
	case 2:
		hi := uint16(c.read(c.PC))
		c.PC++
		c.f.addr = hi<<8 | uint16(c.f.operand)
		c.i2()
	case 3:
		switch c.f.entry.cls {
		case clsWrite:
			c.write(c.f.addr, c.f.entry.write(c))
			c.finish()
		case clsRMW:
			c.f.operand = c.read(c.f.addr)
			c.i2()
		default:
			c.f.entry.read(c, c.read(c.f.addr))
			c.finish()
		}
	case 4:
		c.write(c.f.addr, c.f.operand)
		c.i2()
	case 5:
		c.write(c.f.addr, c.f.entry.rmw(c, c.f.operand))
		c.finish()
	}
}

func (c *CPU) stepAbsoluteIndexed(index uint8) {
	switch c.f.i {
	case 1:
		c.f.operand = c.read(c.PC)
		c.PC++
		c.i2()
	case 2:
		hi := c.read(c.PC)
		c.PC++
		lo := c.f.operand
		sum := uint16(lo) + uint16(index)
		c.f.baseAddr = uint16(hi)<<8 | uint16(uint8(sum))
		c.f.addr = (uint16(hi)<<8 | uint16(lo)) + uint16(index)
		c.f.pageCrossed = sum > 0xFF
		c.i2()
	case 3:
		switch c.f.entry.cls {
		case clsRead:
			if c.f.pageCrossed {
				c.read(c.f.baseAddr) // dummy re-read
				c.i2()
				return
			}
			c.f.entry.read(c, c.read(c.f.addr))
			c.finish()
		case clsWrite:
			c.read(c.f.baseAddr) // always a dummy cycle
			c.i2()
		case clsRMW:
			c.read(c.f.baseAddr)
			c.i2()
		}
	case 4:
		switch c.f.entry.cls {
		case clsRead:
			c.f.entry.read(c, c.read(c.f.addr))
			c.finish()
		case clsWrite:
			c.write(c.f.addr, c.f.entry.write(c))
			c.finish()
		case clsRMW:
			c.f.operand = c.read(c.f.addr)
			c.i2()
		}
	case 5:
		c.write(c.f.addr, c.f.operand) // dummy write-back
		c.i2()
	case 6:
		c.write(c.f.addr, c.f.entry.rmw(c, c.f.operand))
		c.finish()
	}
}

func (c *CPU) stepIndexedIndirect() {
	switch c.f.i {
	case 1:
		c.f.ptr = uint16(c.read(c.PC))
		c.PC++
		c.i2()
	case 2:
		c.read(c.f.ptr) // dummy read at unindexed pointer
		c.f.ptr = uint16(uint8(c.f.ptr) + c.X)
		c.i2()
	case 3:
		lo := c.read(c.f.ptr)
		c.f.operand = lo
		c.i2()
	case 4:
		hi := c.read(uint16(uint8(c.f.ptr) + 1))
		c.f.addr = uint16(hi)<<8 | uint16(c.f.operand)
		c.i2()
	case 5:
		switch c.f.entry.cls {
		case clsWrite:
			c.write(c.f.addr, c.f.entry.write(c))
		default:
			c.f.entry.read(c, c.read(c.f.addr))
		}
		c.finish()
	}
}

func (c *CPU) stepIndirectIndexed() {
	switch c.f.i {
	case 1:
		c.f.ptr = uint16(c.read(c.PC))
		c.PC++
		c.i2()
	case 2:
		lo := c.read(c.f.ptr)
		c.f.operand = lo
		c.i2()
	case 3:
		hi := c.read(uint16(uint8(c.f.ptr) + 1))
		sum := uint16(c.f.operand) + uint16(c.Y)
		c.f.baseAddr = uint16(hi)<<8 | uint16(uint8(sum))
		c.f.addr = (uint16(hi)<<8 | uint16(c.f.operand)) + uint16(c.Y)
		c.f.pageCrossed = sum > 0xFF
		c.i2()
	case 4:
		switch c.f.entry.cls {
		case clsRead:
			if c.f.pageCrossed {
				c.read(c.f.baseAddr)
				c.i2()
				return
			}
			c.f.entry.read(c, c.read(c.f.addr))
			c.finish()
		case clsWrite:
			c.read(c.f.baseAddr)
			c.i2()
		}
	case 5:
		switch c.f.entry.cls {
		case clsRead:
			c.f.entry.read(c, c.read(c.f.addr))
		case clsWrite:
			c.write(c.f.addr, c.f.entry.write(c))
		}
		c.finish()
	}
}

func (c *CPU) stepJMPAbsolute() {
	switch c.f.i {
	case 1:
		c.f.operand = c.read(c.PC)
		c.PC++
		c.i2()
	case 2:
		hi := c.read(c.PC)
		c.PC = uint16(hi)<<8 | uint16(c.f.operand)
		c.finish()
	}
}

func (c *CPU) stepJMPIndirect() {
	switch c.f.i {
	case 1:
		c.f.operand = c.read(c.PC)
		c.PC++
		c.i2()
	case 2:
		hi := c.read(c.PC)
		c.PC++
		c.f.ptr = uint16(hi)<<8 | uint16(c.f.operand)
		c.i2()
	case 3:
		c.f.operand = c.read(c.f.ptr)
		c.i2()
	case 4:
		// Page-wrap bug: the low byte of the pointer increments without
		// carrying into the high byte.
		hiAddr := (c.f.ptr & 0xFF00) | uint16(uint8(c.f.ptr)+1)
		hi := c.read(hiAddr)
		c.PC = uint16(hi)<<8 | uint16(c.f.operand)
		c.finish()
	}
}

func (c *CPU) stepBranch() {
	switch c.f.i {
	case 1:
		operand := c.read(c.PC)
		c.PC++
		if !c.f.entry.branch(c) {
			c.finish()
			return
		}
		offset := int8(operand)
		oldPC := c.PC
		newPC := uint16(int32(oldPC) + int32(offset))
		c.f.addr = newPC
		c.f.pageCrossed = (newPC & 0xFF00) != (oldPC & 0xFF00)
		c.f.branchTaken = true
		c.i2()
	case 2:
		if !c.f.pageCrossed {
			c.PC = c.f.addr
			c.finish()
			return
		}
		c.i2() // internal cycle while the page-cross corrects PCH
	case 3:
		c.PC = c.f.addr
		c.finish()
	}
}

func (c *CPU) stepJSR() {
	switch c.f.i {
	case 1:
		c.f.operand = c.read(c.PC)
		c.PC++
		c.i2()
	case 2:
		c.read(0x100 | uint16(c.SP)) // internal cycle
		c.i2()
	case 3:
		c.push(uint8(c.PC >> 8))
		c.i2()
	case 4:
		c.push(uint8(c.PC))
		c.i2()
	case 5:
		hi := c.read(c.PC)
		c.PC = uint16(hi)<<8 | uint16(c.f.operand)
		c.finish()
	}
}

func (c *CPU) stepRTS() {
	switch c.f.i {
	case 1:
		c.read(c.PC) // dummy
		c.i2()
	case 2:
		c.read(0x100 | uint16(c.SP)) // dummy SP pre-increment
		c.i2()
	case 3:
		c.f.operand = c.pop() // PCL
		c.i2()
	case 4:
		hi := c.pop()
		c.PC = uint16(hi)<<8 | uint16(c.f.operand)
		c.i2()
	case 5:
		c.PC++
		c.finish()
	}
}

func (c *CPU) stepRTI() {
	switch c.f.i {
	case 1:
		c.read(c.PC)
		c.i2()
	case 2:
		c.read(0x100 | uint16(c.SP))
		c.i2()
	case 3:
		pulled := c.pop()
		c.P = (c.P & (FlagBreak | FlagUnused)) | (pulled &^ (FlagBreak | FlagUnused))
		c.i2()
	case 4:
		c.f.operand = c.pop() // PCL
		c.i2()
	case 5:
		hi := c.pop()
		c.PC = uint16(hi)<<8 | uint16(c.f.operand)
		c.finish()
	}
}

func (c *CPU) stepBRK() {
	switch c.f.i {
	case 1:
		c.read(c.PC) // padding byte, discarded
		c.PC++
		c.i2()
	case 2:
		c.push(uint8(c.PC >> 8))
		c.i2()
	case 3:
		c.push(uint8(c.PC))
		c.i2()
	case 4:
		c.push(c.P | FlagBreak | FlagUnused)
		c.i2()
	case 5:
		c.f.operand = c.read(0xFFFE)
		c.i2()
	case 6:
		hi := c.read(0xFFFF)
		c.PC = uint16(hi)<<8 | uint16(c.f.operand)
		c.setFlag(FlagInterrupt, true)
		c.finish()
	}
}

func (c *CPU) stepPush() {
	switch c.f.i {
	case 1:
		c.read(c.PC) // dummy
		c.i2()
	case 2:
		c.push(c.f.entry.write(c))
		c.finish()
	}
}

func (c *CPU) stepPull() {
	switch c.f.i {
	case 1:
		c.read(c.PC) // dummy
		c.i2()
	case 2:
		c.read(0x100 | uint16(c.SP)) // dummy pre-increment
		c.i2()
	case 3:
		c.f.entry.pull(c, c.pop())
		c.finish()
	}
}

// i2 advances the sub-cycle index for the next RunOneCycle call.
func (c *CPU) i2() { c.f.i++ }
