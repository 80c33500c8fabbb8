package cpu

import "errors"

// ErrUnimplementedOpcode is wrapped into a nescore.DecodeError by the
// caller when the CPU halts on a byte with no table entry (unofficial
// opcodes are not implemented).
var ErrUnimplementedOpcode = errors.New("unimplemented opcode")
