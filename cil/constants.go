package cil

// Opcode is a CIL operation code. Two-byte opcodes (0xFE prefix) are stored
// with the prefix in the high byte.
type Opcode uint16

// Opcodes recognised by this package. Values match the ECMA-335 encodings.
const (
	OpNop      Opcode = 0x00 // no operation
	OpLdarg0   Opcode = 0x02 // load argument 0
	OpLdnull   Opcode = 0x14 // push null reference
	OpLdcI4    Opcode = 0x20 // push int32 constant
	OpPop      Opcode = 0x26 // discard top of stack
	OpCall     Opcode = 0x28 // call method
	OpRet      Opcode = 0x2A // return from method
	OpCallvirt Opcode = 0x6F // call method via vtable
	OpLdstr    Opcode = 0x72 // push string literal
	OpNewobj   Opcode = 0x73 // allocate and construct
	OpLdfld    Opcode = 0x7B // load instance field
	OpLdflda   Opcode = 0x7C // load instance field address
	OpStfld    Opcode = 0x7D // store instance field
	OpLdsfld   Opcode = 0x7E // load static field
	OpLdsflda  Opcode = 0x7F // load static field address
	OpStsfld   Opcode = 0x80 // store static field
	OpDup      Opcode = 0x25 // duplicate top of stack
)

var opcodeNames = map[Opcode]string{
	OpNop:      "nop",
	OpLdarg0:   "ldarg.0",
	OpLdnull:   "ldnull",
	OpLdcI4:    "ldc.i4",
	OpPop:      "pop",
	OpDup:      "dup",
	OpCall:     "call",
	OpRet:      "ret",
	OpCallvirt: "callvirt",
	OpLdstr:    "ldstr",
	OpNewobj:   "newobj",
	OpLdfld:    "ldfld",
	OpLdflda:   "ldflda",
	OpStfld:    "stfld",
	OpLdsfld:   "ldsfld",
	OpLdsflda:  "ldsflda",
	OpStsfld:   "stsfld",
}

// String returns the opcode mnemonic.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return "unknown"
}

// Known reports whether op is one of the opcodes this package models.
func (op Opcode) Known() bool {
	_, ok := opcodeNames[op]
	return ok
}

// OperandKind describes which operand an opcode carries.
type OperandKind byte

const (
	OperandNone   OperandKind = iota // no operand
	OperandField                     // *FieldRef
	OperandMethod                    // *MethodRef
	OperandInt32                     // int32
	OperandString                    // string
)

// OperandKindOf returns the operand kind carried by op.
func OperandKindOf(op Opcode) OperandKind {
	switch op {
	case OpLdfld, OpLdflda, OpStfld, OpLdsfld, OpLdsflda, OpStsfld:
		return OperandField
	case OpCall, OpCallvirt, OpNewobj:
		return OperandMethod
	case OpLdcI4:
		return OperandInt32
	case OpLdstr:
		return OperandString
	default:
		return OperandNone
	}
}
