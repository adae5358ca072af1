package cil

import (
	"fmt"
	"strconv"
)

// TypeRef identifies a type by the assembly that defines it and its full name.
type TypeRef struct {
	Scope    string `cbor:"1,keyasint"` // defining assembly name
	FullName string `cbor:"2,keyasint"`
}

// String returns the type's full name.
func (t TypeRef) String() string {
	return t.FullName
}

// FieldRef is the operand of a field-access instruction.
type FieldRef struct {
	DeclaringType TypeRef `cbor:"1,keyasint"`
	Name          string  `cbor:"2,keyasint"`
	FieldType     string  `cbor:"3,keyasint,omitempty"`
}

// String returns "Type.Name".
func (f *FieldRef) String() string {
	return f.DeclaringType.FullName + "." + f.Name
}

// MethodRef is the operand of a call instruction.
type MethodRef struct {
	DeclaringType TypeRef  `cbor:"1,keyasint"`
	Name          string   `cbor:"2,keyasint"`
	ReturnType    string   `cbor:"3,keyasint,omitempty"` // empty means void
	Params        []string `cbor:"4,keyasint,omitempty"`
	HasThis       bool     `cbor:"5,keyasint,omitempty"`
}

// String returns "Type::Name".
func (m *MethodRef) String() string {
	return m.DeclaringType.FullName + "::" + m.Name
}

// Key identifies the method independently of its pointer.
func (m *MethodRef) Key() string {
	key := m.DeclaringType.Scope + "|" + m.DeclaringType.FullName + "::" + m.Name + "("
	for i, p := range m.Params {
		if i > 0 {
			key += ","
		}
		key += p
	}
	return key + ")" + m.ReturnType
}

// Instruction is a single operation in a method body.
type Instruction struct {
	Operand any
	OpCode  Opcode
}

// NewInstruction creates an instruction with the given operand.
func NewInstruction(op Opcode, operand any) *Instruction {
	return &Instruction{OpCode: op, Operand: operand}
}

// Field returns the field operand if this is a field-access instruction.
func (i *Instruction) Field() (*FieldRef, bool) {
	if OperandKindOf(i.OpCode) != OperandField {
		return nil, false
	}
	f, ok := i.Operand.(*FieldRef)
	return f, ok && f != nil
}

// Method returns the method operand if this is a call instruction.
func (i *Instruction) Method() (*MethodRef, bool) {
	if OperandKindOf(i.OpCode) != OperandMethod {
		return nil, false
	}
	m, ok := i.Operand.(*MethodRef)
	return m, ok && m != nil
}

// Access returns the field access kind of the instruction.
func (i *Instruction) Access() AccessKind {
	return AccessOf(i.OpCode)
}

// String renders the instruction in assembler form, e.g. "ldsfld StardewValley.Game1.activeClickableMenu".
func (i *Instruction) String() string {
	switch v := i.Operand.(type) {
	case nil:
		return i.OpCode.String()
	case *FieldRef:
		return i.OpCode.String() + " " + v.String()
	case *MethodRef:
		return i.OpCode.String() + " " + v.String()
	case int32:
		return i.OpCode.String() + " " + strconv.FormatInt(int64(v), 10)
	case string:
		return i.OpCode.String() + " " + strconv.Quote(v)
	default:
		return fmt.Sprintf("%s %v", i.OpCode, v)
	}
}

// AccessKind classifies field-access instructions.
type AccessKind byte

const (
	AccessNone AccessKind = iota
	LoadStatic
	StoreStatic
	LoadInstance
	StoreInstance
)

// AccessOf derives the access kind from an opcode. Address loads
// (ldsflda, ldflda) are AccessNone: they have no accessor equivalent.
func AccessOf(op Opcode) AccessKind {
	switch op {
	case OpLdsfld:
		return LoadStatic
	case OpStsfld:
		return StoreStatic
	case OpLdfld:
		return LoadInstance
	case OpStfld:
		return StoreInstance
	default:
		return AccessNone
	}
}

// IsStatic reports whether the access targets a static field.
func (k AccessKind) IsStatic() bool {
	return k == LoadStatic || k == StoreStatic
}

// IsInstance reports whether the access targets an instance field.
func (k AccessKind) IsInstance() bool {
	return k == LoadInstance || k == StoreInstance
}

// IsLoad reports whether the access reads the field.
func (k AccessKind) IsLoad() bool {
	return k == LoadStatic || k == LoadInstance
}

// IsStore reports whether the access writes the field.
func (k AccessKind) IsStore() bool {
	return k == StoreStatic || k == StoreInstance
}

func (k AccessKind) String() string {
	switch k {
	case LoadStatic:
		return "load-static"
	case StoreStatic:
		return "store-static"
	case LoadInstance:
		return "load-instance"
	case StoreInstance:
		return "store-instance"
	default:
		return "none"
	}
}
