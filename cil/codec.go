package cil

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/modcompat/errors"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("cil: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireModule is the persisted form of a Module. Operands reference the
// Fields and Methods tables by index so pointer sharing survives a round trip.
type wireModule struct {
	Name         string       `cbor:"1,keyasint"`
	AssemblyRefs []string     `cbor:"2,keyasint,omitempty"`
	MemberRefs   []int        `cbor:"3,keyasint,omitempty"`
	Fields       []*FieldRef  `cbor:"4,keyasint,omitempty"`
	Methods      []*MethodRef `cbor:"5,keyasint,omitempty"`
	Types        []wireType   `cbor:"6,keyasint,omitempty"`
}

type wireType struct {
	FullName string       `cbor:"1,keyasint"`
	Methods  []wireMethod `cbor:"2,keyasint,omitempty"`
}

type wireMethod struct {
	Name    string      `cbor:"1,keyasint"`
	HasBody bool        `cbor:"2,keyasint,omitempty"`
	Body    []wireInstr `cbor:"3,keyasint,omitempty"`
}

type wireInstr struct {
	Op     uint16  `cbor:"1,keyasint"`
	Field  *int    `cbor:"2,keyasint,omitempty"`
	Method *int    `cbor:"3,keyasint,omitempty"`
	Int    *int32  `cbor:"4,keyasint,omitempty"`
	Str    *string `cbor:"5,keyasint,omitempty"`
}

type refTable struct {
	fields      []*FieldRef
	methods     []*MethodRef
	fieldIndex  map[*FieldRef]int
	methodIndex map[*MethodRef]int
}

func (t *refTable) field(f *FieldRef) int {
	if idx, ok := t.fieldIndex[f]; ok {
		return idx
	}
	idx := len(t.fields)
	t.fields = append(t.fields, f)
	t.fieldIndex[f] = idx
	return idx
}

func (t *refTable) method(m *MethodRef) int {
	if idx, ok := t.methodIndex[m]; ok {
		return idx
	}
	idx := len(t.methods)
	t.methods = append(t.methods, m)
	t.methodIndex[m] = idx
	return idx
}

// Encode serializes a module to canonical CBOR.
func Encode(m *Module) ([]byte, error) {
	if m == nil {
		return nil, errors.NilPointer(errors.PhaseEncode, "module")
	}
	refs := &refTable{
		fieldIndex:  make(map[*FieldRef]int),
		methodIndex: make(map[*MethodRef]int),
	}

	w := wireModule{
		Name:         m.Name,
		AssemblyRefs: m.AssemblyRefs,
	}
	for _, ref := range m.MemberRefs {
		w.MemberRefs = append(w.MemberRefs, refs.method(ref))
	}

	for _, t := range m.Types {
		wt := wireType{FullName: t.FullName}
		for _, md := range t.Methods {
			wm := wireMethod{Name: md.Name, HasBody: md.Body != nil}
			if md.Body != nil {
				wm.Body = make([]wireInstr, 0, md.Body.Len())
				for i, instr := range md.Body.Instructions {
					wi, err := encodeInstr(refs, instr)
					if err != nil {
						return nil, errors.WithPath(err, t.FullName, md.Name, fmt.Sprintf("IL_%04d", i))
					}
					wm.Body = append(wm.Body, wi)
				}
			}
			wt.Methods = append(wt.Methods, wm)
		}
		w.Types = append(w.Types, wt)
	}
	w.Fields = refs.fields
	w.Methods = refs.methods

	data, err := cborEncMode.Marshal(&w)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "marshal module")
	}
	return data, nil
}

func encodeInstr(refs *refTable, instr *Instruction) (wireInstr, error) {
	if instr == nil {
		return wireInstr{}, errors.NilPointer(errors.PhaseEncode, "instruction")
	}
	wi := wireInstr{Op: uint16(instr.OpCode)}
	switch v := instr.Operand.(type) {
	case nil:
	case *FieldRef:
		idx := refs.field(v)
		wi.Field = &idx
	case *MethodRef:
		idx := refs.method(v)
		wi.Method = &idx
	case int32:
		wi.Int = &v
	case string:
		wi.Str = &v
	default:
		return wireInstr{}, errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Detail("operand type %T", v).
			Build()
	}
	return wi, nil
}

// Decode deserializes a module from CBOR.
func Decode(data []byte) (*Module, error) {
	var w wireModule
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "unmarshal module")
	}

	for i, f := range w.Fields {
		if f == nil {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{"Fields"},
				fmt.Sprintf("null field reference at index %d", i))
		}
	}
	for i, mr := range w.Methods {
		if mr == nil {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{"Methods"},
				fmt.Sprintf("null method reference at index %d", i))
		}
	}

	m := &Module{
		Name:         w.Name,
		AssemblyRefs: w.AssemblyRefs,
	}
	for _, idx := range w.MemberRefs {
		if idx < 0 || idx >= len(w.Methods) {
			return nil, errors.InvalidData(errors.PhaseDecode, []string{"MemberRefs"},
				fmt.Sprintf("method index %d out of range (%d methods)", idx, len(w.Methods)))
		}
		m.MemberRefs = append(m.MemberRefs, w.Methods[idx])
	}

	for _, wt := range w.Types {
		t := &TypeDef{FullName: wt.FullName}
		for _, wm := range wt.Methods {
			md := &MethodDef{Name: wm.Name}
			if wm.HasBody {
				md.Body = &MethodBody{Instructions: make([]*Instruction, 0, len(wm.Body))}
				for i, wi := range wm.Body {
					instr, err := decodeInstr(&w, wi)
					if err != nil {
						return nil, errors.WithPath(err, wt.FullName, wm.Name, fmt.Sprintf("IL_%04d", i))
					}
					md.Body.Instructions = append(md.Body.Instructions, instr)
				}
			}
			t.Methods = append(t.Methods, md)
		}
		m.Types = append(m.Types, t)
	}
	return m, nil
}

func decodeInstr(w *wireModule, wi wireInstr) (*Instruction, error) {
	op := Opcode(wi.Op)
	if !op.Known() {
		return nil, errors.New(errors.PhaseDecode, errors.KindUnsupported).
			Value(wi.Op).
			Detail("opcode 0x%02X", wi.Op).
			Build()
	}

	instr := &Instruction{OpCode: op}
	switch OperandKindOf(op) {
	case OperandField:
		if wi.Field == nil || *wi.Field < 0 || *wi.Field >= len(w.Fields) {
			return nil, errors.InvalidData(errors.PhaseDecode, nil, op.String()+": missing or invalid field operand")
		}
		instr.Operand = w.Fields[*wi.Field]
	case OperandMethod:
		if wi.Method == nil || *wi.Method < 0 || *wi.Method >= len(w.Methods) {
			return nil, errors.InvalidData(errors.PhaseDecode, nil, op.String()+": missing or invalid method operand")
		}
		instr.Operand = w.Methods[*wi.Method]
	case OperandInt32:
		if wi.Int == nil {
			return nil, errors.InvalidData(errors.PhaseDecode, nil, op.String()+": missing int32 operand")
		}
		instr.Operand = *wi.Int
	case OperandString:
		if wi.Str == nil {
			return nil, errors.InvalidData(errors.PhaseDecode, nil, op.String()+": missing string operand")
		}
		instr.Operand = *wi.Str
	}
	return instr, nil
}
