package cil

import (
	"slices"
)

// Module is a loaded extension module: its assembly references, imported
// member references, and the types it defines.
type Module struct {
	Name         string
	AssemblyRefs []string
	MemberRefs   []*MethodRef
	Types        []*TypeDef

	refIndex map[string]*MethodRef
}

// TypeDef is a type defined by the module.
type TypeDef struct {
	FullName string
	Methods  []*MethodDef
}

// MethodDef is a method with an optional body (abstract and extern methods
// have none).
type MethodDef struct {
	Name string
	Body *MethodBody
}

// MethodBody is the ordered instruction sequence of a method.
type MethodBody struct {
	Instructions []*Instruction
}

// NewBody creates a method body from instructions.
func NewBody(instrs ...*Instruction) *MethodBody {
	return &MethodBody{Instructions: instrs}
}

// Len returns the number of instructions.
func (b *MethodBody) Len() int {
	return len(b.Instructions)
}

// References reports whether the module references the named assembly.
func (m *Module) References(assembly string) bool {
	return slices.Contains(m.AssemblyRefs, assembly)
}

// AddAssemblyRef adds an assembly reference if it is not present yet.
func (m *Module) AddAssemblyRef(assembly string) {
	if assembly == "" || m.References(assembly) {
		return
	}
	m.AssemblyRefs = append(m.AssemblyRefs, assembly)
}

// ImportMethod imports a method reference from another assembly into the
// module's reference space. The returned pointer is the module's canonical
// reference: importing an equal method twice returns the same pointer.
func (m *Module) ImportMethod(ref *MethodRef) *MethodRef {
	m.ensureIndex()
	key := ref.Key()
	if existing, ok := m.refIndex[key]; ok {
		return existing
	}

	imported := &MethodRef{
		DeclaringType: ref.DeclaringType,
		Name:          ref.Name,
		ReturnType:    ref.ReturnType,
		Params:        slices.Clone(ref.Params),
		HasThis:       ref.HasThis,
	}
	m.AddAssemblyRef(imported.DeclaringType.Scope)
	m.MemberRefs = append(m.MemberRefs, imported)
	m.refIndex[key] = imported
	return imported
}

func (m *Module) ensureIndex() {
	if m.refIndex != nil {
		return
	}
	m.refIndex = make(map[string]*MethodRef, len(m.MemberRefs))
	for _, ref := range m.MemberRefs {
		if _, ok := m.refIndex[ref.Key()]; !ok {
			m.refIndex[ref.Key()] = ref
		}
	}
}

// RetargetAssembly replaces every reference to assembly from with to, in the
// assembly reference table and in every type scope of every operand. It
// returns the number of operand scopes changed.
func (m *Module) RetargetAssembly(from, to string) int {
	if from == to {
		return 0
	}
	idx := slices.Index(m.AssemblyRefs, from)
	if idx < 0 {
		return 0
	}
	if m.References(to) {
		m.AssemblyRefs = slices.Delete(m.AssemblyRefs, idx, idx+1)
	} else {
		m.AssemblyRefs[idx] = to
	}

	changed := 0
	retarget := func(t *TypeRef) {
		if t.Scope == from {
			t.Scope = to
			changed++
		}
	}

	seen := make(map[any]bool)
	for _, ref := range m.MemberRefs {
		seen[ref] = true
		retarget(&ref.DeclaringType)
	}
	_ = m.ForEachMethod(func(_ *TypeDef, md *MethodDef) error {
		for _, instr := range md.Body.Instructions {
			switch op := instr.Operand.(type) {
			case *FieldRef:
				if !seen[op] {
					seen[op] = true
					retarget(&op.DeclaringType)
				}
			case *MethodRef:
				if !seen[op] {
					seen[op] = true
					retarget(&op.DeclaringType)
				}
			}
		}
		return nil
	})
	m.refIndex = nil
	return changed
}

// ForEachMethod calls fn for every method with a body, in declaration order.
// Iteration stops at the first error.
func (m *Module) ForEachMethod(fn func(t *TypeDef, md *MethodDef) error) error {
	for _, t := range m.Types {
		for _, md := range t.Methods {
			if md.Body == nil {
				continue
			}
			if err := fn(t, md); err != nil {
				return err
			}
		}
	}
	return nil
}

// InstructionCount returns the number of instructions in all method bodies.
func (m *Module) InstructionCount() int {
	n := 0
	_ = m.ForEachMethod(func(_ *TypeDef, md *MethodDef) error {
		n += md.Body.Len()
		return nil
	})
	return n
}
