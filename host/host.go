package host

import (
	"slices"

	"github.com/wippyai/modcompat/cil"
)

// Interface is the public surface of the host application.
type Interface struct {
	Assemblies []*Assembly `toml:"assembly"`
}

// Assembly is one host assembly and the types it exposes.
type Assembly struct {
	Name  string  `toml:"name"`
	Types []*Type `toml:"type"`
}

// Type is a host type and its public methods.
type Type struct {
	FullName string   `toml:"name"`
	Methods  []Method `toml:"method"`
}

// Method is a public host method.
type Method struct {
	Name       string   `toml:"name"`
	ReturnType string   `toml:"returns"`
	Params     []string `toml:"params"`
	Static     bool     `toml:"static"`
}

// FindType returns the assembly and type with the given full name.
func (i *Interface) FindType(fullName string) (*Assembly, *Type, bool) {
	for _, asm := range i.Assemblies {
		for _, t := range asm.Types {
			if t.FullName == fullName {
				return asm, t, true
			}
		}
	}
	return nil, nil, false
}

// FindMethod returns a reference to the named method of the named type.
// Overloads are not distinguished; the first declared method wins.
func (i *Interface) FindMethod(typeName, methodName string) (*cil.MethodRef, bool) {
	asm, t, ok := i.FindType(typeName)
	if !ok {
		return nil, false
	}
	idx := slices.IndexFunc(t.Methods, func(m Method) bool { return m.Name == methodName })
	if idx < 0 {
		return nil, false
	}
	m := t.Methods[idx]
	ret := m.ReturnType
	if ret == "" {
		ret = cil.VoidType
	}
	return &cil.MethodRef{
		DeclaringType: cil.TypeRef{Scope: asm.Name, FullName: t.FullName},
		Name:          m.Name,
		ReturnType:    ret,
		Params:        slices.Clone(m.Params),
		HasThis:       !m.Static,
	}, true
}

// AssemblyNames returns the names of all host assemblies.
func (i *Interface) AssemblyNames() []string {
	names := make([]string, 0, len(i.Assemblies))
	for _, asm := range i.Assemblies {
		names = append(names, asm.Name)
	}
	return names
}
