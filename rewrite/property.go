package rewrite

import (
	"strings"

	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/errors"
)

// FieldToProperty rewrites accesses to a field that the host turned into a
// property with get/set accessors.
type FieldToProperty struct {
	// Type is the full name of the declaring type, e.g. "StardewValley.Game1".
	Type string
	// Field is the field name, which is also the property name.
	Field string
	// Instance selects instance field access instead of static access.
	Instance bool
}

// NounPhrase returns "<ShortType>.<Field> field".
func (p FieldToProperty) NounPhrase() string {
	short := p.Type
	if i := strings.LastIndexByte(short, '.'); i >= 0 {
		short = short[i+1:]
	}
	return short + "." + p.Field + " field"
}

// Rewriter returns p as a registrable rewriter.
func (p FieldToProperty) Rewriter() *FieldRewriter {
	return NewFieldRewriter(p.NounPhrase(), p.Match, p.Apply)
}

// Match implements FieldMatcher. The platform flag does not affect the result.
func (p FieldToProperty) Match(instr *cil.Instruction, field *cil.FieldRef, _ bool) bool {
	if p.Instance {
		if !IsInstanceField(instr) {
			return false
		}
	} else if !IsStaticField(instr) {
		return false
	}
	return field.DeclaringType.FullName == p.Type && field.Name == p.Field
}

// Apply implements FieldAction: it replaces the field access with a call to
// the matching accessor. Getter calls push the value the load pushed and
// setter calls pop the value the store popped, so the replacement is
// one-for-one.
func (p FieldToProperty) Apply(ctx *Context, instr *cil.Instruction, field *cil.FieldRef) error {
	if ctx.AssemblyMap == nil {
		return errors.NilPointer(errors.PhaseResolve, "host assembly map")
	}

	kind := instr.Access()
	name, err := AccessorName(kind, field.Name)
	if err != nil {
		return errors.WithPath(err, ctx.Path()...)
	}

	ref, ok := ctx.AssemblyMap.FindMethod(field.DeclaringType.FullName, name)
	if !ok {
		return errors.WithPath(errors.AccessorNotFound(field.DeclaringType.FullName, name), ctx.Path()...)
	}
	if ref.HasThis != kind.IsInstance() {
		want := "static"
		if kind.IsInstance() {
			want = "an instance method"
		}
		return errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Path(ctx.Path()...).
			Type(field.DeclaringType.FullName).
			Member(name).
			Detail("accessor is not %s", want).
			Build()
	}

	op := cil.OpCall
	if kind.IsInstance() {
		op = cil.OpCallvirt
	}
	call := ctx.Processor.Create(op, ctx.Module.ImportMethod(ref))
	return ctx.Processor.Replace(instr, call)
}
