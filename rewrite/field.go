package rewrite

import (
	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/errors"
)

// FieldMatcher decides whether a field-access instruction should be rewritten.
type FieldMatcher func(instr *cil.Instruction, field *cil.FieldRef, platformChanged bool) bool

// FieldAction rewrites a matched field-access instruction.
type FieldAction func(ctx *Context, instr *cil.Instruction, field *cil.FieldRef) error

// FieldRewriter is a Rewriter restricted to field-access instructions.
type FieldRewriter struct {
	match      FieldMatcher
	rewrite    FieldAction
	nounPhrase string
}

// NewFieldRewriter creates a field rewriter from a matcher and an action.
func NewFieldRewriter(nounPhrase string, match FieldMatcher, rewrite FieldAction) *FieldRewriter {
	return &FieldRewriter{
		nounPhrase: nounPhrase,
		match:      match,
		rewrite:    rewrite,
	}
}

// NounPhrase implements Rewriter.
func (r *FieldRewriter) NounPhrase() string {
	return r.nounPhrase
}

// IsMatch implements Rewriter. Instructions without a field operand never match.
func (r *FieldRewriter) IsMatch(instr *cil.Instruction, platformChanged bool) bool {
	field, ok := instr.Field()
	if !ok {
		return false
	}
	return r.match(instr, field, platformChanged)
}

// Rewrite implements Rewriter.
func (r *FieldRewriter) Rewrite(ctx *Context, instr *cil.Instruction) error {
	field, ok := instr.Field()
	if !ok {
		return errors.New(errors.PhaseRewrite, errors.KindInvalidInput).
			Path(ctx.Path()...).
			Detail("%s is not a field access", instr).
			Build()
	}
	return r.rewrite(ctx, instr, field)
}

// IsStaticField reports whether instr reads or writes a static field.
func IsStaticField(instr *cil.Instruction) bool {
	return instr.Access().IsStatic()
}

// IsInstanceField reports whether instr reads or writes an instance field.
func IsInstanceField(instr *cil.Instruction) bool {
	return instr.Access().IsInstance()
}
