package cil

import (
	"slices"

	"github.com/wippyai/modcompat/errors"
)

// Processor edits one method body in place.
//
// The processor retains a reference to the body and modifies its
// instruction slice. Callers must hold exclusive access to the body
// while editing.
type Processor struct {
	body *MethodBody
}

// NewProcessor creates a Processor over body.
func NewProcessor(body *MethodBody) *Processor {
	return &Processor{body: body}
}

// Body returns the edited body.
func (p *Processor) Body() *MethodBody {
	return p.body
}

// Create returns a new, unattached instruction.
func (p *Processor) Create(op Opcode, operand any) *Instruction {
	return NewInstruction(op, operand)
}

// IndexOf returns the position of target, or -1. Instructions are compared
// by identity.
func (p *Processor) IndexOf(target *Instruction) int {
	return slices.Index(p.body.Instructions, target)
}

// Replace swaps target for with at the same position.
func (p *Processor) Replace(target, with *Instruction) error {
	idx, err := p.find(target)
	if err != nil {
		return err
	}
	p.body.Instructions[idx] = with
	return nil
}

// InsertBefore inserts instr immediately before target.
func (p *Processor) InsertBefore(target, instr *Instruction) error {
	idx, err := p.find(target)
	if err != nil {
		return err
	}
	p.body.Instructions = slices.Insert(p.body.Instructions, idx, instr)
	return nil
}

// InsertAfter inserts instr immediately after target.
func (p *Processor) InsertAfter(target, instr *Instruction) error {
	idx, err := p.find(target)
	if err != nil {
		return err
	}
	p.body.Instructions = slices.Insert(p.body.Instructions, idx+1, instr)
	return nil
}

// Remove deletes target from the body.
func (p *Processor) Remove(target *Instruction) error {
	idx, err := p.find(target)
	if err != nil {
		return err
	}
	p.body.Instructions = slices.Delete(p.body.Instructions, idx, idx+1)
	return nil
}

func (p *Processor) find(target *Instruction) (int, error) {
	if target == nil {
		return -1, errors.NilPointer(errors.PhaseRewrite, "instruction")
	}
	idx := p.IndexOf(target)
	if idx < 0 {
		return -1, errors.NotFound(errors.PhaseRewrite, "instruction", target.String())
	}
	return idx, nil
}
