// Package cil provides an in-memory model of compiled method bodies for
// extension modules: opcodes, operands, member references, and an editor for
// rewriting instruction sequences in place.
//
// # Instructions
//
// An Instruction is an opcode plus at most one operand. Field-access opcodes
// carry a *FieldRef, call opcodes a *MethodRef:
//
//	ld := cil.NewInstruction(cil.OpLdsfld, &cil.FieldRef{
//	    DeclaringType: cil.TypeRef{Scope: "Stardew Valley", FullName: "StardewValley.Game1"},
//	    Name:          "activeClickableMenu",
//	})
//
// Instructions are owned by the module and compared by identity. Rewriters
// never copy them; they swap pointers inside a MethodBody through a Processor.
//
// # Editing
//
//	p := cil.NewProcessor(method.Body)
//	call := p.Create(cil.OpCall, getter)
//	if err := p.Replace(ld, call); err != nil {
//	    return err
//	}
//
// # Wire format
//
// Modules are persisted as canonical CBOR (Encode/Decode). Operands are tagged
// on the wire and member references are shared through Module.MemberRefs so
// that repeated references decode to the same pointer.
package cil
