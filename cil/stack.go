package cil

// VoidType is the return type name used for methods without a result.
const VoidType = "System.Void"

// StackEffect describes how an instruction changes the evaluation stack.
type StackEffect struct {
	Pops   int
	Pushes int
}

// StackEffectOf returns the stack effect of instr. The second result is false
// for instructions whose effect depends on the enclosing method (ret) or on an
// operand that is missing.
func StackEffectOf(instr *Instruction) (StackEffect, bool) {
	switch instr.OpCode {
	case OpNop:
		return StackEffect{}, true
	case OpLdarg0, OpLdnull, OpLdcI4, OpLdstr:
		return StackEffect{Pushes: 1}, true
	case OpPop:
		return StackEffect{Pops: 1}, true
	case OpDup:
		return StackEffect{Pops: 1, Pushes: 2}, true

	// Fields
	case OpLdsfld, OpLdsflda:
		return StackEffect{Pushes: 1}, true
	case OpStsfld:
		return StackEffect{Pops: 1}, true
	case OpLdfld, OpLdflda:
		return StackEffect{Pops: 1, Pushes: 1}, true
	case OpStfld:
		return StackEffect{Pops: 2}, true

	// Calls
	case OpCall, OpCallvirt:
		m, ok := instr.Method()
		if !ok {
			return StackEffect{}, false
		}
		eff := StackEffect{Pops: len(m.Params)}
		if m.HasThis {
			eff.Pops++
		}
		if m.ReturnType != "" && m.ReturnType != VoidType {
			eff.Pushes = 1
		}
		return eff, true
	case OpNewobj:
		m, ok := instr.Method()
		if !ok {
			return StackEffect{}, false
		}
		return StackEffect{Pops: len(m.Params), Pushes: 1}, true
	}
	return StackEffect{}, false
}
