// Package rewrite defines the rewriter contract used to adapt extension
// modules to a changed host interface.
//
// A Rewriter pairs a matcher, which decides whether one instruction is a stale
// reference, with a rewrite action, which replaces it in place with an
// equivalent instruction against the host's current interface. Each rewriter
// carries a noun phrase that identifies what it targets in diagnostics:
//
//	rewrote 3 uses of the Game1.activeClickableMenu field
//
// Rewriters are stateless values. All per-invocation state (the module, the
// editor over the enclosing method body, the platform flag, and the host
// assembly map) is passed through Context, so one rewriter can serve any
// number of modules.
//
// # Field rewriters
//
// FieldRewriter narrows matching to field-access instructions and hands the
// matcher and action the instruction's *cil.FieldRef operand. FieldToProperty
// is the field rewriter for a field that became a property: loads become
// getter calls and stores become setter calls, resolved by the get_/set_
// accessor naming convention.
package rewrite
