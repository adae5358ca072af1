// Package errors provides structured error types for modcompat.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: method path, declaring type, member name, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindNotFound).
//		Path("ModEntry", "OnUpdate").
//		Type("StardewValley.Game1").
//		Member("get_activeClickableMenu").
//		Detail("host interface does not expose accessor").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.AccessorNotFound("StardewValley.Game1", "get_activeClickableMenu")
//	err := errors.StackMismatch(path, "ldsfld", "call")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
