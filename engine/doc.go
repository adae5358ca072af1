// Package engine applies rewriters to whole modules.
//
// The engine walks every method body of a module, offers each instruction to
// the registered rewriters in order, and records what changed:
//
//	eng, err := engine.New(engine.Config{Registry: reg, AssemblyMap: amap, Strict: true})
//	res, err := eng.Rewrite(ctx, mod)
//	// res.Summary(): ["rewrote 2 uses of the Game1.activeClickableMenu field"]
//
// # Platform Changes
//
// Before rewriting, references to assemblies that belong to another
// platform's build of the host (PlatformAssemblyMap.RemoveNames) are
// retargeted to the current host's assemblies, and rewriters are told the
// module's platform changed.
//
// # Iteration Contract
//
//  1. Instructions are visited in source order, method by method.
//  2. The instruction list is snapshotted per method; instructions a
//     rewriter inserts are never revisited.
//  3. The first matching rewriter handles an instruction.
//  4. Any rewrite error aborts the module.
//
// In strict mode, one-for-one replacements must keep the stack effect of the
// instruction they replace.
//
// # Concurrency
//
// An Engine holds no per-module state. Distinct modules may be rewritten from
// different goroutines; one module must be rewritten by a single goroutine.
package engine
