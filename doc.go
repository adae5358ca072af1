// Package modcompat keeps compiled extension modules working after the host
// application changes the shape of its public interface.
//
// It inspects the instruction stream of a mod and rewrites stale references,
// such as a field that became a property, into equivalent instructions
// against the host's current interface.
//
// # Architecture Overview
//
//	modcompat/
//	├── cil/          Instruction model, method body editor, CBOR codec
//	├── rewrite/      Rewriter contract, field rewriter base, accessor convention
//	├── rewriters/    Concrete rewriters for known host changes
//	├── host/         Host interface shape and platform assembly map
//	├── engine/       Driver applying rewriters to whole modules
//	├── config/       modcompat.toml configuration
//	├── errors/       Structured error types for debugging
//	└── cmd/modcompat Command-line rewriter
//
// # Quick Start
//
// Rewrite a module for a Linux host:
//
//	reg, _ := rewriters.NewRegistry()
//	eng, err := engine.New(engine.Config{
//	    Registry:    reg,
//	    AssemblyMap: host.StardewValley(host.Linux),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := eng.Rewrite(ctx, mod)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, line := range res.Summary() {
//	    fmt.Println(line)
//	}
//
// # Rewriting Model
//
// Every instruction of every method is offered to each registered rewriter.
// A rewriter's matcher is a pure predicate over the instruction, its operand
// and the platform flag; on a match its action replaces the instruction in
// place. Field-to-property rewrites are one-for-one: a static load becomes a
// call to get_<name>, a static store a call to set_<name>, so the evaluation
// stack is unchanged and no neighbouring instruction moves.
//
// A missing accessor on the host is fatal for the module. Skipping it would
// leave the mod broken without a diagnostic.
package modcompat
