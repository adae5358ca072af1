package engine

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/errors"
	"github.com/wippyai/modcompat/host"
	"github.com/wippyai/modcompat/rewrite"
)

// Config configures an Engine.
type Config struct {
	// Registry holds the rewriters to apply, in priority order.
	Registry *rewrite.Registry
	// AssemblyMap describes the current host.
	AssemblyMap *host.PlatformAssemblyMap
	// Strict verifies that every one-for-one replacement keeps the
	// replaced instruction's stack effect.
	Strict bool
}

// Engine applies a set of rewriters to modules.
//
// An Engine holds no per-module state: distinct modules may be rewritten
// concurrently. A single module must not be rewritten by two goroutines at
// once.
type Engine struct {
	registry *rewrite.Registry
	amap     *host.PlatformAssemblyMap
	strict   bool
}

// New creates an Engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, errors.NilPointer(errors.PhaseConfig, "rewriter registry")
	}
	if cfg.AssemblyMap == nil {
		return nil, errors.NilPointer(errors.PhaseConfig, "host assembly map")
	}
	return &Engine{
		registry: cfg.Registry,
		amap:     cfg.AssemblyMap,
		strict:   cfg.Strict,
	}, nil
}

// Rewrite applies every registered rewriter to mod in place.
//
// Every instruction present when a method is first visited is offered to the
// rewriters in registration order; the first rewriter that matches rewrites
// it and the rest are skipped. Instructions inserted by a rewriter are never
// revisited, and snapshot instructions an earlier rewrite removed from the
// body are skipped. Any rewrite error aborts the module.
func (e *Engine) Rewrite(ctx context.Context, mod *cil.Module) (*Result, error) {
	if mod == nil {
		return nil, errors.NilPointer(errors.PhaseRewrite, "module")
	}
	log := Logger().With(zap.String("module", mod.Name))

	res := newResult(mod, e.registry)
	res.PlatformChanged = e.retarget(mod, log)

	err := mod.ForEachMethod(func(t *cil.TypeDef, md *cil.MethodDef) error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.PhaseRewrite, errors.KindCanceled, err, "rewrite canceled")
		}
		return e.rewriteMethod(rewrite.NewContext(mod, t, md, e.amap, res.PlatformChanged), res, log)
	})
	if err != nil {
		log.Error("rewrite failed", zap.Error(err))
		return nil, err
	}

	for _, rw := range e.registry.All() {
		if n := res.Counts[rw.NounPhrase()]; n > 0 {
			log.Info("rewrote references",
				zap.String("rewriter", rw.NounPhrase()),
				zap.Int("count", n))
		}
	}
	return res, nil
}

// RewriteAll rewrites modules in order and stops at the first error.
func (e *Engine) RewriteAll(ctx context.Context, mods []*cil.Module) ([]*Result, error) {
	results := make([]*Result, 0, len(mods))
	for _, mod := range mods {
		res, err := e.Rewrite(ctx, mod)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// retarget rewrites references to another platform's host assemblies and
// reports whether any were found.
func (e *Engine) retarget(mod *cil.Module, log *zap.Logger) bool {
	changed := false
	for _, name := range slices.Clone(mod.AssemblyRefs) {
		if !e.amap.IsRemoved(name) {
			continue
		}
		changed = true
		target, ok := e.amap.TargetFor(name)
		if !ok {
			continue
		}
		n := mod.RetargetAssembly(name, target)
		log.Debug("retargeted assembly reference",
			zap.String("from", name),
			zap.String("to", target),
			zap.Int("references", n))
	}
	return changed
}

func (e *Engine) rewriteMethod(rctx *rewrite.Context, res *Result, log *zap.Logger) error {
	body := rctx.Processor.Body()
	snapshot := slices.Clone(body.Instructions)

	for offset, instr := range snapshot {
		pos := rctx.Processor.IndexOf(instr)
		if pos < 0 {
			// removed by an earlier rewrite in this method
			continue
		}
		length := body.Len()

		for _, rw := range e.registry.All() {
			ok, err := rewrite.Handle(rw, rctx, instr)
			if err != nil {
				return withPath(err, rctx.Path())
			}
			if !ok {
				continue
			}
			if e.strict {
				if err := checkStack(rctx, instr, pos, length); err != nil {
					return err
				}
			}

			res.record(rw.NounPhrase())
			log.Debug("rewrote instruction",
				zap.String("rewriter", rw.NounPhrase()),
				zap.String("type", rctx.Type.FullName),
				zap.String("method", rctx.Method.Name),
				zap.Int("offset", offset),
				zap.Stringer("from", instr))
			break
		}
	}
	return nil
}

// checkStack verifies a one-for-one replacement at pos kept the stack effect
// of the original instruction. Multi-instruction rewrites are not checked.
func checkStack(rctx *rewrite.Context, original *cil.Instruction, pos, length int) error {
	body := rctx.Processor.Body()
	if pos < 0 || body.Len() != length {
		return nil
	}
	replacement := body.Instructions[pos]
	before, ok := cil.StackEffectOf(original)
	if !ok {
		return nil
	}
	after, ok := cil.StackEffectOf(replacement)
	if !ok || before != after {
		return errors.StackMismatch(rctx.Path(), original.String(), replacement.String())
	}
	return nil
}

func withPath(err error, path []string) error {
	if e, ok := err.(*errors.Error); ok && len(e.Path) > 0 {
		return err
	}
	return errors.WithPath(err, path...)
}

// Result reports what a rewrite changed.
type Result struct {
	Module          *cil.Module
	Counts          map[string]int
	order           []string
	Total           int
	PlatformChanged bool
}

func newResult(mod *cil.Module, reg *rewrite.Registry) *Result {
	res := &Result{
		Module: mod,
		Counts: make(map[string]int, reg.Len()),
	}
	for _, rw := range reg.All() {
		res.order = append(res.order, rw.NounPhrase())
	}
	return res
}

func (r *Result) record(nounPhrase string) {
	r.Counts[nounPhrase]++
	r.Total++
}

// Changed reports whether the module was modified.
func (r *Result) Changed() bool {
	return r.Total > 0 || r.PlatformChanged
}

// Summary returns one line per rewriter that changed something, in
// registration order, e.g. "rewrote 2 uses of the Game1.activeClickableMenu field".
func (r *Result) Summary() []string {
	var lines []string
	if r.PlatformChanged {
		lines = append(lines, "retargeted assembly references from another platform")
	}
	for _, phrase := range r.order {
		n := r.Counts[phrase]
		if n == 0 {
			continue
		}
		noun := "uses"
		if n == 1 {
			noun = "use"
		}
		lines = append(lines, fmt.Sprintf("rewrote %d %s of the %s", n, noun, phrase))
	}
	return lines
}
