package rewrite

import (
	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/host"
)

// Rewriter detects one stale-reference pattern and replaces it.
//
// Rewriters are stateless and can be shared across modules and goroutines.
// All mutable state is passed via Context.
type Rewriter interface {
	// NounPhrase briefly describes what the rewriter matches, e.g.
	// "Game1.activeClickableMenu field".
	NounPhrase() string

	// IsMatch reports whether instr should be rewritten. It must not have
	// side effects.
	IsMatch(instr *cil.Instruction, platformChanged bool) bool

	// Rewrite replaces a matched instruction in the enclosing method body.
	// An error is fatal for the module.
	Rewrite(ctx *Context, instr *cil.Instruction) error
}

// Context carries what a rewrite action needs beyond the instruction itself.
type Context struct {
	// Module owns the instruction and receives imported references.
	Module *cil.Module
	// Type and Method locate the instruction, for diagnostics.
	Type   *cil.TypeDef
	Method *cil.MethodDef
	// Processor edits the enclosing method body. The caller holds exclusive
	// access to the body for the duration of the call.
	Processor *cil.Processor
	// AssemblyMap resolves replacement members on the current host.
	AssemblyMap *host.PlatformAssemblyMap
	// PlatformChanged is set when the module was built against another
	// platform's build of the host.
	PlatformChanged bool
}

// NewContext creates a Context for rewriting method md of type t.
func NewContext(mod *cil.Module, t *cil.TypeDef, md *cil.MethodDef, amap *host.PlatformAssemblyMap, platformChanged bool) *Context {
	return &Context{
		Module:          mod,
		Type:            t,
		Method:          md,
		Processor:       cil.NewProcessor(md.Body),
		AssemblyMap:     amap,
		PlatformChanged: platformChanged,
	}
}

// Path returns the type and method names for diagnostics.
func (c *Context) Path() []string {
	var path []string
	if c.Type != nil {
		path = append(path, c.Type.FullName)
	}
	if c.Method != nil {
		path = append(path, c.Method.Name)
	}
	return path
}

// Handle offers instr to r: if r matches, r rewrites it. It reports whether
// the instruction was rewritten.
func Handle(r Rewriter, ctx *Context, instr *cil.Instruction) (bool, error) {
	if !r.IsMatch(instr, ctx.PlatformChanged) {
		return false, nil
	}
	if err := r.Rewrite(ctx, instr); err != nil {
		return false, err
	}
	return true, nil
}
