package engine

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/modcompat/cil"
	"github.com/wippyai/modcompat/errors"
	"github.com/wippyai/modcompat/host"
	"github.com/wippyai/modcompat/rewrite"
	"github.com/wippyai/modcompat/rewriters"
)

func menuField(scope, typeName string) *cil.FieldRef {
	return &cil.FieldRef{
		DeclaringType: cil.TypeRef{Scope: scope, FullName: typeName},
		Name:          "activeClickableMenu",
	}
}

func someMethod() *cil.MethodRef {
	return &cil.MethodRef{
		DeclaringType: cil.TypeRef{Scope: "TestMod", FullName: "TestMod.ModEntry"},
		Name:          "SomeMethod",
		ReturnType:    "StardewValley.Menus.IClickableMenu",
		Params:        []string{"StardewValley.Menus.IClickableMenu"},
	}
}

func testModule(scope string, instrs ...*cil.Instruction) *cil.Module {
	return &cil.Module{
		Name:         "TestMod",
		AssemblyRefs: []string{"mscorlib", scope},
		Types: []*cil.TypeDef{{
			FullName: "TestMod.ModEntry",
			Methods: []*cil.MethodDef{
				{Name: "OnUpdate", Body: cil.NewBody(instrs...)},
				{Name: "Abstract"},
			},
		}},
	}
}

func newEngine(t *testing.T, amap *host.PlatformAssemblyMap, strict bool, extra ...rewrite.Rewriter) *Engine {
	t.Helper()
	reg, err := rewriters.NewRegistry(extra...)
	require.NoError(t, err)
	eng, err := New(Config{Registry: reg, AssemblyMap: amap, Strict: strict})
	require.NoError(t, err)
	return eng
}

func TestRewrite_LoadCallStore(t *testing.T) {
	field := menuField(host.GameAssemblyUnix, rewriters.Game1Type)
	ld := cil.NewInstruction(cil.OpLdsfld, field)
	call := cil.NewInstruction(cil.OpCall, someMethod())
	st := cil.NewInstruction(cil.OpStsfld, field)
	mod := testModule(host.GameAssemblyUnix, ld, call, st)

	res, err := newEngine(t, host.StardewValley(host.Linux), true).Rewrite(context.Background(), mod)
	require.NoError(t, err)

	body := mod.Types[0].Methods[0].Body.Instructions
	require.Len(t, body, 3)
	assert.Equal(t, "call StardewValley.Game1::get_activeClickableMenu", body[0].String())
	assert.Same(t, call, body[1], "unrelated instruction must be identity-equal")
	assert.Equal(t, "call StardewValley.Game1::set_activeClickableMenu", body[2].String())

	assert.False(t, res.PlatformChanged)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 2, res.Counts["Game1.activeClickableMenu field"])
	assert.Equal(t, []string{"rewrote 2 uses of the Game1.activeClickableMenu field"}, res.Summary())
	assert.True(t, res.Changed())
}

func TestRewrite_OtherDeclaringType(t *testing.T) {
	ld := cil.NewInstruction(cil.OpLdsfld, menuField("TestMod", "TestMod.Other"))
	mod := testModule(host.GameAssemblyUnix, ld)

	res, err := newEngine(t, host.StardewValley(host.Linux), true).Rewrite(context.Background(), mod)
	require.NoError(t, err)

	body := mod.Types[0].Methods[0].Body.Instructions
	require.Len(t, body, 1)
	assert.Same(t, ld, body[0])
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Summary())
	assert.False(t, res.Changed())
	assert.Empty(t, mod.MemberRefs)
}

func TestRewrite_MissingGetter(t *testing.T) {
	amap := host.NewPlatformAssemblyMap(host.Linux, &host.Interface{Assemblies: []*host.Assembly{{
		Name: host.GameAssemblyUnix,
		Types: []*host.Type{{
			FullName: rewriters.Game1Type,
			Methods: []host.Method{
				{Name: "set_activeClickableMenu", Params: []string{"StardewValley.Menus.IClickableMenu"}, Static: true},
			},
		}},
	}}}, nil)
	ld := cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyUnix, rewriters.Game1Type))
	mod := testModule(host.GameAssemblyUnix, ld)

	res, err := newEngine(t, amap, false).Rewrite(context.Background(), mod)
	assert.Nil(t, res)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseResolve, Kind: errors.KindNotFound}))
	assert.Contains(t, err.Error(), "get_activeClickableMenu")
	assert.Contains(t, err.Error(), "TestMod.ModEntry::OnUpdate")
}

func TestRewrite_PlatformChanged(t *testing.T) {
	// built on Windows, running on Linux
	field := menuField(host.GameAssemblyWindows, rewriters.Game1Type)
	mod := testModule(host.GameAssemblyWindows, cil.NewInstruction(cil.OpLdsfld, field), cil.NewInstruction(cil.OpPop, nil))

	res, err := newEngine(t, host.StardewValley(host.Linux), true).Rewrite(context.Background(), mod)
	require.NoError(t, err)

	assert.True(t, res.PlatformChanged)
	assert.Equal(t, host.GameAssemblyUnix, field.DeclaringType.Scope)
	assert.ElementsMatch(t, []string{"mscorlib", host.GameAssemblyUnix}, mod.AssemblyRefs)

	getter, ok := mod.Types[0].Methods[0].Body.Instructions[0].Method()
	require.True(t, ok)
	assert.Equal(t, host.GameAssemblyUnix, getter.DeclaringType.Scope)
	assert.Equal(t, []string{
		"retargeted assembly references from another platform",
		"rewrote 1 use of the Game1.activeClickableMenu field",
	}, res.Summary())
}

func TestRewrite_PlatformFlagThreaded(t *testing.T) {
	var seen []bool
	recorder := rewrite.NewFieldRewriter("recorder", func(_ *cil.Instruction, _ *cil.FieldRef, platformChanged bool) bool {
		seen = append(seen, platformChanged)
		return false
	}, nil)

	mod := testModule(host.GameAssemblyWindows, cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyWindows, "X.Y")))
	_, err := newEngine(t, host.StardewValley(host.Linux), false, recorder).Rewrite(context.Background(), mod)
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, seen)
}

// expanding rewrites a field load into two instructions; the inserted
// instruction is itself a matching load and must not be revisited.
type expanding struct{}

func (expanding) NounPhrase() string { return "expanding" }

func (expanding) IsMatch(instr *cil.Instruction, _ bool) bool {
	f, ok := instr.Field()
	return ok && f.Name == "counter"
}

func (expanding) Rewrite(ctx *rewrite.Context, instr *cil.Instruction) error {
	dup := ctx.Processor.Create(cil.OpLdsfld, instr.Operand)
	return ctx.Processor.InsertAfter(instr, dup)
}

func TestRewrite_InsertedInstructionsNotRevisited(t *testing.T) {
	counter := &cil.FieldRef{DeclaringType: cil.TypeRef{FullName: "TestMod.State"}, Name: "counter"}
	mod := testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdsfld, counter))

	res, err := newEngine(t, host.StardewValley(host.Linux), true, expanding{}).Rewrite(context.Background(), mod)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts["expanding"])
	assert.Len(t, mod.Types[0].Methods[0].Body.Instructions, 2)
}

// popping replaces a field load with a pop, which breaks the stack.
type popping struct{}

func (popping) NounPhrase() string { return "popping" }

func (popping) IsMatch(instr *cil.Instruction, _ bool) bool {
	return instr.OpCode == cil.OpLdsfld
}

func (popping) Rewrite(ctx *rewrite.Context, instr *cil.Instruction) error {
	return ctx.Processor.Replace(instr, ctx.Processor.Create(cil.OpPop, nil))
}

func TestRewrite_StrictStackCheck(t *testing.T) {
	reg, err := rewrite.NewRegistry(popping{})
	require.NoError(t, err)

	ld := func() *cil.Instruction {
		return cil.NewInstruction(cil.OpLdsfld, menuField("TestMod", "TestMod.Other"))
	}

	strict, err := New(Config{Registry: reg, AssemblyMap: host.StardewValley(host.Linux), Strict: true})
	require.NoError(t, err)
	_, err = strict.Rewrite(context.Background(), testModule("x", ld()))
	assert.True(t, stderrors.Is(err, &errors.Error{Phase: errors.PhaseRewrite, Kind: errors.KindStackMismatch}))

	lax, err := New(Config{Registry: reg, AssemblyMap: host.StardewValley(host.Linux)})
	require.NoError(t, err)
	res, err := lax.Rewrite(context.Background(), testModule("x", ld()))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
}

// folding drops the instruction following a string load.
type folding struct{}

func (folding) NounPhrase() string { return "folding" }

func (folding) IsMatch(instr *cil.Instruction, _ bool) bool {
	return instr.OpCode == cil.OpLdstr
}

func (folding) Rewrite(ctx *rewrite.Context, instr *cil.Instruction) error {
	body := ctx.Processor.Body()
	idx := ctx.Processor.IndexOf(instr)
	if idx < 0 || idx+1 >= body.Len() {
		return nil
	}
	return ctx.Processor.Remove(body.Instructions[idx+1])
}

func TestRewrite_RemovedInstructionsSkipped(t *testing.T) {
	str := cil.NewInstruction(cil.OpLdstr, "menu")
	ld := cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyUnix, rewriters.Game1Type))
	ret := cil.NewInstruction(cil.OpRet, nil)
	mod := testModule(host.GameAssemblyUnix, str, ld, ret)

	res, err := newEngine(t, host.StardewValley(host.Linux), true, folding{}).Rewrite(context.Background(), mod)
	require.NoError(t, err)

	body := mod.Types[0].Methods[0].Body.Instructions
	require.Len(t, body, 2)
	assert.Same(t, str, body[0])
	assert.Same(t, ret, body[1])
	assert.Equal(t, 1, res.Counts["folding"])
	assert.Zero(t, res.Counts["Game1.activeClickableMenu field"])
}

func TestRewrite_FirstMatchWins(t *testing.T) {
	reg, err := rewrite.NewRegistry(rewriters.Game1ActiveClickableMenu(), popping{})
	require.NoError(t, err)
	eng, err := New(Config{Registry: reg, AssemblyMap: host.StardewValley(host.Linux), Strict: true})
	require.NoError(t, err)

	mod := testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyUnix, rewriters.Game1Type)))
	res, err := eng.Rewrite(context.Background(), mod)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Counts["Game1.activeClickableMenu field"])
	assert.Zero(t, res.Counts["popping"])
}

func TestRewrite_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mod := testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyUnix, rewriters.Game1Type)))
	_, err := newEngine(t, host.StardewValley(host.Linux), false).Rewrite(ctx, mod)
	assert.True(t, stderrors.Is(err, context.Canceled))
	assert.Equal(t, cil.OpLdsfld, mod.Types[0].Methods[0].Body.Instructions[0].OpCode)
}

func TestRewriteAll(t *testing.T) {
	eng := newEngine(t, host.StardewValley(host.Linux), true)
	good := testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyUnix, rewriters.Game1Type)))
	untouched := testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdfld, &cil.FieldRef{}))

	results, err := eng.RewriteAll(context.Background(), []*cil.Module{good, untouched})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 1, results[0].Total)
	assert.Zero(t, results[1].Total)

	results, err = eng.RewriteAll(context.Background(), []*cil.Module{good, nil})
	assert.Error(t, err)
	assert.Len(t, results, 1)
}

func TestRewrite_ConcurrentModules(t *testing.T) {
	eng := newEngine(t, host.StardewValley(host.Linux), true)

	const n = 8
	mods := make([]*cil.Module, n)
	for i := range mods {
		f := menuField(host.GameAssemblyUnix, rewriters.Game1Type)
		mods[i] = testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdsfld, f), cil.NewInstruction(cil.OpStsfld, f))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range mods {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = eng.Rewrite(context.Background(), mods[i])
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "module %d", i)
		assert.Len(t, mods[i].MemberRefs, 2)
	}
}

func TestNew_Validation(t *testing.T) {
	reg, err := rewriters.NewRegistry()
	require.NoError(t, err)

	_, err = New(Config{AssemblyMap: host.StardewValley(host.Linux)})
	assert.Error(t, err)
	_, err = New(Config{Registry: reg})
	assert.Error(t, err)

	eng, err := New(Config{Registry: reg, AssemblyMap: host.StardewValley(host.Linux)})
	require.NoError(t, err)
	_, err = eng.Rewrite(context.Background(), nil)
	assert.Error(t, err)
}

func TestRewrite_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	mod := testModule(host.GameAssemblyUnix, cil.NewInstruction(cil.OpLdsfld, menuField(host.GameAssemblyUnix, rewriters.Game1Type)))
	_, err := newEngine(t, host.StardewValley(host.Linux), true).Rewrite(context.Background(), mod)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("rewrote instruction").Len())
	info := logs.FilterMessage("rewrote references").All()
	require.Len(t, info, 1)
	assert.Equal(t, int64(1), info[0].ContextMap()["count"])
	assert.Equal(t, "TestMod", info[0].ContextMap()["module"])
}
