// Package compiler wires components A-F (spec §2) behind a single
// CompilerState facade, the way a real build driver would: one InternTable,
// one Layout, one Analyzer, one Evaluator, one Resolver, all pointed at each
// other through the interface boundaries those packages declare (spec §5's
// "handles themselves owned by the process-wide compiler state"). It is the
// concrete thing cmd/clayic and internal/replcore drive, and the integration
// surface for spec §8's end-to-end scenarios; this package's tests cover E1
// and a type-dispatch stand-in for E2.
//
// CompilerState is not goroutine-safe: the invocation table, intern table,
// and the module's symbol tables are process-wide mutable, single-writer
// state (spec §5), matching how the teacher documents its own Environment
// as non-shared.
package compiler

import (
	"github.com/clayic/clayic/internal/analyzer"
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/codegeniface"
	"github.com/clayic/clayic/internal/evaluator"
	"github.com/clayic/clayic/internal/invoke"
	"github.com/clayic/clayic/internal/loaderiface"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// defaultStackBytes is the Evaluator's bump-allocator capacity for a single
// CompilerState; large enough for the synthetic programs the CLI/REPL/tests
// build, since no real module graph here ever needs more.
const defaultStackBytes = 1 << 20

// Target describes the handful of data-layout facts spec §6 says the
// backend would otherwise supply, surfaced here as the SPEC_FULL §3 "config
// / manifest" ambient concern (read from YAML by cmd/clayic).
type Target struct {
	PointerSize          int  `yaml:"pointerSize"` // bytes
	DefaultIntegerBits   int  `yaml:"defaultIntegerBits"`
	DefaultIntegerSigned bool `yaml:"defaultIntegerSigned"`
	DefaultFloatBits     int  `yaml:"defaultFloatBits"`
}

// DefaultTarget is a 64-bit little-endian host target: 8-byte pointers,
// Int64/Float64 defaults.
func DefaultTarget() Target {
	return Target{PointerSize: 8, DefaultIntegerBits: 64, DefaultIntegerSigned: true, DefaultFloatBits: 64}
}

// CompilerState owns one compilation's worth of process-wide state (spec
// §5): the type-interning table, the target layout, the single root module,
// and the three mutually-referencing engines (Analyzer, Evaluator,
// Resolver) spec §4 describes as a coupled triple.
type CompilerState struct {
	Target Target

	Interns *object.InternTable
	Layout  *object.Layout

	Module *loaderiface.Module
	Env    *objenv.Env

	Analyzer  *analyzer.Analyzer
	Evaluator *evaluator.Evaluator
	Resolver  *invoke.Resolver

	anAdapter invoke.AnalyzerAdapter
	evAdapter invoke.EvaluatorAdapter

	// globalVars records every GlobalVariable DefineGlobalVariable installs,
	// in declaration order, so AnalyzeGlobals has something to iterate
	// without internal/object.Module exposing a name enumeration of its own
	// (spec §6's GVarInstance output).
	globalVars []*object.GlobalVariable
}

// New builds a CompilerState around a single root module named moduleName,
// wiring the Analyzer/Evaluator/Resolver triangle (spec §5's "interface/
// trait boundary in each direction"). parser backs EvalExpr string-to-AST
// evaluation (spec §4.D/§4.E); it may be nil if the program under test never
// uses `eval`.
func New(moduleName string, target Target, parser evaluator.Parser) *CompilerState {
	interns := object.NewInternTable()
	layout := object.NewLayout(target.PointerSize)
	mod := loaderiface.NewModule(moduleName)
	env := objenv.NewModuleRoot(mod)

	cs := &CompilerState{
		Target:  target,
		Interns: interns,
		Layout:  layout,
		Module:  mod,
		Env:     env,
	}

	ev := evaluator.New(interns, layout, defaultStackBytes, nil, parser)
	an := analyzer.New(interns, layout, nil, nil)
	res := invoke.New(interns, layout, ev)

	cs.anAdapter = invoke.AnalyzerAdapter{R: res}
	cs.evAdapter = invoke.EvaluatorAdapter{R: res}

	an.Resolver = cs.anAdapter
	an.Strings = ev
	an.Patterns = ev
	ev.Resolver = cs.evAdapter

	cs.Analyzer = an
	cs.Evaluator = ev
	cs.Resolver = res
	return cs
}

// DefineProcedure installs a fresh, empty Procedure named name as a public
// global of the root module, ready to receive overloads via AddOverload
// (spec §3's Procedure, §4.B's module-global installation).
func (cs *CompilerState) DefineProcedure(name string) (*object.Procedure, error) {
	proc := &object.Procedure{Name: name}
	if err := cs.Module.Define(name, proc, true); err != nil {
		return nil, err
	}
	return proc, nil
}

// AddOverload appends ovl to proc's declaration-ordered overload list (spec
// §4.F: "candidates are always consulted in declaration order") and records
// the lexical environment its pattern variables and predicate close over.
func (cs *CompilerState) AddOverload(proc *object.Procedure, ovl *ast.Overload) {
	proc.Overloads = append(proc.Overloads, ovl)
	invoke.RegisterOverloadEnv(ovl, cs.Env)
}

// SetInterface installs proc's single interface overload (spec §4.F:
// "Interface overloads").
func (cs *CompilerState) SetInterface(proc *object.Procedure, ovl *ast.Overload) {
	proc.Interface = ovl
	invoke.RegisterOverloadEnv(ovl, cs.Env)
}

// DefineGlobal installs a plain compile-time-visible global (a record/
// variant/enum/newtype declaration, an alias, an external, a value) under
// name, for overload patterns and call expressions to resolve against.
func (cs *CompilerState) DefineGlobal(name string, value object.Object, exported bool) error {
	return cs.Module.Define(name, value, exported)
}

// DefineGlobalVariable installs a module-level mutable storage location with
// an as-yet-unanalyzed initializer (spec §3's GlobalVariable, §6's
// GVarInstance). AnalyzeGlobals later resolves Init's type.
func (cs *CompilerState) DefineGlobalVariable(name string, init ast.Expr, exported bool) (*object.GlobalVariable, error) {
	gv := &object.GlobalVariable{Name: name, Init: init}
	if err := cs.Module.Define(name, gv, exported); err != nil {
		return nil, err
	}
	cs.globalVars = append(cs.globalVars, gv)
	return gv, nil
}

// AnalyzeGlobals runs every DefineGlobalVariable-installed global's
// initializer through the Analyzer, filling in its Type and returning a
// codegeniface.GVarInstance per global in declaration order (spec §6: "For
// each GVarInstance: a resolved type and an initializer expression whose
// analysis has completed"). A global with a nil Init (an `extern`-like
// declaration with no initializer) is skipped — there is nothing for a code
// generator to emit as a GVarInstance in that case.
func (cs *CompilerState) AnalyzeGlobals() ([]*codegeniface.GVarInstance, error) {
	var out []*codegeniface.GVarInstance
	for _, gv := range cs.globalVars {
		if gv.Init == nil {
			continue
		}
		mpv, err := cs.Analyzer.AnalyzeExpr(gv.Init, cs.Env)
		if err != nil {
			return nil, err
		}
		v, ok := mpv.Single()
		if !ok {
			return nil, clayerrors.Newf(clayerrors.ANA005, "global %s's initializer must be single-valued", gv.Name)
		}
		gv.Type = v.Type
		out = append(out, &codegeniface.GVarInstance{Name: gv.Name, Type: gv.Type, Init: gv.Init})
	}
	return out, nil
}

// ExportInvoke resolves callable against argTypes (as Analyze does) and
// additionally returns the code-generator-facing InvokeExport for the entry
// that resolution matched (spec §6's per-InvokeEntry output), for callers
// that need more than the plain return-type vector Analyze gives back.
func (cs *CompilerState) ExportInvoke(callable string, argTypes []*object.Type) (*codegeniface.InvokeExport, error) {
	obj, err := objenv.SafeLookup(cs.Env, callable)
	if err != nil {
		return nil, err
	}
	result, err := cs.Analyze(callable, argTypes, nil)
	if err != nil {
		return nil, err
	}
	tempness := make([]invoke.ValueTempness, len(argTypes))
	for i := range tempness {
		tempness[i] = invoke.TempRValue
	}
	entry, err := cs.Resolver.ResolveEntry(obj, argTypes, tempness)
	if err != nil {
		return nil, err
	}
	return codegeniface.ExportInvoke(obj, entry, result), nil
}

// callExpr builds the synthetic `name(...)` call node the Resolver adapters
// need purely to resolve their Callee; the real argument values are passed
// separately since CompilerState's callers already hold analyzed/evaluated
// values rather than unparsed expressions (there is no parser in scope,
// spec §1).
func callExpr(name string) *ast.Call {
	return &ast.Call{
		Callee: &ast.NameRef{Name: name},
	}
}

// Analyze resolves callable against argTypes/isTemp through the Analyzer,
// returning the call's result shape without executing anything (spec §4.D,
// §4.F). isTemp may be nil, treating every argument as an rvalue.
func (cs *CompilerState) Analyze(callable string, argTypes []*object.Type, isTemp []bool) (*object.MultiPValue, error) {
	args := make([]*object.PValue, len(argTypes))
	for i, t := range argTypes {
		temp := true
		if isTemp != nil {
			temp = isTemp[i]
		}
		args[i] = &object.PValue{Type: t, IsTemp: temp}
	}
	return cs.anAdapter.ResolveCall(cs.Analyzer, callExpr(callable), args, cs.Env)
}

// Eval resolves callable and runs its matched overload body to completion,
// returning the computed values (spec §4.E, §4.F).
func (cs *CompilerState) Eval(callable string, args []*object.EValue) (*object.MultiEValue, error) {
	obj, err := objenv.SafeLookup(cs.Env, callable)
	if err != nil {
		return nil, err
	}
	return cs.evAdapter.ResolveCall(cs.Evaluator, obj, args, cs.Env)
}

// DefaultIntType/DefaultFloatType are small conveniences over cs.Interns for
// building argument-type keys from the CompilerState's target defaults.
func (cs *CompilerState) DefaultIntType() *object.Type {
	return cs.Interns.Integer(cs.Target.DefaultIntegerBits, cs.Target.DefaultIntegerSigned)
}

func (cs *CompilerState) DefaultFloatType() *object.Type {
	return cs.Interns.Float(cs.Target.DefaultFloatBits, false)
}

// NewIntValue builds an EValue for a literal integer argument of type t
// (int64-representable), the common case a CLI/REPL/test driver needs when
// it has no parser to produce an ast.IntLit from.
func (cs *CompilerState) NewIntValue(t *object.Type, v int64) (*object.EValue, error) {
	size := cs.Layout.Size(t)
	if size == 0 || size > 8 {
		return nil, clayerrors.Newf(clayerrors.EVA007, "%s is not a scalar integer type", t)
	}
	buf := make([]byte, size)
	u := uint64(v)
	for i := 0; i < size; i++ {
		buf[i] = byte(u >> (8 * uint(i)))
	}
	return &object.EValue{Type: t, Addr: buf}, nil
}
