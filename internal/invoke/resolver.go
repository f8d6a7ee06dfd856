package invoke

import (
	"github.com/clayic/clayic/internal/analyzer"
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/evaluator"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
	"github.com/clayic/clayic/internal/pattern"
)

// Resolver is the concrete overload resolver: it implements both
// analyzer.Resolver and evaluator.CallResolver over the same InvokeTable, so
// a Procedure/Record/Variant callable resolves to the identical overload
// whichever phase is asking (spec §5's Analyzer/Evaluator/Resolver
// triangle). Package invoke imports both analyzer and evaluator directly;
// only internal/compiler and its drivers sit above it in the dependency
// order (spec §2).
type Resolver struct {
	Interns *object.InternTable
	Layout  *object.Layout
	Eval    *evaluator.Evaluator

	// FinalOverloadsEnabled turns on spec §4.F's "final-overloads mode": a
	// full scan of every remaining candidate after the first match, so a
	// later non-default overload can displace an earlier default one and
	// two non-default matches are reported as ambiguous (INV002). Off by
	// default (original_source/compiler/invoketables.cpp:413 gates this
	// scan behind cst->_finalOverloadsEnabled) — resolution instead takes
	// the first tempness-compatible match in declaration order and stops.
	FinalOverloadsEnabled bool
}

// New creates a Resolver bound to a single Evaluator instance, which it uses
// both to run matched overload bodies to a value and to evaluate predicates
// during matching.
func New(interns *object.InternTable, layout *object.Layout, ev *evaluator.Evaluator) *Resolver {
	return &Resolver{Interns: interns, Layout: layout, Eval: ev}
}

func (r *Resolver) ctx() *pattern.Context {
	return &pattern.Context{Interns: r.Interns, Layout: r.Layout}
}

// evalPredicateAdapter lets the full Evaluator serve as matchInvoke's
// PredicateEvaluator: pattern evaluation (EvaluateOneStatic/
// EvaluateExprStatic) is inherited as-is, and EvaluateBool runs a predicate
// expression for real and reads back a single boolean byte.
type evalPredicateAdapter struct{ ev *evaluator.Evaluator }

func (e evalPredicateAdapter) EvaluateOneStatic(expr ast.Expr, env *objenv.Env) (object.Object, error) {
	return e.ev.EvaluateOneStatic(expr, env)
}

func (e evalPredicateAdapter) EvaluateExprStatic(expr ast.Expr, env *objenv.Env) ([]object.Object, error) {
	return e.ev.EvaluateExprStatic(expr, env)
}

func (e evalPredicateAdapter) EvaluateBool(expr ast.Expr, env *objenv.Env) (bool, error) {
	mpv, err := e.ev.EvalExpr(expr, env)
	if err != nil {
		return false, err
	}
	v, ok := mpv.Single()
	if !ok {
		return false, clayerrors.New(clayerrors.PAT002, "predicate must be single-valued")
	}
	return len(v.Addr) > 0 && v.Addr[0] != 0, nil
}

// ResolveEntry is resolveEntry's exported counterpart, the seam
// internal/codegeniface uses to fetch the already-cached InvokeEntry for a
// callable/argument-key pair once internal/compiler has driven an Analyze
// call to completion, so it can export the entry's code-generator-facing
// fields (spec §6) without duplicating the cache lookup.
func (r *Resolver) ResolveEntry(callable object.Object, argTypes []*object.Type, tempness []ValueTempness) (*InvokeEntry, error) {
	return r.resolveEntry(callable, argTypes, tempness)
}

// resolveEntry finds (or matches and caches) the InvokeEntry for callable
// against argTypes/tempness, the shared core both ResolveCall entry points
// build on (spec §4.F).
func (r *Resolver) resolveEntry(callable object.Object, argTypes []*object.Type, tempness []ValueTempness) (*InvokeEntry, error) {
	set, err := lookupInvokeSet(callable)
	if err != nil {
		return nil, err
	}
	key := tempnessKey(argTypes, tempness)
	if entry, ok := set.entries[key]; ok {
		return entry, nil
	}
	if set.evaluatingPredicate {
		return nil, clayerrors.New(clayerrors.INV003, "predicate evaluation loop")
	}
	set.evaluatingPredicate = true
	defer func() { set.evaluatingPredicate = false }()

	ctx := r.ctx()
	predEval := evalPredicateAdapter{r.Eval}

	var success *MatchSuccess
	var failures []MatchResult
	for _, o := range set.Overloads {
		if o.Code.CallByName {
			continue
		}
		res, err := matchInvoke(ctx, predEval, o, callable, argTypes)
		if err != nil {
			return nil, err
		}
		ms, ok := res.(*MatchSuccess)
		if !ok {
			failures = append(failures, res)
			continue
		}
		if !matchTempness(ms, tempness) {
			failures = append(failures, &MatchArgumentMismatch{Ovl: o, Index: -1})
			continue
		}
		setForwardedRValue(ms, tempness)

		if !r.FinalOverloadsEnabled {
			success = ms
			break
		}
		if success != nil {
			if success.Ovl.Code.IsDefault && !ms.Ovl.Code.IsDefault {
				success = ms
				continue
			}
			if ms.Ovl.Code.IsDefault {
				continue
			}
			return nil, clayerrors.Newf(clayerrors.INV002,
				"ambiguous match for %s: both %s and %s match", callable, success.Ovl.Location, ms.Ovl.Location)
		}
		success = ms
	}
	if success == nil {
		return nil, &MatchFailureError{Callable: callable, Failures: failures}
	}

	if set.Interface != nil {
		ifaceRes, err := matchInvoke(ctx, predEval, set.Interface, callable, argTypes)
		if err != nil {
			return nil, err
		}
		if _, ok := ifaceRes.(*MatchSuccess); !ok {
			return nil, &InterfaceMismatchError{Callable: callable, Interface: ifaceRes}
		}
	}

	entry := &InvokeEntry{
		Overload:              success.Ovl,
		Env:                   success.Env,
		FixedNames:            success.FixedNames,
		FixedTypes:            success.FixedTypes,
		FixedTempness:         success.FixedTempness,
		FixedForwardedRValue:  success.FixedForwardedRValue,
		VarArgName:            success.VarArgName,
		VarArgTypes:           success.VarArgTypes,
		VarArgTempness:        success.VarArgTempness,
		VarArgForwardedRValue: success.VarArgForwardedRValue,
	}
	set.entries[key] = entry
	return entry, nil
}

// --- analyzer.Resolver -----------------------------------------------------

// AnalyzerAdapter implements analyzer.Resolver by delegating to Resolver; a
// separate named type is needed because Go forbids two methods named
// ResolveCall with different signatures on the same receiver.
type AnalyzerAdapter struct{ R *Resolver }

func (a AnalyzerAdapter) ResolveCall(an *analyzer.Analyzer, call *ast.Call, args []*object.PValue, env *objenv.Env) (*object.MultiPValue, error) {
	callable, err := resolveCalleeObj(call.Callee, env)
	if err != nil {
		return nil, err
	}

	if prim, ok := callable.(*object.PrimOp); ok {
		return a.R.analyzePrimOpCall(prim, args)
	}
	if alias, ok := callable.(*object.GlobalAlias); ok {
		return a.R.analyzeAliasCall(an, alias, args)
	}

	argTypes := make([]*object.Type, len(args))
	tempness := make([]ValueTempness, len(args))
	for i, pv := range args {
		argTypes[i] = pv.Type
		if pv.IsTemp {
			tempness[i] = TempRValue
		} else {
			tempness[i] = TempLValue
		}
	}

	entry, err := a.R.resolveEntry(callable, argTypes, tempness)
	if err != nil {
		return nil, err
	}

	callEnv := objenv.NewChild(entry.Env)
	for i, name := range entry.FixedNames {
		if err := objenv.AddLocal(callEnv, name, &object.PValue{Type: entry.FixedTypes[i], IsTemp: args[i].IsTemp}); err != nil {
			return nil, err
		}
	}
	if entry.VarArgName != "" {
		values := make([]*object.PValue, len(entry.VarArgTypes))
		for i, t := range entry.VarArgTypes {
			values[i] = &object.PValue{Type: t, IsTemp: args[len(entry.FixedNames)+i].IsTemp}
		}
		if err := objenv.AddLocal(callEnv, entry.VarArgName, &object.MultiPValue{Values: values}); err != nil {
			return nil, err
		}
	}

	ctx := &analyzer.AnalysisContext{}
	body, ok := entry.Overload.Code.Body.(*ast.Block)
	if !ok {
		body = &ast.Block{Stmts: []ast.Stmt{entry.Overload.Code.Body}}
	}
	if _, err := an.AnalyzeBlock(body, callEnv, ctx); err != nil {
		return nil, err
	}
	values := make([]*object.PValue, len(ctx.Returns))
	for i, slot := range ctx.Returns {
		values[i] = &object.PValue{Type: slot.Type, IsTemp: !slot.ByRef}
	}
	return &object.MultiPValue{Values: values}, nil
}

// analyzePrimOpCall computes a primitive operator's result PValue directly
// from its operands' types, the analysis-mode counterpart of
// internal/evaluator/evaluator.go's primOpResultType (spec §4.D/§4.E share
// the same closed set of primitive shapes).
func (r *Resolver) analyzePrimOpCall(p *object.PrimOp, args []*object.PValue) (*object.MultiPValue, error) {
	if len(args) == 0 {
		return nil, clayerrors.New(clayerrors.ANA005, "primitive operator requires at least one argument")
	}
	switch p.Code {
	case object.PrimIntegerAdd, object.PrimIntegerSubtract, object.PrimIntegerMultiply,
		object.PrimIntegerAddChecked, object.PrimIntegerSubtractChecked, object.PrimIntegerMultiplyChecked,
		object.PrimIntegerDivide, object.PrimIntegerRemainder, object.PrimIntegerNegate,
		object.PrimIntegerShiftLeft, object.PrimIntegerShiftRight,
		object.PrimIntegerBitwiseAnd, object.PrimIntegerBitwiseOr, object.PrimIntegerBitwiseXor, object.PrimIntegerBitwiseNot,
		object.PrimFloatAdd, object.PrimFloatSubtract, object.PrimFloatMultiply, object.PrimFloatDivide, object.PrimFloatNegate,
		object.PrimStringConcat, object.PrimStringLiteralBytes:
		return &object.MultiPValue{Values: []*object.PValue{{Type: args[0].Type, IsTemp: true}}}, nil
	case object.PrimIntegerEqualsQ, object.PrimIntegerLesserQ, object.PrimFloatEqualsQ, object.PrimFloatLesserQ,
		object.PrimIntegerTypeQ, object.PrimFloatTypeQ, object.PrimPointerTypeQ:
		return &object.MultiPValue{Values: []*object.PValue{{Type: r.Interns.Bool(), IsTemp: true}}}, nil
	case object.PrimTypeSizeQ, object.PrimTypeAlignmentQ:
		return &object.MultiPValue{Values: []*object.PValue{{Type: r.Interns.Integer(64, false), IsTemp: true}}}, nil
	default:
		return nil, clayerrors.Newf(clayerrors.ANA005, "primitive %d needs an explicit result type from its call site", p.Code)
	}
}

// analyzeAliasCall expands a GlobalAlias call inline, re-analyzing its body
// under a fresh substitution each time (spec §3, §4.D: aliases are not
// cached across different call-site argument shapes).
func (r *Resolver) analyzeAliasCall(an *analyzer.Analyzer, alias *object.GlobalAlias, args []*object.PValue) (*object.MultiPValue, error) {
	parentEnv, _ := alias.Env.(*objenv.Env)
	child := objenv.NewChild(parentEnv)
	names := alias.Decl.Params
	for i, name := range names {
		if i >= len(args) {
			return nil, clayerrors.Newf(clayerrors.ANA005, "alias %s expects %d argument(s)", alias.Decl.Name, len(names))
		}
		if err := objenv.AddLocal(child, name, args[i]); err != nil {
			return nil, err
		}
	}
	if alias.Decl.VarParam != "" {
		if err := objenv.AddLocal(child, alias.Decl.VarParam, &object.MultiPValue{Values: args[len(names):]}); err != nil {
			return nil, err
		}
	}
	var result *object.MultiPValue
	err := an.WithoutCache(func() error {
		mpv, err := an.AnalyzeExpr(alias.Decl.Expr, child)
		if err != nil {
			return err
		}
		result = mpv
		return nil
	})
	return result, err
}

// resolveCalleeObj resolves a Call's callee position to the plain Object it
// names; like internal/evaluator's resolveCallee, only a bare name is
// supported as a compile-time callable (spec §3 calls are always by name or
// by field-access-desugared-to-name at this layer).
func resolveCalleeObj(callee ast.Expr, env *objenv.Env) (object.Object, error) {
	n, ok := callee.(*ast.NameRef)
	if !ok {
		return nil, clayerrors.New(clayerrors.ANA005, "call target must be a name")
	}
	return objenv.SafeLookup(env, n.Name)
}

// --- evaluator.CallResolver -------------------------------------------------

// EvaluatorAdapter implements evaluator.CallResolver by delegating to
// Resolver, running the matched overload's body to completion via
// evaluator.ExecBlock.
type EvaluatorAdapter struct{ R *Resolver }

func (a EvaluatorAdapter) ResolveCall(ev *evaluator.Evaluator, callable object.Object, args []*object.EValue, env *objenv.Env) (*object.MultiEValue, error) {
	argTypes := make([]*object.Type, len(args))
	tempness := make([]ValueTempness, len(args))
	for i, av := range args {
		argTypes[i] = av.Type
		// EValue carries no lvalue/rvalue tag of its own (spec §4.E values
		// are plain byte buffers); every compile-time argument is treated as
		// an rvalue for dispatch purposes, the one simplification this
		// resolver makes relative to the Analyzer's tempness-aware path
		// (see DESIGN.md).
		tempness[i] = TempRValue
	}

	entry, err := a.R.resolveEntry(callable, argTypes, tempness)
	if err != nil {
		return nil, err
	}

	callEnv := objenv.NewChild(entry.Env)
	for i, name := range entry.FixedNames {
		if err := objenv.AddLocal(callEnv, name, args[i]); err != nil {
			return nil, err
		}
	}
	if entry.VarArgName != "" {
		rest := &object.MultiEValue{Values: args[len(entry.FixedNames):]}
		if err := objenv.AddLocal(callEnv, entry.VarArgName, rest); err != nil {
			return nil, err
		}
	}

	body, ok := entry.Overload.Code.Body.(*ast.Block)
	if !ok {
		body = &ast.Block{Stmts: []ast.Stmt{entry.Overload.Code.Body}}
	}
	tag, result, err := ev.ExecBlock(body, callEnv)
	if err != nil {
		return nil, err
	}
	if tag != evaluator.ExecTerminated || result == nil {
		return nil, clayerrors.Newf(clayerrors.EVA007, "%s did not return a value", entry.Overload.Location)
	}
	return &object.MultiEValue{Values: result.Values}, nil
}
