package invoke

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
	"github.com/clayic/clayic/internal/pattern"
)

// MatchResult is one outcome of trying a single overload against a call
// site, either a MatchSuccess or one of the rejection reasons aggregated
// into a MatchFailureError (spec §4.F, §7: "tried N candidates, none
// matched").
type MatchResult interface {
	Overload() *ast.Overload
	isMatchResult()
}

// MatchSuccess is a fully-bound, predicate-satisfied overload match.
type MatchSuccess struct {
	Ovl           *ast.Overload
	Env           *objenv.Env // staticEnv: overload's defining scope, child with every pattern variable bound
	FixedNames    []string
	FixedTypes    []*object.Type
	VarArgName    string // "" if the overload has no variadic formal
	VarArgTypes   []*object.Type
	VarArgTempness ast.Tempness
	FixedTempness  []ast.Tempness

	// FixedForwardedRValue/VarArgForwardedRValue record, per argument, whether
	// a TempForward-policy parameter actually received an rvalue at this call
	// site (spec §4.F, §6: "the forwarded-rvalue flag vector", testable
	// property 8). Populated by the resolver once tempness has been checked,
	// since matchInvoke itself only knows the declared policy, not the call
	// site's actual argument tempness.
	FixedForwardedRValue []bool
	VarArgForwardedRValue []bool
}

func (m *MatchSuccess) Overload() *ast.Overload { return m.Ovl }
func (*MatchSuccess) isMatchResult()             {}

// MatchCallableMismatch means the callable itself didn't unify against the
// overload's target pattern (e.g. a record constructor overload declared
// for a different record).
type MatchCallableMismatch struct{ Ovl *ast.Overload }

func (m *MatchCallableMismatch) Overload() *ast.Overload { return m.Ovl }
func (*MatchCallableMismatch) isMatchResult()            {}

// MatchArityMismatch means the argument count can't possibly satisfy this
// overload's fixed/variadic parameter shape.
type MatchArityMismatch struct {
	Ovl      *ast.Overload
	Got      int
	Expected int // minimum required; exact if the overload is not variadic
}

func (m *MatchArityMismatch) Overload() *ast.Overload { return m.Ovl }
func (*MatchArityMismatch) isMatchResult()            {}

// MatchArgumentMismatch means one fixed-position argument's type failed to
// unify against that parameter's pattern (Index is that argument's
// position), or, with Index -1 and a nil Type, that the resolver rejected
// the call site's argument tempness against the overload's tempness policy.
type MatchArgumentMismatch struct {
	Ovl   *ast.Overload
	Index int
	Type  *object.Type
}

func (m *MatchArgumentMismatch) Overload() *ast.Overload { return m.Ovl }
func (*MatchArgumentMismatch) isMatchResult()            {}

// MatchVarArgMismatch means the trailing variadic argument types failed to
// unify against the overload's variadic pattern.
type MatchVarArgMismatch struct{ Ovl *ast.Overload }

func (m *MatchVarArgMismatch) Overload() *ast.Overload { return m.Ovl }
func (*MatchVarArgMismatch) isMatchResult()            {}

// MatchPredicateFalse means unification succeeded but the overload's
// compile-time boolean predicate evaluated to false.
type MatchPredicateFalse struct{ Ovl *ast.Overload }

func (m *MatchPredicateFalse) Overload() *ast.Overload { return m.Ovl }
func (*MatchPredicateFalse) isMatchResult()            {}

// PredicateEvaluator runs an overload's predicate expression to a concrete
// boolean, the sliver of the full compile-time Evaluator matchInvoke needs
// beyond plain pattern evaluation (spec §4.F: "an optional compile-time
// boolean predicate over the pattern variables it bound").
type PredicateEvaluator interface {
	pattern.StaticEvaluator
	EvaluateBool(expr ast.Expr, env *objenv.Env) (bool, error)
}

// matchInvoke tries one overload against a callable + argument-type tuple,
// mirroring matchinvoke.cpp's matchInvoke: unify the callable against the
// target pattern, check arity, unify each fixed argument and (if present)
// the variadic tail, deref every pattern variable to a concrete object, and
// finally evaluate the predicate (spec §4.F).
func matchInvoke(ctx *pattern.Context, ev PredicateEvaluator, o *ast.Overload, callable object.Object, argTypes []*object.Type) (MatchResult, error) {
	st, err := patternsFor(ctx, ev, o)
	if err != nil {
		return nil, err
	}
	defer st.reset()

	ok, err := ctx.UnifyObjPattern(callable, st.target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &MatchCallableMismatch{Ovl: o}, nil
	}

	fixedCount := len(o.Code.FormalArgs)
	if o.Code.HasVarArg {
		fixedCount--
	}
	if o.Code.HasVarArg {
		if len(argTypes) < fixedCount {
			return &MatchArityMismatch{Ovl: o, Got: len(argTypes), Expected: fixedCount}, nil
		}
	} else if len(argTypes) != fixedCount {
		return &MatchArityMismatch{Ovl: o, Got: len(argTypes), Expected: fixedCount}, nil
	}

	fixedIdx := 0
	for i, fa := range o.Code.FormalArgs {
		if fa.VarArg {
			continue
		}
		if st.args[i] == nil {
			fixedIdx++
			continue
		}
		ok, err := ctx.UnifyObjPattern(argTypes[fixedIdx], st.args[i])
		if err != nil {
			return nil, err
		}
		if !ok {
			return &MatchArgumentMismatch{Ovl: o, Index: fixedIdx, Type: argTypes[fixedIdx]}, nil
		}
		fixedIdx++
	}

	var varArgTypes []*object.Type
	if o.Code.HasVarArg {
		varArgTypes = argTypes[fixedCount:]
		if st.varArg != nil {
			objs := make([]object.Object, len(varArgTypes))
			for i, t := range varArgTypes {
				objs[i] = t
			}
			ok, err := ctx.UnifyMultiStatics(st.varArg, objs)
			if err != nil {
				return nil, err
			}
			if !ok {
				return &MatchVarArgMismatch{Ovl: o}, nil
			}
		}
	}

	staticEnv := objenv.NewChild(st.env)
	for i, cell := range st.cells {
		obj, ok := ctx.DerefDeep(cell)
		if !ok {
			return nil, clayerrors.Newf(clayerrors.PAT001, "unbound pattern variable in overload at %s", o.Location)
		}
		name := o.Code.PatternVars[patternVarIndexOf(o, false, i)].Name
		if err := objenv.AddLocal(staticEnv, name, obj); err != nil {
			return nil, err
		}
	}
	for i, cell := range st.multiCells {
		objs, ok := ctx.DerefDeepMulti(cell)
		if !ok {
			return nil, clayerrors.Newf(clayerrors.PAT001, "unbound multi pattern variable in overload at %s", o.Location)
		}
		name := o.Code.PatternVars[patternVarIndexOf(o, true, i)].Name
		list := make([]object.Object, len(objs))
		copy(list, objs)
		if err := objenv.AddLocal(staticEnv, name, &staticMultiValue{values: list}); err != nil {
			return nil, err
		}
	}

	if o.Code.Predicate != nil {
		b, err := ev.EvaluateBool(o.Code.Predicate, staticEnv)
		if err != nil {
			return nil, err
		}
		if !b {
			return &MatchPredicateFalse{Ovl: o}, nil
		}
	}

	success := &MatchSuccess{Ovl: o, Env: staticEnv}
	for i, fa := range o.Code.FormalArgs {
		if fa.VarArg {
			success.VarArgName = fa.Name
			success.VarArgTypes = varArgTypes
			success.VarArgTempness = fa.Tempness
			continue
		}
		success.FixedNames = append(success.FixedNames, fa.Name)
		success.FixedTypes = append(success.FixedTypes, argTypes[len(success.FixedNames)-1])
		success.FixedTempness = append(success.FixedTempness, fa.Tempness)
	}
	return success, nil
}

// patternVarIndexOf maps the i-th single/multi cell back to its declaring
// PatternVar index, since buildOverloadPatterns appends cells in PatternVars
// declaration order split by IsMulti.
func patternVarIndexOf(o *ast.Overload, multi bool, i int) int {
	count := 0
	for idx, pv := range o.Code.PatternVars {
		if pv.IsMulti == multi {
			if count == i {
				return idx
			}
			count++
		}
	}
	return -1
}

// staticMultiValue is the object a multi-valued pattern variable is bound to
// in a match's staticEnv: a plain ordered list of the objects it deref'd to.
type staticMultiValue struct {
	values []object.Object
}

func (*staticMultiValue) ObjKind() object.Kind { return object.KindMultiPattern }
func (s *staticMultiValue) String() string {
	out := ""
	for i, v := range s.values {
		if i > 0 {
			out += ", "
		}
		out += v.String()
	}
	return out
}
