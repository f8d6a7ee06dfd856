package invoke

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/objenv"
	"github.com/clayic/clayic/internal/pattern"
)

// overloadPatterns is the pattern structure compiled once for an overload
// and reused across every match attempt: target/argument patterns are built
// against a scope where each declared pattern variable is bound to a fresh,
// currently-unbound logical cell. Matching an argument tuple just unifies
// against these same cells and then resets them (spec §4.F, grounded on
// original_source/compiler/matchinvoke.cpp's initializePatterns/
// resetPatterns).
type overloadPatterns struct {
	env        *objenv.Env
	cells      []*pattern.PatternCell
	multiCells []*pattern.MultiPatternCell

	target       pattern.Pattern
	args         []pattern.Pattern // nil entry at index i = argument i unconstrained
	varArg       pattern.MultiPattern
	varArgIndex  int // index into Code.FormalArgs of the variadic parameter, -1 if none
}

// patternCache holds the compiled overloadPatterns per overload, built once
// per process (spec §5: one Analyzer/Evaluator/resolver instance per
// compilation, so reuse across repeated matches is always safe).
var patternCache = make(map[*ast.Overload]*overloadPatterns)

// patternsFor returns o's compiled pattern structure, building it on first
// use.
func patternsFor(ctx *pattern.Context, ev pattern.StaticEvaluator, o *ast.Overload) (*overloadPatterns, error) {
	if st, ok := patternCache[o]; ok {
		return st, nil
	}
	st, err := buildOverloadPatterns(ctx, ev, o)
	if err != nil {
		return nil, err
	}
	patternCache[o] = st
	return st, nil
}

func buildOverloadPatterns(ctx *pattern.Context, ev pattern.StaticEvaluator, o *ast.Overload) (*overloadPatterns, error) {
	env := objenv.NewChild(overloadEnv(o))
	st := &overloadPatterns{env: env, varArgIndex: -1}

	for _, pv := range o.Code.PatternVars {
		if pv.IsMulti {
			cell := pattern.NewUnboundMultiCell()
			st.multiCells = append(st.multiCells, cell)
			if err := objenv.AddLocal(env, pv.Name, cell); err != nil {
				return nil, err
			}
		} else {
			cell := pattern.NewUnboundCell()
			st.cells = append(st.cells, cell)
			if err := objenv.AddLocal(env, pv.Name, cell); err != nil {
				return nil, err
			}
		}
	}

	target, err := ctx.EvaluateOnePattern(ev, o.Target, env)
	if err != nil {
		return nil, err
	}
	st.target = target

	st.args = make([]pattern.Pattern, len(o.Code.FormalArgs))
	for i, fa := range o.Code.FormalArgs {
		if fa.VarArg {
			st.varArgIndex = i
			if fa.Type != nil {
				mp, err := ctx.EvaluateMultiPattern(ev, []ast.Expr{fa.Type}, env)
				if err != nil {
					return nil, err
				}
				st.varArg = mp
			}
			continue
		}
		if fa.Type == nil {
			continue
		}
		p, err := ctx.EvaluateOnePattern(ev, fa.Type, env)
		if err != nil {
			return nil, err
		}
		st.args[i] = p
	}

	return st, nil
}

// reset clears every logical cell an overload's patterns own, so the next
// match attempt starts from a clean unbound state (matchinvoke.cpp's
// PatternReseter, expressed as an explicit call rather than a destructor).
func (st *overloadPatterns) reset() {
	for _, c := range st.cells {
		c.Obj = nil
	}
	for _, m := range st.multiCells {
		m.Data = nil
	}
}
