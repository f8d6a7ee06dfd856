package analyzer

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// StmtTag is the three-valued result of statement analysis (spec §4.D):
// whether control can fall through to the next statement, whether it
// definitely terminates the enclosing block (return/break/continue/goto/
// throw), or whether it is blocked on a recursive type dependency.
type StmtTag int

const (
	Fallthrough StmtTag = iota
	Terminated
	Recursive
)

// Combine merges the tags of two branches of control flow (spec §4.D):
// FALLTHROUGH dominates; otherwise TERMINATED dominates if both branches
// terminate; otherwise the result is RECURSIVE.
func Combine(a, b StmtTag) StmtTag {
	if a == Fallthrough || b == Fallthrough {
		return Fallthrough
	}
	if a == Terminated && b == Terminated {
		return Terminated
	}
	return Recursive
}

// ReturnSlot is one position in a procedure's return-value shape: its type
// (widened to a Union across differing returns) and whether every Return
// that reached this position returned it by reference.
type ReturnSlot struct {
	Type  *object.Type
	ByRef bool
}

// AnalysisContext accumulates the return-type vector of the procedure body
// currently being analyzed, merging every Return statement into it and
// checking that by-ref/by-value kinds agree across all returns (spec §4.D).
type AnalysisContext struct {
	Returns []ReturnSlot
	seen    bool
}

// mergeReturn merges one `return` statement's values into the context.
func (a *Analyzer) mergeReturn(ctx *AnalysisContext, values []*object.PValue, byRef []bool) error {
	if !ctx.seen {
		ctx.seen = true
		ctx.Returns = make([]ReturnSlot, len(values))
		for i, v := range values {
			ctx.Returns[i] = ReturnSlot{Type: v.Type, ByRef: byRef[i]}
		}
		return nil
	}
	if len(values) != len(ctx.Returns) {
		return clayerrors.Newf(clayerrors.ANA007,
			"inconsistent return count: %d here, %d elsewhere", len(values), len(ctx.Returns))
	}
	for i, v := range values {
		slot := &ctx.Returns[i]
		if slot.ByRef != byRef[i] {
			return clayerrors.Newf(clayerrors.ANA004,
				"return value %d is by-reference in one branch and by-value in another", i)
		}
		if slot.Type != v.Type {
			slot.Type = a.Interns.Union([]*object.Type{slot.Type, v.Type})
		}
	}
	return nil
}

// AnalyzeBlock analyzes a sequence of statements, short-circuiting once a
// statement is known to terminate the block (unreachable code after it is
// not analyzed further, matching the original compiler's treatment).
func (a *Analyzer) AnalyzeBlock(block *ast.Block, env *objenv.Env, ctx *AnalysisContext) (StmtTag, error) {
	for _, stmt := range block.Stmts {
		t, err := a.AnalyzeStmt(stmt, env, ctx)
		if err != nil {
			return Fallthrough, err
		}
		if t != Fallthrough {
			return t, nil
		}
	}
	return Fallthrough, nil
}

// AnalyzeStmt dispatches one statement form per spec §4.D.
func (a *Analyzer) AnalyzeStmt(stmt ast.Stmt, env *objenv.Env, ctx *AnalysisContext) (StmtTag, error) {
	switch x := stmt.(type) {
	case *ast.Block:
		return a.AnalyzeBlock(x, env, ctx)

	case *ast.ExprStmt:
		if _, err := a.AnalyzeExpr(x.Expr, env); err != nil {
			return Fallthrough, err
		}
		return Fallthrough, nil

	case *ast.Binding:
		if err := a.analyzeBinding(x, env); err != nil {
			return Fallthrough, err
		}
		return Fallthrough, nil

	case *ast.Return:
		values := make([]*object.PValue, 0, len(x.Values))
		for _, ve := range x.Values {
			mpv, err := a.AnalyzeExpr(ve, env)
			if err != nil {
				return Fallthrough, err
			}
			values = append(values, mpv.Values...)
		}
		byRef := x.ByRef
		if len(byRef) != len(values) {
			byRef = make([]bool, len(values))
		}
		if err := a.mergeReturn(ctx, values, byRef); err != nil {
			return Fallthrough, err
		}
		return Terminated, nil

	case *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		return Terminated, nil

	case *ast.ThrowStmt:
		if _, err := a.AnalyzeExpr(x.Value, env); err != nil {
			return Fallthrough, err
		}
		return Terminated, nil

	case *ast.If:
		return a.analyzeIf(x, env, ctx)

	default:
		return Fallthrough, clayerrors.Newf(clayerrors.ANA005, "analyzer: unhandled statement form %T", stmt)
	}
}

// analyzeIf implements the lazy-condition rule (spec §4.D): a condition that
// is a literal true/false analyzes only the corresponding branch; otherwise
// both branches are analyzed and their tags combined.
func (a *Analyzer) analyzeIf(x *ast.If, env *objenv.Env, ctx *AnalysisContext) (StmtTag, error) {
	if _, err := a.AnalyzeExpr(x.Cond, env); err != nil {
		return Fallthrough, err
	}
	if lit, ok := x.Cond.(*ast.BoolLit); ok {
		if lit.Value {
			return a.AnalyzeStmt(x.Then, env, ctx)
		}
		if x.Else == nil {
			return Fallthrough, nil
		}
		return a.AnalyzeStmt(x.Else, env, ctx)
	}

	thenTag, err := a.AnalyzeStmt(x.Then, env, ctx)
	if err != nil {
		return Fallthrough, err
	}
	if x.Else == nil {
		return Combine(thenTag, Fallthrough), nil
	}
	elseTag, err := a.AnalyzeStmt(x.Else, env, ctx)
	if err != nil {
		return Fallthrough, err
	}
	return Combine(thenTag, elseTag), nil
}

// analyzeBinding implements `var`/`ref`/`forward`/`alias` (spec §4.D):
// analyze the right-hand side, unify pattern variables in each left-hand
// annotation against the corresponding value's type, then extend env.
func (a *Analyzer) analyzeBinding(b *ast.Binding, env *objenv.Env) error {
	mpv, err := a.AnalyzeExpr(b.Value, env)
	if err != nil {
		return err
	}
	if len(mpv.Values) != len(b.Names) {
		return clayerrors.Newf(clayerrors.ANA007,
			"binding expects %d value(s), right-hand side produced %d", len(b.Names), len(mpv.Values))
	}

	patCtx := a.patternCtx()
	for i, name := range b.Names {
		pv := mpv.Values[i]

		if i < len(b.TypeAnn) && b.TypeAnn[i] != nil {
			if a.Patterns == nil {
				return clayerrors.New(clayerrors.ANA005, "binding type annotations require a pattern evaluator")
			}
			pat, err := patCtx.EvaluateOnePattern(a.Patterns, b.TypeAnn[i], env)
			if err != nil {
				return err
			}
			ok, err := patCtx.UnifyObjPattern(pv.Type, pat)
			if err != nil {
				return err
			}
			if !ok {
				return clayerrors.Newf(clayerrors.ANA006,
					"value of %s does not match its declared type", name)
			}
		}

		bound := bindingValue(b.Kind, pv)
		if b.Kind == ast.BindRef && pv.IsTemp {
			return clayerrors.Newf(clayerrors.ANA003, "cannot bind ref %s to a temporary", name)
		}
		if err := objenv.AddLocal(env, name, bound); err != nil {
			return err
		}
	}
	return nil
}

// bindingValue computes the PValue stored in the environment for name,
// following spec §4.D's per-kind tempness rule: `var` always introduces a
// fresh, addressable local; `ref`/`alias` refer to existing storage and so
// are never temporaries themselves; `forward` preserves the source value's
// own temporariness so a later procedure boundary can still tell lvalue
// from rvalue.
func bindingValue(kind ast.BindingKind, pv *object.PValue) *object.PValue {
	switch kind {
	case ast.BindVar:
		return &object.PValue{Type: pv.Type, IsTemp: false}
	case ast.BindRef, ast.BindAlias:
		return &object.PValue{Type: pv.Type, IsTemp: false}
	case ast.BindForward:
		return &object.PValue{Type: pv.Type, IsTemp: pv.IsTemp}
	default:
		return pv
	}
}
