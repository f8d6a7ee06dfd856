package evaluator

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// ExecTag mirrors analyzer.StmtTag for the Evaluator's own statement
// executor: FALLTHROUGH means control reached the end of the block without
// returning, TERMINATED means a Return/Break/Continue/Goto/Throw fired.
// Unlike the Analyzer, the Evaluator never produces RECURSIVE — it only
// ever runs a body whose shape the Analyzer has already settled.
type ExecTag int

const (
	ExecFallthrough ExecTag = iota
	ExecTerminated
)

// ExecResult carries a Return statement's values out of ExecBlock.
type ExecResult struct {
	Values []*object.EValue
}

// ExecBlock runs a sequence of statements to completion or to the first
// terminating statement (spec §4.E: the Evaluator actually executes a
// resolved overload body to produce its result).
func (ev *Evaluator) ExecBlock(block *ast.Block, env *objenv.Env) (ExecTag, *ExecResult, error) {
	m := ev.Stack.Mark()
	defer ev.Stack.Pop(m)

	for _, stmt := range block.Stmts {
		tag, result, err := ev.ExecStmt(stmt, env)
		if err != nil {
			return ExecFallthrough, nil, err
		}
		if tag != ExecFallthrough {
			return tag, result, nil
		}
	}
	return ExecFallthrough, nil, nil
}

// ExecStmt dispatches one statement form, actually running it rather than
// merely inferring its shape (contrast analyzer.AnalyzeStmt).
func (ev *Evaluator) ExecStmt(stmt ast.Stmt, env *objenv.Env) (ExecTag, *ExecResult, error) {
	switch x := stmt.(type) {
	case *ast.Block:
		return ev.ExecBlock(x, env)

	case *ast.ExprStmt:
		if _, err := ev.EvalExpr(x.Expr, env); err != nil {
			return ExecFallthrough, nil, err
		}
		return ExecFallthrough, nil, nil

	case *ast.Binding:
		if err := ev.execBinding(x, env); err != nil {
			return ExecFallthrough, nil, err
		}
		return ExecFallthrough, nil, nil

	case *ast.Return:
		var values []*object.EValue
		for _, ve := range x.Values {
			mpv, err := ev.EvalExpr(ve, env)
			if err != nil {
				return ExecFallthrough, nil, err
			}
			values = append(values, mpv.Values...)
		}
		return ExecTerminated, &ExecResult{Values: values}, nil

	case *ast.BreakStmt, *ast.ContinueStmt, *ast.GotoStmt:
		return ExecTerminated, nil, clayerrors.New(clayerrors.EVA007, "non-local control transfer is not supported by the compile-time executor")

	case *ast.ThrowStmt:
		return ExecTerminated, nil, clayerrors.New(clayerrors.EVA005, "throw is not permitted at compile time")

	case *ast.If:
		return ev.execIf(x, env)

	default:
		return ExecFallthrough, nil, clayerrors.Newf(clayerrors.EVA007, "evaluator: unhandled statement form %T", stmt)
	}
}

// execIf actually runs the condition and follows exactly one branch, unlike
// the Analyzer which must account for both.
func (ev *Evaluator) execIf(x *ast.If, env *objenv.Env) (ExecTag, *ExecResult, error) {
	mpv, err := ev.EvalExpr(x.Cond, env)
	if err != nil {
		return ExecFallthrough, nil, err
	}
	cv, ok := mpv.Single()
	if !ok {
		return ExecFallthrough, nil, clayerrors.New(clayerrors.EVA007, "if condition must be single-valued")
	}
	if decodeBool(cv.Addr) {
		return ev.ExecStmt(x.Then, env)
	}
	if x.Else == nil {
		return ExecFallthrough, nil, nil
	}
	return ev.ExecStmt(x.Else, env)
}

func (ev *Evaluator) execBinding(b *ast.Binding, env *objenv.Env) error {
	mpv, err := ev.EvalExpr(b.Value, env)
	if err != nil {
		return err
	}
	if len(mpv.Values) != len(b.Names) {
		return clayerrors.Newf(clayerrors.ANA007,
			"binding expects %d value(s), right-hand side produced %d", len(b.Names), len(mpv.Values))
	}
	for i, name := range b.Names {
		if err := objenv.AddLocal(env, name, mpv.Values[i]); err != nil {
			return err
		}
	}
	return nil
}
