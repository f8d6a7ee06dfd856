package pattern

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// StaticEvaluator is the narrow slice of the compile-time Evaluator that
// pattern evaluation needs to resolve a pattern expression's non-literal
// forms (spec §4.C, §4.E). It is injected rather than imported directly so
// package pattern stays a leaf below analyzer/evaluator in the dependency
// order (spec §2): those packages depend on pattern, not the reverse.
type StaticEvaluator interface {
	EvaluateOneStatic(expr ast.Expr, env *objenv.Env) (object.Object, error)
	EvaluateExprStatic(expr ast.Expr, env *objenv.Env) ([]object.Object, error)
}

// EvaluateOnePattern interprets a pattern expression in env to a Pattern
// (spec §4.C, original_source/compiler/patterns.cpp:evaluateOnePattern).
func (c *Context) EvaluateOnePattern(ev StaticEvaluator, expr ast.Expr, env *objenv.Env) (Pattern, error) {
	switch x := expr.(type) {
	case *ast.NameRef:
		y, err := objenv.SafeLookup(env, x.Name)
		if err != nil {
			return nil, err
		}
		return c.namedToPattern(ev, y, env)

	case *ast.Indexing:
		indexable, err := ev.EvaluateOneStatic(x.Expr, env)
		if err != nil {
			return nil, err
		}
		if IsPatternHead(indexable) {
			params, err := c.EvaluateMultiPattern(ev, x.Args, env)
			if err != nil {
				return nil, err
			}
			return &PatternStruct{Head: indexable, Params: params}, nil
		}
		if alias, ok := indexable.(*object.GlobalAlias); ok {
			params, err := c.EvaluateMultiPattern(ev, x.Args, env)
			if err != nil {
				return nil, err
			}
			return c.EvaluateAliasPattern(ev, alias, params)
		}
		y, err := ev.EvaluateOneStatic(expr, env)
		if err != nil {
			return nil, err
		}
		return &PatternCell{Obj: y}, nil

	case *ast.Tuple:
		params, err := c.EvaluateMultiPattern(ev, x.Args, env)
		if err != nil {
			return nil, err
		}
		return &PatternStruct{Head: nil, Params: params}, nil

	default:
		y, err := ev.EvaluateOneStatic(expr, env)
		if err != nil {
			return nil, err
		}
		return &PatternCell{Obj: y}, nil
	}
}

// namedToPattern lowers a name's resolved object into a Pattern (spec §4.C,
// patterns.cpp:namedToPattern).
func (c *Context) namedToPattern(ev StaticEvaluator, x object.Object, env *objenv.Env) (Pattern, error) {
	switch y := x.(type) {
	case Pattern:
		return y, nil
	case MultiPattern:
		return nil, clayerrors.New(clayerrors.PAT002, "incorrect usage of multi-valued pattern in single-valued context")
	case *object.GlobalAlias:
		if y.HasParams() {
			return &PatternCell{Obj: x}, nil
		}
		aliasEnv, _ := y.Env.(*objenv.Env)
		return c.EvaluateOnePattern(ev, y.Decl.Expr, aliasEnv)
	case *object.RecordDecl:
		if len(y.Decl.Params) == 0 && y.Decl.VarParam == "" {
			t := c.Interns.Record(y, nil)
			return &PatternCell{Obj: t}, nil
		}
		return &PatternCell{Obj: y}, nil
	case *object.VariantDecl:
		if len(y.Decl.Params) == 0 && y.Decl.VarParam == "" {
			t := c.Interns.Variant(y, nil)
			return &PatternCell{Obj: t}, nil
		}
		return &PatternCell{Obj: y}, nil
	case *object.EnumMember:
		vh := &object.ValueHolder{Type: c.Interns.Enum(y.Decl), Bytes: int32Bytes(y.Index)}
		return &PatternCell{Obj: vh}, nil
	case *object.PValue:
		return xvalueToPatternCell(y.Type)
	case *object.EValue:
		return xvalueToPatternCell(y.Type)
	default:
		return &PatternCell{Obj: x}, nil
	}
}

func xvalueToPatternCell(t *object.Type) (Pattern, error) {
	stat, ok := object.UnwrapStaticType(t)
	if !ok {
		return nil, clayerrors.New(clayerrors.PAT003, "non-static value used in pattern context")
	}
	return &PatternCell{Obj: stat}, nil
}

func int32Bytes(n int) []byte {
	b := make([]byte, 4)
	v := uint32(n)
	for i := 0; i < 4; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

// EvaluateAliasPattern expands a zero-or-more-parameter global alias applied
// to params: each formal is bound to a fresh logical variable in a scope
// nested under the alias's captured environment, the alias body is
// evaluated to a pattern in that scope, and the formals are unified against
// the caller-supplied params (spec §4.C, §3,
// patterns.cpp:evaluateAliasPattern).
func (c *Context) EvaluateAliasPattern(ev StaticEvaluator, x *object.GlobalAlias, params MultiPattern) (Pattern, error) {
	parentEnv, _ := x.Env.(*objenv.Env)
	env := objenv.NewChild(parentEnv)

	args := &MultiPatternList{}
	for _, name := range x.Decl.Params {
		cell := &PatternCell{}
		args.Items = append(args.Items, cell)
		if err := objenv.AddLocal(env, name, cell); err != nil {
			return nil, err
		}
	}
	if x.Decl.VarParam != "" {
		multiCell := &MultiPatternCell{}
		args.Tail = multiCell
		if err := objenv.AddLocal(env, x.Decl.VarParam, multiCell); err != nil {
			return nil, err
		}
	}

	out, err := c.EvaluateOnePattern(ev, x.Decl.Expr, env)
	if err != nil {
		return nil, err
	}
	ok, err := c.UnifyMultiPatterns(args, params)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, clayerrors.Newf(clayerrors.PAT004, "non-matching alias: %s", x.Decl.Name)
	}
	return out, nil
}

// checkMultiPatternNameRef reports the multi-pattern a bare NameRef resolves
// to, or nil if it isn't one (patterns.cpp:checkMultiPatternNameRef).
func checkMultiPatternNameRef(expr ast.Expr, env *objenv.Env) (MultiPattern, error) {
	n, ok := expr.(*ast.NameRef)
	if !ok {
		return nil, nil
	}
	obj, err := objenv.SafeLookup(env, n.Name)
	if err != nil {
		return nil, err
	}
	if _, ok := obj.(Pattern); ok {
		return nil, clayerrors.New(clayerrors.PAT002, "single-valued pattern incorrectly used in multi-valued context")
	}
	mp, ok := obj.(MultiPattern)
	if !ok {
		return nil, nil
	}
	return mp, nil
}

// appendPattern splices x onto the open tail of cur, returning the new open
// tail (nil once a MultiPatternCell tail has absorbed the rest) or an error
// if something follows a tail that was already closed
// (patterns.cpp:appendPattern).
func appendPattern(cur *MultiPatternList, x MultiPattern) (*MultiPatternList, error) {
	switch y := x.(type) {
	case *MultiPatternCell:
		if cur == nil {
			return nil, clayerrors.New(clayerrors.PAT004, "expressions cannot occur after multi-pattern variable")
		}
		if y.Data != nil {
			return appendPattern(cur, y.Data)
		}
		cur.Tail = y
		return nil, nil
	case *MultiPatternList:
		if len(y.Items) > 0 {
			if cur == nil {
				return nil, clayerrors.New(clayerrors.PAT004, "expressions cannot occur after multi-pattern variable")
			}
			cur.Items = append(cur.Items, y.Items...)
		}
		if y.Tail != nil {
			return appendPattern(cur, y.Tail)
		}
		return cur, nil
	default:
		return cur, nil
	}
}

// EvaluateMultiPattern interprets an expression list (formal arguments,
// alias arguments, indexing args) into a MultiPattern, expanding `...x`
// unpacks and `(a, b)` groupings (spec §4.C,
// patterns.cpp:evaluateMultiPattern).
func (c *Context) EvaluateMultiPattern(ev StaticEvaluator, exprs []ast.Expr, env *objenv.Env) (MultiPattern, error) {
	out := &MultiPatternList{}
	cur := out

	for _, x := range exprs {
		switch n := x.(type) {
		case *ast.Unpack:
			mp, err := checkMultiPatternNameRef(n.Expr, env)
			if err != nil {
				return nil, err
			}
			if mp != nil {
				cur, err = appendPattern(cur, mp)
				if err != nil {
					return nil, err
				}
				continue
			}
			zs, err := ev.EvaluateExprStatic(n.Expr, env)
			if err != nil {
				return nil, err
			}
			if cur == nil && len(zs) > 0 {
				return nil, clayerrors.New(clayerrors.PAT004, "expressions cannot occur after multi-pattern variable")
			}
			for _, z := range zs {
				cur.Items = append(cur.Items, &PatternCell{Obj: z})
			}

		case *ast.Paren:
			mp, err := c.EvaluateMultiPattern(ev, n.Args, env)
			if err != nil {
				return nil, err
			}
			cur, err = appendPattern(cur, mp)
			if err != nil {
				return nil, err
			}

		default:
			if cur == nil {
				return nil, clayerrors.New(clayerrors.PAT004, "expressions cannot occur after multi-pattern variable")
			}
			p, err := c.EvaluateOnePattern(ev, x, env)
			if err != nil {
				return nil, err
			}
			cur.Items = append(cur.Items, p)
		}
	}

	return out, nil
}
