package analyzer

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

func single(t *object.Type, isTemp bool) *object.MultiPValue {
	return &object.MultiPValue{Values: []*object.PValue{{Type: t, IsTemp: isTemp}}}
}

// AnalyzeExpr implements the contract table of spec §4.D over expr,
// returning its MultiPValue (memoized per node).
func (a *Analyzer) AnalyzeExpr(expr ast.Expr, env *objenv.Env) (*object.MultiPValue, error) {
	if cached, ok := a.cacheGet(expr.ID()); ok {
		return cached, nil
	}
	mpv, err := a.analyzeExpr(expr, env)
	if err != nil {
		return nil, err
	}
	a.cacheSet(expr.ID(), mpv)
	return mpv, nil
}

func (a *Analyzer) analyzeExpr(expr ast.Expr, env *objenv.Env) (*object.MultiPValue, error) {
	switch x := expr.(type) {
	case *ast.BoolLit:
		return single(a.Interns.Bool(), true), nil

	case *ast.IntLit:
		return single(a.Interns.Integer(x.Bits, x.Signed), true), nil

	case *ast.FloatLit:
		return single(a.Interns.Float(x.Bits, false), true), nil

	case *ast.StringLit:
		elem := a.Interns.Integer(8, false)
		return single(a.Interns.Pointer(elem), true), nil

	case *ast.NameRef:
		obj, err := objenv.SafeLookup(env, x.Name)
		if err != nil {
			return nil, err
		}
		return a.analyzeObject(obj)

	case *ast.Call:
		if a.Resolver == nil {
			return nil, clayerrors.New(clayerrors.ANA005, "call analysis requires a resolver")
		}
		args, err := a.analyzeCallArgs(x.Args, env)
		if err != nil {
			return nil, err
		}
		key, inProgress, pop := a.PushFrame(describeCallee(x.Callee), argsKeyOf(args))
		_ = key
		defer pop()
		if inProgress {
			return nil, &RecursionPending{
				Callable: describeCallee(x.Callee),
				ArgsKey:  argsKeyOf(args),
				Frames:   a.Frames(),
			}
		}
		return a.Resolver.ResolveCall(a, x, args, env)

	case *ast.FieldRef:
		return a.analyzeFieldRef(x, env)

	case *ast.BinLogic:
		// And/Or: both sides are analyzed for diagnostics but the static
		// result type is always Bool (spec §4.D); strictness is a codegen
		// concern, out of scope here.
		if _, err := a.AnalyzeExpr(x.Left, env); err != nil {
			return nil, err
		}
		if _, err := a.AnalyzeExpr(x.Right, env); err != nil {
			return nil, err
		}
		return single(a.Interns.Bool(), true), nil

	case *ast.VariadicOp:
		return a.analyzeVariadicOp(x, env)

	case *ast.DispatchExpr:
		// Dispatch positions are recorded by the enclosing Call's argument
		// walk (analyzeCallArgs); here we simply analyze the operand.
		return a.AnalyzeExpr(x.Expr, env)

	case *ast.Unpack:
		return a.AnalyzeExpr(x.Expr, env)

	case *ast.EvalExpr:
		return a.analyzeEvalExpr(x, env)

	case *ast.ForeignExpr:
		foreignEnv, _ := x.Env.(*objenv.Env)
		return a.AnalyzeExpr(x.Inner, foreignEnv)

	default:
		return nil, clayerrors.Newf(clayerrors.ANA005, "analyzer: unhandled expression form %T", expr)
	}
}

// analyzeObject is the NameRef contract: "analysis of the bound object"
// (spec §4.D). A bound PValue or MultiPValue (an argument or a local
// binding recorded by the binding analyzer) is returned as it is; every
// other object (types, procedures, and other static entities) is lifted
// through StaticType and analyzes to its own Static[...] type as a
// compile-time-only temporary.
func (a *Analyzer) analyzeObject(obj object.Object) (*object.MultiPValue, error) {
	if pv, ok := obj.(*object.PValue); ok {
		return &object.MultiPValue{Values: []*object.PValue{pv}}, nil
	}
	if mpv, ok := obj.(*object.MultiPValue); ok {
		return mpv, nil
	}
	t, err := object.StaticType(a.Interns, obj)
	if err != nil {
		return nil, err
	}
	return single(t, true), nil
}

func (a *Analyzer) analyzeCallArgs(args []ast.Expr, env *objenv.Env) ([]*object.PValue, error) {
	var out []*object.PValue
	for _, arg := range args {
		mpv, err := a.AnalyzeExpr(arg, env)
		if err != nil {
			return nil, err
		}
		out = append(out, mpv.Values...)
	}
	return out, nil
}

func describeCallee(callee ast.Expr) string {
	if n, ok := callee.(*ast.NameRef); ok {
		return n.Name
	}
	return "<expr>"
}

func argsKeyOf(args []*object.PValue) string {
	key := ""
	for i, a := range args {
		if i > 0 {
			key += ","
		}
		key += a.String()
	}
	return key
}

func (a *Analyzer) analyzeFieldRef(x *ast.FieldRef, env *objenv.Env) (*object.MultiPValue, error) {
	// A FieldRef on a static module reference looks up the field directly;
	// otherwise it desugars to a call to the field-access operator, which
	// requires a resolver (spec §4.D).
	mpv, err := a.AnalyzeExpr(x.Expr, env)
	if err != nil {
		return nil, err
	}
	pv, ok := mpv.Single()
	if ok {
		if mod, ok := object.UnwrapStaticType(pv.Type); ok {
			if m, ok := mod.(*object.Module); ok {
				g, ok := m.Globals[x.Field]
				if !ok {
					return nil, clayerrors.Newf(clayerrors.ANA005, "module %s has no member %s", m.Name, x.Field)
				}
				return a.analyzeObject(g)
			}
		}
	}
	if a.Resolver == nil {
		return nil, clayerrors.New(clayerrors.ANA005, "field-access desugaring requires a resolver")
	}
	fieldArg := &object.PValue{Type: a.Interns.Static(object.Intern(x.Field)), IsTemp: true}
	syntheticCall := &ast.Call{}
	return a.Resolver.ResolveCall(a, syntheticCall, append([]*object.PValue{pv}, fieldArg), env)
}

func (a *Analyzer) analyzeVariadicOp(x *ast.VariadicOp, env *objenv.Env) (*object.MultiPValue, error) {
	switch x.Op {
	case ast.OpAddressOf:
		if len(x.Args) != 1 {
			return nil, clayerrors.New(clayerrors.ANA005, "address-of takes exactly one operand")
		}
		mpv, err := a.AnalyzeExpr(x.Args[0], env)
		if err != nil {
			return nil, err
		}
		pv, ok := mpv.Single()
		if !ok {
			return nil, clayerrors.New(clayerrors.ANA005, "address-of requires a single-valued operand")
		}
		if pv.IsTemp {
			return nil, clayerrors.New(clayerrors.ANA003, "cannot take address of a temporary")
		}
		return single(a.Interns.Pointer(pv.Type), true), nil

	case ast.OpNot:
		for _, arg := range x.Args {
			if _, err := a.AnalyzeExpr(arg, env); err != nil {
				return nil, err
			}
		}
		return single(a.Interns.Bool(), true), nil

	case ast.OpDereference:
		if len(x.Args) != 1 {
			return nil, clayerrors.New(clayerrors.ANA005, "dereference takes exactly one operand")
		}
		mpv, err := a.AnalyzeExpr(x.Args[0], env)
		if err != nil {
			return nil, err
		}
		pv, ok := mpv.Single()
		if !ok || pv.Type.Tag != object.TagPointer {
			return nil, clayerrors.New(clayerrors.ANA005, "dereference requires a pointer-typed operand")
		}
		return &object.MultiPValue{Values: []*object.PValue{{Type: pv.Type.Pointee, IsTemp: false}}}, nil

	default:
		return nil, clayerrors.Newf(clayerrors.ANA005, "analyzer: unhandled variadic op %v", x.Op)
	}
}

func (a *Analyzer) analyzeEvalExpr(x *ast.EvalExpr, env *objenv.Env) (*object.MultiPValue, error) {
	if a.Strings == nil {
		return nil, clayerrors.New(clayerrors.ANA005, "eval requires a string evaluator")
	}
	exprs, err := a.Strings.EvalStringsToAST(a, x.Args, env)
	if err != nil {
		return nil, err
	}
	out := &object.MultiPValue{}
	for _, e := range exprs {
		mpv, err := a.AnalyzeExpr(e, env)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, mpv.Values...)
	}
	return out, nil
}
