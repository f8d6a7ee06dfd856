// Package evaluator implements the compile-time Evaluator: it actually
// executes primitive operators and resolved overload bodies over a
// bump-allocated byte stack, producing EValue results rather than merely
// inferring their type (spec §4.E).
package evaluator

import (
	"encoding/binary"
	"math"

	"github.com/clayic/clayic/internal/analyzer"
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// CallResolver is the overload-resolution handle the Evaluator calls into
// when a Call's callee resolves to an overloaded callable (a Procedure, or
// a Record/Variant constructor) rather than a primitive or alias.
// Implemented by internal/invoke, which sits above evaluator in the
// dependency order (spec §2, §5 interface-boundary note).
type CallResolver interface {
	ResolveCall(ev *Evaluator, callable object.Object, args []*object.EValue, env *objenv.Env) (*object.MultiEValue, error)
}

// Parser turns the source text an EvalExpr argument evaluates to into an
// expression tree, standing in for the (out-of-scope, spec §1) lexer/parser.
type Parser interface {
	ParseExprString(src string) (ast.Expr, error)
}

// Evaluator is the process-wide compile-time interpreter. One instance is
// shared across an entire compilation, mirroring Analyzer (spec §5).
type Evaluator struct {
	Interns  *object.InternTable
	Layout   *object.Layout
	Stack    *Stack
	Resolver CallResolver
	Parser   Parser

	// memo caches the result of memoized ("...?"-suffixed) procedure calls,
	// keyed by procedure name + the byte encoding of their argument tuple
	// (spec §4.E: "procedures whose source name ends with '?' are
	// memoized").
	memo map[string]*object.MultiEValue
}

// New creates an Evaluator with a stack of the given byte capacity.
func New(interns *object.InternTable, layout *object.Layout, stackCapacity int, resolver CallResolver, parser Parser) *Evaluator {
	return &Evaluator{
		Interns:  interns,
		Layout:   layout,
		Stack:    NewStack(stackCapacity),
		Resolver: resolver,
		Parser:   parser,
		memo:     make(map[string]*object.MultiEValue),
	}
}

func single(v *object.EValue) *object.MultiEValue {
	return &object.MultiEValue{Values: []*object.EValue{v}}
}

// EvalExpr evaluates expr to its (possibly multi-valued) result.
func (ev *Evaluator) EvalExpr(expr ast.Expr, env *objenv.Env) (*object.MultiEValue, error) {
	switch x := expr.(type) {
	case *ast.BoolLit:
		return single(&object.EValue{Type: ev.Interns.Bool(), Addr: boolBytes(x.Value)}), nil

	case *ast.IntLit:
		t := ev.Interns.Integer(x.Bits, x.Signed)
		bytes, err := encodeInt(x.Bits, x.Value)
		if err != nil {
			return nil, err
		}
		addr, err := ev.Stack.Push(bytes)
		if err != nil {
			return nil, err
		}
		return single(&object.EValue{Type: t, Addr: addr}), nil

	case *ast.FloatLit:
		t := ev.Interns.Float(x.Bits, false)
		bytes, err := encodeFloat(x.Bits, x.Value)
		if err != nil {
			return nil, err
		}
		addr, err := ev.Stack.Push(bytes)
		if err != nil {
			return nil, err
		}
		return single(&object.EValue{Type: t, Addr: addr}), nil

	case *ast.StringLit:
		return ev.evalStringLit(x)

	case *ast.NameRef:
		return ev.evalNameRef(x, env)

	case *ast.Call:
		return ev.evalCall(x, env)

	case *ast.FieldRef:
		return ev.evalFieldRef(x, env)

	case *ast.BinLogic:
		return ev.evalBinLogic(x, env)

	case *ast.VariadicOp:
		return ev.evalVariadicOp(x, env)

	case *ast.Tuple:
		return ev.evalTuple(x, env)

	case *ast.DispatchExpr:
		return ev.EvalExpr(x.Expr, env)

	case *ast.Unpack:
		return ev.EvalExpr(x.Expr, env)

	case *ast.EvalExpr:
		return ev.evalEvalExpr(x, env)

	case *ast.ForeignExpr:
		foreignEnv, _ := x.Env.(*objenv.Env)
		return ev.EvalExpr(x.Inner, foreignEnv)

	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "evaluator: unhandled expression form %T", expr)
	}
}

// EvaluateOneStatic implements pattern.StaticEvaluator: it runs expr to
// completion and reads the single result back as a compile-time Object,
// unwrapping Static[X] to X so pattern heads compare correctly.
func (ev *Evaluator) EvaluateOneStatic(expr ast.Expr, env *objenv.Env) (object.Object, error) {
	mpv, err := ev.EvalExpr(expr, env)
	if err != nil {
		return nil, err
	}
	v, ok := mpv.Single()
	if !ok {
		return nil, clayerrors.New(clayerrors.PAT002, "multi-valued expression used in single-valued context")
	}
	return ev.materialize(v), nil
}

// EvaluateExprStatic implements pattern.StaticEvaluator's multi-valued form.
func (ev *Evaluator) EvaluateExprStatic(expr ast.Expr, env *objenv.Env) ([]object.Object, error) {
	mpv, err := ev.EvalExpr(expr, env)
	if err != nil {
		return nil, err
	}
	out := make([]object.Object, len(mpv.Values))
	for i, v := range mpv.Values {
		out[i] = ev.materialize(v)
	}
	return out, nil
}

// materialize reads an EValue back as a plain Object: a Static[X] value is
// X itself, everything else is captured as a ValueHolder over its own bytes.
func (ev *Evaluator) materialize(v *object.EValue) object.Object {
	if v.Type.Tag == object.TagStatic {
		return v.Type.StaticObj
	}
	return &object.ValueHolder{Type: v.Type, Bytes: append([]byte(nil), v.Addr...)}
}

// EvalStringsToAST implements analyzer.StringEvaluator: each argument is
// evaluated to a string constant and parsed into an expression (spec §4.D:
// "evaluate strings to AST via the Evaluator").
func (ev *Evaluator) EvalStringsToAST(a *analyzer.Analyzer, args []ast.Expr, env *objenv.Env) ([]ast.Expr, error) {
	if ev.Parser == nil {
		return nil, clayerrors.New(clayerrors.EVA007, "eval requires a parser")
	}
	var out []ast.Expr
	for _, arg := range args {
		obj, err := ev.EvaluateOneStatic(arg, env)
		if err != nil {
			return nil, err
		}
		vh, ok := obj.(*object.ValueHolder)
		if !ok || vh.Type.Tag != object.TagPointer {
			return nil, clayerrors.New(clayerrors.EVA007, "eval argument did not evaluate to a string")
		}
		src := string(vh.Bytes)
		parsed, err := ev.Parser.ParseExprString(src)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

// evalCall dispatches a Call by what its callee resolves to: a PrimOp goes
// through the checked-arithmetic switch, a multi-overload Procedure is
// handed to the injected CallResolver (spec §4.F), and a parameterless-at-
// the-value-level GlobalAlias is expanded inline by binding its formals to
// the evaluated arguments in a fresh child scope (spec §3's "alias behaves
// as if its body were substituted at the call site").
func (ev *Evaluator) evalCall(x *ast.Call, env *objenv.Env) (*object.MultiEValue, error) {
	calleeObj, err := ev.resolveCallee(x.Callee, env)
	if err != nil {
		return nil, err
	}

	args, err := ev.evalArgs(x.Args, env)
	if err != nil {
		return nil, err
	}

	switch c := calleeObj.(type) {
	case *object.PrimOp:
		resultType, err := ev.primOpResultType(c, args)
		if err != nil {
			return nil, err
		}
		return ev.EvalPrimOp(c, args, resultType)

	case *object.Procedure:
		if ev.Resolver == nil {
			return nil, clayerrors.New(clayerrors.EVA007, "procedure calls require a resolver")
		}
		if c.MemoizeProcedure() {
			key := memoKey(c.Name, args)
			if cached, ok := ev.memo[key]; ok {
				return cached, nil
			}
			result, err := ev.Resolver.ResolveCall(ev, c, args, env)
			if err != nil {
				return nil, err
			}
			ev.memo[key] = result
			return result, nil
		}
		return ev.Resolver.ResolveCall(ev, c, args, env)

	case *object.RecordDecl, *object.VariantDecl:
		if ev.Resolver == nil {
			return nil, clayerrors.New(clayerrors.EVA007, "constructor calls require a resolver")
		}
		return ev.Resolver.ResolveCall(ev, c, args, env)

	case *object.GlobalAlias:
		return ev.expandAliasCall(c, args)

	case *object.ExternalProcedure:
		return nil, clayerrors.Newf(clayerrors.EVA005, "external procedure %s cannot be invoked at compile time", c.Decl.Name)

	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "call target %T is not callable at compile time", calleeObj)
	}
}

// resolveCallee evaluates the callee position of a Call down to the plain
// Object it names, without lifting it onto the value stack: PrimOp,
// Procedure and GlobalAlias are themselves the callable identity, never
// runtime data.
func (ev *Evaluator) resolveCallee(callee ast.Expr, env *objenv.Env) (object.Object, error) {
	n, ok := callee.(*ast.NameRef)
	if !ok {
		return nil, clayerrors.New(clayerrors.EVA007, "call target must be a name at compile time")
	}
	return objenv.SafeLookup(env, n.Name)
}

func (ev *Evaluator) evalArgs(exprs []ast.Expr, env *objenv.Env) ([]*object.EValue, error) {
	var out []*object.EValue
	for _, e := range exprs {
		mpv, err := ev.EvalExpr(e, env)
		if err != nil {
			return nil, err
		}
		out = append(out, mpv.Values...)
	}
	return out, nil
}

// primOpResultType derives a PrimOp's result type from its arguments and
// code, covering the forms the Evaluator itself needs to run (the general
// case — resolving a PrimOp's declared return type from its surrounding
// Overload — belongs to internal/invoke, which has the declaration in
// scope; this covers the closed set of shapes primops.go implements).
func (ev *Evaluator) primOpResultType(p *object.PrimOp, args []*object.EValue) (*object.Type, error) {
	switch p.Code {
	case object.PrimIntegerAdd, object.PrimIntegerSubtract, object.PrimIntegerMultiply,
		object.PrimIntegerAddChecked, object.PrimIntegerSubtractChecked, object.PrimIntegerMultiplyChecked,
		object.PrimIntegerDivide, object.PrimIntegerRemainder, object.PrimIntegerNegate,
		object.PrimIntegerShiftLeft, object.PrimIntegerShiftRight,
		object.PrimIntegerBitwiseAnd, object.PrimIntegerBitwiseOr, object.PrimIntegerBitwiseXor, object.PrimIntegerBitwiseNot:
		return args[0].Type, nil
	case object.PrimFloatAdd, object.PrimFloatSubtract, object.PrimFloatMultiply, object.PrimFloatDivide, object.PrimFloatNegate:
		return args[0].Type, nil
	case object.PrimIntegerEqualsQ, object.PrimIntegerLesserQ, object.PrimFloatEqualsQ, object.PrimFloatLesserQ,
		object.PrimIntegerTypeQ, object.PrimFloatTypeQ, object.PrimPointerTypeQ:
		return ev.Interns.Bool(), nil
	case object.PrimTypeSizeQ, object.PrimTypeAlignmentQ:
		return ev.Interns.Integer(64, false), nil
	case object.PrimStringConcat, object.PrimStringLiteralBytes:
		return args[0].Type, nil
	case object.PrimRecordFieldRef:
		return ev.recordFieldRefType(args)
	case object.PrimRecordFieldRefByName:
		return ev.recordFieldRefByNameType(args)
	case object.PrimVariantTag:
		return ev.Interns.Integer(32, true), nil
	case object.PrimStaticFieldRef:
		return ev.staticFieldRefType(args)
	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "primitive %d needs an explicit result type from its call site", p.Code)
	}
}

func memoKey(name string, args []*object.EValue) string {
	key := name
	for _, a := range args {
		key += "|" + a.Type.String() + ":" + string(a.Addr)
	}
	return key
}

// expandAliasCall binds a GlobalAlias's formal parameters to already-
// evaluated arguments in a fresh child scope and evaluates its body there
// (spec §3).
func (ev *Evaluator) expandAliasCall(a *object.GlobalAlias, args []*object.EValue) (*object.MultiEValue, error) {
	parentEnv, _ := a.Env.(*objenv.Env)
	child := objenv.NewChild(parentEnv)
	names := a.Decl.Params
	for i, name := range names {
		if i >= len(args) {
			return nil, clayerrors.Newf(clayerrors.EVA007, "alias %s expects %d argument(s)", a.Decl.Name, len(names))
		}
		if err := objenv.AddLocal(child, name, args[i]); err != nil {
			return nil, err
		}
	}
	if a.Decl.VarParam != "" {
		rest := &object.MultiEValue{Values: args[len(names):]}
		if err := objenv.AddLocal(child, a.Decl.VarParam, rest); err != nil {
			return nil, err
		}
	}
	return ev.EvalExpr(a.Decl.Expr, child)
}

func (ev *Evaluator) evalNameRef(x *ast.NameRef, env *objenv.Env) (*object.MultiEValue, error) {
	obj, err := objenv.SafeLookup(env, x.Name)
	if err != nil {
		return nil, err
	}
	return ev.liftObject(obj)
}

// liftObject turns an environment entry into an EValue result: a value
// already bound as an EValue/MultiEValue (a local introduced during
// evaluation) passes through; a ValueHolder constant is copied onto the
// stack; anything else (a Type, PrimOp, Procedure, ...) is a compile-time-
// only entity lifted to Static[X] with no runtime storage.
func (ev *Evaluator) liftObject(obj object.Object) (*object.MultiEValue, error) {
	switch v := obj.(type) {
	case *object.EValue:
		return single(v), nil
	case *object.MultiEValue:
		return v, nil
	case *object.ValueHolder:
		addr, err := ev.Stack.Push(v.Bytes)
		if err != nil {
			return nil, err
		}
		return single(&object.EValue{Type: v.Type, Addr: addr}), nil
	default:
		t, err := object.StaticType(ev.Interns, obj)
		if err != nil {
			return nil, err
		}
		return single(&object.EValue{Type: t, Addr: nil}), nil
	}
}

func (ev *Evaluator) evalStringLit(x *ast.StringLit) (*object.MultiEValue, error) {
	elem := ev.Interns.Integer(8, false)
	t := ev.Interns.Pointer(elem)
	addr, err := ev.Stack.Push([]byte(x.Value))
	if err != nil {
		return nil, err
	}
	return single(&object.EValue{Type: t, Addr: addr}), nil
}

func (ev *Evaluator) evalTuple(x *ast.Tuple, env *objenv.Env) (*object.MultiEValue, error) {
	var elems []*object.EValue
	for _, a := range x.Args {
		mpv, err := ev.EvalExpr(a, env)
		if err != nil {
			return nil, err
		}
		elems = append(elems, mpv.Values...)
	}
	types := make([]*object.Type, len(elems))
	for i, e := range elems {
		types[i] = e.Type
	}
	tupleType := ev.Interns.Tuple(types)
	size := ev.Layout.Size(tupleType)
	offsets := ev.Layout.FieldOffsets(types)
	addr, err := ev.Stack.Alloc(size)
	if err != nil {
		return nil, err
	}
	for i, e := range elems {
		copy(addr[offsets[i]:], e.Addr)
	}
	return single(&object.EValue{Type: tupleType, Addr: addr}), nil
}

func (ev *Evaluator) evalBinLogic(x *ast.BinLogic, env *objenv.Env) (*object.MultiEValue, error) {
	left, err := ev.EvalExpr(x.Left, env)
	if err != nil {
		return nil, err
	}
	lv, ok := left.Single()
	if !ok {
		return nil, clayerrors.New(clayerrors.PAT002, "And/Or operand must be single-valued")
	}
	lb := decodeBool(lv.Addr)
	if x.Op == ast.LogicAnd && !lb {
		return single(&object.EValue{Type: ev.Interns.Bool(), Addr: boolBytes(false)}), nil
	}
	if x.Op == ast.LogicOr && lb {
		return single(&object.EValue{Type: ev.Interns.Bool(), Addr: boolBytes(true)}), nil
	}
	right, err := ev.EvalExpr(x.Right, env)
	if err != nil {
		return nil, err
	}
	rv, ok := right.Single()
	if !ok {
		return nil, clayerrors.New(clayerrors.PAT002, "And/Or operand must be single-valued")
	}
	return single(&object.EValue{Type: ev.Interns.Bool(), Addr: boolBytes(decodeBool(rv.Addr))}), nil
}

func (ev *Evaluator) evalVariadicOp(x *ast.VariadicOp, env *objenv.Env) (*object.MultiEValue, error) {
	switch x.Op {
	case ast.OpNot:
		mpv, err := ev.EvalExpr(x.Args[0], env)
		if err != nil {
			return nil, err
		}
		v, _ := mpv.Single()
		return single(&object.EValue{Type: ev.Interns.Bool(), Addr: boolBytes(!decodeBool(v.Addr))}), nil

	case ast.OpAddressOf, ast.OpDereference:
		return nil, clayerrors.New(clayerrors.EVA007, "address-of/dereference require addressable runtime storage, not available at compile time")

	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "evaluator: unhandled variadic op %v", x.Op)
	}
}

func (ev *Evaluator) evalFieldRef(x *ast.FieldRef, env *objenv.Env) (*object.MultiEValue, error) {
	mpv, err := ev.EvalExpr(x.Expr, env)
	if err != nil {
		return nil, err
	}
	v, ok := mpv.Single()
	if !ok || v.Type.Tag != object.TagStatic {
		return nil, clayerrors.New(clayerrors.EVA007, "field access requires a static module reference at compile time")
	}
	m, ok := v.Type.StaticObj.(*object.Module)
	if !ok {
		return nil, clayerrors.Newf(clayerrors.EVA007, "%s has no member %s", v.Type.StaticObj, x.Field)
	}
	g, ok := m.Globals[x.Field]
	if !ok {
		return nil, clayerrors.Newf(clayerrors.EVA007, "module %s has no member %s", m.Name, x.Field)
	}
	return ev.liftObject(g)
}

func (ev *Evaluator) evalEvalExpr(x *ast.EvalExpr, env *objenv.Env) (*object.MultiEValue, error) {
	if ev.Parser == nil {
		return nil, clayerrors.New(clayerrors.EVA007, "eval requires a parser")
	}
	out := &object.MultiEValue{}
	for _, arg := range x.Args {
		obj, err := ev.EvaluateOneStatic(arg, env)
		if err != nil {
			return nil, err
		}
		vh, ok := obj.(*object.ValueHolder)
		if !ok || vh.Type.Tag != object.TagPointer {
			return nil, clayerrors.New(clayerrors.EVA007, "eval argument did not evaluate to a string")
		}
		parsed, err := ev.Parser.ParseExprString(string(vh.Bytes))
		if err != nil {
			return nil, err
		}
		mpv, err := ev.EvalExpr(parsed, env)
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, mpv.Values...)
	}
	return out, nil
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

func decodeBool(b []byte) bool {
	return len(b) > 0 && b[0] != 0
}

func encodeInt(bits int, v int64) ([]byte, error) {
	n := bits / 8
	switch n {
	case 1:
		return []byte{byte(v)}, nil
	case 2:
		b := make([]byte, 2)
		binary.LittleEndian.PutUint16(b, uint16(v))
		return b, nil
	case 4:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, uint32(v))
		return b, nil
	case 8:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, uint64(v))
		return b, nil
	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "unsupported integer width: %d bits", bits)
	}
}

func encodeFloat(bits int, v float64) ([]byte, error) {
	switch bits {
	case 32:
		b := make([]byte, 4)
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v)))
		return b, nil
	case 64:
		b := make([]byte, 8)
		binary.LittleEndian.PutUint64(b, math.Float64bits(v))
		return b, nil
	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "unsupported float width: %d bits", bits)
	}
}
