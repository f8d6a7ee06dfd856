package analyzer

import (
	"testing"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

type emptyModule struct{}

func (emptyModule) LookupPrivate(name string) (object.Object, error) { return nil, nil }
func (emptyModule) LookupPublic(name string) (object.Object, error)  { return nil, nil }

func newTestAnalyzer() (*Analyzer, *objenv.Env) {
	it := object.NewInternTable()
	layout := object.NewLayout(8)
	a := New(it, layout, nil, nil)
	env := objenv.NewModuleRoot(emptyModule{})
	return a, env
}

// idGen hands out distinct NodeIDs so hand-built test trees don't collide in
// the Analyzer's per-node cache the way a real parser's monotonic IDs never
// would.
var idGen ast.NodeID

func nextID() ast.NodeID {
	idGen++
	return idGen
}

func boolLit(v bool) *ast.BoolLit {
	b := &ast.BoolLit{Value: v}
	b.NodeID = nextID()
	return b
}

func intLit(bits int, signed bool) *ast.IntLit {
	i := &ast.IntLit{Bits: bits, Signed: signed}
	i.NodeID = nextID()
	return i
}

func nameRef(name string) *ast.NameRef {
	n := &ast.NameRef{Name: name}
	n.NodeID = nextID()
	return n
}

func TestAnalyzeLiterals(t *testing.T) {
	a, env := newTestAnalyzer()

	mpv, err := a.AnalyzeExpr(boolLit(true), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pv, ok := mpv.Single()
	if !ok || pv.Type != a.Interns.Bool() || !pv.IsTemp {
		t.Fatalf("expected (Bool, temp), got %v", mpv)
	}

	mpv, err = a.AnalyzeExpr(intLit(32, true), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pv, _ = mpv.Single()
	if pv.Type != a.Interns.Integer(32, true) {
		t.Fatalf("expected Int32, got %v", pv.Type)
	}
}

func TestAnalyzeNameRefRoundTrips(t *testing.T) {
	a, env := newTestAnalyzer()
	i32 := a.Interns.Integer(32, true)
	if err := objenv.AddLocal(env, "x", &object.PValue{Type: i32, IsTemp: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mpv, err := a.AnalyzeExpr(nameRef("x"), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pv, ok := mpv.Single()
	if !ok || pv.Type != i32 || pv.IsTemp {
		t.Fatalf("expected (Int32, ref), got %v", mpv)
	}
}

func TestAddressOfRejectsTemporary(t *testing.T) {
	a, env := newTestAnalyzer()

	op := &ast.VariadicOp{Op: ast.OpAddressOf, Args: []ast.Expr{boolLit(true)}}
	op.NodeID = nextID()

	_, err := a.AnalyzeExpr(op, env)
	if err == nil {
		t.Fatalf("expected an error taking the address of a temporary")
	}
}

func TestAddressOfLValue(t *testing.T) {
	a, env := newTestAnalyzer()
	i32 := a.Interns.Integer(32, true)
	if err := objenv.AddLocal(env, "x", &object.PValue{Type: i32, IsTemp: false}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	op := &ast.VariadicOp{Op: ast.OpAddressOf, Args: []ast.Expr{nameRef("x")}}
	op.NodeID = nextID()

	mpv, err := a.AnalyzeExpr(op, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pv, _ := mpv.Single()
	if pv.Type != a.Interns.Pointer(i32) || !pv.IsTemp {
		t.Fatalf("expected (Pointer[Int32], temp), got %v", mpv)
	}
}

func TestBindingVarExtendsEnv(t *testing.T) {
	a, env := newTestAnalyzer()

	binding := &ast.Binding{
		Kind:  ast.BindVar,
		Names: []string{"x"},
		Value: intLit(32, true),
	}
	tag, err := a.AnalyzeStmt(binding, env, &AnalysisContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != Fallthrough {
		t.Fatalf("expected Fallthrough, got %v", tag)
	}

	obj, err := objenv.SafeLookup(env, "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pv, ok := obj.(*object.PValue)
	if !ok || pv.Type != a.Interns.Integer(32, true) || pv.IsTemp {
		t.Fatalf("expected x bound to (Int32, ref), got %v", obj)
	}
}

func TestReturnTerminatesBlock(t *testing.T) {
	a, env := newTestAnalyzer()

	block := &ast.Block{Stmts: []ast.Stmt{
		&ast.Return{Values: []ast.Expr{boolLit(true)}, ByRef: []bool{false}},
		&ast.ExprStmt{Expr: boolLit(true)}, // unreachable
	}}
	ctx := &AnalysisContext{}
	tag, err := a.AnalyzeBlock(block, env, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != Terminated {
		t.Fatalf("expected Terminated, got %v", tag)
	}
	if len(ctx.Returns) != 1 || ctx.Returns[0].Type != a.Interns.Bool() {
		t.Fatalf("expected one Bool return slot, got %v", ctx.Returns)
	}
}

func TestIfCombinesBranches(t *testing.T) {
	a, env := newTestAnalyzer()

	ifStmt := &ast.If{
		Cond: nameRef("cond"),
		Then: &ast.Return{Values: []ast.Expr{boolLit(true)}, ByRef: []bool{false}},
		Else: &ast.ExprStmt{Expr: boolLit(true)},
	}
	if err := objenv.AddLocal(env, "cond", &object.PValue{Type: a.Interns.Bool(), IsTemp: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tag, err := a.AnalyzeStmt(ifStmt, env, &AnalysisContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != Fallthrough {
		t.Fatalf("expected Fallthrough (it dominates Terminated), got %v", tag)
	}
}

func TestIfStaticConditionSkipsOtherBranch(t *testing.T) {
	a, env := newTestAnalyzer()

	ifStmt := &ast.If{
		Cond: boolLit(false),
		Then: &ast.Return{Values: []ast.Expr{boolLit(true)}, ByRef: []bool{false}},
		Else: &ast.ExprStmt{Expr: boolLit(true)},
	}
	ctx := &AnalysisContext{}
	tag, err := a.AnalyzeStmt(ifStmt, env, ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag != Fallthrough {
		t.Fatalf("expected Fallthrough from a statically-false condition's else branch, got %v", tag)
	}
	if len(ctx.Returns) != 0 {
		t.Fatalf("expected the then-branch's return to be skipped, got %v", ctx.Returns)
	}
}

// stubResolver lets TestCallRoundTrips exercise the Call/Resolver wiring
// without depending on internal/invoke.
type stubResolver struct {
	result *object.MultiPValue
}

func (s *stubResolver) ResolveCall(a *Analyzer, call *ast.Call, args []*object.PValue, env *objenv.Env) (*object.MultiPValue, error) {
	return s.result, nil
}

func TestCallRoundTrips(t *testing.T) {
	it := object.NewInternTable()
	layout := object.NewLayout(8)
	want := &object.MultiPValue{Values: []*object.PValue{{Type: it.Bool(), IsTemp: true}}}
	a := New(it, layout, &stubResolver{result: want}, nil)
	env := objenv.NewModuleRoot(emptyModule{})

	call := &ast.Call{Callee: nameRef("f"), Args: []ast.Expr{intLit(32, true)}}
	call.NodeID = nextID()

	mpv, err := a.AnalyzeExpr(call, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mpv != want {
		t.Fatalf("expected resolver's result to be returned verbatim")
	}
}
