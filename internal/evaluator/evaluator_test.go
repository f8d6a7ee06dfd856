package evaluator

import (
	"testing"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

type emptyModule struct{}

func (emptyModule) LookupPrivate(name string) (object.Object, error) { return nil, nil }
func (emptyModule) LookupPublic(name string) (object.Object, error)  { return nil, nil }

func newTestEvaluator() (*Evaluator, *objenv.Env) {
	it := object.NewInternTable()
	layout := object.NewLayout(8)
	ev := New(it, layout, 4096, nil, nil)
	env := objenv.NewModuleRoot(emptyModule{})
	return ev, env
}

var idGen ast.NodeID

func nextID() ast.NodeID {
	idGen++
	return idGen
}

func intLit(bits int, signed bool, v int64) *ast.IntLit {
	i := &ast.IntLit{Bits: bits, Signed: signed, Value: v}
	i.NodeID = nextID()
	return i
}

// TestIntegerAddCheckedOverflow is spec §8 scenario E5: integerAddChecked on
// Int8 overflows at 100+100 with the exact message "integer overflow: 100 + 100".
func TestIntegerAddCheckedOverflow(t *testing.T) {
	ev, env := newTestEvaluator()
	i8 := ev.Interns.Integer(8, true)

	a, err := ev.EvalExpr(intLit(8, true, 100), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := ev.EvalExpr(intLit(8, true, 100), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	av, _ := a.Single()
	bv, _ := b.Single()

	_, err = ev.EvalPrimOp(object.PrimOpSingleton(object.PrimIntegerAddChecked), []*object.EValue{av, bv}, i8)
	if err == nil {
		t.Fatalf("expected an overflow error, got none")
	}
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA001 {
		t.Fatalf("expected EVA001, got %v", err)
	}
	if cerr.Message != "integer overflow: 100 + 100" {
		t.Fatalf("expected exact overflow message %q, got %q", "integer overflow: 100 + 100", cerr.Message)
	}
}

func TestIntegerAddCheckedInRange(t *testing.T) {
	ev, env := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)

	a, _ := ev.EvalExpr(intLit(32, true, 10), env)
	b, _ := ev.EvalExpr(intLit(32, true, 32), env)
	av, _ := a.Single()
	bv, _ := b.Single()

	result, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimIntegerAddChecked), []*object.EValue{av, bv}, i32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rv, _ := result.Single()
	got := decodeInt(32, true, rv.Addr)
	if got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestIntegerDivideByZero(t *testing.T) {
	ev, env := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)

	a, _ := ev.EvalExpr(intLit(32, true, 10), env)
	b, _ := ev.EvalExpr(intLit(32, true, 0), env)
	av, _ := a.Single()
	bv, _ := b.Single()

	_, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimIntegerDivide), []*object.EValue{av, bv}, i32)
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA002 {
		t.Fatalf("expected EVA002, got %v", err)
	}
}

func TestShiftOutOfRange(t *testing.T) {
	ev, env := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)

	a, _ := ev.EvalExpr(intLit(32, true, 1), env)
	shift, _ := ev.EvalExpr(intLit(32, true, 40), env)
	av, _ := a.Single()
	sv, _ := shift.Single()

	_, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimIntegerShiftLeft), []*object.EValue{av, sv}, i32)
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA003 {
		t.Fatalf("expected EVA003, got %v", err)
	}
}

func TestBitcastSizeMismatchRejected(t *testing.T) {
	ev, env := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)
	i64 := ev.Interns.Integer(64, true)

	a, _ := ev.EvalExpr(intLit(32, true, 7), env)
	av, _ := a.Single()

	_, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimBitcast), []*object.EValue{av}, i64)
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA004 {
		t.Fatalf("expected EVA004, got %v", err)
	}
}

func TestStackExhaustion(t *testing.T) {
	s := NewStack(4)
	if _, err := s.Alloc(4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := s.Alloc(1)
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA006 {
		t.Fatalf("expected EVA006, got %v", err)
	}
}

func TestStackMarkPopReleasesAllocations(t *testing.T) {
	s := NewStack(8)
	m := s.Mark()
	if _, err := s.Alloc(8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Pop(m)
	if _, err := s.Alloc(8); err != nil {
		t.Fatalf("expected space to be reusable after Pop, got: %v", err)
	}
}

// stubResolver exercises memoized ("?"-suffixed) procedure calls without
// depending on internal/invoke.
type stubResolver struct {
	calls  int
	result *object.MultiEValue
}

func (s *stubResolver) ResolveCall(ev *Evaluator, callable object.Object, args []*object.EValue, env *objenv.Env) (*object.MultiEValue, error) {
	s.calls++
	return s.result, nil
}

// TestExternalProcedureCallRejectedAtCompileTime is SPEC_FULL §4.G: the
// Evaluator's FFI primitive must reject any attempt to invoke an `external`
// declaration at compile time, distinctly from the generic "not callable"
// error other non-callable objects get.
func TestExternalProcedureCallRejectedAtCompileTime(t *testing.T) {
	it := object.NewInternTable()
	i32 := it.Integer(32, true)
	extType := it.ExternalCodePointer(object.CCDefault, false, []*object.Type{i32}, i32)
	extProc := &object.ExternalProcedure{
		Decl: &ast.ExternalProcedureDecl{Name: "native_add"},
		Type: extType,
	}

	layout := object.NewLayout(8)
	ev := New(it, layout, 4096, nil, nil)
	env := objenv.NewModuleRoot(testModule{public: map[string]object.Object{"native_add": extProc}})

	call := &ast.Call{
		Callee: &ast.NameRef{Name: "native_add"},
		Args:   []ast.Expr{intLit(32, true, 1)},
	}
	_, err := ev.EvalExpr(call, env)
	if err == nil {
		t.Fatalf("expected external procedure invocation to be rejected")
	}
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA005 {
		t.Fatalf("expected EVA005, got %v", err)
	}
}

func TestMemoizedProcedureCallsResolverOnce(t *testing.T) {
	it := object.NewInternTable()
	layout := object.NewLayout(8)
	want := &object.MultiEValue{Values: []*object.EValue{{Type: it.Bool(), Addr: boolBytes(true)}}}
	resolver := &stubResolver{result: want}
	ev := New(it, layout, 4096, resolver, nil)
	env := objenv.NewModuleRoot(emptyModule{})

	proc := &object.Procedure{Name: "memoized?"}
	if err := objenv.AddLocal(env, "memoized?", proc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	callee := &ast.NameRef{Name: "memoized?"}
	callee.NodeID = nextID()
	call := &ast.Call{Callee: callee, Args: []ast.Expr{intLit(32, true, 1)}}
	call.NodeID = nextID()

	if _, err := ev.EvalExpr(call, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ev.EvalExpr(call, env); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolver.calls != 1 {
		t.Fatalf("expected the resolver to run once and serve the second call from memo, got %d calls", resolver.calls)
	}
}
