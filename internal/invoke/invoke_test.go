package invoke

import (
	"testing"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/evaluator"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

type emptyModule struct{}

func (emptyModule) LookupPrivate(name string) (object.Object, error) { return nil, nil }
func (emptyModule) LookupPublic(name string) (object.Object, error)  { return nil, nil }

var idGen ast.NodeID

func nextID() ast.NodeID {
	idGen++
	return idGen
}

func nameRef(name string) *ast.NameRef {
	n := &ast.NameRef{Name: name}
	n.NodeID = nextID()
	return n
}

func intLit(bits int, signed bool, v int64) *ast.IntLit {
	i := &ast.IntLit{Bits: bits, Signed: signed, Value: v}
	i.NodeID = nextID()
	return i
}

// newHarness builds an Evaluator+Resolver pair wired to each other, the
// minimal loop a real compiler facade assembles (spec §5).
func newHarness(t *testing.T) (*Resolver, *evaluator.Evaluator, *objenv.Env) {
	t.Helper()
	it := object.NewInternTable()
	layout := object.NewLayout(8)
	r := &Resolver{Interns: it, Layout: layout}
	ev := evaluator.New(it, layout, 4096, EvaluatorAdapter{r}, nil)
	r.Eval = ev
	env := objenv.NewModuleRoot(emptyModule{})
	return r, ev, env
}

// buildOverload wires one overload's lexical environment (registering it
// with RegisterOverloadEnv, the side table patterns.go's buildOverloadPatterns
// reads from) and returns it.
func buildOverload(env *objenv.Env, target ast.Expr, args []ast.FormalArg, body ast.Stmt) *ast.Overload {
	o := &ast.Overload{
		Target: target,
		Code: &ast.Code{
			FormalArgs: args,
			Body:       body,
		},
		Location: ast.Pos{Line: 1},
	}
	RegisterOverloadEnv(o, env)
	return o
}

func returnExpr(e ast.Expr) *ast.Block {
	r := &ast.Return{Values: []ast.Expr{e}, ByRef: []bool{false}}
	return &ast.Block{Stmts: []ast.Stmt{r}}
}

func TestResolveDispatchesOnArgumentType(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)
	i64 := ev.Interns.Integer(64, true)

	proc := &object.Procedure{Name: "choose"}
	if err := objenv.AddLocal(env, "choose", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I64", i64); err != nil {
		t.Fatal(err)
	}

	o32 := buildOverload(env, nameRef("choose"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(intLit(32, true, 1)))
	o64 := buildOverload(env, nameRef("choose"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I64")}},
		returnExpr(intLit(32, true, 2)))
	proc.Overloads = []*ast.Overload{o32, o64}

	a32, err := ev.EvalExpr(intLit(32, true, 10), env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	av, _ := a32.Single()

	entry, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Overload != o32 {
		t.Fatalf("expected the I32 overload to match, got a different one")
	}

	entry2, err := r.resolveEntry(proc, []*object.Type{i64}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry2.Overload != o64 {
		t.Fatalf("expected the I64 overload to match, got a different one")
	}
	_ = av
}

func TestResolveCachesBySignature(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)

	proc := &object.Procedure{Name: "id"}
	if err := objenv.AddLocal(env, "id", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	o := buildOverload(env, nameRef("id"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(nameRef("x")))
	proc.Overloads = []*ast.Overload{o}

	e1, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	e2, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e1 != e2 {
		t.Fatalf("expected the same cached InvokeEntry to be returned for an identical signature")
	}
}

func TestResolveNoMatchReportsEveryCandidate(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)
	boolT := ev.Interns.Bool()

	proc := &object.Procedure{Name: "onlyBool"}
	if err := objenv.AddLocal(env, "onlyBool", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "Bool", boolT); err != nil {
		t.Fatal(err)
	}
	o := buildOverload(env, nameRef("onlyBool"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("Bool")}},
		returnExpr(nameRef("x")))
	proc.Overloads = []*ast.Overload{o}

	_, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err == nil {
		t.Fatalf("expected a match failure")
	}
	mfe, ok := err.(*MatchFailureError)
	if !ok {
		t.Fatalf("expected *MatchFailureError, got %T: %v", err, err)
	}
	if len(mfe.Failures) != 1 {
		t.Fatalf("expected exactly one failure reported, got %d", len(mfe.Failures))
	}
}

func TestResolveAmbiguousNonDefaultOverloadsError(t *testing.T) {
	r, ev, env := newHarness(t)
	r.FinalOverloadsEnabled = true
	i32 := ev.Interns.Integer(32, true)

	proc := &object.Procedure{Name: "dup"}
	if err := objenv.AddLocal(env, "dup", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	first := buildOverload(env, nameRef("dup"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(nameRef("x")))
	second := buildOverload(env, nameRef("dup"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(nameRef("x")))
	proc.Overloads = []*ast.Overload{first, second}

	_, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err == nil {
		t.Fatalf("expected an ambiguous-match error")
	}
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.INV002 {
		t.Fatalf("expected INV002, got %v", err)
	}
}

func TestResolveDefaultOverloadYieldsToSpecific(t *testing.T) {
	r, ev, env := newHarness(t)
	r.FinalOverloadsEnabled = true
	i32 := ev.Interns.Integer(32, true)

	proc := &object.Procedure{Name: "pick"}
	if err := objenv.AddLocal(env, "pick", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	fallback := buildOverload(env, nameRef("pick"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(intLit(32, true, 0)))
	fallback.Code.IsDefault = true
	specific := buildOverload(env, nameRef("pick"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(intLit(32, true, 1)))
	proc.Overloads = []*ast.Overload{fallback, specific}

	entry, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Overload != specific {
		t.Fatalf("expected the non-default overload to win over the default one")
	}
}

func TestResolveRespectsTempnessPolicy(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)

	proc := &object.Procedure{Name: "mutate"}
	if err := objenv.AddLocal(env, "mutate", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	o := buildOverload(env, nameRef("mutate"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32"), Tempness: ast.TempLValue}},
		returnExpr(nameRef("x")))
	proc.Overloads = []*ast.Overload{o}

	_, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err == nil {
		t.Fatalf("expected an lvalue-only overload to reject an rvalue argument")
	}
}

// TestFinalOverloadsDisabledTakesFirstMatch is spec §4.F's default mode: with
// FinalOverloadsEnabled left false (the zero value), resolution takes the
// first tempness-compatible overload in declaration order and never performs
// the continued scan that would otherwise let a later non-default overload
// win or flag two matches as ambiguous.
func TestFinalOverloadsDisabledTakesFirstMatch(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)

	proc := &object.Procedure{Name: "pick"}
	if err := objenv.AddLocal(env, "pick", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	first := buildOverload(env, nameRef("pick"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(intLit(32, true, 1)))
	second := buildOverload(env, nameRef("pick"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(intLit(32, true, 2)))
	proc.Overloads = []*ast.Overload{first, second}

	entry, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entry.Overload != first {
		t.Fatalf("expected the first declared overload to win with final-overloads mode off")
	}
}

// TestForwardedRValueFlag is spec §8 testable property 8: a TempForward
// parameter receiving an rvalue resolves forwardedRValue=true; the same
// parameter receiving an lvalue resolves false, and the two calls memoize to
// distinct InvokeEntrys.
func TestForwardedRValueFlag(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)

	proc := &object.Procedure{Name: "forward"}
	if err := objenv.AddLocal(env, "forward", proc); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	o := buildOverload(env, nameRef("forward"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32"), Tempness: ast.TempForward}},
		returnExpr(nameRef("x")))
	proc.Overloads = []*ast.Overload{o}

	rvalEntry, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempRValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rvalEntry.FixedForwardedRValue) != 1 || !rvalEntry.FixedForwardedRValue[0] {
		t.Fatalf("expected forwardedRValue=true for an rvalue argument, got %v", rvalEntry.FixedForwardedRValue)
	}

	lvalEntry, err := r.resolveEntry(proc, []*object.Type{i32}, []ValueTempness{TempLValue})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lvalEntry.FixedForwardedRValue) != 1 || lvalEntry.FixedForwardedRValue[0] {
		t.Fatalf("expected forwardedRValue=false for an lvalue argument, got %v", lvalEntry.FixedForwardedRValue)
	}
	if rvalEntry == lvalEntry {
		t.Fatalf("expected the two tempness-distinct calls to memoize to separate entries")
	}
}

func TestEndToEndRecordConstructorResolvesViaEvaluator(t *testing.T) {
	r, ev, env := newHarness(t)
	i32 := ev.Interns.Integer(32, true)

	recDecl := &object.RecordDecl{Decl: &ast.RecordDecl{
		Name:   "Point",
		Fields: []ast.RecordField{{Name: "x", Type: nameRef("I32")}},
	}}
	if err := objenv.AddLocal(env, "Point", recDecl); err != nil {
		t.Fatal(err)
	}
	if err := objenv.AddLocal(env, "I32", i32); err != nil {
		t.Fatal(err)
	}
	ctor := buildOverload(env, nameRef("Point"),
		[]ast.FormalArg{{Name: "x", Type: nameRef("I32")}},
		returnExpr(nameRef("x")))
	recDecl.Decl.Overloads = []*ast.Overload{ctor}

	callee := nameRef("Point")
	call := &ast.Call{Callee: callee, Args: []ast.Expr{intLit(32, true, 7)}}
	call.NodeID = nextID()

	result, err := ev.EvalExpr(call, env)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := result.Single()
	if !ok {
		t.Fatalf("expected a single return value")
	}
	if v.Type != i32 {
		t.Fatalf("expected the constructor to return an I32, got %s", v.Type)
	}
}
