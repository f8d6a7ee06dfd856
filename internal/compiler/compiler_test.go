package compiler

import (
	"testing"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

func returnExpr(e ast.Expr) *ast.Block {
	return &ast.Block{Stmts: []ast.Stmt{&ast.Return{Values: []ast.Expr{e}, ByRef: []bool{false}}}}
}

// TestPolymorphicIdentity is spec §8 scenario E1: `id(x) = x` called with
// `id(42)` resolves to a single Int32 return, non-by-ref.
func TestPolymorphicIdentity(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	i32 := cs.Interns.Integer(32, true)
	if err := cs.DefineGlobal("I32", i32, true); err != nil {
		t.Fatal(err)
	}
	proc, err := cs.DefineProcedure("id")
	if err != nil {
		t.Fatal(err)
	}
	cs.AddOverload(proc, &ast.Overload{
		Target: &ast.NameRef{Name: "id"},
		Code: &ast.Code{
			FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "I32"}}},
			Body:       returnExpr(&ast.NameRef{Name: "x"}),
		},
	})

	result, err := cs.Analyze("id", []*object.Type{i32}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, ok := result.Single()
	if !ok {
		t.Fatalf("expected a single return value, got %d", len(result.Values))
	}
	if v.Type != i32 {
		t.Fatalf("expected Int32, got %s", v.Type)
	}
	if !v.IsTemp {
		t.Fatalf("expected id's return to be an rvalue")
	}

	arg, err := cs.NewIntValue(i32, 42)
	if err != nil {
		t.Fatal(err)
	}
	ev, err := cs.Eval("id", []*object.EValue{arg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := ev.Single()
	if !ok {
		t.Fatalf("expected a single evaluated result")
	}
	if got.Type != i32 {
		t.Fatalf("expected Int32, got %s", got.Type)
	}
}

// TestPredicateFilteredOverload is the spec §8 scenario E2 stand-in: two
// overloads of `f` with fixed Int32 and Float64 parameter types (neither
// carries a predicate) pick different bodies for Int32 vs Float64 arguments.
func TestPredicateFilteredOverload(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	i32 := cs.Interns.Integer(32, true)
	f64 := cs.Interns.Float(64, false)
	if err := cs.DefineGlobal("I32", i32, true); err != nil {
		t.Fatal(err)
	}
	if err := cs.DefineGlobal("F64", f64, true); err != nil {
		t.Fatal(err)
	}

	proc, err := cs.DefineProcedure("f")
	if err != nil {
		t.Fatal(err)
	}
	cs.AddOverload(proc, &ast.Overload{
		Target: &ast.NameRef{Name: "f"},
		Code: &ast.Code{
			FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "I32"}}},
			Body:       returnExpr(&ast.IntLit{Bits: 32, Signed: true, Value: 1}),
		},
	})
	cs.AddOverload(proc, &ast.Overload{
		Target: &ast.NameRef{Name: "f"},
		Code: &ast.Code{
			FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "F64"}}},
			Body:       returnExpr(&ast.IntLit{Bits: 32, Signed: true, Value: 2}),
		},
	})

	intResult, err := cs.Analyze("f", []*object.Type{i32}, nil)
	if err != nil {
		t.Fatalf("unexpected error resolving f(Int32): %v", err)
	}
	iv, _ := intResult.Single()
	if iv.Type != i32 {
		t.Fatalf("expected f(Int32) to return Int32, got %s", iv.Type)
	}

	floatResult, err := cs.Analyze("f", []*object.Type{f64}, nil)
	if err != nil {
		t.Fatalf("unexpected error resolving f(Float64): %v", err)
	}
	fv, _ := floatResult.Single()
	if fv.Type != i32 {
		t.Fatalf("expected f(Float64) to also return Int32 (its literal return type), got %s", fv.Type)
	}

	iarg, err := cs.NewIntValue(i32, 0)
	if err != nil {
		t.Fatal(err)
	}
	res, err := cs.Eval("f", []*object.EValue{iarg})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rv, _ := res.Single()
	got := int64(0)
	for i, b := range rv.Addr {
		got |= int64(b) << (8 * uint(i))
	}
	if got != 1 {
		t.Fatalf("expected f(Int32) to evaluate to 1, got %d", got)
	}
}

// TestNoMatchReportsAllCandidates covers spec §4.F/§7's bundled match
// failure reporting through the CompilerState facade.
func TestNoMatchReportsAllCandidates(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	boolT := cs.Interns.Bool()
	i32 := cs.Interns.Integer(32, true)
	if err := cs.DefineGlobal("Bool", boolT, true); err != nil {
		t.Fatal(err)
	}
	proc, err := cs.DefineProcedure("onlyBool")
	if err != nil {
		t.Fatal(err)
	}
	cs.AddOverload(proc, &ast.Overload{
		Target: &ast.NameRef{Name: "onlyBool"},
		Code: &ast.Code{
			FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "Bool"}}},
			Body:       returnExpr(&ast.NameRef{Name: "x"}),
		},
	})

	_, err = cs.Analyze("onlyBool", []*object.Type{i32}, nil)
	if err == nil {
		t.Fatalf("expected a match failure")
	}
	if _, ok := err.(interface{ Error() string }); !ok {
		t.Fatalf("expected an error value")
	}
}

// TestAnalyzeGlobalsProducesGVarInstance is spec §6's GVarInstance output:
// a defined global's initializer is analyzed and its resolved type is
// reported alongside the initializer expression.
func TestAnalyzeGlobalsProducesGVarInstance(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	lit := &ast.IntLit{Bits: 32, Signed: true, Value: 7}
	gv, err := cs.DefineGlobalVariable("answer", lit, true)
	if err != nil {
		t.Fatal(err)
	}
	if gv.Type != nil {
		t.Fatalf("expected Type to stay nil before AnalyzeGlobals")
	}

	instances, err := cs.AnalyzeGlobals()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(instances) != 1 {
		t.Fatalf("expected 1 GVarInstance, got %d", len(instances))
	}
	inst := instances[0]
	if inst.Name != "answer" {
		t.Fatalf("expected name answer, got %s", inst.Name)
	}
	if inst.Init != ast.Expr(lit) {
		t.Fatalf("expected Init to be the declared initializer")
	}
	i32 := cs.Interns.Integer(32, true)
	if inst.Type != i32 {
		t.Fatalf("expected Int32, got %s", inst.Type)
	}
	if gv.Type != i32 {
		t.Fatalf("expected DefineGlobalVariable's object to be updated in place")
	}
}

// TestAnalyzeGlobalsSkipsUninitialized covers a global with no initializer:
// there is nothing to export as a GVarInstance for it.
func TestAnalyzeGlobalsSkipsUninitialized(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	if _, err := cs.DefineGlobalVariable("uninitialized", nil, false); err != nil {
		t.Fatal(err)
	}
	instances, err := cs.AnalyzeGlobals()
	if err != nil {
		t.Fatal(err)
	}
	if len(instances) != 0 {
		t.Fatalf("expected no GVarInstances, got %d", len(instances))
	}
}

// TestExportInvoke is spec §6's per-InvokeEntry output surfaced through the
// CompilerState facade: resolving id(Int32) reports its argument names/
// types and a non-by-ref Int32 return.
func TestExportInvoke(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	i32 := cs.Interns.Integer(32, true)
	if err := cs.DefineGlobal("I32", i32, true); err != nil {
		t.Fatal(err)
	}
	proc, err := cs.DefineProcedure("id")
	if err != nil {
		t.Fatal(err)
	}
	cs.AddOverload(proc, &ast.Overload{
		Target: &ast.NameRef{Name: "id"},
		Code: &ast.Code{
			FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "I32"}}},
			Body:       returnExpr(&ast.NameRef{Name: "x"}),
		},
	})

	exp, err := cs.ExportInvoke("id", []*object.Type{i32})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exp.Callable != object.Object(proc) {
		t.Fatalf("expected Callable to be the id procedure")
	}
	if len(exp.ArgNames) != 1 || exp.ArgNames[0] != "x" {
		t.Fatalf("expected ArgNames [x], got %v", exp.ArgNames)
	}
	if len(exp.ArgTypes) != 1 || exp.ArgTypes[0] != i32 {
		t.Fatalf("expected ArgTypes [Int32], got %v", exp.ArgTypes)
	}
	if len(exp.ReturnTypes) != 1 || exp.ReturnTypes[0] != i32 {
		t.Fatalf("expected ReturnTypes [Int32], got %v", exp.ReturnTypes)
	}
	if exp.ReturnIsRef[0] {
		t.Fatalf("expected id's return to be by-value, not by-ref")
	}
}

// TestUndefinedCallableIsFatal exercises the ENV002 path (spec §4.B) through
// the facade: calling a name that was never defined is a fatal lookup error,
// not a panic.
func TestUndefinedCallableIsFatal(t *testing.T) {
	cs := New("main", DefaultTarget(), nil)
	_, err := cs.Analyze("nope", nil, nil)
	if err == nil {
		t.Fatalf("expected an error")
	}
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.ENV002 {
		t.Fatalf("expected ENV002, got %v", err)
	}
}
