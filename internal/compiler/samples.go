package compiler

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/object"
)

// Sample is one small, fully in-memory program cmd/clayic and
// internal/replcore can resolve/analyze/evaluate against. There is no
// parser in scope (spec §1), so the CLI/REPL exercise the pipeline against
// synthetic modules built directly out of ast nodes rather than source text
// — SPEC_FULL §2's documented reason cmd/clayic exists at all.
type Sample struct {
	Name        string
	Description string
	Callable    string
	// ArgTypeNames are the global names (bound by Build) a caller should
	// pass as the Analyze/Eval argument-type tuple, in order.
	ArgTypeNames []string
	Build        func(cs *CompilerState)
}

// Samples lists every built-in program, in a stable order for `clayic list`.
var Samples = []Sample{identitySample(), predicateSample(), lenRecursionSample(), overflowSample()}

// FindSample looks up a sample by name.
func FindSample(name string) (Sample, bool) {
	for _, s := range Samples {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}

// identitySample is spec §8 scenario E1: `id(x) = x`.
func identitySample() Sample {
	return Sample{
		Name:         "identity",
		Description:  "id(x) = x — spec E1, polymorphic identity",
		Callable:     "id",
		ArgTypeNames: []string{"I32"},
		Build: func(cs *CompilerState) {
			i32 := cs.Interns.Integer(32, true)
			must(cs.DefineGlobal("I32", i32, true))
			proc, err := cs.DefineProcedure("id")
			must(err)
			cs.AddOverload(proc, &ast.Overload{
				Target: &ast.NameRef{Name: "id"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "I32"}}},
					Body:       returnOne(&ast.NameRef{Name: "x"}),
				},
			})
		},
	}
}

// predicateSample stands in for spec §8 scenario E2: two overloads of `f`
// chosen by argument type. The overloads declare fixed Int32 and Float64
// parameter types and carry no predicate, so dispatch is plain type
// matching; no IntegerType?/FloatType? check is evaluated.
func predicateSample() Sample {
	return Sample{
		Name:         "predicate",
		Description:  "f(Int32) vs f(Float64) — spec E2 stand-in, overloads chosen by fixed parameter type (no predicate)",
		Callable:     "f",
		ArgTypeNames: []string{"I32"},
		Build: func(cs *CompilerState) {
			i32 := cs.Interns.Integer(32, true)
			f64 := cs.Interns.Float(64, false)
			must(cs.DefineGlobal("I32", i32, true))
			must(cs.DefineGlobal("F64", f64, true))
			proc, err := cs.DefineProcedure("f")
			must(err)
			cs.AddOverload(proc, &ast.Overload{
				Target: &ast.NameRef{Name: "f"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "I32"}}},
					Body:       returnOne(&ast.IntLit{Bits: 32, Signed: true, Value: 1}),
				},
			})
			cs.AddOverload(proc, &ast.Overload{
				Target: &ast.NameRef{Name: "f"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{{Name: "x", Type: &ast.NameRef{Name: "F64"}}},
					Body:       returnOne(&ast.IntLit{Bits: 32, Signed: true, Value: 2}),
				},
			})
		},
	}
}

// lenRecursionSample is spec §8 scenario E3: a self-recursive procedure with
// a non-recursive base case (`n == 0`), whose return type the Analyzer
// must settle without evaluating anything.
func lenRecursionSample() Sample {
	return Sample{
		Name:         "recursion-len",
		Description:  "len(n) = if n == 0 then 0 else 1 + len(n - 1) — spec E3, recursion with base case",
		Callable:     "len",
		ArgTypeNames: []string{"I32"},
		Build: func(cs *CompilerState) {
			i32 := cs.Interns.Integer(32, true)
			must(cs.DefineGlobal("I32", i32, true))
			proc, err := cs.DefineProcedure("len")
			must(err)
			// if n == 0 then return 0 else return 1 + len(n - 1)
			cond := &ast.Call{Callee: &ast.NameRef{Name: "=="}, Args: []ast.Expr{
				&ast.NameRef{Name: "n"}, &ast.IntLit{Bits: 32, Signed: true, Value: 0},
			}}
			elseBranch := &ast.Return{
				Values: []ast.Expr{&ast.Call{Callee: &ast.NameRef{Name: "+"}, Args: []ast.Expr{
					&ast.IntLit{Bits: 32, Signed: true, Value: 1},
					&ast.Call{Callee: &ast.NameRef{Name: "len"}, Args: []ast.Expr{
						&ast.Call{Callee: &ast.NameRef{Name: "-"}, Args: []ast.Expr{
							&ast.NameRef{Name: "n"}, &ast.IntLit{Bits: 32, Signed: true, Value: 1},
						}},
					}},
				}}},
				ByRef: []bool{false},
			}
			body := &ast.Block{Stmts: []ast.Stmt{&ast.If{
				Cond: cond,
				Then: returnOne(&ast.IntLit{Bits: 32, Signed: true, Value: 0}),
				Else: elseBranch,
			}}}

			eqProc, err := cs.DefineProcedure("==")
			must(err)
			cs.AddOverload(eqProc, &ast.Overload{
				Target: &ast.NameRef{Name: "=="},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{
						{Name: "a", Type: &ast.NameRef{Name: "I32"}},
						{Name: "b", Type: &ast.NameRef{Name: "I32"}},
					},
					Body: returnOne(&ast.IntLit{Bits: 32, Signed: true, Value: 1}),
				},
			})
			plusProc, err := cs.DefineProcedure("+")
			must(err)
			cs.AddOverload(plusProc, &ast.Overload{
				Target: &ast.NameRef{Name: "+"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{
						{Name: "a", Type: &ast.NameRef{Name: "I32"}},
						{Name: "b", Type: &ast.NameRef{Name: "I32"}},
					},
					Body: returnOne(&ast.NameRef{Name: "a"}),
				},
			})
			minusProc, err := cs.DefineProcedure("-")
			must(err)
			cs.AddOverload(minusProc, &ast.Overload{
				Target: &ast.NameRef{Name: "-"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{
						{Name: "a", Type: &ast.NameRef{Name: "I32"}},
						{Name: "b", Type: &ast.NameRef{Name: "I32"}},
					},
					Body: returnOne(&ast.NameRef{Name: "a"}),
				},
			})

			cs.AddOverload(proc, &ast.Overload{
				Target: &ast.NameRef{Name: "len"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{{Name: "n", Type: &ast.NameRef{Name: "I32"}}},
					Body:       body,
				},
			})
		},
	}
}

// overflowSample is spec §8 scenario E5: checked integer addition on an
// Int8 overflows at 100+100 but not at 10+20.
func overflowSample() Sample {
	return Sample{
		Name:         "checked-add",
		Description:  "integerAddChecked(Int8, a, b) — spec E5, checked overflow",
		Callable:     "addChecked",
		ArgTypeNames: []string{"I8"},
		Build: func(cs *CompilerState) {
			i8 := cs.Interns.Integer(8, true)
			must(cs.DefineGlobal("I8", i8, true))
			must(cs.DefineGlobal("integerAddChecked", object.PrimOpSingleton(object.PrimIntegerAddChecked), true))
			proc, err := cs.DefineProcedure("addChecked")
			must(err)
			body := returnOne(&ast.Call{
				Callee: &ast.NameRef{Name: "integerAddChecked"},
				Args:   []ast.Expr{&ast.NameRef{Name: "a"}, &ast.NameRef{Name: "b"}},
			})
			cs.AddOverload(proc, &ast.Overload{
				Target: &ast.NameRef{Name: "addChecked"},
				Code: &ast.Code{
					FormalArgs: []ast.FormalArg{
						{Name: "a", Type: &ast.NameRef{Name: "I8"}},
						{Name: "b", Type: &ast.NameRef{Name: "I8"}},
					},
					Body: body,
				},
			})
		},
	}
}

func returnOne(e ast.Expr) *ast.Block {
	return &ast.Block{Stmts: []ast.Stmt{&ast.Return{Values: []ast.Expr{e}, ByRef: []bool{false}}}}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
