// Package invoke implements the overload resolver and invocation cache:
// given a callable and a tuple of argument types, it finds the one overload
// whose target/argument patterns unify and whose predicate holds, and
// caches the resulting specialization so a repeat call with the same shape
// skips matching entirely (spec §4.F).
//
// invoke sits above analyzer and evaluator in the dependency order (spec
// §2), with only internal/compiler and its drivers higher: it imports
// analyzer and evaluator directly and implements the narrow interfaces
// those packages declare (analyzer.Resolver, evaluator.CallResolver,
// analyzer.StringEvaluator's evaluator-side companion), tying the
// type-analysis/compile-time-evaluation/overload-resolution triangle
// together for real.
package invoke

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/objenv"
)

// overloadEnvs pairs each Overload declaration with the lexical scope it was
// declared in. ast.Overload carries no Env field itself — ast has zero
// dependency on objenv, the same reason object.GlobalAlias.Env is typed
// `any` rather than `*objenv.Env` — so this side-table plays the role
// object.RegisterNewTypeUnderlying's map plays for Type/Layout (spec §4.A).
var overloadEnvs = make(map[*ast.Overload]*objenv.Env)

// RegisterOverloadEnv records the scope an Overload was declared in. Called
// once per overload by whatever installs top-level declarations into a
// module (the loader, out of scope here per spec §1/§6).
func RegisterOverloadEnv(o *ast.Overload, env *objenv.Env) {
	overloadEnvs[o] = env
}

// overloadEnv looks up the scope an overload was registered under, fatal if
// it was never registered: every overload reachable from a callable's
// Overloads list must have gone through RegisterOverloadEnv first.
func overloadEnv(o *ast.Overload) *objenv.Env {
	env, ok := overloadEnvs[o]
	if !ok {
		panic("invoke: overload was never registered with RegisterOverloadEnv")
	}
	return env
}
