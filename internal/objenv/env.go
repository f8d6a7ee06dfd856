// Package objenv implements the nested lexical environments used by the
// analyzer and evaluator to resolve names to objects (spec §4.B).
package objenv

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

// ModuleScope is the subset of module-level name resolution an Env needs
// when its parent is a module rather than another Env (spec §4.B: "an Env
// chain bottoms out at the module it was opened in"). It is satisfied by
// *loaderiface.Module, a pair of plain private/public name tables; objenv
// depends only on this narrow contract to avoid importing the
// (external, spec §1 out-of-scope) loader.
type ModuleScope interface {
	LookupPrivate(name string) (object.Object, error)
	LookupPublic(name string) (object.Object, error)
}

// Env is one lexical scope: a flat map of locally-bound names plus a parent
// scope to fall back to. Parent is either another *Env (a nested block/
// lambda scope) or a ModuleScope (the enclosing module, terminating the
// chain), mirroring the original compiler's Env/Module parent union
// (original_source/compiler/env.cpp).
type Env struct {
	Parent Parent
	Entries map[string]object.Object

	// CallByNameExprHead is the call-site expression that triggered
	// expansion of the alias/inline currently being analyzed in this
	// scope, consulted by __FILE__/__LINE__/__COLUMN__ lookups (spec §4.B).
	CallByNameExprHead ast.Expr

	// ExceptionAvailable marks scopes inside a handler where `throw`
	// without an argument (rethrow) is legal.
	ExceptionAvailable bool
}

// Parent is either *Env or a ModuleScope; NewChild and NewModuleRoot build
// one of each, since Go has no tagged union, unlike the original's single
// ObjectPtr parent field.
type Parent interface {
	isEnvParent()
}

type envParent struct{ env *Env }

func (envParent) isEnvParent() {}

type moduleParent struct{ mod ModuleScope }

func (moduleParent) isEnvParent() {}

// NewChild opens a nested scope under env.
func NewChild(env *Env) *Env {
	return &Env{
		Parent:  envParent{env},
		Entries: make(map[string]object.Object),
	}
}

// NewModuleRoot opens the outermost scope of a module body, whose lookups
// fall through to the module's private symbol table.
func NewModuleRoot(mod ModuleScope) *Env {
	return &Env{
		Parent:  moduleParent{mod},
		Entries: make(map[string]object.Object),
	}
}

// AddLocal binds name to value in env, the original's addLocal: duplicate
// local bindings within the same scope are a fatal error (spec §4.B).
func AddLocal(env *Env, name string, value object.Object) error {
	if _, exists := env.Entries[name]; exists {
		return clayerrors.Newf(clayerrors.ENV001, "duplicate name: %s", name)
	}
	env.Entries[name] = value
	return nil
}

// Lookup resolves name by walking env's entries, then its parent chain,
// finally falling through to the owning module's private symbols (spec
// §4.B, original_source/compiler/env.cpp:lookupEnv). A miss anywhere in the
// chain yields (nil, nil), never an error — only SafeLookup is fatal on a
// miss, matching lookupEnv vs safeLookupEnv in the original.
func Lookup(env *Env, name string) (object.Object, error) {
	if v, ok := env.Entries[name]; ok {
		return v, nil
	}
	switch p := env.Parent.(type) {
	case envParent:
		return Lookup(p.env, name)
	case moduleParent:
		return p.mod.LookupPrivate(name)
	default:
		return nil, nil
	}
}

// SafeLookup is Lookup plus an ENV002 "undefined name" error on a miss.
func SafeLookup(env *Env, name string) (object.Object, error) {
	obj, err := Lookup(env, name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, clayerrors.Newf(clayerrors.ENV002, "undefined name: %s", name)
	}
	return obj, nil
}

// LookupEx resolves name like Lookup but also reports whether the binding
// crosses a lambda boundary relative to nonLocalEnv (isNonLocal) and whether
// it ultimately came from module scope (isGlobal). Lambda lowering uses
// isNonLocal to decide which names must be captured into a closure record
// (spec §4.B, original_source/compiler/env.cpp:lookupEnvEx).
func LookupEx(env *Env, name string, nonLocalEnv *Env) (obj object.Object, isNonLocal bool, isGlobal bool, err error) {
	if nonLocalEnv == env {
		nonLocalEnv = nil
	}

	if v, ok := env.Entries[name]; ok {
		return v, nonLocalEnv == nil, false, nil
	}

	switch p := env.Parent.(type) {
	case envParent:
		return LookupEx(p.env, name, nonLocalEnv)
	case moduleParent:
		z, lookupErr := p.mod.LookupPrivate(name)
		if lookupErr != nil {
			return nil, false, false, lookupErr
		}
		if z == nil {
			return nil, false, false, clayerrors.Newf(clayerrors.ENV002, "undefined name: %s", name)
		}
		return z, true, true, nil
	default:
		return nil, false, false, clayerrors.Newf(clayerrors.ENV002, "undefined name: %s", name)
	}
}

// ForeignExpr wraps expr with the environment it should be resolved in once
// it is spliced into another scope (e.g. an alias argument substituted into
// the caller's body). Unpack is transparent to foreign-wrapping so that
// `...x` still unpacks the right value after substitution (spec §4.B,
// original_source/compiler/env.cpp:foreignExpr).
func ForeignExpr(env *Env, expr ast.Expr) ast.Expr {
	if u, ok := expr.(*ast.Unpack); ok {
		return &ast.Unpack{
			Expr: ForeignExpr(env, u.Expr),
		}
	}
	return &ast.ForeignExpr{Env: env, Inner: expr}
}

// LookupCallByNameExprHead walks up the Env chain for the nearest recorded
// call-site head expression, used by __FILE__/__LINE__/__COLUMN__ (spec
// §4.B). Returns nil if none is in scope (the chain bottoms out at a module
// root without passing through an alias expansion).
func LookupCallByNameExprHead(env *Env) ast.Expr {
	if env.CallByNameExprHead != nil {
		return env.CallByNameExprHead
	}
	if p, ok := env.Parent.(envParent); ok {
		return LookupCallByNameExprHead(p.env)
	}
	return nil
}

// LookupExceptionAvailable reports whether env (or an ancestor Env) is
// inside a handler where a bare `throw` rethrow is legal.
func LookupExceptionAvailable(env *Env) bool {
	if env.ExceptionAvailable {
		return true
	}
	if p, ok := env.Parent.(envParent); ok {
		return LookupExceptionAvailable(p.env)
	}
	return false
}
