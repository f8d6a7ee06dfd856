// Package analyzer implements abstract interpretation over the AST,
// producing a PValue (type + temporariness) for every expression without
// running any code (spec §4.D). It tolerates self-referential type
// inference through a recursion sentinel (spec §5) rather than failing
// outright the first time a call's return type depends on itself.
package analyzer

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
	"github.com/clayic/clayic/internal/pattern"
)

// Resolver is the overload-resolution handle the Analyzer calls into for
// `Call` expressions. It is implemented by internal/invoke, which sits
// above analyzer in the dependency order (spec §2) — analyzer depends only
// on this interface, never on invoke's concrete types, so the two packages
// reference each other through a pair of narrow boundaries rather than an
// import cycle (spec §5: "expressed via an interface/trait boundary in each
// direction").
type Resolver interface {
	// ResolveCall analyzes a call to callee with the given (already
	// analyzed) argument values, returning the call's result shape. It may
	// return a *RecursionPending error if the call's own return type is
	// still being determined by an analysis further up the stack.
	ResolveCall(a *Analyzer, call *ast.Call, args []*object.PValue, env *objenv.Env) (*object.MultiPValue, error)
}

// StringEvaluator backs the `EvalExpr` form: it evaluates string arguments
// to AST via the compile-time Evaluator (spec §4.D: "evaluate strings to
// AST via the Evaluator, then analyze").
type StringEvaluator interface {
	EvalStringsToAST(a *Analyzer, args []ast.Expr, env *objenv.Env) ([]ast.Expr, error)
}

// Analyzer is the process-wide abstract-interpretation engine. One instance
// is shared across an entire compilation (spec §5: single-threaded, eager).
type Analyzer struct {
	Interns  *object.InternTable
	Layout   *object.Layout
	Resolver Resolver
	Strings  StringEvaluator

	// Patterns backs type-annotation unification in Binding analysis (`var
	// x: T = ...`). It is implemented by internal/evaluator, which sits
	// above both analyzer and pattern in the dependency order, for the same
	// reason Resolver and StringEvaluator are injected rather than imported.
	Patterns pattern.StaticEvaluator

	// cache memoizes MultiPValue results per expression node, keyed by
	// NodeID (spec §4.D: "memoized on each expression node by a caching
	// flag").
	cache map[ast.NodeID]*object.MultiPValue

	// noCacheDepth disables memoization while non-zero, for alias-expansion
	// contexts where the same expression node means different things under
	// different substitutions (spec §4.D: "a process-wide counter disables
	// caching for alias-expansion contexts").
	noCacheDepth int

	// stack is the ordered list of (callable, argsKey) pairs currently being
	// analyzed, reported verbatim in fatal errors (spec §5: "the full
	// compile-context stack").
	stack []clayerrors.ContextFrame

	// inProgress detects a call whose return type depends on itself: a
	// second entry into the same (callable, argsKey) while the first is
	// still unresolved signals recursion rather than re-deriving it (spec
	// §5).
	inProgress map[string]bool
}

// New creates an Analyzer. resolver and strings may be nil during early
// bring-up (e.g. unit tests exercising only the pure contract-table forms)
// but must be set before analyzing a `Call` or `EvalExpr`.
func New(interns *object.InternTable, layout *object.Layout, resolver Resolver, strings StringEvaluator) *Analyzer {
	return &Analyzer{
		Interns:    interns,
		Layout:     layout,
		Resolver:   resolver,
		Strings:    strings,
		cache:      make(map[ast.NodeID]*object.MultiPValue),
		inProgress: make(map[string]bool),
	}
}

// patternCtx builds the (stateless) unification context used by Binding
// analysis to check a value's type against its left-hand-side annotation.
func (a *Analyzer) patternCtx() *pattern.Context {
	return &pattern.Context{Interns: a.Interns, Layout: a.Layout}
}

// WithoutCache runs fn with node memoization suspended, for re-analyzing an
// alias body under a fresh substitution.
func (a *Analyzer) WithoutCache(fn func() error) error {
	a.noCacheDepth++
	defer func() { a.noCacheDepth-- }()
	return fn()
}

func (a *Analyzer) cacheGet(id ast.NodeID) (*object.MultiPValue, bool) {
	if a.noCacheDepth > 0 {
		return nil, false
	}
	v, ok := a.cache[id]
	return v, ok
}

func (a *Analyzer) cacheSet(id ast.NodeID, v *object.MultiPValue) {
	if a.noCacheDepth > 0 {
		return
	}
	a.cache[id] = v
}

// PushFrame records that callable/argsKey is now being analyzed, returning a
// pop function the caller defers. It is the Analyzer's half of the
// recursion-sentinel protocol (spec §5).
func (a *Analyzer) PushFrame(callable, argsKey string) (key string, alreadyInProgress bool, pop func()) {
	key = callable + "\x00" + argsKey
	alreadyInProgress = a.inProgress[key]
	if !alreadyInProgress {
		a.inProgress[key] = true
	}
	a.stack = append(a.stack, clayerrors.ContextFrame{Callable: callable, ArgsKey: argsKey})
	return key, alreadyInProgress, func() {
		if !alreadyInProgress {
			delete(a.inProgress, key)
		}
		a.stack = a.stack[:len(a.stack)-1]
	}
}

// Frames returns a copy of the current compile-context stack, for
// attaching to a fatal error (spec §5).
func (a *Analyzer) Frames() []clayerrors.ContextFrame {
	out := make([]clayerrors.ContextFrame, len(a.stack))
	copy(out, a.stack)
	return out
}
