package invoke

import (
	"strings"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// InvokeEntry is one fully-resolved specialization of an overloaded
// callable: the matched overload plus the concrete argument names/types/
// tempness it was bound against, and the scope (staticEnv extended with the
// callable's pattern-variable bindings) its body should run in. Neither the
// Analyzer nor the Evaluator mutate AST nodes in place — both are
// side-effect-free tree walks keyed entirely by the objenv.Env they are
// given — so, unlike the original compiler's clone-on-specialize strategy,
// an InvokeEntry simply points at the overload's own Code.Body rather than
// a private copy of it (spec §4.F; see DESIGN.md for this simplification).
type InvokeEntry struct {
	Overload *ast.Overload
	Env      *objenv.Env

	FixedNames    []string
	FixedTypes    []*object.Type
	FixedTempness []ast.Tempness

	VarArgName     string
	VarArgTypes    []*object.Type
	VarArgTempness ast.Tempness

	// FixedForwardedRValue/VarArgForwardedRValue are the resolved
	// forwarded-rvalue flags (spec §6's "forwarded-rvalue flag vector"):
	// true at index i iff that parameter's policy is TempForward and the
	// argument actually bound at this entry's tempness key was an rvalue.
	FixedForwardedRValue []bool
	VarArgForwardedRValue []bool
}

// InvokeSet is the frozen, declaration-ordered overload candidate list for
// one callable, plus the cache of argument-tuple/tempness keys already
// resolved against it (spec §4.F, grounded on
// original_source/compiler/invoketables.cpp's InvokeSet).
type InvokeSet struct {
	Callable  object.Object
	Overloads []*ast.Overload
	Interface *ast.Overload

	entries           map[string]*InvokeEntry
	evaluatingPredicate bool
}

// invokeTable is the process-wide callable -> InvokeSet cache (spec §4.F:
// "InvokeTable"). Keyed by the callable object's identity; Types are
// hash-consed and Procedure/RecordDecl/VariantDecl objects are themselves
// unique pointers, so identity comparison here is exact.
var invokeTable = make(map[object.Object]*InvokeSet)

// callableOverloads reports which overload list and (optional) interface
// overload a callable dispatches through. Only Procedure, RecordDecl and
// VariantDecl are overloadable: Type carries no Overloads field by design
// (it is hash-consed — a mutable per-instance overload list would break
// structural interning, spec §4.A), and PrimOp calls are never
// user-overloaded — they run through internal/evaluator/primops.go's closed
// switch instead (spec §4.E).
func callableOverloads(callable object.Object) ([]*ast.Overload, *ast.Overload, error) {
	switch c := callable.(type) {
	case *object.Procedure:
		return c.Overloads, c.Interface, nil
	case *object.RecordDecl:
		return c.Decl.Overloads, nil, nil
	case *object.VariantDecl:
		return c.Decl.Overloads, nil, nil
	default:
		return nil, nil, clayerrors.Newf(clayerrors.INV001, "%s is not an overloadable callable", callable)
	}
}

// lookupInvokeSet returns callable's InvokeSet, creating and freezing it on
// first use (spec §4.F, invoketables.cpp:lookupInvokeSet).
func lookupInvokeSet(callable object.Object) (*InvokeSet, error) {
	if set, ok := invokeTable[callable]; ok {
		return set, nil
	}
	overloads, iface, err := callableOverloads(callable)
	if err != nil {
		return nil, err
	}
	set := &InvokeSet{
		Callable:  callable,
		Overloads: overloads,
		Interface: iface,
		entries:   make(map[string]*InvokeEntry),
	}
	if proc, ok := callable.(*object.Procedure); ok {
		proc.InvokeCache = set
	}
	invokeTable[callable] = set
	return set, nil
}

// tempnessKey renders an argument-type tuple plus its actual tempness tags
// into a cache key stable across repeated calls with the same shape (spec
// §4.F testable property 4: deterministic caching/ordering). Calls that
// differ only in an argument's actual tempness (R vs L) get distinct keys,
// and so distinct entries with their own forwarded-rvalue flags (property 8).
func tempnessKey(argTypes []*object.Type, tempness []ValueTempness) string {
	var b strings.Builder
	for i, t := range argTypes {
		b.WriteString(t.String())
		b.WriteByte(':')
		if tempness[i] == TempRValue {
			b.WriteByte('R')
		} else {
			b.WriteByte('L')
		}
		b.WriteByte('|')
	}
	return b.String()
}
