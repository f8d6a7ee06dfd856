// Package codegeniface is the contract-only consumer side of spec §6's
// "Interfaces produced for the code generator": plain structs a backend
// would receive once internal/compiler has driven analysis to completion,
// without this module generating any code itself (spec §1's scope
// boundary). Grounded on the teacher's internal/iface (a consumer-facing
// struct wrapping an analyzed declaration for its linker) and
// internal/linked (a resolved, ready-to-emit specialization record) —
// played here for InvokeEntry/GVarInstance export instead of the teacher's
// own module-link artifacts.
package codegeniface

import (
	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/invoke"
	"github.com/clayic/clayic/internal/object"
)

// GVarInstance is spec §6's per-global output: "a resolved type and an
// initializer expression whose analysis has completed." Init is the
// initializer as written; analysis having "completed" is what Type being
// non-nil attests to, since internal/compiler only ever builds one of these
// after AnalyzeExpr on Init has returned successfully.
type GVarInstance struct {
	Name string
	Type *object.Type
	Init ast.Expr
}

// ExternalProcedureABI is the native ABI lowering contract named in spec §6
// and SPEC_FULL §4.G: the handful of facts a backend needs to emit a call
// through an `external` declaration's calling convention, independent of
// this module's own (compile-time-only) evaluation rules. ReturnType is nil
// for a void-returning external procedure.
type ExternalProcedureABI struct {
	CallingConv object.CallingConv
	VarArg      bool
	ArgTypes    []*object.Type
	ReturnType  *object.Type
}

// ABIFromExternalCodePointer derives an ExternalProcedureABI from an
// analyzed ExternalCodePointer type (object.ExternalProcedure.Type once
// filled in), the one place this module reaches into a Type's
// ExternalCodePointer fields for something other than its own evaluation
// rules (those stay in internal/object/layout.go and
// internal/evaluator/primops.go).
func ABIFromExternalCodePointer(t *object.Type) ExternalProcedureABI {
	return ExternalProcedureABI{
		CallingConv: t.CC,
		VarArg:      t.VarArg,
		ArgTypes:    t.ArgTypes,
		ReturnType:  t.ExtReturn,
	}
}

// InvokeExport is spec §6's per-InvokeEntry output: "a cloned, analyzed
// body AST; the resolved argument names and types; the return-types vector
// with by-ref flags; the forwarded-rvalue flag vector; and the parent
// procedure identity." Body is not actually cloned (see DESIGN.md and
// internal/invoke's own InvokeEntry doc comment on why a clone buys nothing
// here); Callable is the Procedure/RecordDecl/VariantDecl the entry
// specializes, Go's counterpart to "parent procedure identity" covering
// constructor callables too.
type InvokeExport struct {
	Callable    object.Object
	Body        ast.Stmt
	ArgNames    []string
	ArgTypes    []*object.Type
	ReturnTypes []*object.Type
	ReturnIsRef []bool

	ForwardedRValue []bool
}

// ExportInvoke builds an InvokeExport from an already-resolved InvokeEntry
// plus the MultiPValue its body analyzed to (the Analyzer's return-type
// vector, with IsTemp inverted into the by-ref flag spec §6 asks for).
func ExportInvoke(callable object.Object, entry *invoke.InvokeEntry, result *object.MultiPValue) *InvokeExport {
	returnTypes := make([]*object.Type, len(result.Values))
	returnIsRef := make([]bool, len(result.Values))
	for i, v := range result.Values {
		returnTypes[i] = v.Type
		returnIsRef[i] = !v.IsTemp
	}
	return &InvokeExport{
		Callable:        callable,
		Body:            entry.Overload.Code.Body,
		ArgNames:        entry.FixedNames,
		ArgTypes:        entry.FixedTypes,
		ReturnTypes:     returnTypes,
		ReturnIsRef:     returnIsRef,
		ForwardedRValue: entry.FixedForwardedRValue,
	}
}
