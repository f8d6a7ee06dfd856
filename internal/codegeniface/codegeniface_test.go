package codegeniface

import (
	"testing"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/invoke"
	"github.com/clayic/clayic/internal/object"
)

// TestABIFromExternalCodePointer checks the CallingConv/VarArg/ArgTypes/
// ReturnType fields SPEC_FULL §4.G names are all carried over unchanged
// from an analyzed ExternalCodePointer type.
func TestABIFromExternalCodePointer(t *testing.T) {
	it := object.NewInternTable()
	i32 := it.Integer(32, true)
	f64 := it.Float(64, false)
	ext := it.ExternalCodePointer(object.CCStdCall, true, []*object.Type{i32}, f64)

	abi := ABIFromExternalCodePointer(ext)
	if abi.CallingConv != object.CCStdCall {
		t.Fatalf("expected CCStdCall, got %v", abi.CallingConv)
	}
	if !abi.VarArg {
		t.Fatalf("expected VarArg true")
	}
	if len(abi.ArgTypes) != 1 || abi.ArgTypes[0] != i32 {
		t.Fatalf("expected ArgTypes [Int32], got %v", abi.ArgTypes)
	}
	if abi.ReturnType != f64 {
		t.Fatalf("expected ReturnType Float64, got %v", abi.ReturnType)
	}
}

// TestABIFromExternalCodePointerVoid covers the "nil = void" case spec §6
// names explicitly for external return types.
func TestABIFromExternalCodePointerVoid(t *testing.T) {
	it := object.NewInternTable()
	ext := it.ExternalCodePointer(object.CCDefault, false, nil, nil)
	abi := ABIFromExternalCodePointer(ext)
	if abi.ReturnType != nil {
		t.Fatalf("expected nil ReturnType for a void external procedure, got %v", abi.ReturnType)
	}
}

// TestExportInvoke checks that ExportInvoke surfaces the resolved
// InvokeEntry's fixed names/types, the return-types vector with by-ref
// flags inverted from IsTemp, and the forwarded-rvalue vector, plus the
// callable identity (spec §6's per-InvokeEntry output list).
func TestExportInvoke(t *testing.T) {
	it := object.NewInternTable()
	i32 := it.Integer(32, true)
	proc := &object.Procedure{Name: "f"}

	entry := &invoke.InvokeEntry{
		Overload: &ast.Overload{
			Code: &ast.Code{Body: &ast.Block{}},
		},
		FixedNames:           []string{"x"},
		FixedTypes:           []*object.Type{i32},
		FixedForwardedRValue: []bool{true},
	}
	result := &object.MultiPValue{Values: []*object.PValue{{Type: i32, IsTemp: true}}}

	exp := ExportInvoke(proc, entry, result)
	if exp.Callable != object.Object(proc) {
		t.Fatalf("expected Callable to be the procedure")
	}
	if len(exp.ArgNames) != 1 || exp.ArgNames[0] != "x" {
		t.Fatalf("expected ArgNames [x], got %v", exp.ArgNames)
	}
	if len(exp.ReturnTypes) != 1 || exp.ReturnTypes[0] != i32 {
		t.Fatalf("expected ReturnTypes [Int32], got %v", exp.ReturnTypes)
	}
	if exp.ReturnIsRef[0] {
		t.Fatalf("expected an rvalue return to produce ReturnIsRef=false")
	}
	if len(exp.ForwardedRValue) != 1 || !exp.ForwardedRValue[0] {
		t.Fatalf("expected ForwardedRValue [true], got %v", exp.ForwardedRValue)
	}
}
