package object

import (
	"bytes"
	"fmt"
)

// ValueHolder is a compile-time constant: a Type plus its target-native byte
// pattern (spec §3, §6 "Bit-exact layout of compiled primitive values").
type ValueHolder struct {
	Type  *Type
	Bytes []byte
}

func (*ValueHolder) ObjKind() Kind { return KindValueHolder }
func (v *ValueHolder) String() string {
	return fmt.Sprintf("%s(%x)", v.Type, v.Bytes)
}

func (v *ValueHolder) Equals(o *ValueHolder) bool {
	return v.Type == o.Type && bytes.Equal(v.Bytes, o.Bytes)
}

// PrimOpCode enumerates the closed set of primitive operators (spec §3,
// §4.E). The set is intentionally small and fixed — the standard library is
// built on top of it through ordinary overloads (spec §6).
type PrimOpCode int

const (
	PrimPointer PrimOpCode = iota
	PrimCodePointer
	PrimExternalCodePointer
	PrimArray
	PrimVec
	PrimTuple
	PrimUnion
	PrimStatic

	PrimIntegerAdd
	PrimIntegerSubtract
	PrimIntegerMultiply
	PrimIntegerDivide
	PrimIntegerRemainder
	PrimIntegerNegate
	PrimIntegerAddChecked
	PrimIntegerSubtractChecked
	PrimIntegerMultiplyChecked
	PrimIntegerShiftLeft
	PrimIntegerShiftRight
	PrimIntegerBitwiseAnd
	PrimIntegerBitwiseOr
	PrimIntegerBitwiseXor
	PrimIntegerBitwiseNot
	PrimIntegerEqualsQ
	PrimIntegerLesserQ

	PrimFloatAdd
	PrimFloatSubtract
	PrimFloatMultiply
	PrimFloatDivide
	PrimFloatNegate
	PrimFloatEqualsQ
	PrimFloatLesserQ

	PrimNumericConvert
	PrimIntegerConvertChecked

	PrimPointerOffset
	PrimBitcast

	PrimTupleFieldRef
	PrimRecordFieldRef
	PrimRecordFieldRefByName
	PrimVariantTag

	PrimEnumToInt
	PrimIntToEnum
	PrimNewTypeWrap
	PrimNewTypeUnwrap

	PrimStringLiteralBytes
	PrimStringConcat

	PrimAtomicLoad
	PrimAtomicStore
	PrimMemcpy

	PrimStaticFieldRef

	PrimTypeSizeQ
	PrimTypeAlignmentQ
	PrimIntegerTypeQ
	PrimFloatTypeQ
	PrimPointerTypeQ
)

// PrimOp is a reference to one primitive operator (spec §3).
type PrimOp struct {
	Code PrimOpCode
}

func (*PrimOp) ObjKind() Kind { return KindPrimOp }
func (p *PrimOp) String() string {
	return fmt.Sprintf("PrimOp(%d)", int(p.Code))
}

var primOpTable = map[PrimOpCode]*PrimOp{}

// PrimOpSingleton returns the one canonical *PrimOp for code, so that two
// pattern heads built from the same prim (e.g. two uses of Pointer[...])
// compare pointer-equal the way the loader's global prim-op constants do
// (spec §4.C: "structural patterns compare heads by identity").
func PrimOpSingleton(code PrimOpCode) *PrimOp {
	if p, ok := primOpTable[code]; ok {
		return p
	}
	p := &PrimOp{Code: code}
	primOpTable[code] = p
	return p
}

// PValue is the Analyzer's abstract-value descriptor: a type plus the
// temporariness flag (spec §3 invariants: isTemp==true means an rvalue
// owning its storage; false means an lvalue referenced through an implicit
// pointer).
type PValue struct {
	Type   *Type
	IsTemp bool
}

func (*PValue) ObjKind() Kind { return KindPValue }
func (p *PValue) String() string {
	if p.IsTemp {
		return fmt.Sprintf("%s(temp)", p.Type)
	}
	return fmt.Sprintf("%s(ref)", p.Type)
}

// MultiPValue is a zero-or-more-valued analyzer result (spec §9: "every
// expression may produce zero or more values ... represented uniformly").
type MultiPValue struct {
	Values []*PValue
}

func (*MultiPValue) ObjKind() Kind { return KindMultiPValue }
func (m *MultiPValue) String() string {
	return fmt.Sprintf("MultiPValue(%d)", len(m.Values))
}

func (m *MultiPValue) Size() int { return len(m.Values) }

// Single returns the lone value of a single-valued MultiPValue, or
// (nil, false) if the arity isn't exactly one.
func (m *MultiPValue) Single() (*PValue, bool) {
	if len(m.Values) != 1 {
		return nil, false
	}
	return m.Values[0], true
}

// EValue is the Evaluator's concrete value descriptor: a type plus the
// address of a byte buffer laid out per the backend's data layout (spec §4.E).
type EValue struct {
	Type *Type
	Addr []byte // a slice view into the owning Stack's backing array
}

func (*EValue) ObjKind() Kind { return KindEValue }
func (e *EValue) String() string {
	return fmt.Sprintf("%s@%p", e.Type, e.Addr)
}

// MultiEValue is the zero-or-more-valued evaluator result, paralleling
// MultiPValue (spec §9).
type MultiEValue struct {
	Values []*EValue
}

func (*MultiEValue) ObjKind() Kind { return KindMultiEValue }
func (m *MultiEValue) String() string {
	return fmt.Sprintf("MultiEValue(%d)", len(m.Values))
}

func (m *MultiEValue) Single() (*EValue, bool) {
	if len(m.Values) != 1 {
		return nil, false
	}
	return m.Values[0], true
}
