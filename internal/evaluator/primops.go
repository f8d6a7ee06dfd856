package evaluator

import (
	"encoding/binary"
	"math"

	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

// EvalPrimOp dispatches a resolved PrimOp call over already-evaluated
// arguments, mirroring evalPrimOp's closed switch (spec §3, §4.E).
func (ev *Evaluator) EvalPrimOp(p *object.PrimOp, args []*object.EValue, resultType *object.Type) (*object.MultiEValue, error) {
	switch p.Code {
	case object.PrimIntegerAdd, object.PrimIntegerAddChecked:
		return ev.intBinOp(args, resultType, "+", intAdd, p.Code == object.PrimIntegerAddChecked)
	case object.PrimIntegerSubtract, object.PrimIntegerSubtractChecked:
		return ev.intBinOp(args, resultType, "-", intSub, p.Code == object.PrimIntegerSubtractChecked)
	case object.PrimIntegerMultiply, object.PrimIntegerMultiplyChecked:
		return ev.intBinOp(args, resultType, "*", intMul, p.Code == object.PrimIntegerMultiplyChecked)
	case object.PrimIntegerDivide:
		return ev.intDivOp(args, resultType, false)
	case object.PrimIntegerRemainder:
		return ev.intDivOp(args, resultType, true)
	case object.PrimIntegerNegate:
		return ev.intUnaryOp(args, resultType, func(v int64) int64 { return -v })
	case object.PrimIntegerShiftLeft:
		return ev.intShiftOp(args, resultType, true)
	case object.PrimIntegerShiftRight:
		return ev.intShiftOp(args, resultType, false)
	case object.PrimIntegerBitwiseAnd:
		return ev.intBinOp(args, resultType, "&", func(a, b int64) (int64, bool) { return a & b, true }, false)
	case object.PrimIntegerBitwiseOr:
		return ev.intBinOp(args, resultType, "|", func(a, b int64) (int64, bool) { return a | b, true }, false)
	case object.PrimIntegerBitwiseXor:
		return ev.intBinOp(args, resultType, "^", func(a, b int64) (int64, bool) { return a ^ b, true }, false)
	case object.PrimIntegerBitwiseNot:
		return ev.intUnaryOp(args, resultType, func(v int64) int64 { return ^v })
	case object.PrimIntegerEqualsQ:
		return ev.intCompareOp(args, func(a, b int64) bool { return a == b })
	case object.PrimIntegerLesserQ:
		return ev.intCompareOp(args, func(a, b int64) bool { return a < b })

	case object.PrimFloatAdd:
		return ev.floatBinOp(args, resultType, func(a, b float64) float64 { return a + b })
	case object.PrimFloatSubtract:
		return ev.floatBinOp(args, resultType, func(a, b float64) float64 { return a - b })
	case object.PrimFloatMultiply:
		return ev.floatBinOp(args, resultType, func(a, b float64) float64 { return a * b })
	case object.PrimFloatDivide:
		return ev.floatDivOp(args, resultType)
	case object.PrimFloatNegate:
		return ev.floatUnaryOp(args, resultType, func(v float64) float64 { return -v })
	case object.PrimFloatEqualsQ:
		return ev.floatCompareOp(args, func(a, b float64) bool { return a == b })
	case object.PrimFloatLesserQ:
		return ev.floatCompareOp(args, func(a, b float64) bool { return a < b })

	case object.PrimNumericConvert:
		return ev.numericConvert(args, resultType)
	case object.PrimIntegerConvertChecked:
		return ev.integerConvertChecked(args, resultType)

	case object.PrimPointerOffset:
		return ev.pointerOffset(args, resultType)
	case object.PrimBitcast:
		return ev.bitcast(args, resultType)

	case object.PrimTupleFieldRef:
		return ev.tupleFieldRef(args, resultType)

	case object.PrimRecordFieldRef:
		return ev.recordFieldRef(args)
	case object.PrimRecordFieldRefByName:
		return ev.recordFieldRefByName(args)
	case object.PrimVariantTag:
		return ev.variantTag(args, resultType)
	case object.PrimStaticFieldRef:
		return ev.staticFieldRef(args, resultType)

	case object.PrimEnumToInt:
		return ev.enumToInt(args, resultType)
	case object.PrimIntToEnum:
		return ev.intToEnum(args, resultType)

	case object.PrimNewTypeWrap, object.PrimNewTypeUnwrap:
		return ev.newTypeCast(args, resultType)

	case object.PrimStringLiteralBytes:
		return single(args[0]), nil
	case object.PrimStringConcat:
		return ev.stringConcat(args, resultType)

	case object.PrimAtomicLoad, object.PrimAtomicStore, object.PrimMemcpy:
		return nil, clayerrors.New(clayerrors.EVA005, "atomic/memcpy operations are not permitted at compile time")

	case object.PrimTypeSizeQ:
		return ev.typeFact(resultType, int64(ev.Layout.Size(args[0].Type)))
	case object.PrimTypeAlignmentQ:
		return ev.typeFact(resultType, int64(ev.Layout.Alignment(args[0].Type)))
	case object.PrimIntegerTypeQ:
		return ev.boolFact(resultType, args[0].Type.Tag == object.TagInteger)
	case object.PrimFloatTypeQ:
		return ev.boolFact(resultType, args[0].Type.Tag == object.TagFloat)
	case object.PrimPointerTypeQ:
		return ev.boolFact(resultType, args[0].Type.Tag == object.TagPointer)

	default:
		return nil, clayerrors.Newf(clayerrors.EVA007, "evaluator: unhandled primitive operator %d", p.Code)
	}
}

func decodeInt(bits int, signed bool, b []byte) int64 {
	switch bits / 8 {
	case 1:
		if signed {
			return int64(int8(b[0]))
		}
		return int64(b[0])
	case 2:
		u := binary.LittleEndian.Uint16(b)
		if signed {
			return int64(int16(u))
		}
		return int64(u)
	case 4:
		u := binary.LittleEndian.Uint32(b)
		if signed {
			return int64(int32(u))
		}
		return int64(u)
	default:
		u := binary.LittleEndian.Uint64(b)
		return int64(u)
	}
}

func decodeFloat(bits int, b []byte) float64 {
	if bits == 32 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func (ev *Evaluator) storeInt(t *object.Type, v int64) (*object.EValue, error) {
	bytes, err := encodeInt(t.IntBits, v)
	if err != nil {
		return nil, err
	}
	addr, err := ev.Stack.Push(bytes)
	if err != nil {
		return nil, err
	}
	return &object.EValue{Type: t, Addr: addr}, nil
}

func (ev *Evaluator) storeFloat(t *object.Type, v float64) (*object.EValue, error) {
	bytes, err := encodeFloat(t.FloatBits, v)
	if err != nil {
		return nil, err
	}
	addr, err := ev.Stack.Push(bytes)
	if err != nil {
		return nil, err
	}
	return &object.EValue{Type: t, Addr: addr}, nil
}

func (ev *Evaluator) storeBool(b bool) (*object.EValue, error) {
	addr, err := ev.Stack.Push(boolBytes(b))
	if err != nil {
		return nil, err
	}
	return &object.EValue{Type: ev.Interns.Bool(), Addr: addr}, nil
}

// overflowsWidth reports whether v cannot be represented in a two's
// complement integer of the given width/signedness (EVA001).
func overflowsWidth(bits int, signed bool, v int64) bool {
	if signed {
		min := -(int64(1) << (bits - 1))
		max := (int64(1) << (bits - 1)) - 1
		return v < min || v > max
	}
	if v < 0 {
		return true
	}
	if bits >= 64 {
		return false
	}
	max := (int64(1) << bits) - 1
	return v > max
}

type intOp func(a, b int64) (int64, bool)

func intAdd(a, b int64) (int64, bool) { return a + b, true }
func intSub(a, b int64) (int64, bool) { return a - b, true }
func intMul(a, b int64) (int64, bool) { return a * b, true }

func (ev *Evaluator) intBinOp(args []*object.EValue, t *object.Type, opSymbol string, op intOp, checked bool) (*object.MultiEValue, error) {
	a := decodeInt(t.IntBits, t.IntSigned, args[0].Addr)
	b := decodeInt(t.IntBits, t.IntSigned, args[1].Addr)
	v, _ := op(a, b)
	if checked && overflowsWidth(t.IntBits, t.IntSigned, v) {
		return nil, clayerrors.Newf(clayerrors.EVA001, "integer overflow: %d %s %d", a, opSymbol, b)
	}
	r, err := ev.storeInt(t, v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) intUnaryOp(args []*object.EValue, t *object.Type, op func(int64) int64) (*object.MultiEValue, error) {
	v := decodeInt(t.IntBits, t.IntSigned, args[0].Addr)
	r, err := ev.storeInt(t, op(v))
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) intDivOp(args []*object.EValue, t *object.Type, remainder bool) (*object.MultiEValue, error) {
	a := decodeInt(t.IntBits, t.IntSigned, args[0].Addr)
	b := decodeInt(t.IntBits, t.IntSigned, args[1].Addr)
	if b == 0 {
		return nil, clayerrors.New(clayerrors.EVA002, "division by zero")
	}
	var v int64
	if remainder {
		v = a % b
	} else {
		v = a / b
	}
	r, err := ev.storeInt(t, v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) intShiftOp(args []*object.EValue, t *object.Type, left bool) (*object.MultiEValue, error) {
	a := decodeInt(t.IntBits, t.IntSigned, args[0].Addr)
	shift := decodeInt(args[1].Type.IntBits, args[1].Type.IntSigned, args[1].Addr)
	if shift < 0 || shift >= int64(t.IntBits) {
		return nil, clayerrors.Newf(clayerrors.EVA003, "shift amount %d out of range for a %d-bit integer", shift, t.IntBits)
	}
	var v int64
	if left {
		v = a << uint(shift)
	} else if t.IntSigned {
		v = a >> uint(shift)
	} else {
		v = int64(uint64(a) >> uint(shift))
	}
	r, err := ev.storeInt(t, v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) intCompareOp(args []*object.EValue, op func(a, b int64) bool) (*object.MultiEValue, error) {
	at := args[0].Type
	a := decodeInt(at.IntBits, at.IntSigned, args[0].Addr)
	b := decodeInt(at.IntBits, at.IntSigned, args[1].Addr)
	r, err := ev.storeBool(op(a, b))
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) floatBinOp(args []*object.EValue, t *object.Type, op func(a, b float64) float64) (*object.MultiEValue, error) {
	a := decodeFloat(t.FloatBits, args[0].Addr)
	b := decodeFloat(t.FloatBits, args[1].Addr)
	r, err := ev.storeFloat(t, op(a, b))
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) floatUnaryOp(args []*object.EValue, t *object.Type, op func(float64) float64) (*object.MultiEValue, error) {
	a := decodeFloat(t.FloatBits, args[0].Addr)
	r, err := ev.storeFloat(t, op(a))
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) floatDivOp(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	a := decodeFloat(t.FloatBits, args[0].Addr)
	b := decodeFloat(t.FloatBits, args[1].Addr)
	if b == 0 {
		return nil, clayerrors.New(clayerrors.EVA002, "division by zero")
	}
	r, err := ev.storeFloat(t, a/b)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) floatCompareOp(args []*object.EValue, op func(a, b float64) bool) (*object.MultiEValue, error) {
	at := args[0].Type
	a := decodeFloat(at.FloatBits, args[0].Addr)
	b := decodeFloat(at.FloatBits, args[1].Addr)
	r, err := ev.storeBool(op(a, b))
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

// numericConvert implements unchecked int<->int, int<->float, float<->float
// conversion (spec §4.E/§4.H).
func (ev *Evaluator) numericConvert(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	src := args[0]
	var f float64
	switch src.Type.Tag {
	case object.TagInteger:
		f = float64(decodeInt(src.Type.IntBits, src.Type.IntSigned, src.Addr))
	case object.TagFloat:
		f = decodeFloat(src.Type.FloatBits, src.Addr)
	default:
		return nil, clayerrors.New(clayerrors.EVA007, "numeric conversion requires an integer or float operand")
	}
	var r *object.EValue
	var err error
	switch t.Tag {
	case object.TagInteger:
		r, err = ev.storeInt(t, int64(f))
	case object.TagFloat:
		r, err = ev.storeFloat(t, f)
	default:
		return nil, clayerrors.New(clayerrors.EVA007, "numeric conversion requires an integer or float result type")
	}
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

// integerConvertChecked narrows/widens between integer types, failing with
// EVA001 if the source value does not fit the destination width/signedness.
func (ev *Evaluator) integerConvertChecked(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	src := args[0]
	v := decodeInt(src.Type.IntBits, src.Type.IntSigned, src.Addr)
	if overflowsWidth(t.IntBits, t.IntSigned, v) {
		return nil, clayerrors.Newf(clayerrors.EVA001, "value %d does not fit in %s", v, t)
	}
	r, err := ev.storeInt(t, v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

// pointerOffset implements pointer arithmetic: Pointer[T] + index*sizeof(T).
// The resulting address is synthetic (no real backing memory exists at
// compile time); it is retained only so later bitcasts/field refs over the
// same conceptual object keep working within one evaluation.
func (ev *Evaluator) pointerOffset(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	ptr := args[0]
	idx := decodeInt(args[1].Type.IntBits, args[1].Type.IntSigned, args[1].Addr)
	elemSize := ev.Layout.Size(ptr.Type.Pointee)
	byteOff := int(idx) * elemSize
	if byteOff < 0 || byteOff > len(ptr.Addr) {
		return single(&object.EValue{Type: t, Addr: nil}), nil
	}
	return single(&object.EValue{Type: t, Addr: ptr.Addr[byteOff:]}), nil
}

// bitcast reinterprets src's bytes as t, rejecting size mismatches (EVA004)
// since the language's Bitcast is defined only between equally-sized types
// (spec §4.E/§4.H).
func (ev *Evaluator) bitcast(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	src := args[0]
	if ev.Layout.Size(src.Type) != ev.Layout.Size(t) {
		return nil, clayerrors.Newf(clayerrors.EVA004, "bitcast between %s and %s changes size", src.Type, t)
	}
	return single(&object.EValue{Type: t, Addr: src.Addr}), nil
}

func (ev *Evaluator) tupleFieldRef(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	tup := args[0]
	idxVal := decodeInt(args[1].Type.IntBits, args[1].Type.IntSigned, args[1].Addr)
	idx := int(idxVal)
	if idx < 0 || idx >= len(tup.Type.Elems) {
		return nil, clayerrors.Newf(clayerrors.EVA007, "tuple field index %d out of range", idx)
	}
	offsets := ev.Layout.FieldOffsets(tup.Type.Elems)
	size := ev.Layout.Size(tup.Type.Elems[idx])
	return single(&object.EValue{Type: t, Addr: tup.Addr[offsets[idx] : offsets[idx]+size]}), nil
}

func (ev *Evaluator) enumToInt(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	v := decodeInt(32, true, args[0].Addr)
	r, err := ev.storeInt(t, v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) intToEnum(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	v := decodeInt(args[0].Type.IntBits, args[0].Type.IntSigned, args[0].Addr)
	bytes, err := encodeInt(32, v)
	if err != nil {
		return nil, err
	}
	addr, err := ev.Stack.Push(bytes)
	if err != nil {
		return nil, err
	}
	return single(&object.EValue{Type: t, Addr: addr}), nil
}

// newTypeCast implements NewTypeWrap/Unwrap: a zero-cost reinterpretation
// since a NewType has exactly the layout of its underlying type (spec §4.H).
func (ev *Evaluator) newTypeCast(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	return single(&object.EValue{Type: t, Addr: args[0].Addr}), nil
}

func (ev *Evaluator) stringConcat(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	combined := append(append([]byte(nil), args[0].Addr...), args[1].Addr...)
	addr, err := ev.Stack.Push(combined)
	if err != nil {
		return nil, err
	}
	return single(&object.EValue{Type: t, Addr: addr}), nil
}

func (ev *Evaluator) typeFact(t *object.Type, v int64) (*object.MultiEValue, error) {
	r, err := ev.storeInt(t, v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

func (ev *Evaluator) boolFact(t *object.Type, v bool) (*object.MultiEValue, error) {
	r, err := ev.storeBool(v)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}
