package object

import "testing"

func TestInterningIdentity(t *testing.T) {
	it := NewInternTable()

	i8a := it.Integer(8, true)
	i8b := it.Integer(8, true)
	if i8a != i8b {
		t.Fatalf("Integer(8,true) should be identity-equal across calls")
	}

	arrA := it.Array(i8a, 4)
	arrB := it.Array(i8b, 4)
	if arrA != arrB {
		t.Fatalf("Array(Int8,4) should intern to the same node")
	}

	ptrA := it.Pointer(arrA)
	ptrB := it.Pointer(it.Array(it.Integer(8, true), 4))
	if ptrA != ptrB {
		t.Fatalf("Pointer(Array(Int8,4)) should intern to the same node across independently constructed params")
	}
}

func TestInterningDistinguishesParams(t *testing.T) {
	it := NewInternTable()
	i8 := it.Integer(8, true)
	i16 := it.Integer(16, true)
	if i8 == i16 {
		t.Fatalf("Integer(8) and Integer(16) must not be the same node")
	}

	u8 := it.Integer(8, false)
	if i8 == u8 {
		t.Fatalf("signed and unsigned Integer(8) must not be the same node")
	}
}

func TestStaticRoundTrip(t *testing.T) {
	it := NewInternTable()
	i32 := it.Integer(32, true)
	st := it.Static(i32)
	obj, ok := UnwrapStaticType(st)
	if !ok {
		t.Fatalf("UnwrapStaticType should succeed on a Static type")
	}
	if obj.(*Type) != i32 {
		t.Fatalf("UnwrapStaticType should return the original lifted type")
	}

	if _, ok := UnwrapStaticType(i32); ok {
		t.Fatalf("UnwrapStaticType on a non-static type should fail")
	}
}

func TestLayoutTuplePadding(t *testing.T) {
	it := NewInternTable()
	l := NewLayout(8)
	i8 := it.Integer(8, true)
	i64 := it.Integer(64, true)
	tup := it.Tuple([]*Type{i8, i64})

	offsets := l.FieldOffsets([]*Type{i8, i64})
	if offsets[0] != 0 {
		t.Fatalf("first field offset should be 0, got %d", offsets[0])
	}
	if offsets[1] != 8 {
		t.Fatalf("second field (Int64) should be 8-byte aligned, got offset %d", offsets[1])
	}
	if size := l.Size(tup); size != 16 {
		t.Fatalf("tuple size should be padded to 16, got %d", size)
	}
}
