package pattern

import (
	"testing"

	"github.com/clayic/clayic/internal/object"
)

func newCtx() *Context {
	it := object.NewInternTable()
	return &Context{Interns: it, Layout: object.NewLayout(8)}
}

func TestUnifyBindsCell(t *testing.T) {
	c := newCtx()
	i32 := c.Interns.Integer(32, true)
	cell := NewUnboundCell()

	ok, err := c.UnifyObjObj(i32, cell)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected unification to succeed")
	}
	if cell.Obj != i32 {
		t.Fatalf("expected cell to bind to Int32")
	}
}

func TestUnifyPointerStructure(t *testing.T) {
	c := newCtx()
	i32 := c.Interns.Integer(32, true)
	ptr := c.Interns.Pointer(i32)

	ptrPattern, err := ObjectToPattern(c.Interns, c.Layout, ptr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	elemCell := NewUnboundCell()
	template := &PatternStruct{
		Head:   object.PrimOpSingleton(object.PrimPointer),
		Params: &MultiPatternList{Items: []Pattern{elemCell}},
	}

	ok, err := c.Unify(ptrPattern, template)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected Pointer[Int32] to unify with Pointer[a]")
	}
	if elemCell.Obj != i32 {
		t.Fatalf("expected elemCell to bind to Int32, got %v", elemCell.Obj)
	}

	resolved, ok := c.DerefDeep(template)
	if !ok {
		t.Fatalf("expected fully-bound template to deref")
	}
	if resolved != ptr {
		t.Fatalf("expected derefDeep to reconstruct the original interned Pointer type")
	}
}

func TestUnifyMultiVarArgs(t *testing.T) {
	c := newCtx()
	i8 := c.Interns.Integer(8, true)
	i16 := c.Interns.Integer(16, true)
	i32 := c.Interns.Integer(32, true)

	fixed := NewUnboundCell()
	rest := NewUnboundMultiCell()
	formal := &MultiPatternList{Items: []Pattern{fixed}, Tail: rest}

	ok, err := c.UnifyMultiStatics(formal, []object.Object{i8, i16, i32})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected variadic unification to succeed")
	}
	resolved, ok := c.DerefDeep(fixed)
	if !ok {
		t.Fatalf("expected fixed param to be fully bound")
	}
	if resolved != i8 {
		t.Fatalf("expected fixed param to resolve to Int8, got %v", resolved)
	}
	restItems, ok := c.DerefDeepMulti(rest)
	if !ok {
		t.Fatalf("expected rest to be fully bound")
	}
	if len(restItems) != 2 {
		t.Fatalf("expected 2 remaining varargs, got %d", len(restItems))
	}
}

func TestUnifyEmptyRejectsExtra(t *testing.T) {
	list := &MultiPatternList{Items: []Pattern{NewUnboundCell()}}
	if UnifyEmptyList(list, 0) {
		t.Fatalf("non-empty list at index 0 should fail UnifyEmpty")
	}
	if !UnifyEmptyList(list, 1) {
		t.Fatalf("list fully consumed at index 1 should satisfy UnifyEmpty")
	}
}

func TestHeadMismatchFails(t *testing.T) {
	c := newCtx()
	i32 := c.Interns.Integer(32, true)
	arr := c.Interns.Array(i32, 4)
	ptrPattern, err := ObjectToPattern(c.Interns, c.Layout, c.Interns.Pointer(i32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	arrPattern, err := ObjectToPattern(c.Interns, c.Layout, arr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ok, err := c.Unify(ptrPattern, arrPattern)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("Pointer and Array should not unify")
	}
}
