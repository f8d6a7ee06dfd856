package evaluator

import (
	"testing"

	"github.com/clayic/clayic/internal/ast"
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

func nameRef(name string) *ast.NameRef {
	n := &ast.NameRef{Name: name}
	n.NodeID = nextID()
	return n
}

// buildPoint2D declares `record Point2D[T](x: T, y: T)` and returns its
// Type instantiated at T = Int32, plus a packed EValue for {x: 3, y: 4}.
func buildPoint2D(t *testing.T, ev *Evaluator) (*object.Type, *object.EValue) {
	t.Helper()
	i32 := ev.Interns.Integer(32, true)
	decl := &object.RecordDecl{Decl: &ast.RecordDecl{
		Name:   "Point2D",
		Params: []string{"T"},
		Fields: []ast.RecordField{
			{Name: "x", Type: nameRef("T")},
			{Name: "y", Type: nameRef("T")},
		},
	}}
	recType := ev.Interns.Record(decl, []object.Object{i32})

	xBytes, err := encodeInt(32, 3)
	if err != nil {
		t.Fatal(err)
	}
	yBytes, err := encodeInt(32, 4)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := ev.Stack.Push(append(xBytes, yBytes...))
	if err != nil {
		t.Fatal(err)
	}
	return recType, &object.EValue{Type: recType, Addr: addr}
}

func TestRecordFieldRefByIndex(t *testing.T) {
	ev, _ := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)
	_, rec := buildPoint2D(t, ev)

	idxBytes, err := encodeInt(32, 1)
	if err != nil {
		t.Fatal(err)
	}
	idxAddr, err := ev.Stack.Push(idxBytes)
	if err != nil {
		t.Fatal(err)
	}
	idx := &object.EValue{Type: i32, Addr: idxAddr}

	result, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimRecordFieldRef), []*object.EValue{rec, idx}, i32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := result.Single()
	if v.Type != i32 {
		t.Fatalf("expected field type Int32, got %s", v.Type)
	}
	if decodeInt(32, true, v.Addr) != 4 {
		t.Fatalf("expected field y == 4, got %d", decodeInt(32, true, v.Addr))
	}
}

func TestRecordFieldRefByName(t *testing.T) {
	ev, _ := newTestEvaluator()
	_, rec := buildPoint2D(t, ev)

	nameType := ev.Interns.Static(object.Intern("x"))
	name := &object.EValue{Type: nameType, Addr: nil}

	result, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimRecordFieldRefByName), []*object.EValue{rec, name}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := result.Single()
	if decodeInt(32, true, v.Addr) != 3 {
		t.Fatalf("expected field x == 3, got %d", decodeInt(32, true, v.Addr))
	}
}

func TestRecordFieldRefUnknownNameFails(t *testing.T) {
	ev, _ := newTestEvaluator()
	_, rec := buildPoint2D(t, ev)
	name := &object.EValue{Type: ev.Interns.Static(object.Intern("z")), Addr: nil}

	_, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimRecordFieldRefByName), []*object.EValue{rec, name}, nil)
	if err == nil {
		t.Fatalf("expected an error for an unknown field name")
	}
	cerr, ok := err.(*clayerrors.CompileError)
	if !ok || cerr.Code != clayerrors.EVA007 {
		t.Fatalf("expected EVA007, got %v", err)
	}
}

func TestVariantTagReadsDiscriminant(t *testing.T) {
	ev, _ := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)
	decl := &object.VariantDecl{Decl: &ast.VariantDecl{
		Name:    "Shape",
		Members: []ast.VariantMember{{Name: "Circle"}, {Name: "Square"}},
	}}
	variantType := ev.Interns.Variant(decl, nil)

	tagBytes, err := encodeInt(32, 1)
	if err != nil {
		t.Fatal(err)
	}
	addr, err := ev.Stack.Push(tagBytes)
	if err != nil {
		t.Fatal(err)
	}
	v := &object.EValue{Type: variantType, Addr: addr}

	result, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimVariantTag), []*object.EValue{v}, i32)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := result.Single()
	if decodeInt(32, true, got.Addr) != 1 {
		t.Fatalf("expected tag 1, got %d", decodeInt(32, true, got.Addr))
	}
}

func TestStaticFieldRefLooksUpPublicModuleMember(t *testing.T) {
	ev, _ := newTestEvaluator()
	i32 := ev.Interns.Integer(32, true)

	mod := testModule{public: map[string]object.Object{"Width": i32}}
	modArg := &object.EValue{Type: ev.Interns.Static(mod), Addr: nil}
	nameArg := &object.EValue{Type: ev.Interns.Static(object.Intern("Width")), Addr: nil}
	args := []*object.EValue{modArg, nameArg}

	resultType, err := ev.staticFieldRefType(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := ev.EvalPrimOp(object.PrimOpSingleton(object.PrimStaticFieldRef), args, resultType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := result.Single()
	obj, ok := object.UnwrapStaticType(v.Type)
	if !ok || obj != object.Object(i32) {
		t.Fatalf("expected staticFieldRef to yield Static[Int32], got %s", v.Type)
	}
}

type testModule struct {
	public map[string]object.Object
}

func (m testModule) ObjKind() object.Kind { return object.KindModule }
func (m testModule) String() string       { return "module <test>" }
func (m testModule) LookupPrivate(name string) (object.Object, error) {
	return m.public[name], nil
}
func (m testModule) LookupPublic(name string) (object.Object, error) {
	return m.public[name], nil
}
