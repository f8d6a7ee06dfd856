package objenv

import (
	"testing"

	"github.com/clayic/clayic/internal/object"
)

type fakeModule struct {
	privates map[string]object.Object
}

func (f *fakeModule) LookupPrivate(name string) (object.Object, error) {
	return f.privates[name], nil
}

func (f *fakeModule) LookupPublic(name string) (object.Object, error) {
	return f.privates[name], nil
}

func TestLookupFallsThroughToModule(t *testing.T) {
	g := object.Intern("globalThing")
	mod := &fakeModule{privates: map[string]object.Object{"globalThing": g}}
	root := NewModuleRoot(mod)
	child := NewChild(root)

	obj, err := Lookup(child, "globalThing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != g {
		t.Fatalf("expected lookup to fall through to module, got %v", obj)
	}
}

func TestAddLocalDuplicateRejected(t *testing.T) {
	root := NewModuleRoot(&fakeModule{privates: map[string]object.Object{}})
	x := object.Intern("x")
	if err := AddLocal(root, "x", x); err != nil {
		t.Fatalf("first bind should succeed: %v", err)
	}
	if err := AddLocal(root, "x", x); err == nil {
		t.Fatalf("duplicate local bind should be rejected")
	}
}

func TestSafeLookupUndefined(t *testing.T) {
	root := NewModuleRoot(&fakeModule{privates: map[string]object.Object{}})
	if _, err := SafeLookup(root, "nope"); err == nil {
		t.Fatalf("expected undefined name error")
	}
}

func TestLookupExNonLocal(t *testing.T) {
	root := NewModuleRoot(&fakeModule{privates: map[string]object.Object{}})
	outer := NewChild(root)
	y := object.Intern("y")
	if err := AddLocal(outer, "y", y); err != nil {
		t.Fatalf("bind failed: %v", err)
	}
	inner := NewChild(outer)

	obj, isNonLocal, isGlobal, err := LookupEx(inner, "y", inner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obj != y {
		t.Fatalf("expected to resolve y")
	}
	if !isNonLocal {
		t.Fatalf("expected y to be reported non-local relative to inner")
	}
	if isGlobal {
		t.Fatalf("y is a lambda-captured local, not a module global")
	}
}
