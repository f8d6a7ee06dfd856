package object

import (
	"fmt"
	"strings"
	"sync"
)

// TypeTag discriminates the Type constructors enumerated in spec §3.
type TypeTag int

const (
	TagBool TypeTag = iota
	TagInteger
	TagFloat
	TagComplex
	TagPointer
	TagCodePointer
	TagExternalCodePointer
	TagArray
	TagVec
	TagTuple
	TagUnion
	TagStatic
	TagRecord
	TagVariant
	TagEnum
	TagNewType
)

// CallingConv mirrors ast.CallingConv for ExternalCodePointer types, kept
// independent so this package has no dependency on ast.
type CallingConv int

const (
	CCDefault CallingConv = iota
	CCStdCall
	CCFastCall
	CCThisCall
	CCLLVM
)

// Type is a hash-consed node of the type lattice (spec §3). Two types with
// equal constructor and equal parameter tuples are always the same *Type
// instance — this is the central invariant (spec §3, testable property 1).
type Type struct {
	Tag TypeTag

	// Bool: no fields.

	// Integer
	IntBits   int
	IntSigned bool

	// Float / Complex
	FloatBits      int
	FloatImaginary bool

	// Pointer
	Pointee *Type

	// CodePointer
	ArgTypes     []*Type
	ReturnIsRef  []bool
	ReturnTypes  []*Type

	// ExternalCodePointer
	CC         CallingConv
	VarArg     bool
	ExtReturn  *Type // nil = void

	// Array / Vec
	Elem *Type
	Size int

	// Tuple / Union
	Elems   []*Type
	Members []*Type

	// Static
	StaticObj Object

	// Record / Variant / Enum / NewType
	Decl   Object // *ast-level declaration identity (RecordDecl/VariantDecl/EnumDecl/NewTypeDecl), opaque here
	Params []Object

	key  string
	hash uint32
}

func (*Type) ObjKind() Kind { return KindType }

func (t *Type) String() string {
	switch t.Tag {
	case TagBool:
		return "Bool"
	case TagInteger:
		sign := "Int"
		if !t.IntSigned {
			sign = "UInt"
		}
		return fmt.Sprintf("%s%d", sign, t.IntBits)
	case TagFloat:
		if t.FloatImaginary {
			return fmt.Sprintf("Imag%d", t.FloatBits)
		}
		return fmt.Sprintf("Float%d", t.FloatBits)
	case TagComplex:
		return fmt.Sprintf("Complex%d", t.FloatBits)
	case TagPointer:
		return fmt.Sprintf("Pointer[%s]", t.Pointee)
	case TagCodePointer:
		args := joinTypes(t.ArgTypes)
		rets := joinTypes(t.ReturnTypes)
		return fmt.Sprintf("CodePointer[(%s), (%s)]", args, rets)
	case TagExternalCodePointer:
		return fmt.Sprintf("ExternalCodePointer[%s]", joinTypes(t.ArgTypes))
	case TagArray:
		return fmt.Sprintf("Array[%s, %d]", t.Elem, t.Size)
	case TagVec:
		return fmt.Sprintf("Vec[%s, %d]", t.Elem, t.Size)
	case TagTuple:
		return fmt.Sprintf("Tuple[%s]", joinTypes(t.Elems))
	case TagUnion:
		return fmt.Sprintf("Union[%s]", joinTypes(t.Members))
	case TagStatic:
		return fmt.Sprintf("Static[%s]", t.StaticObj)
	case TagRecord:
		return fmt.Sprintf("Record(%s)", joinObjs(t.Params))
	case TagVariant:
		return fmt.Sprintf("Variant(%s)", joinObjs(t.Params))
	case TagEnum:
		return "Enum"
	case TagNewType:
		return "NewType"
	default:
		return "<unknown type>"
	}
}

func joinTypes(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

func joinObjs(os []Object) string {
	parts := make([]string, len(os))
	for i, o := range os {
		if o == nil {
			parts[i] = "<nil>"
			continue
		}
		parts[i] = o.String()
	}
	return strings.Join(parts, ", ")
}

// InternTable hash-conses Types: construct(C, p) always returns the node
// identity-equal to any previous construct(C, p') with equal elementwise
// parameters (spec §3 invariant, testable property 1).
type InternTable struct {
	mu    sync.Mutex
	table map[string]*Type
}

// NewInternTable creates an empty intern table. One per CompilerState.
func NewInternTable() *InternTable {
	return &InternTable{table: make(map[string]*Type)}
}

func (it *InternTable) intern(key string, build func() *Type) *Type {
	it.mu.Lock()
	defer it.mu.Unlock()
	if t, ok := it.table[key]; ok {
		return t
	}
	t := build()
	t.key = key
	t.hash = fnv32(key)
	it.table[key] = t
	return t
}

func (it *InternTable) Bool() *Type {
	return it.intern("Bool", func() *Type { return &Type{Tag: TagBool} })
}

func (it *InternTable) Integer(bits int, signed bool) *Type {
	key := fmt.Sprintf("Integer(%d,%v)", bits, signed)
	return it.intern(key, func() *Type {
		return &Type{Tag: TagInteger, IntBits: bits, IntSigned: signed}
	})
}

func (it *InternTable) Float(bits int, imaginary bool) *Type {
	key := fmt.Sprintf("Float(%d,%v)", bits, imaginary)
	return it.intern(key, func() *Type {
		return &Type{Tag: TagFloat, FloatBits: bits, FloatImaginary: imaginary}
	})
}

func (it *InternTable) Complex(bits int) *Type {
	key := fmt.Sprintf("Complex(%d)", bits)
	return it.intern(key, func() *Type { return &Type{Tag: TagComplex, FloatBits: bits} })
}

func (it *InternTable) Pointer(pointee *Type) *Type {
	key := fmt.Sprintf("Pointer(%s)", pointee.key)
	return it.intern(key, func() *Type { return &Type{Tag: TagPointer, Pointee: pointee} })
}

func (it *InternTable) CodePointer(args []*Type, returnIsRef []bool, returns []*Type) *Type {
	key := fmt.Sprintf("CodePointer(%s;%v;%s)", keysOf(args), returnIsRef, keysOf(returns))
	return it.intern(key, func() *Type {
		return &Type{Tag: TagCodePointer, ArgTypes: append([]*Type{}, args...),
			ReturnIsRef: append([]bool{}, returnIsRef...), ReturnTypes: append([]*Type{}, returns...)}
	})
}

func (it *InternTable) ExternalCodePointer(cc CallingConv, varArg bool, args []*Type, ret *Type) *Type {
	retKey := "void"
	if ret != nil {
		retKey = ret.key
	}
	key := fmt.Sprintf("ExternalCodePointer(%d,%v,%s,%s)", cc, varArg, keysOf(args), retKey)
	return it.intern(key, func() *Type {
		return &Type{Tag: TagExternalCodePointer, CC: cc, VarArg: varArg,
			ArgTypes: append([]*Type{}, args...), ExtReturn: ret}
	})
}

func (it *InternTable) Array(elem *Type, size int) *Type {
	key := fmt.Sprintf("Array(%s,%d)", elem.key, size)
	return it.intern(key, func() *Type { return &Type{Tag: TagArray, Elem: elem, Size: size} })
}

func (it *InternTable) Vec(elem *Type, size int) *Type {
	key := fmt.Sprintf("Vec(%s,%d)", elem.key, size)
	return it.intern(key, func() *Type { return &Type{Tag: TagVec, Elem: elem, Size: size} })
}

func (it *InternTable) Tuple(elems []*Type) *Type {
	key := fmt.Sprintf("Tuple(%s)", keysOf(elems))
	return it.intern(key, func() *Type { return &Type{Tag: TagTuple, Elems: append([]*Type{}, elems...)} })
}

func (it *InternTable) Union(members []*Type) *Type {
	key := fmt.Sprintf("Union(%s)", keysOf(members))
	return it.intern(key, func() *Type { return &Type{Tag: TagUnion, Members: append([]*Type{}, members...)} })
}

// Static lifts a compile-time object into the type system: Static[X] is the
// one-element type whose sole value is X (spec §3, §4.A: staticType).
func (it *InternTable) Static(obj Object) *Type {
	key := fmt.Sprintf("Static(%s:%s)", obj.ObjKind(), staticObjKey(obj))
	return it.intern(key, func() *Type { return &Type{Tag: TagStatic, StaticObj: obj} })
}

func staticObjKey(obj Object) string {
	if t, ok := obj.(*Type); ok {
		return t.key
	}
	return obj.String()
}

func (it *InternTable) Record(decl Object, params []Object) *Type {
	key := fmt.Sprintf("Record(%p,%s)", decl, objKeys(params))
	return it.intern(key, func() *Type {
		return &Type{Tag: TagRecord, Decl: decl, Params: append([]Object{}, params...)}
	})
}

func (it *InternTable) Variant(decl Object, params []Object) *Type {
	key := fmt.Sprintf("Variant(%p,%s)", decl, objKeys(params))
	return it.intern(key, func() *Type {
		return &Type{Tag: TagVariant, Decl: decl, Params: append([]Object{}, params...)}
	})
}

func (it *InternTable) Enum(decl Object) *Type {
	key := fmt.Sprintf("Enum(%p)", decl)
	return it.intern(key, func() *Type { return &Type{Tag: TagEnum, Decl: decl} })
}

func (it *InternTable) NewType(decl Object) *Type {
	key := fmt.Sprintf("NewType(%p)", decl)
	return it.intern(key, func() *Type { return &Type{Tag: TagNewType, Decl: decl} })
}

func keysOf(ts []*Type) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.key
	}
	return strings.Join(parts, ",")
}

func objKeys(os []Object) string {
	parts := make([]string, len(os))
	for i, o := range os {
		if t, ok := o.(*Type); ok {
			parts[i] = t.key
		} else if o == nil {
			parts[i] = "<nil>"
		} else {
			parts[i] = o.String()
		}
	}
	return strings.Join(parts, ",")
}

// UnwrapStaticType is the inverse of Static: returns the lifted object, or
// (nil, false) if t is not a Static type (spec §4.A).
func UnwrapStaticType(t *Type) (Object, bool) {
	if t == nil || t.Tag != TagStatic {
		return nil, false
	}
	return t.StaticObj, true
}

// IsOverloadablePrimOp reports whether a Type's constructor belongs to the
// closed set of primitive-overloadable type constructors (spec §4.A):
// Pointer, CodePointer, ExternalCodePointer, Array, Vec, Tuple, Union, Static.
func IsOverloadablePrimOp(t *Type) bool {
	switch t.Tag {
	case TagPointer, TagCodePointer, TagExternalCodePointer, TagArray, TagVec, TagTuple, TagUnion, TagStatic:
		return true
	default:
		return false
	}
}
