// Package object implements the tagged Object hierarchy of spec §3 — the
// core's universe of program entities (types, values, procedures, records,
// variants, identifiers, modules, primitive ops, intrinsics) with identity
// and equality. Dispatch over the sum is done with Go type switches, one per
// operation (spec §9), rather than virtual methods.
package object

import (
	"bytes"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Kind tags the variant of an Object, mirroring the teacher's type-switch
// style (internal/types, internal/core) rather than a closed interface
// hierarchy with per-type virtual methods.
type Kind int

const (
	KindIdentifier Kind = iota
	KindType
	KindValueHolder
	KindPrimOp
	KindProcedure
	KindRecordDecl
	KindVariantDecl
	KindEnumDecl
	KindEnumMember
	KindNewTypeDecl
	KindGlobalVariable
	KindGlobalAlias
	KindExternalVariable
	KindExternalProcedure
	KindModule
	KindIntrinsic
	KindPValue
	KindMultiPValue
	KindEValue
	KindMultiEValue
	KindPattern
	KindMultiPattern
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "Identifier"
	case KindType:
		return "Type"
	case KindValueHolder:
		return "ValueHolder"
	case KindPrimOp:
		return "PrimOp"
	case KindProcedure:
		return "Procedure"
	case KindRecordDecl:
		return "RecordDecl"
	case KindVariantDecl:
		return "VariantDecl"
	case KindEnumDecl:
		return "EnumDecl"
	case KindEnumMember:
		return "EnumMember"
	case KindNewTypeDecl:
		return "NewTypeDecl"
	case KindGlobalVariable:
		return "GlobalVariable"
	case KindGlobalAlias:
		return "GlobalAlias"
	case KindExternalVariable:
		return "ExternalVariable"
	case KindExternalProcedure:
		return "ExternalProcedure"
	case KindModule:
		return "Module"
	case KindIntrinsic:
		return "Intrinsic"
	case KindPValue:
		return "PValue"
	case KindMultiPValue:
		return "MultiPValue"
	case KindEValue:
		return "EValue"
	case KindMultiEValue:
		return "MultiEValue"
	case KindPattern:
		return "Pattern"
	case KindMultiPattern:
		return "MultiPattern"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Object is the base interface every program entity implements. It carries
// only identity (Kind) and rendering; everything else is reached by type
// switch in the consuming package (analyzer/evaluator/pattern/invoke).
type Object interface {
	ObjKind() Kind
	String() string
}

// Identifier is an interned source name (spec §3).
type Identifier struct {
	Name string
}

func (*Identifier) ObjKind() Kind    { return KindIdentifier }
func (i *Identifier) String() string { return i.Name }

// identifier interning table: identifiers compare by value, not pointer, but
// interning keeps allocation down and gives a canonical instance for maps.
var identifierTable = map[string]*Identifier{}

// normalizeIdentifier NFC-normalizes a source identifier before interning,
// the same reason the teacher's internal/lexer/normalize.go applies NFC at
// the lexer boundary: two spellings of the same identifier that differ only
// by Unicode normalization form (NFC vs NFD) must intern to one object, or
// unification and environment lookup would treat them as distinct names.
func normalizeIdentifier(name string) string {
	b := []byte(name)
	if norm.NFC.IsNormal(b) {
		return name
	}
	return string(norm.NFC.Bytes(bytes.Clone(b)))
}

// Intern returns the canonical *Identifier for name.
func Intern(name string) *Identifier {
	name = normalizeIdentifier(name)
	if id, ok := identifierTable[name]; ok {
		return id
	}
	id := &Identifier{Name: name}
	identifierTable[name] = id
	return id
}

// Equals implements structural equality for objects reachable purely by
// value (identifiers, value holders, prim ops); Types are compared by
// pointer identity since they are hash-consed (spec §3 invariant).
func Equals(a, b Object) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ObjKind() != b.ObjKind() {
		return false
	}
	switch av := a.(type) {
	case *Identifier:
		return av.Name == b.(*Identifier).Name
	case *Type:
		return av == b.(*Type) // hash-consed: pointer identity is structural identity
	case *ValueHolder:
		return av.Equals(b.(*ValueHolder))
	case *PrimOp:
		return av.Code == b.(*PrimOp).Code
	default:
		return a == b
	}
}

// Hash produces a combinable hash for use in invocation-table bucketing
// (spec §4.F: "hash combines objectHash(callable) with ...").
func Hash(o Object) uint32 {
	switch v := o.(type) {
	case *Identifier:
		return fnv32(v.Name)
	case *Type:
		return v.hash
	case *ValueHolder:
		return fnv32(v.Type.String()) ^ fnv32(string(v.Bytes))
	case *PrimOp:
		return uint32(v.Code) * 2654435761
	default:
		return 0
	}
}

func fnv32(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
