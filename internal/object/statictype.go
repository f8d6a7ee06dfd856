package object

import "github.com/clayic/clayic/internal/clayerrors"

// StaticType computes the type of obj by lifting it into the type system
// where needed (spec §4.A: staticType(obj) -> Type). A *Type is its own
// static type's parameter: staticType(T) == Static[T]. Everything outside
// the allowed kinds is an "untypeable object" fatal error (spec §4.A).
func StaticType(it *InternTable, obj Object) (*Type, error) {
	switch v := obj.(type) {
	case *Type:
		return it.Static(v), nil
	case *ValueHolder:
		return v.Type, nil
	case *Identifier:
		return it.Static(v), nil
	case *PrimOp:
		return it.Static(v), nil
	case *Procedure:
		return it.Static(v), nil
	case *RecordDecl:
		return it.Static(v), nil
	case *VariantDecl:
		return it.Static(v), nil
	case *EnumDecl:
		return it.Static(v), nil
	case *NewTypeDecl:
		return it.Static(v), nil
	case *GlobalAlias:
		return it.Static(v), nil
	case *ExternalProcedure:
		return v.Type, nil
	case *ExternalVariable:
		return v.Type, nil
	case *GlobalVariable:
		return v.Type, nil
	case *Module:
		return it.Static(v), nil
	case *Intrinsic:
		return it.Static(v), nil
	default:
		return nil, clayerrors.New(clayerrors.OBJ001, "untypeable object: "+obj.String())
	}
}
