package pattern

import (
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

// IsPatternHead reports whether obj may head a PatternStruct: the closed set
// of overloadable type prims plus record/variant declarations (spec §4.C,
// original_source/compiler/patterns.cpp:isPatternHead).
func IsPatternHead(obj object.Object) bool {
	switch v := obj.(type) {
	case *object.PrimOp:
		switch v.Code {
		case object.PrimPointer, object.PrimCodePointer, object.PrimExternalCodePointer,
			object.PrimArray, object.PrimVec, object.PrimTuple, object.PrimUnion, object.PrimStatic:
			return true
		default:
			return false
		}
	case *object.RecordDecl, *object.VariantDecl:
		return true
	default:
		return false
	}
}

// ObjectToPattern lowers any compile-time object into a Pattern, the
// injection half of the pattern/object correspondence used whenever a
// concrete argument is matched against a formal's pattern (spec §4.C,
// original_source/compiler/patterns.cpp:objectToPattern). A Type decomposes
// into a PatternStruct over its constructor's head and parameters so that,
// e.g., matching `Pointer[a]` against `Pointer[Int32]` binds `a` to Int32;
// every other object becomes an opaque bound PatternCell.
func ObjectToPattern(it *object.InternTable, layout *object.Layout, obj object.Object) (Pattern, error) {
	switch v := obj.(type) {
	case Pattern:
		return v, nil
	case MultiPattern:
		return nil, clayerrors.New(clayerrors.PAT002, "incorrect usage of multi-valued pattern in single-valued context")
	case *object.ValueHolder:
		if v.Type.Tag == object.TagTuple {
			return tupleValueToPattern(it, layout, v)
		}
		return &PatternCell{Obj: obj}, nil
	case *object.Type:
		return typeToPattern(it, layout, v)
	default:
		return &PatternCell{Obj: obj}, nil
	}
}

func tupleValueToPattern(it *object.InternTable, layout *object.Layout, v *object.ValueHolder) (Pattern, error) {
	elems := v.Type.Elems
	offsets := layout.FieldOffsets(elems)
	items := make([]Pattern, len(elems))
	for i, et := range elems {
		size := layout.Size(et)
		field := &object.ValueHolder{Type: et, Bytes: v.Bytes[offsets[i] : offsets[i]+size]}
		p, err := ObjectToPattern(it, layout, field)
		if err != nil {
			return nil, err
		}
		items[i] = p
	}
	return &PatternStruct{Head: nil, Params: &MultiPatternList{Items: items}}, nil
}

func typeToPattern(it *object.InternTable, layout *object.Layout, t *object.Type) (Pattern, error) {
	single := func(head object.Object, p Pattern) (Pattern, error) {
		return &PatternStruct{Head: head, Params: &MultiPatternList{Items: []Pattern{p}}}, nil
	}
	list := func(items ...Pattern) *MultiPatternList { return &MultiPatternList{Items: items} }

	switch t.Tag {
	case object.TagPointer:
		p, err := typeToPattern(it, layout, t.Pointee)
		if err != nil {
			return nil, err
		}
		return single(object.PrimOpSingleton(object.PrimPointer), p)

	case object.TagCodePointer:
		argItems, err := typesToPatterns(it, layout, t.ArgTypes)
		if err != nil {
			return nil, err
		}
		retTypes := make([]*object.Type, len(t.ReturnTypes))
		copy(retTypes, t.ReturnTypes)
		retItems, err := typesToPatterns(it, layout, retTypes)
		if err != nil {
			return nil, err
		}
		args := &PatternStruct{Head: nil, Params: list(argItems...)}
		rets := &PatternStruct{Head: nil, Params: list(retItems...)}
		return &PatternStruct{Head: object.PrimOpSingleton(object.PrimCodePointer), Params: list(args, rets)}, nil

	case object.TagExternalCodePointer:
		argItems, err := typesToPatterns(it, layout, t.ArgTypes)
		if err != nil {
			return nil, err
		}
		var retItems []Pattern
		if t.ExtReturn != nil {
			rp, err := typeToPattern(it, layout, t.ExtReturn)
			if err != nil {
				return nil, err
			}
			retItems = []Pattern{rp}
		}
		args := &PatternStruct{Head: nil, Params: list(argItems...)}
		rets := &PatternStruct{Head: nil, Params: list(retItems...)}
		ccCell := &PatternCell{Obj: callingConvObject(t.CC)}
		varArgCell := &PatternCell{Obj: &object.ValueHolder{Type: it.Bool(), Bytes: boolBytes(t.VarArg)}}
		return &PatternStruct{
			Head:   object.PrimOpSingleton(object.PrimExternalCodePointer),
			Params: list(ccCell, varArgCell, args, rets),
		}, nil

	case object.TagArray:
		ep, err := typeToPattern(it, layout, t.Elem)
		if err != nil {
			return nil, err
		}
		sizeCell := &PatternCell{Obj: intValue(it, t.Size)}
		return &PatternStruct{Head: object.PrimOpSingleton(object.PrimArray), Params: list(ep, sizeCell)}, nil

	case object.TagVec:
		ep, err := typeToPattern(it, layout, t.Elem)
		if err != nil {
			return nil, err
		}
		sizeCell := &PatternCell{Obj: intValue(it, t.Size)}
		return &PatternStruct{Head: object.PrimOpSingleton(object.PrimVec), Params: list(ep, sizeCell)}, nil

	case object.TagTuple:
		items, err := typesToPatterns(it, layout, t.Elems)
		if err != nil {
			return nil, err
		}
		return &PatternStruct{Head: object.PrimOpSingleton(object.PrimTuple), Params: list(items...)}, nil

	case object.TagUnion:
		items, err := typesToPatterns(it, layout, t.Members)
		if err != nil {
			return nil, err
		}
		return &PatternStruct{Head: object.PrimOpSingleton(object.PrimUnion), Params: list(items...)}, nil

	case object.TagStatic:
		p, err := ObjectToPattern(it, layout, t.StaticObj)
		if err != nil {
			return nil, err
		}
		return single(object.PrimOpSingleton(object.PrimStatic), p)

	case object.TagRecord, object.TagVariant:
		items := make([]Pattern, len(t.Params))
		for i, p := range t.Params {
			pp, err := ObjectToPattern(it, layout, p)
			if err != nil {
				return nil, err
			}
			items[i] = pp
		}
		return &PatternStruct{Head: t.Decl, Params: list(items...)}, nil

	default:
		return &PatternCell{Obj: t}, nil
	}
}

func typesToPatterns(it *object.InternTable, layout *object.Layout, ts []*object.Type) ([]Pattern, error) {
	out := make([]Pattern, len(ts))
	for i, t := range ts {
		p, err := typeToPattern(it, layout, t)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func intValue(it *object.InternTable, n int) *object.ValueHolder {
	bits := make([]byte, 8)
	v := int64(n)
	for i := 0; i < 8; i++ {
		bits[i] = byte(v >> (8 * i))
	}
	return &object.ValueHolder{Type: it.Integer(64, true), Bytes: bits}
}

func boolBytes(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}

// callingConvObject lifts an ExternalCodePointer's calling convention to the
// identifier the original compiler uses as its pattern-matching parameter
// (e.g. `AttributeCCall`), since object carries no enum-to-identifier table.
func callingConvObject(cc object.CallingConv) object.Object {
	switch cc {
	case object.CCStdCall:
		return object.Intern("AttributeStdCall")
	case object.CCFastCall:
		return object.Intern("AttributeFastCall")
	case object.CCThisCall:
		return object.Intern("AttributeThisCall")
	case object.CCLLVM:
		return object.Intern("AttributeLLVMCall")
	default:
		return object.Intern("AttributeCCall")
	}
}
