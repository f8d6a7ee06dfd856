package pattern

import "github.com/clayic/clayic/internal/object"

// DerefDeep fully reads a pattern back into a concrete object, recursively
// resolving bound cells and reconstructing structs from their head+params
// (spec §4.C, patterns.cpp:derefDeep). It returns (nil, false) if any cell
// along the way is still unbound — the caller (resolver) treats that as "not
// fully determined yet".
func (c *Context) DerefDeep(p Pattern) (object.Object, bool) {
	switch v := p.(type) {
	case *PatternCell:
		if v.Obj == nil {
			return nil, false
		}
		if inner, ok := v.Obj.(Pattern); ok {
			return c.DerefDeep(inner)
		}
		return v.Obj, true
	case *PatternStruct:
		params, ok := c.DerefDeepMulti(v.Params)
		if !ok {
			return nil, false
		}
		return c.constructStruct(v.Head, params)
	default:
		return nil, false
	}
}

// DerefDeepMulti is DerefDeep's counterpart for multi-patterns.
func (c *Context) DerefDeepMulti(x MultiPattern) ([]object.Object, bool) {
	switch v := x.(type) {
	case *MultiPatternCell:
		if v.Data == nil {
			return nil, false
		}
		return c.DerefDeepMulti(v.Data)
	case *MultiPatternList:
		out := make([]object.Object, 0, len(v.Items))
		for _, item := range v.Items {
			o, ok := c.DerefDeep(item)
			if !ok {
				return nil, false
			}
			out = append(out, o)
		}
		if v.Tail != nil {
			tail, ok := c.DerefDeepMulti(v.Tail)
			if !ok {
				return nil, false
			}
			out = append(out, tail...)
		}
		return out, true
	default:
		return nil, false
	}
}

// constructStruct is the inverse of typeToPattern: given a resolved head and
// fully-deref'd parameters, it rebuilds the concrete object the struct
// denotes (patterns.cpp:computeStruct). A nil head with all-Type params
// rebuilds a Tuple type; the original's nil-head/value case (reconstructing
// a runtime tuple *value* from its unpacked fields) needs the byte-packing
// the Evaluator owns, so callers that need that path thread reconstruction
// through the evaluator instead of through this pure kernel.
func (c *Context) constructStruct(head object.Object, params []object.Object) (object.Object, bool) {
	if head == nil {
		allTypes := true
		types := make([]*object.Type, len(params))
		for i, p := range params {
			t, ok := p.(*object.Type)
			if !ok {
				allTypes = false
				break
			}
			types[i] = t
		}
		if allTypes {
			return c.Interns.Tuple(types), true
		}
		return nil, false
	}

	prim, isPrim := head.(*object.PrimOp)
	if isPrim {
		switch prim.Code {
		case object.PrimPointer:
			return c.Interns.Pointer(params[0].(*object.Type)), true
		case object.PrimArray:
			size := intParam(params[1])
			return c.Interns.Array(params[0].(*object.Type), size), true
		case object.PrimVec:
			size := intParam(params[1])
			return c.Interns.Vec(params[0].(*object.Type), size), true
		case object.PrimTuple:
			return c.Interns.Tuple(typesOf(params)), true
		case object.PrimUnion:
			return c.Interns.Union(typesOf(params)), true
		case object.PrimStatic:
			return c.Interns.Static(params[0]), true
		case object.PrimCodePointer:
			args := structParamsOf(params[0])
			rets := structParamsOf(params[1])
			retTypes := typesOf(rets)
			returnIsRef := make([]bool, len(rets))
			return c.Interns.CodePointer(typesOf(args), returnIsRef, retTypes), true
		case object.PrimExternalCodePointer:
			args := structParamsOf(params[2])
			rets := structParamsOf(params[3])
			var ret *object.Type
			if len(rets) > 0 {
				ret = rets[0].(*object.Type)
			}
			varArg := boolParam(params[1])
			return c.Interns.ExternalCodePointer(ccParam(params[0]), varArg, typesOf(args), ret), true
		}
	}

	switch head.(type) {
	case *object.RecordDecl:
		return c.Interns.Record(head, params), true
	case *object.VariantDecl:
		return c.Interns.Variant(head, params), true
	}

	return nil, false
}

func typesOf(objs []object.Object) []*object.Type {
	out := make([]*object.Type, len(objs))
	for i, o := range objs {
		out[i] = o.(*object.Type)
	}
	return out
}

// structParamsOf reads back a nested untagged PatternStruct's already
// deref'd params — used for the argument/return sub-lists nested inside
// CodePointer/ExternalCodePointer reconstructions, which derefDeep has
// already flattened via DerefDeepMulti's recursive walk, so at this point
// the value itself is a Tuple type standing in for the grouping.
func structParamsOf(o object.Object) []object.Object {
	if t, ok := o.(*object.Type); ok && t.Tag == object.TagTuple {
		out := make([]object.Object, len(t.Elems))
		for i, e := range t.Elems {
			out[i] = e
		}
		return out
	}
	return nil
}

func intParam(o object.Object) int {
	vh, ok := o.(*object.ValueHolder)
	if !ok {
		return 0
	}
	var n int64
	for i := len(vh.Bytes) - 1; i >= 0; i-- {
		n = (n << 8) | int64(vh.Bytes[i])
	}
	return int(n)
}

func boolParam(o object.Object) bool {
	vh, ok := o.(*object.ValueHolder)
	if !ok {
		return false
	}
	return len(vh.Bytes) > 0 && vh.Bytes[0] != 0
}

func ccParam(o object.Object) object.CallingConv {
	id, ok := o.(*object.Identifier)
	if !ok {
		return object.CCDefault
	}
	switch id.Name {
	case "AttributeStdCall":
		return object.CCStdCall
	case "AttributeFastCall":
		return object.CCFastCall
	case "AttributeThisCall":
		return object.CCThisCall
	case "AttributeLLVMCall":
		return object.CCLLVM
	default:
		return object.CCDefault
	}
}
