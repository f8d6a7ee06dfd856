package evaluator

import (
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/loaderiface"
	"github.com/clayic/clayic/internal/object"
	"github.com/clayic/clayic/internal/objenv"
)

// fieldTypeEnv builds the throwaway scope a Record/Variant declaration's
// field-type expressions are evaluated against: its own type parameters
// bound to the instantiation's Params (spec §3, "field types may reference
// the declaration's own type parameters"). Resolving this from the
// argument's own hash-consed Type is what actually unblocks
// PrimRecordFieldRef and friends — the Decl+Params pair already carries
// everything needed, no collaborator outside this package required.
func fieldTypeEnv(paramNames []string, varParam string, args []object.Object) (*objenv.Env, error) {
	root := objenv.NewModuleRoot(loaderiface.NewModule("<field-types>"))
	if varParam == "" && len(args) != len(paramNames) {
		return nil, clayerrors.Newf(clayerrors.EVA007, "expected %d type argument(s), got %d", len(paramNames), len(args))
	}
	for i, name := range paramNames {
		if i >= len(args) {
			return nil, clayerrors.Newf(clayerrors.EVA007, "missing type argument for parameter %s", name)
		}
		if err := objenv.AddLocal(root, name, args[i]); err != nil {
			return nil, err
		}
	}
	if varParam != "" {
		return nil, clayerrors.New(clayerrors.EVA007, "variadic record/variant type parameters are not supported by the field resolver")
	}
	return root, nil
}

// recordFieldTypes resolves every field of t (a Record-tagged Type) to its
// concrete, instantiated Type, in declaration order.
func (ev *Evaluator) recordFieldTypes(t *object.Type) ([]*object.Type, *object.RecordDecl, error) {
	rd, ok := t.Decl.(*object.RecordDecl)
	if !ok {
		return nil, nil, clayerrors.Newf(clayerrors.EVA007, "%s is not a record type", t)
	}
	env, err := fieldTypeEnv(rd.Decl.Params, rd.Decl.VarParam, t.Params)
	if err != nil {
		return nil, nil, err
	}
	types := make([]*object.Type, len(rd.Decl.Fields))
	for i, f := range rd.Decl.Fields {
		obj, err := ev.EvaluateOneStatic(f.Type, env)
		if err != nil {
			return nil, nil, err
		}
		ft, ok := obj.(*object.Type)
		if !ok {
			return nil, nil, clayerrors.Newf(clayerrors.EVA007, "field %s of record %s does not evaluate to a type", f.Name, rd.Decl.Name)
		}
		types[i] = ft
	}
	return types, rd, nil
}

func (ev *Evaluator) recordFieldIndexByName(rd *object.RecordDecl, name string) (int, error) {
	for i, f := range rd.Decl.Fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, clayerrors.Newf(clayerrors.EVA007, "record %s has no field named %s", rd.Decl.Name, name)
}

// fieldIndexArg decodes a field-ref's second argument as a compile-time
// integer (spec §4.E/§9: "aggregate field access via the backend's layout").
func fieldIndexArg(args []*object.EValue) int {
	idx := args[1]
	return int(decodeInt(idx.Type.IntBits, idx.Type.IntSigned, idx.Addr))
}

// fieldNameArg decodes a *-ByName field-ref's second argument: a
// compile-time-only Static[Identifier] value (mirroring how Static carries
// zero runtime bytes, spec §4.A/§6).
func fieldNameArg(args []*object.EValue) (string, error) {
	obj, ok := object.UnwrapStaticType(args[1].Type)
	if !ok {
		return "", clayerrors.New(clayerrors.EVA007, "field name argument must be a static identifier")
	}
	id, ok := obj.(*object.Identifier)
	if !ok {
		return "", clayerrors.New(clayerrors.EVA007, "field name argument must be a static identifier")
	}
	return id.Name, nil
}

// recordFieldRefType/recordFieldRefByNameType back primOpResultType: the
// result type of a field ref can be known without touching the record
// instance's bytes, only its Type.
func (ev *Evaluator) recordFieldRefType(args []*object.EValue) (*object.Type, error) {
	types, rd, err := ev.recordFieldTypes(args[0].Type)
	if err != nil {
		return nil, err
	}
	idx := fieldIndexArg(args)
	if idx < 0 || idx >= len(types) {
		return nil, clayerrors.Newf(clayerrors.EVA007, "field index %d out of range for record %s", idx, rd.Decl.Name)
	}
	return types[idx], nil
}

func (ev *Evaluator) recordFieldRefByNameType(args []*object.EValue) (*object.Type, error) {
	name, err := fieldNameArg(args)
	if err != nil {
		return nil, err
	}
	types, rd, err := ev.recordFieldTypes(args[0].Type)
	if err != nil {
		return nil, err
	}
	idx, err := ev.recordFieldIndexByName(rd, name)
	if err != nil {
		return nil, err
	}
	return types[idx], nil
}

// recordFieldRef/recordFieldRefByName execute the field access, slicing the
// record's backing bytes at the field's laid-out offset (spec §6).
func (ev *Evaluator) recordFieldRef(args []*object.EValue) (*object.MultiEValue, error) {
	rec := args[0]
	types, rd, err := ev.recordFieldTypes(rec.Type)
	if err != nil {
		return nil, err
	}
	idx := fieldIndexArg(args)
	if idx < 0 || idx >= len(types) {
		return nil, clayerrors.Newf(clayerrors.EVA007, "field index %d out of range for record %s", idx, rd.Decl.Name)
	}
	offsets := ev.Layout.FieldOffsets(types)
	size := ev.Layout.Size(types[idx])
	return single(&object.EValue{Type: types[idx], Addr: rec.Addr[offsets[idx] : offsets[idx]+size]}), nil
}

func (ev *Evaluator) recordFieldRefByName(args []*object.EValue) (*object.MultiEValue, error) {
	rec := args[0]
	name, err := fieldNameArg(args)
	if err != nil {
		return nil, err
	}
	types, rd, err := ev.recordFieldTypes(rec.Type)
	if err != nil {
		return nil, err
	}
	idx, err := ev.recordFieldIndexByName(rd, name)
	if err != nil {
		return nil, err
	}
	offsets := ev.Layout.FieldOffsets(types)
	size := ev.Layout.Size(types[idx])
	return single(&object.EValue{Type: types[idx], Addr: rec.Addr[offsets[idx] : offsets[idx]+size]}), nil
}

// variantTag reads the discriminant stored at a variant value's first 4
// bytes (spec §4.H treats a Variant's tag the same way an Enum's ordinal is
// laid out: a 4-byte int32 header ahead of the active member's payload).
func (ev *Evaluator) variantTag(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	v := args[0]
	if v.Type.Tag != object.TagVariant {
		return nil, clayerrors.Newf(clayerrors.EVA007, "%s is not a variant type", v.Type)
	}
	if len(v.Addr) < 4 {
		return nil, clayerrors.New(clayerrors.EVA007, "variant value is too small to carry a tag")
	}
	tag := decodeInt(32, true, v.Addr[:4])
	r, err := ev.storeInt(t, tag)
	if err != nil {
		return nil, err
	}
	return single(r), nil
}

// staticFieldRefObj resolves a cross-module public lookup (spec §4.E:
// "staticFieldRef (cross-module public lookup)"): args[0] is a
// Static-wrapped module reference, args[1] a Static-wrapped field name.
func (ev *Evaluator) staticFieldRefObj(args []*object.EValue) (object.Object, error) {
	modObj, ok := object.UnwrapStaticType(args[0].Type)
	if !ok {
		return nil, clayerrors.New(clayerrors.EVA007, "staticFieldRef requires a static module reference")
	}
	mod, ok := modObj.(objenv.ModuleScope)
	if !ok {
		return nil, clayerrors.Newf(clayerrors.EVA007, "%s is not a module", modObj)
	}
	name, err := fieldNameArg(args)
	if err != nil {
		return nil, err
	}
	obj, err := mod.LookupPublic(name)
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, clayerrors.Newf(clayerrors.ENV002, "undefined name: %s", name)
	}
	return obj, nil
}

// staticFieldRefType/staticFieldRef back primOpResultType/EvalPrimOp: the
// looked-up object is itself lifted back into a Static type, carrying no
// runtime storage (spec §4.A, §6), the same convention PrimTypeSizeQ and
// friends already use for compile-time-only facts.
func (ev *Evaluator) staticFieldRefType(args []*object.EValue) (*object.Type, error) {
	obj, err := ev.staticFieldRefObj(args)
	if err != nil {
		return nil, err
	}
	return ev.Interns.Static(obj), nil
}

func (ev *Evaluator) staticFieldRef(args []*object.EValue, t *object.Type) (*object.MultiEValue, error) {
	if _, err := ev.staticFieldRefObj(args); err != nil {
		return nil, err
	}
	return single(&object.EValue{Type: t, Addr: nil}), nil
}
