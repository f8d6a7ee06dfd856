package pattern

import (
	"github.com/clayic/clayic/internal/clayerrors"
	"github.com/clayic/clayic/internal/object"
)

// Context bundles the intern table and layout a caller's unification run
// needs to lower plain objects into patterns on demand (spec §4.C).
type Context struct {
	Interns *object.InternTable
	Layout  *object.Layout
}

// UnifyObjObj unifies two plain objects, promoting either side to a Pattern
// first if it already is one (spec §4.C, patterns.cpp:unifyObjObj). Neither
// side may itself be a bare MultiPattern.
func (c *Context) UnifyObjObj(a, b object.Object) (bool, error) {
	if p, ok := a.(Pattern); ok {
		return c.UnifyPatternObj(p, b)
	}
	if _, ok := a.(MultiPattern); ok {
		return false, clayerrors.New(clayerrors.PAT002, "incorrect usage of multi-valued pattern in single-valued context")
	}
	if p, ok := b.(Pattern); ok {
		return c.UnifyObjPattern(a, p)
	}
	if _, ok := b.(MultiPattern); ok {
		return false, clayerrors.New(clayerrors.PAT002, "incorrect usage of multi-valued pattern in single-valued context")
	}
	return object.Equals(a, b), nil
}

// UnifyObjPattern unifies plain object a against pattern b.
func (c *Context) UnifyObjPattern(a object.Object, b Pattern) (bool, error) {
	if p, ok := a.(Pattern); ok {
		return c.Unify(p, b)
	}
	if _, ok := a.(MultiPattern); ok {
		return false, clayerrors.New(clayerrors.PAT002, "incorrect usage of multi-valued pattern in single-valued context")
	}
	switch b2 := b.(type) {
	case *PatternCell:
		if b2.Obj == nil {
			b2.Obj = a
			return true, nil
		}
		return c.UnifyObjObj(b2.Obj, a)
	case *PatternStruct:
		a2, err := ObjectToPattern(c.Interns, c.Layout, a)
		if err != nil {
			return false, err
		}
		if as, ok := a2.(*PatternStruct); ok {
			if headsEqual(as.Head, b2.Head) {
				return c.UnifyMultiPatterns(as.Params, b2.Params)
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

// UnifyPatternObj is UnifyObjPattern with its arguments swapped, matching
// the original's symmetric entry point.
func (c *Context) UnifyPatternObj(a Pattern, b object.Object) (bool, error) {
	return c.UnifyObjPattern(b, a)
}

// Unify unifies two patterns (spec §4.C, patterns.cpp:unify). An unbound
// PatternCell on either side is bound to the other; two PatternStructs unify
// iff their heads match and their parameter lists unify pairwise.
func (c *Context) Unify(a, b Pattern) (bool, error) {
	if a2, ok := a.(*PatternCell); ok {
		if a2.Obj == nil {
			a2.Obj = b
			return true, nil
		}
		return c.UnifyObjPattern(a2.Obj, b)
	}
	if b2, ok := b.(*PatternCell); ok {
		if b2.Obj == nil {
			b2.Obj = a
			return true, nil
		}
		return c.UnifyPatternObj(a, b2.Obj)
	}
	as := a.(*PatternStruct)
	bs := b.(*PatternStruct)
	if !headsEqual(as.Head, bs.Head) {
		return false, nil
	}
	return c.UnifyMultiPatterns(as.Params, bs.Params)
}

func headsEqual(a, b object.Object) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return object.Equals(a, b)
}

// UnifyMultiStatics unifies a multi-valued pattern against a concrete list
// of static objects, lowering each into a pattern first (patterns.cpp's
// unifyMulti(MultiPatternPtr, MultiStaticPtr)).
func (c *Context) UnifyMultiStatics(a MultiPattern, b []object.Object) (bool, error) {
	items := make([]Pattern, len(b))
	for i, o := range b {
		p, err := ObjectToPattern(c.Interns, c.Layout, o)
		if err != nil {
			return false, err
		}
		items[i] = p
	}
	return c.UnifyMultiPatterns(a, &MultiPatternList{Items: items})
}

// UnifyMultiPatterns unifies two multi-patterns (patterns.cpp's
// unifyMulti(MultiPatternPtr, MultiPatternPtr)).
func (c *Context) UnifyMultiPatterns(a, b MultiPattern) (bool, error) {
	switch a2 := a.(type) {
	case *MultiPatternCell:
		if a2.Data == nil {
			a2.Data = b
			return true, nil
		}
		return c.UnifyMultiPatterns(a2.Data, b)
	case *MultiPatternList:
		return c.unifyListAgainstMulti(a2, 0, b)
	default:
		return false, nil
	}
}

func subList(x *MultiPatternList, index int) *MultiPatternList {
	items := make([]Pattern, 0, len(x.Items)-index)
	for i := index; i < len(x.Items); i++ {
		items = append(items, x.Items[i])
	}
	return &MultiPatternList{Items: items, Tail: x.Tail}
}

func (c *Context) unifyListAgainstMulti(a *MultiPatternList, indexA int, b MultiPattern) (bool, error) {
	switch b2 := b.(type) {
	case *MultiPatternCell:
		if b2.Data == nil {
			b2.Data = subList(a, indexA)
			return true, nil
		}
		return c.unifyListAgainstMulti(a, indexA, b2.Data)
	case *MultiPatternList:
		return c.unifyListAgainstList(a, indexA, b2, 0)
	default:
		return false, nil
	}
}

func (c *Context) unifyListAgainstList(a *MultiPatternList, indexA int, b *MultiPatternList, indexB int) (bool, error) {
	for indexA < len(a.Items) && indexB < len(b.Items) {
		ok, err := c.Unify(a.Items[indexA], b.Items[indexB])
		if err != nil || !ok {
			return false, err
		}
		indexA++
		indexB++
	}
	if indexA < len(a.Items) {
		if b.Tail == nil {
			return false, nil
		}
		return c.unifyListAgainstMulti(a, indexA, b.Tail)
	}
	if a.Tail != nil {
		return c.UnifyMultiPatterns(a.Tail, subList(b, indexB))
	}
	return UnifyEmptyList(b, indexB), nil
}

// UnifyEmpty unifies a multi-pattern against the empty tail: an unbound
// MultiPatternCell becomes bound to an empty list; a non-empty
// MultiPatternList fails (patterns.cpp:unifyEmpty).
func UnifyEmpty(x MultiPattern) bool {
	switch x2 := x.(type) {
	case *MultiPatternCell:
		if x2.Data == nil {
			x2.Data = &MultiPatternList{}
			return true
		}
		return UnifyEmpty(x2.Data)
	case *MultiPatternList:
		return UnifyEmptyList(x2, 0)
	default:
		return false
	}
}

// UnifyEmptyList is UnifyEmpty restricted to a MultiPatternList starting at
// index.
func UnifyEmptyList(x *MultiPatternList, index int) bool {
	if index < len(x.Items) {
		return false
	}
	if x.Tail != nil {
		return UnifyEmpty(x.Tail)
	}
	return true
}
