// Package pattern implements the unification kernel the overload resolver
// and global-alias evaluator match call arguments against (spec §4.C). A
// Pattern is either a mutable logical variable (PatternCell, unbound until
// unified) or a rigid structural template (PatternStruct, head + params);
// MultiPattern mirrors the same split for zero-or-more-valued contexts
// (MultiPatternCell, MultiPatternList), grounded on the original compiler's
// patterns.hpp/patterns.cpp.
package pattern

import "github.com/clayic/clayic/internal/object"

// Pattern is a node of the single-valued pattern lattice.
type Pattern interface {
	object.Object
	isPattern()
}

// PatternCell is a logical variable: Obj is nil until Unify binds it, after
// which every further unification is checked/propagated against Obj.
type PatternCell struct {
	Obj object.Object
}

func (*PatternCell) ObjKind() object.Kind { return object.KindPattern }
func (c *PatternCell) String() string {
	if c.Obj == nil {
		return "?"
	}
	return c.Obj.String()
}
func (*PatternCell) isPattern() {}

// PatternStruct is a rigid template: a head object (a primitive type
// constructor or a Record/Variant declaration) applied to a parameter list.
// A nil Head denotes an untagged grouping (e.g. a tuple-literal pattern).
type PatternStruct struct {
	Head   object.Object
	Params MultiPattern
}

func (*PatternStruct) ObjKind() object.Kind { return object.KindPattern }
func (s *PatternStruct) String() string {
	head := "()"
	if s.Head != nil {
		head = s.Head.String()
	}
	return head + "[" + s.Params.String() + "]"
}
func (*PatternStruct) isPattern() {}

// MultiPattern is a node of the zero-or-more-valued pattern lattice.
type MultiPattern interface {
	object.Object
	isMultiPattern()
}

// MultiPatternCell is a logical variable over a whole (possibly empty) tail
// of values, bound by UnifyMulti/UnifyEmpty to a MultiPatternList.
type MultiPatternCell struct {
	Data MultiPattern
}

func (*MultiPatternCell) ObjKind() object.Kind { return object.KindMultiPattern }
func (c *MultiPatternCell) String() string {
	if c.Data == nil {
		return "?..."
	}
	return c.Data.String()
}
func (*MultiPatternCell) isMultiPattern() {}

// MultiPatternList is a fixed prefix of single-valued patterns optionally
// followed by a MultiPatternCell tail absorbing the remainder.
type MultiPatternList struct {
	Items []Pattern
	Tail  MultiPattern // nil, or a *MultiPatternCell
}

func (*MultiPatternList) ObjKind() object.Kind { return object.KindMultiPattern }
func (l *MultiPatternList) String() string {
	s := ""
	for i, it := range l.Items {
		if i > 0 {
			s += ", "
		}
		s += it.String()
	}
	if l.Tail != nil {
		if len(l.Items) > 0 {
			s += ", "
		}
		s += l.Tail.String()
	}
	return s
}
func (*MultiPatternList) isMultiPattern() {}

// NewUnboundCell creates a fresh single-valued logical variable.
func NewUnboundCell() *PatternCell { return &PatternCell{} }

// NewUnboundMultiCell creates a fresh multi-valued logical variable.
func NewUnboundMultiCell() *MultiPatternCell { return &MultiPatternCell{} }
