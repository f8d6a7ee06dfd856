package object

// Layout computes target data-layout facts the backend would otherwise
// supply (spec §6: "Aggregate field offsets follow the backend's data layout
// for the active target triple"). Sizes/alignments are cached per-type on
// first computation (spec §4.A: "computed once per type ... cached").
type Layout struct {
	PointerSize  int // bytes
	WordSize     int // bytes, default int/float width reference
	sizeCache    map[*Type]int
	alignCache   map[*Type]int
}

// NewLayout builds a layout for a given pointer width (bytes), as read from
// the module-attribute / build-manifest (SPEC_FULL §3 ambient config).
func NewLayout(pointerSize int) *Layout {
	return &Layout{
		PointerSize: pointerSize,
		WordSize:    pointerSize,
		sizeCache:   make(map[*Type]int),
		alignCache:  make(map[*Type]int),
	}
}

// Size returns the size in bytes of t, per the active target layout.
func (l *Layout) Size(t *Type) int {
	if s, ok := l.sizeCache[t]; ok {
		return s
	}
	s := l.computeSize(t)
	l.sizeCache[t] = s
	return s
}

// Alignment returns the alignment in bytes of t, per the active target layout.
func (l *Layout) Alignment(t *Type) int {
	if a, ok := l.alignCache[t]; ok {
		return a
	}
	a := l.computeAlignment(t)
	l.alignCache[t] = a
	return a
}

func (l *Layout) computeSize(t *Type) int {
	switch t.Tag {
	case TagBool:
		return 1
	case TagInteger:
		return t.IntBits / 8
	case TagFloat:
		if t.FloatBits == 80 {
			return 16 // x86 extended precision, padded
		}
		return t.FloatBits / 8
	case TagComplex:
		return 2 * (t.FloatBits / 8)
	case TagPointer, TagCodePointer, TagExternalCodePointer:
		return l.PointerSize
	case TagArray:
		return l.Size(t.Elem) * t.Size
	case TagVec:
		// SIMD vectors round up to a power-of-two-friendly width; approximate
		// as tightly packed, which is sufficient for the core's own bookkeeping
		// (the backend owns the final vector ABI, spec §1 out of scope).
		return l.Size(t.Elem) * t.Size
	case TagTuple:
		return l.aggregateSize(t.Elems)
	case TagUnion:
		return l.unionSize(t.Members)
	case TagStatic:
		return 0 // the one value is compile-time only; carries no runtime storage
	case TagEnum:
		return 4 // underlying int32 ordinal, matching typical backend default
	case TagNewType:
		return l.Size(l.underlyingOf(t))
	default:
		return 0
	}
}

func (l *Layout) computeAlignment(t *Type) int {
	switch t.Tag {
	case TagBool:
		return 1
	case TagInteger:
		return min(t.IntBits/8, l.PointerSize*2)
	case TagFloat:
		if t.FloatBits == 80 {
			return 16
		}
		return t.FloatBits / 8
	case TagComplex:
		return t.FloatBits / 8
	case TagPointer, TagCodePointer, TagExternalCodePointer:
		return l.PointerSize
	case TagArray, TagVec:
		return l.Alignment(t.Elem)
	case TagTuple:
		return l.maxAlignment(t.Elems)
	case TagUnion:
		return l.maxAlignment(t.Members)
	case TagStatic:
		return 1
	case TagEnum:
		return 4
	case TagNewType:
		return l.Alignment(l.underlyingOf(t))
	default:
		return 1
	}
}

// FieldOffsets computes the byte offset of each element of an aggregate
// under C-like sequential layout with natural alignment padding (spec §6).
func (l *Layout) FieldOffsets(elems []*Type) []int {
	offsets := make([]int, len(elems))
	offset := 0
	for i, e := range elems {
		a := l.Alignment(e)
		offset = alignUp(offset, a)
		offsets[i] = offset
		offset += l.Size(e)
	}
	return offsets
}

func (l *Layout) aggregateSize(elems []*Type) int {
	if len(elems) == 0 {
		return 0
	}
	offsets := l.FieldOffsets(elems)
	last := len(elems) - 1
	size := offsets[last] + l.Size(elems[last])
	return alignUp(size, l.maxAlignment(elems))
}

func (l *Layout) unionSize(members []*Type) int {
	max := 0
	for _, m := range members {
		if s := l.Size(m); s > max {
			max = s
		}
	}
	return alignUp(max, l.maxAlignment(members))
}

func (l *Layout) maxAlignment(ts []*Type) int {
	max := 1
	for _, t := range ts {
		if a := l.Alignment(t); a > max {
			max = a
		}
	}
	return max
}

// underlyingOf resolves a NewType's wrapped type. Decl is opaque Object in
// this package; callers (analyzer/evaluator) register the mapping via
// RegisterNewTypeUnderlying since only they know the declaration shape.
func (l *Layout) underlyingOf(t *Type) *Type {
	if u, ok := newTypeUnderlying[t]; ok {
		return u
	}
	return nil
}

var newTypeUnderlying = map[*Type]*Type{}

// RegisterNewTypeUnderlying records the underlying type of a NewType node,
// so Layout can compute its (zero-cost) size/alignment (spec §4.H).
func RegisterNewTypeUnderlying(newType, underlying *Type) {
	newTypeUnderlying[newType] = underlying
}

func alignUp(offset, align int) int {
	if align <= 1 {
		return offset
	}
	rem := offset % align
	if rem == 0 {
		return offset
	}
	return offset + (align - rem)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
