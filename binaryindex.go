package arrowdoc

import (
	"math/rand"
	"sort"
)

// RangeOperator enumerates the comparison operators calculateRange
// understands.
type RangeOperator string

const (
	OpEq      RangeOperator = "$eq"
	OpAeq     RangeOperator = "$aeq"
	OpDteq    RangeOperator = "$dteq"
	OpGt      RangeOperator = "$gt"
	OpGte     RangeOperator = "$gte"
	OpLt      RangeOperator = "$lt"
	OpLte     RangeOperator = "$lte"
	OpBetween RangeOperator = "$between"
)

// valueAccessor resolves the indexed field's value for a given position. The
// binary index itself owns no document storage; the Collection supplies
// this accessor at every call site.
type valueAccessor func(pos int) any

// binaryIndex is a sorted permutation of document positions, keyed by one
// document field. It is deliberately a plain slice rather than a tree
// structure: adaptive insert/update/remove need an exact splice-and-shift
// behavior over a position array that a self-balancing tree's own internal
// rebalancing would not expose.
type binaryIndex struct {
	field    string
	adaptive bool
	dirty    bool
	values   []int // permutation of positions, sorted by valueAt(pos)
}

func newBinaryIndex(field string, adaptive bool) *binaryIndex {
	return &binaryIndex{field: field, adaptive: adaptive, dirty: true}
}

// rebuild recomputes values from scratch as the sorted permutation of
// [0, n). Used for lazy-mode catch-up and for ensureIndex/explicit repair.
func (b *binaryIndex) rebuild(n int, valueAt valueAccessor) {
	values := make([]int, n)
	for i := range values {
		values[i] = i
	}
	sort.SliceStable(values, func(i, j int) bool {
		return compareValues(valueAt(values[i]), valueAt(values[j])) < 0
	})
	b.values = values
	b.dirty = false
}

func (b *binaryIndex) ensureFresh(n int, valueAt valueAccessor) {
	if b.dirty {
		b.rebuild(n, valueAt)
	}
}

// lowerBound returns the first index i such that valueAt(values[i]) is not
// less than target (i.e. >= target).
func (b *binaryIndex) lowerBound(target any, valueAt valueAccessor) int {
	return sort.Search(len(b.values), func(i int) bool {
		return compareValues(valueAt(b.values[i]), target) >= 0
	})
}

// upperBound returns the first index i such that valueAt(values[i]) is
// greater than target.
func (b *binaryIndex) upperBound(target any, valueAt valueAccessor) int {
	return sort.Search(len(b.values), func(i int) bool {
		return compareValues(valueAt(b.values[i]), target) > 0
	})
}

// calculateRange returns [lo, hi] inclusive indices into b.values whose data
// values satisfy op against target (or targets, for $between), or [0, -1]
// for an empty result. Callers must ensure the index is not dirty first.
func (b *binaryIndex) calculateRange(op RangeOperator, target any, valueAt valueAccessor) (int, int) {
	n := len(b.values)
	if n == 0 {
		return 0, -1
	}

	// Fast rejection against the extremes before doing the full binary
	// search.
	first := valueAt(b.values[0])
	last := valueAt(b.values[n-1])

	switch op {
	case OpEq, OpAeq, OpDteq:
		if compareValues(target, first) < 0 || compareValues(target, last) > 0 {
			return 0, -1
		}
		lo := b.lowerBound(target, valueAt)
		hi := b.upperBound(target, valueAt) - 1
		if lo > hi {
			return 0, -1
		}
		return lo, hi

	case OpGt:
		if compareValues(target, last) >= 0 {
			return 0, -1
		}
		lo := b.upperBound(target, valueAt)
		return lo, n - 1

	case OpGte:
		if compareValues(target, last) > 0 {
			return 0, -1
		}
		lo := b.lowerBound(target, valueAt)
		return lo, n - 1

	case OpLt:
		if compareValues(target, first) <= 0 {
			return 0, -1
		}
		hi := b.lowerBound(target, valueAt) - 1
		return 0, hi

	case OpLte:
		if compareValues(target, first) < 0 {
			return 0, -1
		}
		hi := b.upperBound(target, valueAt) - 1
		return 0, hi

	case OpBetween:
		bounds, ok := target.([2]any)
		if !ok {
			return 0, -1
		}
		lowTarget, highTarget := bounds[0], bounds[1]
		if compareValues(lowTarget, last) > 0 || compareValues(highTarget, first) < 0 {
			return 0, -1
		}
		// Inclusive on both ends.
		lo := b.lowerBound(lowTarget, valueAt)
		hi := b.upperBound(highTarget, valueAt) - 1
		if lo > hi {
			return 0, -1
		}
		return lo, hi

	default:
		return 0, -1
	}
}

// positions returns the data positions for the slot range [lo, hi]
// inclusive, in sorted order.
func (b *binaryIndex) positions(lo, hi int) []int {
	if lo > hi {
		return nil
	}
	out := make([]int, hi-lo+1)
	copy(out, b.values[lo:hi+1])
	return out
}

// insertAdaptive splices new position p into the sorted values slice at its
// correct location. Only called when b.adaptive is true; the lazy path
// just sets b.dirty.
func (b *binaryIndex) insertAdaptive(p int, valueAt valueAccessor) {
	k := b.lowerBound(valueAt(p), valueAt)
	b.values = append(b.values, 0)
	copy(b.values[k+1:], b.values[k:])
	b.values[k] = p
}

// updateAdaptive relocates position p after its value changed: a linear
// scan finds the slot currently holding p (there is no secondary
// position->slot map), splices it out, then re-inserts p at its new sorted
// location.
func (b *binaryIndex) updateAdaptive(p int, valueAt valueAccessor) {
	for i, v := range b.values {
		if v == p {
			b.values = append(b.values[:i], b.values[i+1:]...)
			break
		}
	}
	b.insertAdaptive(p, valueAt)
}

// removeAdaptiveBySlot splices out the slot holding position p, found by a
// linear scan over values, and then decrements every stored position
// greater than p, mirroring the Data/idIndex splice.
func (b *binaryIndex) removeAdaptiveBySlot(p int) {
	for i, v := range b.values {
		if v == p {
			b.values = append(b.values[:i], b.values[i+1:]...)
			break
		}
	}
	for i, v := range b.values {
		if v > p {
			b.values[i] = v - 1
		}
	}
}

// markDirty is the lazy-mode maintenance path: mutations just flag the
// index, deferring the rebuild to the next query or explicit ensureIndex.
func (b *binaryIndex) markDirty() {
	b.dirty = true
}

// checkIndex verifies len(values) == n and that adjacent pairs are ordered.
// When sampling is requested it checks the first and last pairs plus
// floor((n-1)*factor) random adjacent pairs. If a check fails and repair is
// set, the index is rebuilt from scratch.
type CheckIndexOptions struct {
	RandomSampling       bool
	RandomSamplingFactor float64
	Repair               bool
}

func (b *binaryIndex) checkIndex(n int, valueAt valueAccessor, opts CheckIndexOptions) bool {
	ok := b.verify(n, valueAt, opts)
	if !ok && opts.Repair {
		b.rebuild(n, valueAt)
		return true
	}
	return ok
}

func (b *binaryIndex) verify(n int, valueAt valueAccessor, opts CheckIndexOptions) bool {
	if b.dirty {
		return false
	}
	if len(b.values) != n {
		return false
	}
	if n < 2 {
		return true
	}

	pairOK := func(i int) bool {
		return compareValues(valueAt(b.values[i]), valueAt(b.values[i+1])) <= 0
	}

	if !opts.RandomSampling {
		for i := 0; i < n-1; i++ {
			if !pairOK(i) {
				return false
			}
		}
		return true
	}

	if !pairOK(0) || !pairOK(n-2) {
		return false
	}
	samples := int(float64(n-1) * opts.RandomSamplingFactor)
	for s := 0; s < samples; s++ {
		i := rand.Intn(n - 1)
		if !pairOK(i) {
			return false
		}
	}
	return true
}

func (b *binaryIndex) clone() *binaryIndex {
	dst := make([]int, len(b.values))
	copy(dst, b.values)
	return &binaryIndex{field: b.field, adaptive: b.adaptive, dirty: b.dirty, values: dst}
}
