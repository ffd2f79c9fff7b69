package arrowdoc

import "testing"

func valuesOf(data []int) valueAccessor {
	return func(pos int) any { return data[pos] }
}

func TestBinaryIndexRebuildProducesSortedPermutation(t *testing.T) {
	data := []int{30, 10, 20, 40}
	b := newBinaryIndex("age", false)
	b.rebuild(len(data), valuesOf(data))

	want := []int{1, 2, 0, 3} // positions of 10, 20, 30, 40
	if len(b.values) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(b.values))
	}
	for i := range want {
		if b.values[i] != want[i] {
			t.Fatalf("values[%d] = %d, want %d (full: %v)", i, b.values[i], want[i], b.values)
		}
	}
}

func TestBinaryIndexCalculateRangeBetweenIsInclusiveBothEnds(t *testing.T) {
	data := []int{10, 20, 30, 40}
	b := newBinaryIndex("age", false)
	b.rebuild(len(data), valuesOf(data))

	lo, hi := b.calculateRange(OpBetween, [2]any{20, 30}, valuesOf(data))
	positions := b.positions(lo, hi)

	var got []int
	for _, p := range positions {
		got = append(got, data[p])
	}
	if len(got) != 2 || got[0] != 20 || got[1] != 30 {
		t.Fatalf("expected [20 30] inclusive, got %v", got)
	}
}

func TestBinaryIndexCalculateRangeOperators(t *testing.T) {
	data := []int{10, 20, 20, 30, 40}
	b := newBinaryIndex("age", false)
	b.rebuild(len(data), valuesOf(data))

	cases := []struct {
		op   RangeOperator
		arg  any
		want []int
	}{
		{OpEq, 20, []int{20, 20}},
		{OpGt, 30, []int{40}},
		{OpGte, 30, []int{30, 40}},
		{OpLt, 20, []int{10}},
		{OpLte, 20, []int{10, 20, 20}},
	}

	for _, tc := range cases {
		lo, hi := b.calculateRange(tc.op, tc.arg, valuesOf(data))
		positions := b.positions(lo, hi)
		var got []int
		for _, p := range positions {
			got = append(got, data[p])
		}
		if len(got) != len(tc.want) {
			t.Fatalf("%s %v: got %v, want %v", tc.op, tc.arg, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s %v: got %v, want %v", tc.op, tc.arg, got, tc.want)
			}
		}
	}
}

func TestBinaryIndexAdaptiveInsertKeepsOrdering(t *testing.T) {
	data := []int{10, 30, 40}
	b := newBinaryIndex("age", true)
	b.rebuild(len(data), valuesOf(data))

	data = append(data, 20)
	b.insertAdaptive(3, valuesOf(data))

	var got []int
	for _, p := range b.values {
		got = append(got, data[p])
	}
	want := []int{10, 20, 30, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after adaptive insert got %v, want %v", got, want)
		}
	}
}

func TestBinaryIndexAdaptiveUpdateRelocates(t *testing.T) {
	data := []int{10, 20, 30}
	b := newBinaryIndex("age", true)
	b.rebuild(len(data), valuesOf(data))

	data[0] = 50 // position 0 now sorts last
	b.updateAdaptive(0, valuesOf(data))

	var got []int
	for _, p := range b.values {
		got = append(got, data[p])
	}
	want := []int{20, 30, 50}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after adaptive update got %v, want %v", got, want)
		}
	}
}

func TestBinaryIndexRemoveAdaptiveShiftsPositions(t *testing.T) {
	data := []int{10, 20, 30, 40}
	b := newBinaryIndex("age", true)
	b.rebuild(len(data), valuesOf(data))

	// Remove data position 1 (value 20): caller splices data itself.
	data = append(data[:1], data[2:]...)
	b.removeAdaptiveBySlot(1)

	var got []int
	for _, p := range b.values {
		got = append(got, data[p])
	}
	want := []int{10, 30, 40}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("after remove got %v, want %v", got, want)
		}
	}
}

func TestBinaryIndexCheckIndexDetectsCorruption(t *testing.T) {
	data := []int{10, 20, 30}
	b := newBinaryIndex("age", false)
	b.rebuild(len(data), valuesOf(data))

	// Corrupt the permutation directly.
	b.values[0], b.values[1] = b.values[1], b.values[0]

	ok := b.checkIndex(len(data), valuesOf(data), CheckIndexOptions{})
	if ok {
		t.Fatalf("expected corrupted index to fail verification")
	}

	ok = b.checkIndex(len(data), valuesOf(data), CheckIndexOptions{Repair: true})
	if !ok {
		t.Fatalf("expected repair to fix the index and report healthy")
	}
}

func TestBinaryIndexCloneIsIndependent(t *testing.T) {
	data := []int{10, 20, 30}
	b := newBinaryIndex("age", false)
	b.rebuild(len(data), valuesOf(data))

	clone := b.clone()
	clone.values[0] = 999

	if b.values[0] == 999 {
		t.Fatalf("mutating the clone's values should not affect the original")
	}
}
