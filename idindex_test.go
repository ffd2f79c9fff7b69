package arrowdoc

import "testing"

func TestIDIndexSearchFindsAppendedIDs(t *testing.T) {
	ix := newIDIndex()
	for _, id := range []int64{1, 2, 5, 9, 100} {
		ix.append(id)
	}

	for i, id := range []int64{1, 2, 5, 9, 100} {
		pos, ok := ix.search(id)
		if !ok || pos != i {
			t.Fatalf("search(%d) = (%d, %v), want (%d, true)", id, pos, ok, i)
		}
	}

	if _, ok := ix.search(3); ok {
		t.Fatalf("search(3) should not be found")
	}
}

func TestIDIndexRemoveAtShiftsPositions(t *testing.T) {
	ix := newIDIndex()
	for _, id := range []int64{10, 20, 30, 40} {
		ix.append(id)
	}

	ix.removeAt(1) // removes 20
	if ix.len() != 3 {
		t.Fatalf("expected length 3, got %d", ix.len())
	}
	pos, ok := ix.search(30)
	if !ok || pos != 1 {
		t.Fatalf("search(30) after removal = (%d, %v), want (1, true)", pos, ok)
	}
	if _, ok := ix.search(20); ok {
		t.Fatalf("removed id 20 should no longer be found")
	}
}

func TestIDIndexCloneIsIndependent(t *testing.T) {
	ix := newIDIndex()
	ix.append(1)
	ix.append(2)

	clone := ix.clone()
	clone.append(3)

	if ix.len() != 2 {
		t.Fatalf("original index should be unaffected by clone mutation, got len %d", ix.len())
	}
	if clone.len() != 3 {
		t.Fatalf("clone should have 3 entries, got %d", clone.len())
	}
}

func TestIDIndexMax(t *testing.T) {
	ix := newIDIndex()
	if ix.max() != 0 {
		t.Fatalf("empty index max should be 0, got %d", ix.max())
	}
	ix.append(5)
	ix.append(9)
	if ix.max() != 9 {
		t.Fatalf("expected max 9, got %d", ix.max())
	}
}
