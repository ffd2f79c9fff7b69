package arrowdoc

import "testing"

func TestCursorWalksForwardAndBackward(t *testing.T) {
	cur := newCursor([]int{10, 20, 30})

	if cur.HasPrev() {
		t.Fatalf("a fresh cursor should have no previous item")
	}
	v, ok := cur.Next()
	if !ok || v != 10 {
		t.Fatalf("Next() = (%d, %v), want (10, true)", v, ok)
	}
	v, ok = cur.Next()
	if !ok || v != 20 {
		t.Fatalf("Next() = (%d, %v), want (20, true)", v, ok)
	}
	v, ok = cur.Prev()
	if !ok || v != 10 {
		t.Fatalf("Prev() = (%d, %v), want (10, true)", v, ok)
	}
}

func TestCursorExhaustion(t *testing.T) {
	cur := newCursor([]int{1})
	cur.Next()
	if cur.HasNext() {
		t.Fatalf("expected no more items after exhausting the cursor")
	}
	if _, ok := cur.Next(); ok {
		t.Fatalf("Next() past the end should report ok=false")
	}
}

func TestCursorReset(t *testing.T) {
	cur := newCursor([]int{1, 2, 3})
	cur.Next()
	cur.Next()
	cur.Reset()
	if cur.HasPrev() {
		t.Fatalf("after Reset the cursor should have no previous item")
	}
	v, ok := cur.Next()
	if !ok || v != 1 {
		t.Fatalf("Next() after Reset = (%d, %v), want (1, true)", v, ok)
	}
}

func TestCollectionCursorIsPointInTimeSnapshot(t *testing.T) {
	c, err := NewCollection("docs")
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	if _, err := c.Insert(Document{"n": 1}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	cur := c.Cursor()
	if cur.Len() != 1 {
		t.Fatalf("expected 1 item in the snapshot, got %d", cur.Len())
	}

	if _, err := c.Insert(Document{"n": 2}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if cur.Len() != 1 {
		t.Fatalf("cursor snapshot should not see documents inserted afterward, got len %d", cur.Len())
	}
}
