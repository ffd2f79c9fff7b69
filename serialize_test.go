package arrowdoc

import (
	"errors"
	"testing"
)

func TestToJSONFromJSONRoundTripPreservesDataAndIDs(t *testing.T) {
	c, err := NewCollection("people", WithUnique("email"), WithIndices("age"))
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}

	if _, err := c.Insert(Document{"email": "a@x.com", "age": 30}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := c.Insert(Document{"email": "b@x.com", "age": 20}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	raw, err := c.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	loaded, err := CollectionFromJSON(raw)
	if err != nil {
		t.Fatalf("CollectionFromJSON: %v", err)
	}

	if loaded.Count() != c.Count() {
		t.Fatalf("expected %d documents, got %d", c.Count(), loaded.Count())
	}
	if loaded.maxID != c.maxID {
		t.Fatalf("expected maxID %d, got %d", c.maxID, loaded.maxID)
	}
	if loaded.ids.len() != c.ids.len() {
		t.Fatalf("expected idIndex length %d, got %d", c.ids.len(), loaded.ids.len())
	}

	for _, id := range c.ids.ids {
		doc, err := loaded.Get(id)
		if err != nil {
			t.Fatalf("Get(%d) after reload: %v", id, err)
		}
		if gotID, _ := getID(doc); gotID != id {
			t.Fatalf("expected id %d, got %d", id, gotID)
		}
	}
}

func TestFromJSONRebuildsUniqueIndexEnforcement(t *testing.T) {
	c, err := NewCollection("people", WithUnique("email"))
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	if _, err := c.Insert(Document{"email": "a@x.com"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	raw, err := c.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	loaded, err := CollectionFromJSON(raw)
	if err != nil {
		t.Fatalf("CollectionFromJSON: %v", err)
	}

	_, err = loaded.Insert(Document{"email": "a@x.com"})
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected rebuilt unique index to reject a duplicate, got %v", err)
	}
}

func TestFromJSONRebuildsDirtyIndexOnDemand(t *testing.T) {
	c, err := NewCollection("ages", WithIndices("age"), WithAdaptiveBinaryIndices(false))
	if err != nil {
		t.Fatalf("NewCollection: %v", err)
	}
	for _, age := range []int{30, 10, 20} {
		if _, err := c.Insert(Document{"age": age}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	raw, err := c.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}
	loaded, err := CollectionFromJSON(raw)
	if err != nil {
		t.Fatalf("CollectionFromJSON: %v", err)
	}

	results, err := loaded.Range("age", OpGte, 0)
	if err != nil {
		t.Fatalf("range after reload: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
}
