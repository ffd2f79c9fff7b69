package arrowdoc

import (
	"reflect"
	"testing"
)

func TestChangeLogDisabledByDefaultRecordsNothing(t *testing.T) {
	cl := newChangeLog("docs", false, false)
	cl.recordInsert(Document{"a": 1})
	if len(cl.get()) != 0 {
		t.Fatalf("a disabled change log should record nothing")
	}
}

func TestChangeLogRecordsWholeDocumentWithoutDelta(t *testing.T) {
	cl := newChangeLog("docs", true, false)
	cl.recordUpdate(Document{"a": 1}, Document{"a": 2}, nil)

	changes := cl.get()
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %d", len(changes))
	}
	if changes[0].Obj["a"] != 2 {
		t.Fatalf("whole-document mode should record the full new document, got %#v", changes[0].Obj)
	}
}

func TestChangeLogFlushEmptiesEntries(t *testing.T) {
	cl := newChangeLog("docs", true, false)
	cl.recordInsert(Document{"a": 1})
	cl.flush()
	if len(cl.get()) != 0 {
		t.Fatalf("expected empty log after flush")
	}
}

func TestComputeDeltaIncludesOnlyChangedKeys(t *testing.T) {
	old := Document{"a": 1, "b": 2}
	new := Document{"a": 1, "b": 3}
	delta := computeDelta(old, new, nil)

	if _, ok := delta["a"]; ok {
		t.Fatalf("unchanged field a should be excluded, got %#v", delta)
	}
	if delta["b"] != 3 {
		t.Fatalf("expected b=3 in delta, got %#v", delta["b"])
	}
}

func TestComputeDeltaIncludesUniqueAndReservedFieldsOutright(t *testing.T) {
	old := Document{"email": "a@x.com", "$id": int64(1)}
	new := Document{"email": "a@x.com", "$id": int64(1)}
	delta := computeDelta(old, new, map[string]bool{"email": true})

	if _, ok := delta["email"]; !ok {
		t.Fatalf("a unique field should be included outright even when unchanged")
	}
	if _, ok := delta["$id"]; !ok {
		t.Fatalf("a reserved field should be included outright even when unchanged")
	}
}

func TestComputeDeltaRecursesIntoNestedMaps(t *testing.T) {
	old := Document{"b": Document{"c": 2, "d": 3}}
	new := Document{"b": Document{"c": 2, "d": 4}}
	delta := computeDelta(old, new, nil)

	sub, ok := delta["b"].(Document)
	if !ok {
		t.Fatalf("expected a nested delta for b, got %#v", delta["b"])
	}
	want := Document{"d": 4}
	if !reflect.DeepEqual(sub, want) {
		t.Fatalf("expected nested delta %v, got %v", want, sub)
	}
}

func TestComputeDeltaOmitsUnchangedNestedMaps(t *testing.T) {
	old := Document{"b": Document{"c": 2}}
	new := Document{"b": Document{"c": 2}}
	delta := computeDelta(old, new, nil)
	if _, ok := delta["b"]; ok {
		t.Fatalf("an unchanged nested map should produce no sub-delta, got %#v", delta)
	}
}

func TestApplyDeltaReproducesFinalDocument(t *testing.T) {
	base := Document{"a": 1, "b": Document{"c": 2, "d": 3}}
	newDoc := Document{"a": 1, "b": Document{"c": 2, "d": 4}}
	delta := computeDelta(base, newDoc, nil)

	replayed := applyDelta(base, delta)
	if !reflect.DeepEqual(replayed, newDoc) {
		t.Fatalf("replaying the delta onto base should reproduce newDoc: got %#v, want %#v", replayed, newDoc)
	}
}
