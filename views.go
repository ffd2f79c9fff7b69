package arrowdoc

import (
	"sync"

	"github.com/google/btree"
)

// DynamicView is the narrow collaborator contract the core invokes on saved,
// incrementally-maintained queries. A full query compiler that plans and
// executes a view's filter is out of scope; only the contract and a minimal
// reference implementation live here.
type DynamicView interface {
	EvaluateDocument(pos int, isNew bool)
	RemoveDocument(pos int)
	StartTransaction()
	Commit()
	Rollback()
	ToJSON() map[string]any
}

// viewEntry orders a DynamicView's matching positions by a sort field,
// stored as a btree.Item.
type viewEntry struct {
	sortValue any
	pos       int
}

func (e viewEntry) Less(other btree.Item) bool {
	o := other.(viewEntry)
	if c := compareValues(e.sortValue, o.sortValue); c != 0 {
		return c < 0
	}
	return e.pos < o.pos
}

// SimpleView is a concrete, minimal DynamicView: a saved predicate plus a
// btree-ordered set of matching positions. It exists so the mutation
// coordinator's observer fan-out has something real to drive in tests and
// examples, standing in for a query-compiler-backed view. Ordering reuses
// github.com/google/btree — a use distinct from the core binary index,
// which stays array-based for its exact splice-and-shift semantics.
type SimpleView struct {
	name      string
	predicate func(Document) bool
	sortField string
	valueAt   valueAccessor
	docSource func(pos int) Document

	mu       sync.Mutex
	tree     *btree.BTree
	byPos    map[int]viewEntry
	snapshot *btree.BTree // set during a transaction, restored on rollback
}

// NewSimpleView creates a view over predicate, ordered by sortField using
// valueAt to resolve a position's sort value.
func NewSimpleView(name string, predicate func(Document) bool, sortField string, valueAt valueAccessor) *SimpleView {
	return &SimpleView{
		name:      name,
		predicate: predicate,
		sortField: sortField,
		valueAt:   valueAt,
		tree:      btree.New(32),
		byPos:     make(map[int]viewEntry),
	}
}

// setDocSource is called once by Collection.AddView, wiring the view to the
// owning collection's document accessor without the view holding a back
// reference to the collection itself.
func (v *SimpleView) setDocSource(fn func(pos int) Document) {
	v.docSource = fn
}

func (v *SimpleView) EvaluateDocument(pos int, isNew bool) {
	_ = isNew
	v.mu.Lock()
	defer v.mu.Unlock()

	if existing, ok := v.byPos[pos]; ok {
		v.tree.Delete(existing)
		delete(v.byPos, pos)
	}

	if v.docSource == nil {
		return
	}
	doc := v.docSource(pos)
	if doc == nil || !v.predicate(doc) {
		return
	}

	entry := viewEntry{sortValue: v.valueAt(pos), pos: pos}
	v.tree.ReplaceOrInsert(entry)
	v.byPos[pos] = entry
}

func (v *SimpleView) RemoveDocument(pos int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if existing, ok := v.byPos[pos]; ok {
		v.tree.Delete(existing)
		delete(v.byPos, pos)
	}

	// Every position greater than the removed one shifts down by one,
	// mirroring the collection's own position-shift invariant.
	shifted := btree.New(32)
	newByPos := make(map[int]viewEntry, len(v.byPos))
	v.tree.Ascend(func(item btree.Item) bool {
		e := item.(viewEntry)
		if e.pos > pos {
			e.pos--
		}
		shifted.ReplaceOrInsert(e)
		newByPos[e.pos] = e
		return true
	})
	v.tree = shifted
	v.byPos = newByPos
}

func (v *SimpleView) StartTransaction() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = v.tree.Clone()
}

func (v *SimpleView) Commit() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = nil
}

func (v *SimpleView) Rollback() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.snapshot == nil {
		return
	}
	v.tree = v.snapshot
	v.snapshot = nil
	newByPos := make(map[int]viewEntry)
	v.tree.Ascend(func(item btree.Item) bool {
		e := item.(viewEntry)
		newByPos[e.pos] = e
		return true
	})
	v.byPos = newByPos
}

// Positions returns the view's current membership in sort order.
func (v *SimpleView) Positions() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]int, 0, v.tree.Len())
	v.tree.Ascend(func(item btree.Item) bool {
		out = append(out, item.(viewEntry).pos)
		return true
	})
	return out
}

func (v *SimpleView) ToJSON() map[string]any {
	return map[string]any{
		"name":      v.name,
		"sortField": v.sortField,
		"positions": v.Positions(),
	}
}
