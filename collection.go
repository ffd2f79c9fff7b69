package arrowdoc

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

// Collection is a typed, in-memory container of documents identified by a
// monotonically increasing integer $id. It owns a dense Data array, a
// parallel id index for binary-search lookup, any number of named binary
// (range) indices and unique hash indices, an optional set of dynamic views
// and a full-text indexer, a change log, a staging area, and an optional TTL
// eviction daemon. A single RWMutex guards every field; mutation methods
// take the write lock for the whole call, so each public call is one
// atomic step.
type Collection struct {
	name string
	opts CollectionOptions

	mu sync.RWMutex

	data  []Document
	ids   *idIndex
	maxID int64

	binaryIndices map[string]*binaryIndex
	uniqueIndices map[string]*uniqueIndex

	views []DynamicView
	fts   FullTextIndexer

	changes *changeLog
	stage   *stagingArea
	ttl     *ttlDaemon
	bus     *eventBus

	txn *txnSnapshot

	log *logrus.Entry
}

// NewCollection builds a Collection with the given name and options,
// applying the documented defaults (DefaultCollectionOptions) first.
func NewCollection(name string, opts ...CollectionOption) (*Collection, error) {
	o := DefaultCollectionOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if o.DisableMeta && o.TTL > 0 {
		return nil, fmt.Errorf("%w: %v", ErrConfig, ErrTTLDisabled)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c := &Collection{
		name:          name,
		opts:          o,
		ids:           newIDIndex(),
		binaryIndices: make(map[string]*binaryIndex, len(o.Indices)),
		uniqueIndices: make(map[string]*uniqueIndex, len(o.Unique)),
		stage:         newStagingArea(),
		bus:           newEventBus(o.AsyncListeners),
		log:           logger.WithField("collection", name),
	}

	changesEnabled := !o.DisableChangesAPI
	deltaEnabled := changesEnabled && !o.DisableDeltaChangesAPI
	c.changes = newChangeLog(name, changesEnabled, deltaEnabled)

	for _, field := range o.Indices {
		c.binaryIndices[field] = newBinaryIndex(field, o.AdaptiveBinaryIndices)
	}
	for _, field := range o.Unique {
		c.uniqueIndices[field] = newUniqueIndex(field)
	}
	if len(o.FullTextSearch) > 0 {
		c.fts = NewSimpleFullTextIndex(o.FullTextSearch)
	}

	c.ttl = newTTLDaemon(o.TTL, o.TTLInterval, c.sweepExpired, c.log)
	if o.TTL > 0 {
		c.ttl.start()
	}

	return c, nil
}

// Name returns the collection's name.
func (c *Collection) Name() string { return c.name }

// Logger exposes the collection's structured logger so callers can redirect
// its output or attach fields; it writes to io.Discard until they do.
func (c *Collection) Logger() *logrus.Entry { return c.log }

func (c *Collection) nextID() int64 {
	c.maxID++
	return c.maxID
}

func normalizeForIndex(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.UnixMilli()
	}
	return v
}

// fieldValue resolves field against doc, falling back to a registered
// nested-property path when the field isn't a literal top-level key.
func (c *Collection) fieldValue(doc Document, field string) any {
	if v, ok := doc[field]; ok {
		return normalizeForIndex(v)
	}
	for _, p := range c.opts.NestedProperties {
		if p.Name == field {
			return resolveNestedProperty(doc, p.Path)
		}
	}
	return nil
}

func (c *Collection) valueAtFor(field string) valueAccessor {
	return func(pos int) any { return c.fieldValue(c.data[pos], field) }
}

func (c *Collection) uniqueFieldSet() map[string]bool {
	out := make(map[string]bool, len(c.uniqueIndices))
	for f := range c.uniqueIndices {
		out[f] = true
	}
	return out
}

func (c *Collection) notifyViews(pos int, isNew bool) {
	for _, v := range c.views {
		v.EvaluateDocument(pos, isNew)
	}
}

func (c *Collection) cloneResults(docs []Document) []Document {
	if !c.opts.Clone {
		return docs
	}
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = cloneWith(c.opts.CloneMethod, d)
	}
	return out
}

// checkUniqueForInsert registers doc's unique-field values at pos, failing
// on the first collision. Any partial registration made before the failure
// is undone here before the error is returned.
func (c *Collection) checkUniqueForInsert(doc Document, pos int) error {
	var registered []*uniqueIndex
	for field, idx := range c.uniqueIndices {
		if err := idx.set(doc[field], pos); err != nil {
			for _, r := range registered {
				r.remove(doc[r.field])
			}
			return err
		}
		registered = append(registered, idx)
	}
	return nil
}

// checkUniqueForUpdate re-registers any unique field whose value changed,
// leaving fields whose value is unchanged alone.
func (c *Collection) checkUniqueForUpdate(oldDoc, newDoc Document, pos int) error {
	for field, idx := range c.uniqueIndices {
		oldVal, newVal := oldDoc[field], newDoc[field]
		if valuesEqual(oldVal, newVal) {
			continue
		}
		if err := idx.update(newVal, pos); err != nil {
			return err
		}
		idx.remove(oldVal)
	}
	return nil
}

func (c *Collection) maintainBinaryIndicesOnInsert(pos int) {
	for field, b := range c.binaryIndices {
		if b.adaptive {
			b.insertAdaptive(pos, c.valueAtFor(field))
		} else {
			b.markDirty()
		}
	}
}

func (c *Collection) maintainBinaryIndicesOnUpdate(pos int) {
	for field, b := range c.binaryIndices {
		if b.adaptive {
			b.updateAdaptive(pos, c.valueAtFor(field))
		} else {
			b.markDirty()
		}
	}
}

// removeAtLocked splices position pos out of Data, the id index, every
// unique index, and every binary index, shifting every position above pos
// down by one so the invariant tying a document's $id to a single Data
// position holds throughout. Callers must already hold c.mu.
func (c *Collection) removeAtLocked(pos int) Document {
	doc := c.data[pos]

	c.data = append(c.data[:pos], c.data[pos+1:]...)
	c.ids.removeAt(pos)

	for field, idx := range c.uniqueIndices {
		idx.remove(doc[field])
		idx.decrementAbove(pos)
	}

	for _, b := range c.binaryIndices {
		if b.adaptive {
			b.removeAdaptiveBySlot(pos)
		} else {
			b.markDirty()
		}
	}

	for _, v := range c.views {
		v.RemoveDocument(pos)
	}
	if c.fts != nil {
		c.fts.RemoveDocument(doc, pos)
	}

	return doc
}

// applyUpdateAtLocked rewrites the document at pos to working, bumping its
// metadata (version/revision/updated, carrying created forward) unless
// DisableMeta is set, checking unique constraints, maintaining every
// binary index, and notifying views, the full-text indexer, and the change
// log. Callers must already hold c.mu and have already stripped any
// caller-supplied $meta from working.
func (c *Collection) applyUpdateAtLocked(pos int, working Document) (Document, error) {
	oldDoc := c.data[pos]
	id, _ := getID(oldDoc)
	working[IDField] = id

	if !c.opts.DisableMeta {
		oldMeta, hadMeta := getMeta(oldDoc)
		version, revision, created := 1, 0, nowMillis()
		if hadMeta {
			version = oldMeta.Version + 1
			revision = oldMeta.Revision + 1
			if oldMeta.Created > 0 {
				created = oldMeta.Created
			}
		}
		working[MetaField] = Meta{Version: version, Revision: revision, Created: created, Updated: nowMillis()}.toMap()
	}

	if err := c.checkUniqueForUpdate(oldDoc, working, pos); err != nil {
		return nil, err
	}

	c.data[pos] = working
	c.maintainBinaryIndicesOnUpdate(pos)
	c.notifyViews(pos, false)
	if c.fts != nil {
		c.fts.UpdateDocument(working, pos)
	}
	c.changes.recordUpdate(oldDoc, working, c.uniqueFieldSet())

	return working, nil
}

// Insert adds a single document, assigning it a fresh $id and, unless
// DisableMeta is set, a $meta block. doc must not already carry an $id.
func (c *Collection) Insert(doc Document) (Document, error) {
	results, err := c.insertAll([]Document{doc})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// InsertMany inserts a batch of documents under a single lock, and
// pre-insert/insert events fire once for the whole batch. On a
// transactional collection either all succeed or none do; otherwise the
// documents inserted before a failing one stay in the collection.
func (c *Collection) InsertMany(docs []Document) ([]Document, error) {
	return c.insertAll(docs)
}

func (c *Collection) insertAll(docs []Document) ([]Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	for _, d := range docs {
		if d == nil {
			return nil, fmt.Errorf("%w: document must not be nil", ErrType)
		}
		if _, exists := d[IDField]; exists {
			return nil, fmt.Errorf("%w: document must not already carry %s", ErrState, IDField)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bus.emit(EventPreInsert, docs)
	c.startTransaction()

	results := make([]Document, 0, len(docs))
	for _, src := range docs {
		working := src
		if c.opts.Clone {
			working = cloneWith(c.opts.CloneMethod, src)
		}

		// Validate before consuming an id, so a rejected document never
		// advances maxID.
		pos := len(c.data)
		if err := c.checkUniqueForInsert(working, pos); err != nil {
			c.rollbackTransaction()
			c.bus.emit(EventError, err)
			return nil, err
		}

		id := c.nextID()
		working[IDField] = id
		if !c.opts.DisableMeta {
			now := nowMillis()
			working[MetaField] = Meta{Version: 1, Revision: 0, Created: now, Updated: now}.toMap()
		}

		c.data = append(c.data, working)
		c.ids.append(id)
		c.maintainBinaryIndicesOnInsert(pos)
		c.notifyViews(pos, true)
		if c.fts != nil {
			c.fts.AddDocument(working, pos)
		}
		c.changes.recordInsert(working)

		results = append(results, working)
	}

	c.commitTransaction()
	out := c.cloneResults(results)
	c.bus.emit(EventInsert, out)
	return out, nil
}

// Update replaces the document identified by doc's $id with doc itself
// (minus any caller-supplied $meta, which is recomputed).
func (c *Collection) Update(doc Document) (Document, error) {
	results, err := c.updateAll([]Document{doc})
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// UpdateMany updates a batch of documents as a single atomic step.
func (c *Collection) UpdateMany(docs []Document) ([]Document, error) {
	return c.updateAll(docs)
}

func (c *Collection) updateAll(docs []Document) ([]Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	for _, d := range docs {
		if _, ok := getID(d); !ok {
			return nil, fmt.Errorf("%w: update requires %s", ErrState, IDField)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.bus.emit(EventPreUpdate, docs)
	c.startTransaction()

	// When every index is adaptive and cloning is off, splicing each index
	// on every document in the batch costs more than settling for dirty
	// flags and rebuilding once at the end.
	batchRebuild := c.opts.AdaptiveBinaryIndices && !c.opts.Clone && len(c.binaryIndices) > 0
	if batchRebuild {
		for _, b := range c.binaryIndices {
			b.adaptive = false
		}
		defer func() {
			for field, b := range c.binaryIndices {
				b.adaptive = true
				if b.dirty {
					b.rebuild(len(c.data), c.valueAtFor(field))
				}
			}
		}()
	}

	results := make([]Document, 0, len(docs))
	for _, src := range docs {
		id, _ := getID(src)
		pos, ok := c.ids.search(id)
		if !ok {
			c.rollbackTransaction()
			err := fmt.Errorf("%w: id %d", ErrDocumentNotFound, id)
			c.bus.emit(EventError, err)
			return nil, err
		}

		working := src
		if c.opts.Clone {
			working = cloneWith(c.opts.CloneMethod, src)
		}
		delete(working, MetaField)

		res, err := c.applyUpdateAtLocked(pos, working)
		if err != nil {
			c.rollbackTransaction()
			c.bus.emit(EventError, err)
			return nil, err
		}
		results = append(results, res)
	}

	c.commitTransaction()
	out := c.cloneResults(results)
	c.bus.emit(EventUpdate, out)
	return out, nil
}

// FindAndUpdate locates every document matching predicate and rewrites it
// to updater's return value, as one atomic step. updater receives a deep
// copy of the matched document regardless of the Clone setting, so it is
// always safe for it to mutate and return its argument.
func (c *Collection) FindAndUpdate(predicate func(Document) bool, updater func(Document) Document) ([]Document, error) {
	return c.findAndUpdateAll(predicate, updater)
}

// UpdateWhere is an alias for FindAndUpdate.
func (c *Collection) UpdateWhere(predicate func(Document) bool, updater func(Document) Document) ([]Document, error) {
	return c.findAndUpdateAll(predicate, updater)
}

func (c *Collection) findAndUpdateAll(predicate func(Document) bool, updater func(Document) Document) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []int64
	for _, d := range c.data {
		if predicate(d) {
			if id, ok := getID(d); ok {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	c.bus.emit(EventPreUpdate, ids)
	c.startTransaction()

	results := make([]Document, 0, len(ids))
	for _, id := range ids {
		pos, ok := c.ids.search(id)
		if !ok {
			continue
		}
		working := updater(deepCloneDocument(c.data[pos]))
		delete(working, MetaField)

		res, err := c.applyUpdateAtLocked(pos, working)
		if err != nil {
			c.rollbackTransaction()
			c.bus.emit(EventError, err)
			return nil, err
		}
		results = append(results, res)
	}

	c.commitTransaction()
	out := c.cloneResults(results)
	c.bus.emit(EventUpdate, out)
	return out, nil
}

// RemoveByID removes the document with the given $id.
func (c *Collection) RemoveByID(id int64) (Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeByIDLocked(id)
}

func (c *Collection) removeByIDLocked(id int64) (Document, error) {
	pos, ok := c.ids.search(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, id)
	}

	c.startTransaction()
	doc := c.removeAtLocked(pos)
	c.changes.recordRemove(doc)
	c.commitTransaction()

	emitted := doc
	if c.opts.Clone {
		emitted = cloneWith(c.opts.CloneMethod, doc)
	}
	c.bus.emit(EventDelete, emitted)
	return stripReserved(doc), nil
}

// stripReserved returns a copy of doc with the reserved $id and $meta
// attributes removed, matching Remove's contract that the returned document
// carries neither identity nor metadata.
func stripReserved(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := shallowCloneDocument(doc)
	delete(out, IDField)
	delete(out, MetaField)
	return out
}

// Remove removes doc, read by its $id.
func (c *Collection) Remove(doc Document) (Document, error) {
	id, ok := getID(doc)
	if !ok {
		return nil, fmt.Errorf("%w: remove requires %s", ErrState, IDField)
	}
	return c.RemoveByID(id)
}

// RemoveMany removes every listed $id as one atomic step.
func (c *Collection) RemoveMany(ids []int64) ([]Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTransaction()
	results := make([]Document, 0, len(ids))
	for _, id := range ids {
		pos, ok := c.ids.search(id)
		if !ok {
			c.rollbackTransaction()
			err := fmt.Errorf("%w: id %d", ErrDocumentNotFound, id)
			c.bus.emit(EventError, err)
			return nil, err
		}
		doc := c.removeAtLocked(pos)
		c.changes.recordRemove(doc)
		results = append(results, doc)
	}

	c.commitTransaction()
	emitted := c.cloneResults(results)
	c.bus.emit(EventDelete, emitted)

	out := make([]Document, len(results))
	for i, d := range results {
		out[i] = stripReserved(d)
	}
	return out, nil
}

// FindAndRemove removes every document matching predicate, as one atomic
// step.
func (c *Collection) FindAndRemove(predicate func(Document) bool) ([]Document, error) {
	return c.removeWhereAll(predicate)
}

// RemoveWhere is an alias for FindAndRemove.
func (c *Collection) RemoveWhere(predicate func(Document) bool) ([]Document, error) {
	return c.removeWhereAll(predicate)
}

func (c *Collection) removeWhereAll(predicate func(Document) bool) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ids []int64
	for _, d := range c.data {
		if predicate(d) {
			if id, ok := getID(d); ok {
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	c.startTransaction()
	results := make([]Document, 0, len(ids))
	for _, id := range ids {
		pos, ok := c.ids.search(id)
		if !ok {
			continue
		}
		doc := c.removeAtLocked(pos)
		c.changes.recordRemove(doc)
		results = append(results, doc)
	}

	c.commitTransaction()
	emitted := c.cloneResults(results)
	c.bus.emit(EventDelete, emitted)

	out := make([]Document, len(results))
	for i, d := range results {
		out[i] = stripReserved(d)
	}
	return out, nil
}

// Clear empties the collection. When removeIndices is false, binary indices
// are reset to an empty-but-defined state rather than recreated, preserving
// their field/adaptive configuration.
func (c *Collection) Clear(removeIndices bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = nil
	c.ids = newIDIndex()
	c.maxID = 0

	for _, idx := range c.uniqueIndices {
		idx.clear()
	}

	if removeIndices {
		for field, b := range c.binaryIndices {
			c.binaryIndices[field] = newBinaryIndex(field, b.adaptive)
		}
	} else {
		for _, b := range c.binaryIndices {
			b.values = nil
			b.dirty = false
		}
	}

	if c.fts != nil {
		c.fts.Clear()
	}
	c.changes.flush()
}

// Get returns the document with the given $id.
func (c *Collection) Get(id int64) (Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	pos, ok := c.ids.search(id)
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrDocumentNotFound, id)
	}
	doc := c.data[pos]
	if c.opts.Clone {
		return cloneWith(c.opts.CloneMethod, doc), nil
	}
	return doc, nil
}

// Count returns the number of documents currently stored.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Range evaluates a binary index's range operator against target, returning
// every matching document in index order. The index is rebuilt first if it
// is dirty (lazy maintenance).
func (c *Collection) Range(field string, op RangeOperator, target any) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.binaryIndices[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, field)
	}

	valueAt := c.valueAtFor(field)
	b.ensureFresh(len(c.data), valueAt)
	lo, hi := b.calculateRange(op, target, valueAt)
	positions := b.positions(lo, hi)

	out := make([]Document, 0, len(positions))
	for _, p := range positions {
		d := c.data[p]
		if c.opts.Clone {
			d = cloneWith(c.opts.CloneMethod, d)
		}
		out = append(out, applyNestedProperties(d, c.opts.NestedProperties))
	}
	return out, nil
}

// View returns doc augmented with every declared nested-property path
// attached as a virtual top-level field. doc itself is not mutated.
func (c *Collection) View(doc Document) Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return applyNestedProperties(doc, c.opts.NestedProperties)
}

// EnsureIndex forces an immediate rebuild of the named binary index.
func (c *Collection) EnsureIndex(field string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.binaryIndices[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, field)
	}
	b.rebuild(len(c.data), c.valueAtFor(field))
	return nil
}

// CheckIndex verifies the named binary index's internal ordering.
func (c *Collection) CheckIndex(field string, opts CheckIndexOptions) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, ok := c.binaryIndices[field]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrIndexNotFound, field)
	}
	return b.checkIndex(len(c.data), c.valueAtFor(field), opts), nil
}

// CheckAllIndexes verifies every binary index, aggregating every failure
// into a single error rather than stopping at the first.
func (c *Collection) CheckAllIndexes(opts CheckIndexOptions) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var result *multierror.Error
	for field, b := range c.binaryIndices {
		if !b.checkIndex(len(c.data), c.valueAtFor(field), opts) {
			result = multierror.Append(result, fmt.Errorf("index %q failed integrity check", field))
		}
	}
	return result.ErrorOrNil()
}

// viewDocSourceSetter is implemented by SimpleView so AddView can wire it to
// the owning collection's document accessor without the view holding a
// back-reference to the Collection itself.
type viewDocSourceSetter interface {
	setDocSource(func(pos int) Document)
}

// AddView registers a dynamic view and backfills it against the current
// Data set.
func (c *Collection) AddView(v DynamicView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if setter, ok := v.(viewDocSourceSetter); ok {
		setter.setDocSource(func(pos int) Document {
			if pos < 0 || pos >= len(c.data) {
				return nil
			}
			return c.data[pos]
		})
	}
	c.views = append(c.views, v)
	for pos := range c.data {
		v.EvaluateDocument(pos, false)
	}
}

// SetFullTextIndexer replaces the collection's full-text indexer and
// backfills it against the current Data set.
func (c *Collection) SetFullTextIndexer(f FullTextIndexer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fts = f
	for pos, d := range c.data {
		f.AddDocument(d, pos)
	}
}

// Min, Max, Avg, StdDev, Mode and Median aggregate field's numeric values
// across every stored document (spec aggregation helpers).
func (c *Collection) Min(field string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggMin(extractNumerical(c.data, field))
}

func (c *Collection) Max(field string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggMax(extractNumerical(c.data, field))
}

func (c *Collection) Avg(field string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggAvg(extractNumerical(c.data, field))
}

func (c *Collection) StdDev(field string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggStdDev(extractNumerical(c.data, field))
}

func (c *Collection) Mode(field string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggMode(extractNumerical(c.data, field))
}

func (c *Collection) Median(field string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return aggMedian(extractNumerical(c.data, field))
}

// MinRecord and MaxRecord return the document holding field's minimum or
// maximum numeric value.
func (c *Collection) MinRecord(field string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := minRecordIndex(c.data, field)
	if !ok {
		return nil, false
	}
	doc := c.data[idx]
	if c.opts.Clone {
		doc = cloneWith(c.opts.CloneMethod, doc)
	}
	return doc, true
}

func (c *Collection) MaxRecord(field string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	idx, ok := maxRecordIndex(c.data, field)
	if !ok {
		return nil, false
	}
	doc := c.data[idx]
	if c.opts.Clone {
		doc = cloneWith(c.opts.CloneMethod, doc)
	}
	return doc, true
}

// Stage copies doc into the named scratch area, keyed by its $id.
func (c *Collection) Stage(name string, doc Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stage.stage(name, doc)
}

// GetStage returns the current contents of a named scratch area.
func (c *Collection) GetStage(name string) map[int64]Document {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage.getStage(name)
}

// CommitStage applies every staged document in name through the same
// per-document update path Update uses, records a StageCommit entry, and
// empties the stage. It emits no pre-update or update events and takes no
// transaction snapshot; staged documents whose $id is no longer in the
// collection are skipped.
func (c *Collection) CommitStage(name, message string) ([]Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	staged := c.stage.getStage(name)
	if len(staged) == 0 {
		return nil, nil
	}

	applied := make([]Document, 0, len(staged))
	data := make(map[int64]Document, len(staged))
	for id, doc := range staged {
		pos, ok := c.ids.search(id)
		if !ok {
			continue
		}
		working := shallowCloneDocument(doc)
		delete(working, MetaField)
		res, err := c.applyUpdateAtLocked(pos, working)
		if err != nil {
			return nil, err
		}
		applied = append(applied, res)
		data[id] = deepCloneDocument(res)
	}

	c.stage.recordCommit(name, message, data)
	return applied, nil
}

// StageCommitLog returns the commit history for a named stage.
func (c *Collection) StageCommitLog(name string) []StageCommit {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stage.commitLog(name)
}

// Changes returns every recorded change since the last FlushChanges.
func (c *Collection) Changes() []Change {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changes.get()
}

// FlushChanges empties the change log.
func (c *Collection) FlushChanges() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes.flush()
}

// On registers a listener on channel, returning a token Off can remove it
// with.
func (c *Collection) On(channel string, fn func(Event)) string {
	return c.bus.On(channel, fn)
}

// Off removes a previously registered listener.
func (c *Collection) Off(channel, token string) bool {
	return c.bus.Off(channel, token)
}

// sweepExpired is the TTL daemon's callback: it removes every document
// whose $meta.updated (falling back to $meta.created) is older than
// cutoff, and returns how many were evicted. A no-op when metadata
// tracking is disabled, since there is then nothing to age against.
func (c *Collection) sweepExpired(cutoff int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts.DisableMeta {
		return 0
	}

	var stale []int64
	for _, d := range c.data {
		meta, ok := getMeta(d)
		if !ok {
			continue
		}
		ts := meta.Updated
		if ts == 0 {
			ts = meta.Created
		}
		if ts > 0 && ts < cutoff {
			if id, ok := getID(d); ok {
				stale = append(stale, id)
			}
		}
	}

	removed := 0
	for _, id := range stale {
		if _, err := c.removeByIDLocked(id); err == nil {
			removed++
		}
	}
	return removed
}

// Close stops the TTL daemon, if running, and emits a close event.
func (c *Collection) Close() {
	c.ttl.stop()
	c.bus.emit(EventClose, c.name)
}
