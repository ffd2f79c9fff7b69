package arrowdoc

import (
	"encoding/json"
	"time"
)

// binaryIndexDTO is the serialized shape of one binary index. Values is
// omitted when the owning collection was built with SerializableIndices
// disabled, in which case the index simply reloads dirty and gets rebuilt
// on first use.
type binaryIndexDTO struct {
	Dirty  bool  `json:"dirty"`
	Values []int `json:"values,omitempty"`
}

// collectionDTO is the full on-disk shape of a Collection.
type collectionDTO struct {
	Name  string     `json:"name"`
	Data  []Document `json:"data"`
	IDs   []int64    `json:"idIndex"`
	MaxID int64      `json:"maxId"`

	BinaryIndices map[string]binaryIndexDTO `json:"binaryIndices"`
	UniqueNames   []string                  `json:"uniqueNames"`

	Views []map[string]any `json:"dynamicViews,omitempty"`
	FTS   map[string]any   `json:"fullTextIndex,omitempty"`

	AdaptiveBinaryIndices  bool `json:"adaptiveBinaryIndices"`
	AsyncListeners         bool `json:"asyncListeners"`
	DisableMeta            bool `json:"disableMeta"`
	DisableChangesAPI      bool `json:"disableChangesApi"`
	DisableDeltaChangesAPI bool `json:"disableDeltaChangesApi"`
	Clone                  bool `json:"clone"`
	CloneMethod            string `json:"cloneMethod"`
	SerializableIndices    bool `json:"serializableIndices"`
	Transactional          bool `json:"transactional"`

	TTLAgeMillis      int64 `json:"ttlAgeMillis"`
	TTLIntervalMillis int64 `json:"ttlIntervalMillis"`

	NestedProperties []NestedProperty `json:"nestedProperties,omitempty"`
	FullTextSearch   []string         `json:"fullTextSearch,omitempty"`

	Changes []Change `json:"changes,omitempty"`
}

// ToJSON serializes the collection's full state, including data, indices,
// options and (best-effort) dynamic view and full-text index snapshots.
// Unique indices are not persisted; they are always rebuilt from Data on
// load, since they hold nothing that Data plus the unique field list can't
// reconstruct.
func (c *Collection) ToJSON() ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dto := collectionDTO{
		Name:  c.name,
		Data:  c.data,
		IDs:   append([]int64(nil), c.ids.ids...),
		MaxID: c.maxID,

		BinaryIndices: make(map[string]binaryIndexDTO, len(c.binaryIndices)),
		UniqueNames:   make([]string, 0, len(c.uniqueIndices)),

		AdaptiveBinaryIndices:  c.opts.AdaptiveBinaryIndices,
		AsyncListeners:         c.opts.AsyncListeners,
		DisableMeta:            c.opts.DisableMeta,
		DisableChangesAPI:      c.opts.DisableChangesAPI,
		DisableDeltaChangesAPI: c.opts.DisableDeltaChangesAPI,
		Clone:                  c.opts.Clone,
		CloneMethod:            string(c.opts.CloneMethod),
		SerializableIndices:    c.opts.SerializableIndices,
		Transactional:          c.opts.Transactional,

		TTLAgeMillis:      c.opts.TTL.Milliseconds(),
		TTLIntervalMillis: c.opts.TTLInterval.Milliseconds(),

		NestedProperties: c.opts.NestedProperties,
		FullTextSearch:   c.opts.FullTextSearch,

		Changes: c.changes.get(),
	}

	for field, b := range c.binaryIndices {
		entry := binaryIndexDTO{Dirty: b.dirty}
		if c.opts.SerializableIndices && !b.dirty {
			entry.Values = append([]int(nil), b.values...)
		} else {
			entry.Dirty = true
		}
		dto.BinaryIndices[field] = entry
	}
	for field := range c.uniqueIndices {
		dto.UniqueNames = append(dto.UniqueNames, field)
	}

	for _, v := range c.views {
		dto.Views = append(dto.Views, v.ToJSON())
	}
	if c.fts != nil {
		dto.FTS = c.fts.ToJSON()
	}

	return json.Marshal(dto)
}

// CollectionFromJSON rebuilds a Collection from ToJSON's output. Dynamic
// views and the full-text indexer are not reconstructed — they are
// external collaborators the caller re-registers with AddView and
// SetFullTextIndexer after loading, the same way the caller originally
// constructed them.
func CollectionFromJSON(data []byte) (*Collection, error) {
	var dto collectionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}

	opts := []CollectionOption{
		WithUnique(dto.UniqueNames...),
		WithAdaptiveBinaryIndices(dto.AdaptiveBinaryIndices),
		WithAsyncListeners(dto.AsyncListeners),
		WithDisableMeta(dto.DisableMeta),
		WithChangesAPI(!dto.DisableChangesAPI),
		WithDeltaChangesAPI(!dto.DisableDeltaChangesAPI),
		WithClone(dto.Clone, CloneMethod(dto.CloneMethod)),
		WithSerializableIndices(dto.SerializableIndices),
		WithTransactional(dto.Transactional),
		WithNestedProperties(dto.NestedProperties...),
	}
	if len(dto.FullTextSearch) > 0 {
		opts = append(opts, WithFullTextSearch(dto.FullTextSearch...))
	}

	fields := make([]string, 0, len(dto.BinaryIndices))
	for field := range dto.BinaryIndices {
		fields = append(fields, field)
	}
	opts = append(opts, WithIndices(fields...))

	if dto.TTLAgeMillis > 0 {
		age := time.Duration(dto.TTLAgeMillis) * time.Millisecond
		interval := time.Duration(dto.TTLIntervalMillis) * time.Millisecond
		opts = append(opts, WithTTL(age, interval))
	}

	c, err := NewCollection(dto.Name, opts...)
	if err != nil {
		return nil, err
	}

	c.data = dto.Data
	c.ids = &idIndex{ids: dto.IDs}
	c.maxID = dto.MaxID

	for field, entry := range dto.BinaryIndices {
		b := c.binaryIndices[field]
		if entry.Dirty || len(entry.Values) == 0 {
			b.markDirty()
			continue
		}
		b.values = entry.Values
		b.dirty = false
	}

	for field, idx := range c.uniqueIndices {
		for pos, doc := range c.data {
			_ = idx.set(doc[field], pos)
		}
	}

	c.changes.entries = append(c.changes.entries, dto.Changes...)

	return c, nil
}
