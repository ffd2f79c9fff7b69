package arrowdoc

import "time"

// CollectionOptions configures a Collection at construction time, built up
// through functional options over a default set of values.
type CollectionOptions struct {
	Unique  []string
	Indices []string

	AdaptiveBinaryIndices bool
	AsyncListeners        bool

	DisableMeta            bool
	DisableChangesAPI      bool
	DisableDeltaChangesAPI bool

	Clone       bool
	CloneMethod CloneMethod

	SerializableIndices bool
	Transactional       bool

	TTL         time.Duration
	TTLInterval time.Duration

	NestedProperties []NestedProperty
	FullTextSearch   []string
}

// DefaultCollectionOptions returns the documented defaults.
func DefaultCollectionOptions() CollectionOptions {
	return CollectionOptions{
		AdaptiveBinaryIndices:  true,
		AsyncListeners:         false,
		DisableMeta:            false,
		DisableChangesAPI:      true,
		DisableDeltaChangesAPI: true,
		Clone:                  false,
		CloneMethod:            CloneDeep,
		SerializableIndices:    true,
		Transactional:          false,
	}
}

// CollectionOption mutates a CollectionOptions being built up by
// NewCollection.
type CollectionOption func(*CollectionOptions)

func WithUnique(fields ...string) CollectionOption {
	return func(o *CollectionOptions) { o.Unique = append(o.Unique, fields...) }
}

func WithIndices(fields ...string) CollectionOption {
	return func(o *CollectionOptions) { o.Indices = append(o.Indices, fields...) }
}

func WithAdaptiveBinaryIndices(v bool) CollectionOption {
	return func(o *CollectionOptions) { o.AdaptiveBinaryIndices = v }
}

func WithAsyncListeners(v bool) CollectionOption {
	return func(o *CollectionOptions) { o.AsyncListeners = v }
}

func WithDisableMeta(v bool) CollectionOption {
	return func(o *CollectionOptions) { o.DisableMeta = v }
}

func WithChangesAPI(enabled bool) CollectionOption {
	return func(o *CollectionOptions) { o.DisableChangesAPI = !enabled }
}

func WithDeltaChangesAPI(enabled bool) CollectionOption {
	return func(o *CollectionOptions) { o.DisableDeltaChangesAPI = !enabled }
}

func WithClone(enabled bool, method CloneMethod) CollectionOption {
	return func(o *CollectionOptions) {
		o.Clone = enabled
		if method != "" {
			o.CloneMethod = method
		}
	}
}

func WithSerializableIndices(v bool) CollectionOption {
	return func(o *CollectionOptions) { o.SerializableIndices = v }
}

func WithTransactional(v bool) CollectionOption {
	return func(o *CollectionOptions) { o.Transactional = v }
}

func WithTTL(age, interval time.Duration) CollectionOption {
	return func(o *CollectionOptions) {
		o.TTL = age
		o.TTLInterval = interval
	}
}

func WithNestedProperties(props ...NestedProperty) CollectionOption {
	return func(o *CollectionOptions) { o.NestedProperties = append(o.NestedProperties, props...) }
}

func WithFullTextSearch(fields ...string) CollectionOption {
	return func(o *CollectionOptions) { o.FullTextSearch = append(o.FullTextSearch, fields...) }
}
