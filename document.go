package arrowdoc

import "time"

// Document is an application-shaped record. It is augmented in place with
// two reserved attributes, IDField and MetaField, once it enters a
// Collection.
type Document = map[string]any

// Reserved document attribute names. A document must not set these itself;
// the collection owns them.
const (
	IDField   = "$id"
	MetaField = "$meta"
)

// Meta is the optional {version, revision, created, updated} object attached
// to every document when metadata tracking is enabled.
type Meta struct {
	Version  int   `json:"version"`
	Revision int   `json:"revision"`
	Created  int64 `json:"created"`
	Updated  int64 `json:"updated"`
}

func (m Meta) toMap() map[string]any {
	return map[string]any{
		"version":  m.Version,
		"revision": m.Revision,
		"created":  m.Created,
		"updated":  m.Updated,
	}
}

func metaFromMap(v any) (Meta, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return Meta{}, false
	}
	return Meta{
		Version:  toInt(m["version"]),
		Revision: toInt(m["revision"]),
		Created:  toInt64(m["created"]),
		Updated:  toInt64(m["updated"]),
	}, true
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// nowMillis returns the current time as epoch milliseconds, the unit both
// date-valued field indexing and TTL eviction key off.
func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// getID reads the $id field off a document, returning (0, false) when it is
// absent.
func getID(doc Document) (int64, bool) {
	v, ok := doc[IDField]
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		return int64(id), true
	default:
		return 0, false
	}
}

// getMeta reads the $meta field off a document.
func getMeta(doc Document) (Meta, bool) {
	v, ok := doc[MetaField]
	if !ok {
		return Meta{}, false
	}
	return metaFromMap(v)
}
