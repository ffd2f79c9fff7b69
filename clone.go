package arrowdoc

import "encoding/json"

// CloneMethod selects how a document is duplicated on insert/update/emit
// when Collection cloning is enabled.
type CloneMethod string

const (
	CloneDeep           CloneMethod = "deep"
	CloneParseStringify CloneMethod = "parse-stringify"
	CloneShallow        CloneMethod = "shallow"
	CloneShallowAssign  CloneMethod = "shallow-assign"
)

// cloneFn is the signature every clone strategy implements.
type cloneFn func(Document) Document

var cloneStrategies = map[CloneMethod]cloneFn{
	CloneDeep:           deepCloneDocument,
	CloneParseStringify: parseStringifyCloneDocument,
	CloneShallow:        shallowCloneDocument,
	CloneShallowAssign:  shallowCloneDocument,
}

func cloneWith(method CloneMethod, doc Document) Document {
	if doc == nil {
		return nil
	}
	fn, ok := cloneStrategies[method]
	if !ok {
		fn = deepCloneDocument
	}
	return fn(doc)
}

// deepCloneDocument recursively copies maps and slices, leaving scalars
// as-is.
func deepCloneDocument(src Document) Document {
	if src == nil {
		return nil
	}
	dst := make(Document, len(src))
	for k, v := range src {
		dst[k] = deepCloneValue(v)
	}
	return dst
}

func deepCloneValue(src any) any {
	switch v := src.(type) {
	case map[string]any:
		return deepCloneDocument(v)
	case []any:
		dst := make([]any, len(v))
		for i, elem := range v {
			dst[i] = deepCloneValue(elem)
		}
		return dst
	case []int:
		dst := make([]int, len(v))
		copy(dst, v)
		return dst
	case []string:
		dst := make([]string, len(v))
		copy(dst, v)
		return dst
	default:
		return v
	}
}

// parseStringifyCloneDocument round-trips the document through JSON, the
// cheapest way to get a structural copy that also normalizes numeric types
// the way a deserialized document would look.
func parseStringifyCloneDocument(src Document) Document {
	if src == nil {
		return nil
	}
	raw, err := json.Marshal(src)
	if err != nil {
		return deepCloneDocument(src)
	}
	var dst Document
	if err := json.Unmarshal(raw, &dst); err != nil {
		return deepCloneDocument(src)
	}
	return dst
}

// shallowCloneDocument copies only the top-level map; nested structures are
// shared with the source.
func shallowCloneDocument(src Document) Document {
	if src == nil {
		return nil
	}
	dst := make(Document, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
