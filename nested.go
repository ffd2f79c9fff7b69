package arrowdoc

// NestedProperty declares a virtual accessor that reads obj.seg1.seg2... and
// returns either the scalar at that path or, when any intermediate segment
// is a list, a flattened list of the values found by descending into every
// element.
type NestedProperty struct {
	Name string
	Path []string
}

// resolveNestedProperty interprets a NestedProperty's path against a
// document as a small interpreter over the document tree.
func resolveNestedProperty(doc Document, path []string) any {
	return resolveSegments(doc, path)
}

func resolveSegments(node any, path []string) any {
	if len(path) == 0 {
		return node
	}

	switch v := node.(type) {
	case map[string]any:
		child, ok := v[path[0]]
		if !ok {
			return nil
		}
		return resolveSegments(child, path[1:])

	case []any:
		var out []any
		for _, elem := range v {
			resolved := resolveSegments(elem, path)
			switch r := resolved.(type) {
			case nil:
				continue
			case []any:
				out = append(out, r...)
			default:
				out = append(out, r)
			}
		}
		return out

	default:
		return nil
	}
}

// applyNestedProperties computes every declared nested property on doc and
// returns the extended view that Collection.Range and Collection.View hand
// back to callers.
// The document itself is not mutated; the virtual fields are attached to a
// shallow copy.
func applyNestedProperties(doc Document, props []NestedProperty) Document {
	if len(props) == 0 {
		return doc
	}
	view := shallowCloneDocument(doc)
	for _, p := range props {
		view[p.Name] = resolveNestedProperty(doc, p.Path)
	}
	return view
}
