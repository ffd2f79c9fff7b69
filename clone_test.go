package arrowdoc

import (
	"reflect"
	"testing"
)

func TestDeepCloneDocumentIsIndependent(t *testing.T) {
	src := Document{
		"a": 1,
		"b": Document{"c": []any{1, 2, 3}},
	}
	dst := deepCloneDocument(src)

	if !reflect.DeepEqual(src, dst) {
		t.Fatalf("clone should be deeply equal to source: %#v vs %#v", src, dst)
	}

	nested := dst["b"].(Document)
	nested["c"].([]any)[0] = 999
	srcNested := src["b"].(Document)
	if srcNested["c"].([]any)[0] == 999 {
		t.Fatalf("mutating the clone's nested slice should not affect the source")
	}
}

func TestShallowCloneDocumentSharesNestedStructures(t *testing.T) {
	nested := Document{"c": 1}
	src := Document{"a": 1, "b": nested}
	dst := shallowCloneDocument(src)

	dst["a"] = 999
	if src["a"] == 999 {
		t.Fatalf("top-level fields should not be shared")
	}

	nested["c"] = 2
	if dst["b"].(Document)["c"] != 2 {
		t.Fatalf("nested structures should be shared by a shallow clone")
	}
}

func TestParseStringifyCloneNormalizesNumericTypes(t *testing.T) {
	src := Document{"n": int64(5)}
	dst := parseStringifyCloneDocument(src)

	if _, ok := dst["n"].(float64); !ok {
		t.Fatalf("parse-stringify clone should normalize numbers to float64, got %T", dst["n"])
	}
}

func TestCloneWithFallsBackToDeepOnUnknownMethod(t *testing.T) {
	src := Document{"a": 1}
	dst := cloneWith(CloneMethod("bogus"), src)
	if !reflect.DeepEqual(src, dst) {
		t.Fatalf("unknown clone method should fall back to a deep clone")
	}
}

func TestCloneWithNilDocumentReturnsNil(t *testing.T) {
	if cloneWith(CloneDeep, nil) != nil {
		t.Fatalf("cloning a nil document should return nil")
	}
}
