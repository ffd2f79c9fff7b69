package arrowdoc

import (
	"fmt"
	"reflect"
)

// compareValues implements a total order over arbitrary document values:
// nil sorts before everything, numbers sort before strings, and like types
// compare natively. It backs the binary index's sorted position
// permutation.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}

	aNum, aIsNum := asFloat64(a)
	bNum, bIsNum := asFloat64(b)
	if aIsNum && bIsNum {
		switch {
		case aNum < bNum:
			return -1
		case aNum > bNum:
			return 1
		default:
			return 0
		}
	}
	// Numbers sort before strings and anything else.
	if aIsNum && !bIsNum {
		return -1
	}
	if !aIsNum && bIsNum {
		return 1
	}

	if as, aok := a.(string); aok {
		if bs, bok := b.(string); bok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}

	if reflect.TypeOf(a) == reflect.TypeOf(b) {
		return compareSameType(a, b)
	}

	typeA, typeB := reflect.TypeOf(a).String(), reflect.TypeOf(b).String()
	switch {
	case typeA < typeB:
		return -1
	case typeA > typeB:
		return 1
	default:
		return 0
	}
}

func compareSameType(a, b any) int {
	switch va := a.(type) {
	case bool:
		vb := b.(bool)
		if va == vb {
			return 0
		}
		if va {
			return 1
		}
		return -1
	default:
		strA := fmt.Sprintf("%v", a)
		strB := fmt.Sprintf("%v", b)
		switch {
		case strA < strB:
			return -1
		case strA > strB:
			return 1
		default:
			return 0
		}
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
