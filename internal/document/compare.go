package document

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// defaultCollator provides locale-sensitive string ordering instead of a
// raw byte compare. A language.Und collator gives Unicode
// default-collation ordering; swapping in a concrete language.Tag is the
// comparator hook for callers that need a specific locale.
var defaultCollator = collate.New(language.Und)

// CompareValues orders two field values:
//
//   - undefined (nil / missing) sorts before any defined value;
//   - two undefined values compare equal;
//   - strings compare under locale-sensitive collation;
//   - numeric scalars compare numerically;
//   - values of differing, non-coercible types "compare equal at the tree
//     level"; the query layer, not the tree, is responsible for coercion.
func CompareValues(a, b interface{}) int {
	aUndef, bUndef := a == nil, b == nil
	switch {
	case aUndef && bUndef:
		return 0
	case aUndef:
		return -1
	case bUndef:
		return 1
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return defaultCollator.CompareString(as, bs)
		}
		return 0
	}

	if an, ok := asFloat(a); ok {
		if bn, ok := asFloat(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			default:
				return 0
			}
		}
		return 0
	}

	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			if ab == bb {
				return 0
			}
			if !ab && bb {
				return -1
			}
			return 1
		}
		return 0
	}

	return 0
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// Compare applies a FieldSpec's direction to CompareValues, swapping the
// sign of the result for Descending.
func Compare(a, b interface{}, dir Direction) int {
	c := CompareValues(a, b)
	if dir == Descending {
		return -c
	}
	return c
}

// CompareDocs compares two documents under a full IndexSpec, returning the
// first nonzero per-field comparison, or 0 if every field ties.
func CompareDocs(a, b Doc, spec IndexSpec) int {
	for _, f := range spec {
		av, _ := Get(a, f.Field)
		bv, _ := Get(b, f.Field)
		if c := Compare(av, bv, f.Direction); c != 0 {
			return c
		}
	}
	return 0
}
