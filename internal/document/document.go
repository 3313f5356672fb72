// Package document defines the document value type shared by every layer of
// the engine (tree, bucket, reactor, collection, view) along with the
// comparator, path resolver and deep-copy helpers that operate on it.
//
// A Doc is an opaque, schema-free record: map[string]interface{}. Nested
// values are themselves Docs, []interface{}, or scalars. The primary-key
// attribute name is chosen per Collection and is never fixed by this
// package.
package document

// Doc is a single record. Field order is not significant; equality and
// ordering are defined over individual field values, never over the map as
// a whole.
type Doc map[string]interface{}

// Direction is the sort direction of one IndexSpec field.
type Direction int

const (
	// Ascending sorts from smallest to largest.
	Ascending Direction = 1
	// Descending sorts from largest to smallest.
	Descending Direction = -1
)

// FieldSpec names one field of a compound sort/index key and its direction.
type FieldSpec struct {
	Field     string
	Direction Direction
}

// IndexSpec is an ordered sequence of (field, direction) pairs. Field order
// defines tree-level order: the first entry is the outermost comparison,
// ties fall through to the next entry.
type IndexSpec []FieldSpec

// NewIndexSpec builds an IndexSpec from field/direction pairs, e.g.
// NewIndexSpec("age", document.Ascending, "name", document.Descending).
func NewIndexSpec(pairs ...interface{}) IndexSpec {
	spec := make(IndexSpec, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		field, _ := pairs[i].(string)
		dir, _ := pairs[i+1].(Direction)
		spec = append(spec, FieldSpec{Field: field, Direction: dir})
	}
	return spec
}

// Tail returns the IndexSpec with the first field dropped, used when
// recursing into a MultiLevelTree's middle subtree.
func (s IndexSpec) Tail() IndexSpec {
	if len(s) <= 1 {
		return nil
	}
	return s[1:]
}
