package tree

import (
	"errors"

	"github.com/obadb/reactor/internal/document"
)

// ErrMalformedDocument is returned by Insert/InsertMany when a document is
// nil and therefore cannot establish a key at any level.
var ErrMalformedDocument = errors.New("tree: malformed document")

// Tree is one ternary-indexed level of a MultiLevelTree. A freshly
// constructed Tree has no data until its first Insert.
type Tree struct {
	data  document.Doc
	store []document.Doc
	spec  document.IndexSpec

	left, middle, right *Tree
}

// New allocates an empty Tree indexed by spec. spec must name at least one
// field; deeper levels are created lazily as equal keys are discovered.
func New(spec document.IndexSpec) *Tree {
	return &Tree{spec: spec}
}

func newChild(spec document.IndexSpec) *Tree {
	return &Tree{spec: spec}
}

// field returns the FieldSpec this level of the tree compares on.
func (t *Tree) field() document.FieldSpec {
	return t.spec[0]
}

// Insert places d into the tree.
func (t *Tree) Insert(d document.Doc) error {
	if d == nil {
		return ErrMalformedDocument
	}

	if t.data == nil {
		t.data = d
		t.place(d)
		return nil
	}

	f := t.field()
	dv, _ := document.Get(d, f.Field)
	nv, _ := document.Get(t.data, f.Field)
	c := document.Compare(dv, nv, f.Direction)

	switch {
	case c < 0:
		if t.left == nil {
			t.left = newChild(t.spec)
		}
		return t.left.Insert(d)
	case c > 0:
		if t.right == nil {
			t.right = newChild(t.spec)
		}
		return t.right.Insert(d)
	default:
		t.place(d)
		return nil
	}
}

// place appends d to this node's store bag and, if more index levels
// remain, recurses it into the middle subtree. This is the shared
// behavior between "first document at this node" and "document ties
// this node's key".
func (t *Tree) place(d document.Doc) {
	t.store = append(t.store, d)
	if tail := t.spec.Tail(); tail != nil {
		if t.middle == nil {
			t.middle = newChild(tail)
		}
		_ = t.middle.Insert(d)
	}
}

// BatchResult is the outcome of InsertMany.
type BatchResult struct {
	Inserted []document.Doc
	Failed   []document.Doc
}

// InsertMany inserts docs sequentially; each is placed independently and a
// malformed document only fails itself, without aborting the batch.
func InsertMany(t *Tree, docs []document.Doc) BatchResult {
	result := BatchResult{}
	for _, d := range docs {
		if err := t.Insert(d); err != nil {
			result.Failed = append(result.Failed, d)
			continue
		}
		result.Inserted = append(result.Inserted, d)
	}
	return result
}

// InOrder returns every document in the tree, sorted by the full compound
// key, regardless of insertion order.
func (t *Tree) InOrder() []document.Doc {
	if t == nil || t.data == nil {
		return nil
	}
	var out []document.Doc
	out = append(out, t.left.InOrder()...)
	if t.middle != nil {
		out = append(out, t.middle.InOrder()...)
	} else {
		out = append(out, t.store...)
	}
	out = append(out, t.right.InOrder()...)
	return out
}

// Lookup returns every document matching query.
// An unconstrained field at a level gathers from left, middle (or store),
// and right; a constrained field recurses toward the matching subtree and,
// on a tie, strips that field from a decoupled copy of query before
// recursing into middle.
func (t *Tree) Lookup(query map[string]interface{}) []document.Doc {
	if t == nil || t.data == nil {
		return nil
	}

	f := t.field()
	qv, constrained := query[f.Field]
	if !constrained {
		var out []document.Doc
		out = append(out, t.left.Lookup(query)...)
		if t.middle != nil {
			out = append(out, t.middle.Lookup(query)...)
		} else {
			out = append(out, t.store...)
		}
		out = append(out, t.right.Lookup(query)...)
		return out
	}

	nv, _ := document.Get(t.data, f.Field)
	c := document.Compare(qv, nv, f.Direction)
	switch {
	case c < 0:
		return t.left.Lookup(query)
	case c > 0:
		return t.right.Lookup(query)
	default:
		if t.middle != nil {
			sub := withoutField(query, f.Field)
			return t.middle.Lookup(sub)
		}
		out := make([]document.Doc, len(t.store))
		copy(out, t.store)
		return out
	}
}

// withoutField returns a decoupled copy of query with field removed, so
// recursing into middle never mutates the caller's query.
func withoutField(query map[string]interface{}, field string) map[string]interface{} {
	out := make(map[string]interface{}, len(query))
	for k, v := range query {
		if k == field {
			continue
		}
		out[k] = v
	}
	return out
}
