package bucket

import (
	"fmt"
	"sort"

	"github.com/google/btree"
	"github.com/obadb/reactor/internal/document"
)

// pkItem keys a tracked document by its primary key for O(log n) removal
// lookup, implementing btree.Item.
type pkItem struct {
	key string
	doc document.Doc
}

func (i pkItem) Less(than btree.Item) bool {
	return i.key < than.(pkItem).key
}

// ActiveBucket maintains an ordered projection of documents under a fixed
// IndexSpec and hands back sorted-insert positions in O(log n) comparisons
// (search) / O(n) splice (the same asymptotic profile as the slice splicing
// a View performs on its own _data when acting on the returned index).
type ActiveBucket struct {
	spec  document.IndexSpec
	pk    string
	order []document.Doc
	byKey *btree.BTree
}

// Option configures a new ActiveBucket.
type Option func(*ActiveBucket)

// WithCapacityHint pre-sizes the internal slice; purely a performance hint.
func WithCapacityHint(n int) Option {
	return func(b *ActiveBucket) {
		if n > 0 {
			b.order = make([]document.Doc, 0, n)
		}
	}
}

// New allocates an ActiveBucket ordered by spec.
func New(spec document.IndexSpec, opts ...Option) *ActiveBucket {
	b := &ActiveBucket{
		spec:  spec,
		pk:    "_id",
		byKey: btree.New(32),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// PrimaryKey sets the identity field used to locate prior placements on
// Remove.
func (b *ActiveBucket) PrimaryKey(pk string) {
	b.pk = pk
}

func (b *ActiveBucket) keyOf(doc document.Doc) string {
	v, _ := document.Get(doc, b.pk)
	return fmt.Sprint(v)
}

// Insert records doc as placed and returns the index at which it belongs
// so the maintained sequence stays sorted under the bucket's IndexSpec.
// Ties break by insertion order (the new document is placed after any
// existing document it compares equal to).
func (b *ActiveBucket) Insert(doc document.Doc) int {
	i := sort.Search(len(b.order), func(i int) bool {
		return document.CompareDocs(b.order[i], doc, b.spec) > 0
	})
	b.order = append(b.order, nil)
	copy(b.order[i+1:], b.order[i:])
	b.order[i] = doc

	b.byKey.ReplaceOrInsert(pkItem{key: b.keyOf(doc), doc: doc})
	return i
}

// Remove drops doc (identified by primary key) from the bucket. A
// document not currently tracked is a silent no-op.
func (b *ActiveBucket) Remove(doc document.Doc) {
	key := b.keyOf(doc)
	if b.byKey.Delete(pkItem{key: key}) == nil {
		return
	}
	for i, d := range b.order {
		if b.keyOf(d) == key {
			b.order = append(b.order[:i], b.order[i+1:]...)
			return
		}
	}
}

// Count returns the number of documents currently tracked.
func (b *ActiveBucket) Count() int {
	return len(b.order)
}

// Snapshot returns the tracked documents in sorted order. Callers must not
// mutate the returned slice.
func (b *ActiveBucket) Snapshot() []document.Doc {
	return b.order
}
