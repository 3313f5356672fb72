package tree

import (
	"math/rand"
	"testing"

	"github.com/obadb/reactor/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asc(field string) document.IndexSpec {
	return document.IndexSpec{{Field: field, Direction: document.Ascending}}
}

// In-order traversal yields the same sequence, sorted by field value,
// regardless of insertion permutation.
func TestInOrderIsSortedRegardlessOfInsertionOrder(t *testing.T) {
	docs := []document.Doc{
		{"n": 5}, {"n": 1}, {"n": 3}, {"n": 2}, {"n": 4},
	}

	perm1 := New(asc("n"))
	for _, d := range docs {
		require.NoError(t, perm1.Insert(d))
	}

	shuffled := append([]document.Doc{}, docs...)
	rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	perm2 := New(asc("n"))
	for _, d := range shuffled {
		require.NoError(t, perm2.Insert(d))
	}

	want := []int{1, 2, 3, 4, 5}
	got1 := extractN(perm1.InOrder())
	got2 := extractN(perm2.InOrder())
	assert.Equal(t, want, got1)
	assert.Equal(t, want, got2)
}

func extractN(docs []document.Doc) []int {
	out := make([]int, len(docs))
	for i, d := range docs {
		out[i] = d["n"].(int)
	}
	return out
}

// Compound-key lookup with a shared middle subtree.
func TestLookupCompoundKey(t *testing.T) {
	spec := document.IndexSpec{
		{Field: "a", Direction: document.Ascending},
		{Field: "b", Direction: document.Ascending},
	}
	tr := New(spec)
	docs := []document.Doc{
		{"a": 1, "b": 1},
		{"a": 1, "b": 2},
		{"a": 2, "b": 1},
	}
	for _, d := range docs {
		require.NoError(t, tr.Insert(d))
	}

	gotA1 := tr.Lookup(map[string]interface{}{"a": 1})
	require.Len(t, gotA1, 2)
	assert.Equal(t, 1, gotA1[0]["b"])
	assert.Equal(t, 2, gotA1[1]["b"])

	gotExact := tr.Lookup(map[string]interface{}{"a": 1, "b": 2})
	require.Len(t, gotExact, 1)
	assert.Equal(t, 2, gotExact[0]["b"])
}

func TestLookupUnconstrainedGathersEverything(t *testing.T) {
	tr := New(asc("n"))
	for _, n := range []int{3, 1, 2} {
		require.NoError(t, tr.Insert(document.Doc{"n": n}))
	}
	got := tr.Lookup(map[string]interface{}{})
	assert.Len(t, got, 3)
}

func TestInsertManyReportsFailuresIndependently(t *testing.T) {
	tr := New(asc("n"))
	result := InsertMany(tr, []document.Doc{{"n": 1}, nil, {"n": 2}})
	assert.Len(t, result.Inserted, 2)
	assert.Len(t, result.Failed, 1)
}

func TestLookupOnEmptyTreeReturnsNil(t *testing.T) {
	tr := New(asc("n"))
	assert.Nil(t, tr.Lookup(map[string]interface{}{"n": 1}))
	assert.Nil(t, tr.InOrder())
}
