package query

import (
	"fmt"
	"reflect"

	"github.com/obadb/reactor/internal/document"
)

// DiffResult is the set of document inserts, updates and removes required
// to make "self" equal "target" under a shared primary key.
type DiffResult struct {
	Insert []document.Doc
	Update []document.Doc
	Remove []document.Doc
}

// Empty reports whether applying the diff would be a no-op.
func (d DiffResult) Empty() bool {
	return len(d.Insert) == 0 && len(d.Update) == 0 && len(d.Remove) == 0
}

// Diff computes what must change in self to match target, keyed by pk.
// Documents present only in target are inserts, present only in self are
// removes, and present in both but unequal are updates (the target's copy
// wins).
func Diff(self, target []document.Doc, pk string) DiffResult {
	selfByKey := indexByKey(self, pk)
	targetByKey := indexByKey(target, pk)

	var result DiffResult
	for key, doc := range targetByKey {
		existing, ok := selfByKey[key]
		if !ok {
			result.Insert = append(result.Insert, doc)
			continue
		}
		if !reflect.DeepEqual(existing, doc) {
			result.Update = append(result.Update, doc)
		}
	}
	for key, doc := range selfByKey {
		if _, ok := targetByKey[key]; !ok {
			result.Remove = append(result.Remove, doc)
		}
	}
	return result
}

func indexByKey(docs []document.Doc, pk string) map[string]document.Doc {
	out := make(map[string]document.Doc, len(docs))
	for _, d := range docs {
		v, _ := document.Get(d, pk)
		out[fmt.Sprint(v)] = d
	}
	return out
}
