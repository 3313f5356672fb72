package collection

import (
	"sort"

	"github.com/obadb/reactor/internal/document"
)

// applyOrderBy sorts a copy of docs by opts["$orderBy"], if present. A
// missing or empty spec leaves the caller's order untouched.
func applyOrderBy(docs []document.Doc, opts map[string]interface{}) []document.Doc {
	spec, ok := orderBySpec(opts)
	if !ok || len(spec) == 0 {
		return docs
	}
	out := make([]document.Doc, len(docs))
	copy(out, docs)
	sort.SliceStable(out, func(i, j int) bool {
		return document.CompareDocs(out[i], out[j], spec) < 0
	})
	return out
}

func orderBySpec(opts map[string]interface{}) (document.IndexSpec, bool) {
	if opts == nil {
		return nil, false
	}
	spec, ok := opts["$orderBy"].(document.IndexSpec)
	return spec, ok
}

// applyPaging slices docs according to opts["$page"]/opts["$pageSize"] (both
// 1-indexed pages) and reports the resulting Cursor. Absent paging options,
// it returns docs unsliced and a Cursor describing the whole set as a
// single page.
func applyPaging(docs []document.Doc, opts map[string]interface{}) ([]document.Doc, Cursor) {
	pageSize, hasSize := intOpt(opts, "$pageSize")
	page, hasPage := intOpt(opts, "$page")
	if !hasSize || pageSize <= 0 {
		return docs, Cursor{Page: 1, PageSize: len(docs), Pages: boolToPages(len(docs)), Records: len(docs)}
	}
	if !hasPage || page < 1 {
		page = 1
	}

	pages := (len(docs) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	if start >= len(docs) {
		return nil, Cursor{Page: page, PageSize: pageSize, Pages: pages, Records: len(docs)}
	}
	end := start + pageSize
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end], Cursor{Page: page, PageSize: pageSize, Pages: pages, Records: len(docs)}
}

func boolToPages(n int) int {
	if n == 0 {
		return 0
	}
	return 1
}

func intOpt(opts map[string]interface{}, key string) (int, bool) {
	if opts == nil {
		return 0, false
	}
	v, ok := opts[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// withoutPaging returns a copy of opts with pagination keys stripped, for
// callers (FindOne) that want ordering but not slicing.
func withoutPaging(opts map[string]interface{}) map[string]interface{} {
	if opts == nil {
		return nil
	}
	out := make(map[string]interface{}, len(opts))
	for k, v := range opts {
		if k == "$page" || k == "$pageSize" {
			continue
		}
		out[k] = v
	}
	return out
}
