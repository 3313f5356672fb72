package view

import "github.com/obadb/reactor/internal/document"

// applyPaging slices docs per opts["$page"]/opts["$pageSize"] (both
// 1-indexed) and reports the resulting Cursor. This mirrors
// collection's pagination helper; kept as its own small copy rather than a
// shared export since a View's cursor sits over an ActiveBucket snapshot,
// not a MemCollection.
func applyPaging(docs []document.Doc, opts map[string]interface{}) ([]document.Doc, Cursor) {
	pageSize, hasSize := intOpt(opts, "$pageSize")
	page, hasPage := intOpt(opts, "$page")
	if !hasSize || pageSize <= 0 {
		return docs, Cursor{Page: 1, PageSize: len(docs), Pages: pagesOf(len(docs)), Records: len(docs)}
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

func pagesOf(n int) int {
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
