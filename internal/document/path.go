package document

import "strings"

// Get resolves a dotted field path against a document, e.g. "address.city".
// It is a minimal, local path resolver: the tree, bucket and query layers
// only ever need dotted-map traversal, never the array-index/wildcard
// syntax a full resolver would support.
func Get(doc Doc, path string) (interface{}, bool) {
	if doc == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var cur interface{} = doc
	for _, part := range parts {
		m, ok := cur.(Doc)
		if !ok {
			if asMap, ok2 := cur.(map[string]interface{}); ok2 {
				m = Doc(asMap)
			} else {
				return nil, false
			}
		}
		v, present := m[part]
		if !present {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// GetOr is Get with a default for a missing/undefined path.
func GetOr(doc Doc, path string, fallback interface{}) interface{} {
	if v, ok := Get(doc, path); ok {
		return v
	}
	return fallback
}
