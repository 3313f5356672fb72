package query

import (
	"github.com/obadb/reactor/internal/document"
)

// Query is a Mongo-style predicate over a document's fields.
type Query map[string]interface{}

// Options carries query-option keys such as $orderBy, $page, $decouple,
// $findSub/$findSubOne. The query package only ever reads keys relevant to
// matching and pagination; the bulk of Options is consumed by the view and
// collection packages.
type Options map[string]interface{}

// Match reports whether doc satisfies query. An empty or nil query matches
// everything.
func Match(doc document.Doc, q Query) bool {
	for field, cond := range q {
		switch field {
		case "$or":
			if !matchOr(doc, cond) {
				return false
			}
		case "$and":
			if !matchAnd(doc, cond) {
				return false
			}
		default:
			if !matchField(doc, field, cond) {
				return false
			}
		}
	}
	return true
}

func matchOr(doc document.Doc, cond interface{}) bool {
	clauses, ok := cond.([]Query)
	if !ok {
		clauses = toQuerySlice(cond)
	}
	if len(clauses) == 0 {
		return false
	}
	for _, c := range clauses {
		if Match(doc, c) {
			return true
		}
	}
	return false
}

func matchAnd(doc document.Doc, cond interface{}) bool {
	clauses, ok := cond.([]Query)
	if !ok {
		clauses = toQuerySlice(cond)
	}
	for _, c := range clauses {
		if !Match(doc, c) {
			return false
		}
	}
	return true
}

func toQuerySlice(cond interface{}) []Query {
	raw, ok := cond.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Query, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case Query:
			out = append(out, v)
		case map[string]interface{}:
			out = append(out, Query(v))
		}
	}
	return out
}

func matchField(doc document.Doc, field string, cond interface{}) bool {
	val, present := document.Get(doc, field)

	ops, isOps := asOperators(cond)
	if !isOps {
		return present && document.CompareValues(val, cond) == 0
	}

	for op, opVal := range ops {
		if !matchOperator(op, val, present, opVal) {
			return false
		}
	}
	return true
}

// asOperators recognises a condition shaped like {$gte: v, $lt: w}. A plain
// scalar, or a map without any '$'-prefixed keys, is not an operator map.
func asOperators(cond interface{}) (map[string]interface{}, bool) {
	var raw map[string]interface{}
	switch v := cond.(type) {
	case Query:
		raw = v
	case map[string]interface{}:
		raw = v
	default:
		return nil, false
	}
	for k := range raw {
		if len(k) == 0 || k[0] != '$' {
			return nil, false
		}
	}
	if len(raw) == 0 {
		return nil, false
	}
	return raw, true
}

func matchOperator(op string, val interface{}, present bool, opVal interface{}) bool {
	switch op {
	case "$exists":
		want, _ := opVal.(bool)
		return present == want
	case "$eq":
		return present && document.CompareValues(val, opVal) == 0
	case "$ne":
		return !present || document.CompareValues(val, opVal) != 0
	case "$gt":
		return present && document.CompareValues(val, opVal) > 0
	case "$gte":
		return present && document.CompareValues(val, opVal) >= 0
	case "$lt":
		return present && document.CompareValues(val, opVal) < 0
	case "$lte":
		return present && document.CompareValues(val, opVal) <= 0
	case "$in":
		return present && containsValue(opVal, val)
	case "$nin":
		return !present || !containsValue(opVal, val)
	default:
		return false
	}
}

func containsValue(set interface{}, val interface{}) bool {
	items, ok := set.([]interface{})
	if !ok {
		return false
	}
	for _, item := range items {
		if document.CompareValues(item, val) == 0 {
			return true
		}
	}
	return false
}

// Subset filters docs by query, returning only the matches. It is the
// package-level building block behind Collection.Subset and
// Collection.Find.
func Subset(docs []document.Doc, q Query) []document.Doc {
	if len(q) == 0 {
		out := make([]document.Doc, len(docs))
		copy(out, docs)
		return out
	}
	var out []document.Doc
	for _, d := range docs {
		if Match(d, q) {
			out = append(out, d)
		}
	}
	return out
}
