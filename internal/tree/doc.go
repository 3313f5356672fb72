// Package tree implements a MultiLevelTree: an ordered compound-key index
// over a set of documents. It is not a classical B-tree; it is a ternary
// indexed tree, one instance per indexed field level. Nodes with equal keys
// on the current field share a "middle" subtree that indexes the next
// field in the IndexSpec.
package tree
