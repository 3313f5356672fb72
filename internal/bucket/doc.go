// Package bucket implements ActiveBucket: given an IndexSpec, it reports
// the correct insertion index for a new or updated document so a View's
// maintained sequence stays sorted, and removes documents by primary key
// when they leave the tracked population.
//
// The contract only requires that, after any mutation, the index returned
// by Insert is correct relative to the currently tracked population. This
// implementation keeps two structures in lockstep: a sorted slice for
// positional queries, and a github.com/google/btree.BTree keyed by primary
// key for sub-linear lookup of a document's identity when it is removed.
package bucket
