// Package view implements the materialized, query-filtered projection that
// binds to a Collection (or another View) and stays continuously in sync
// with it by listening on the reactor graph.
//
// A View owns an ActiveBucket holding its current filtered, ordered result
// set, and a reactor.IO splicing it onto its source's Node. Every chain
// packet the source emits triggers a resync: the view re-evaluates its
// query against the source and rebuilds the bucket to match, so the
// view's contents are always a pure function of (source contents, query,
// order) rather than an incrementally patched cache that could drift.
//
// A View is itself a view.Source, so a second View can bind to it exactly
// as it would to a root Collection. This is how view-on-view composition
// works.
//
// A View can also carry an optional transform: enabling it allocates a
// second, publicData Collection mirrored from the view's private result set
// through dataIn/dataOut projection functions, and most reads serve from
// publicData instead once it exists. Writes never touch a View's own data
// directly; they pass through to the bound source and re-enter the view via
// the reactor graph like any other upstream change.
package view
