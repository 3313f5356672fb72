// Package registry implements Database: the top-level handle that owns
// named collections, creates and tracks named views over them, and reports
// aggregate statistics across both.
package registry
