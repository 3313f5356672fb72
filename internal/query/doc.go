// Package query implements the document-matching predicate and diff
// computation used throughout the Collection and View contracts: a small
// Mongo-style query language supporting {field: value} equality, {field:
// {$gte: v}} comparison operators, and {$or: [...]} / {$and: [...]}
// combinators.
package query
