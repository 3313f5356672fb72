// Package collection implements Collection: a document container exposing
// CRUD, find/subset/diff/primaryKey, and, as a reactor.Node, chain
// packets on every mutation.
//
// The View core (package view) only depends on the Collection interface
// defined here; MemCollection is this module's concrete, necessarily local
// implementation, built so the engine is runnable and testable end to end.
package collection
