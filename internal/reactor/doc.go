// Package reactor implements the chain-reaction propagation graph that
// routes change notifications between Collections and Views.
//
// # Overview
//
// A Node is a vertex in a directed graph of change propagation. Nodes emit
// ChainPackets to their downstream listeners via ChainSend; a node without
// a Handler passes every packet through, and a node with one hands the
// packet to it and forwards nothing itself. An IO's transform may rewrite,
// suppress, or pass a packet through. An IO is
// a specialised Node, interposed between an upstream source and a
// downstream sink, whose Handler is always the transform function given
// at construction.
//
// Delivery is synchronous and depth-first: ChainSend does not return until
// every downstream node (and everything it in turn sends) has run. There is
// no asynchronous queue, no goroutine hop, and no cross-thread sharing: a
// handler runs to completion inside its caller's call stack, the same way
// a direct function call would.
package reactor
