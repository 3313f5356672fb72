package reactor

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handler is a node's packet receiver. Its result is what Receive reports
// to the caller: true for "consumed", false for "not consumed". A node with
// a custom handler does not forward packets on its own, whatever the
// handler returns; only the handler itself can pass a packet on (as IO's
// handler does when its transform returns false).
type Handler func(pkt ChainPacket) bool

// Node is a vertex in the chain-reaction graph. The zero value is not
// usable; construct with NewNode.
type Node struct {
	// ID is a diagnostic-only identifier, never used for routing.
	ID string

	mu         sync.Mutex
	downstream []*Node
	handler    Handler
	sent       atomic.Uint64
}

// NewNode allocates a Node with no downstream listeners and the default
// handler (plain forward-to-downstream).
func NewNode() *Node {
	return &Node{ID: uuid.NewString()}
}

// SetHandler installs a custom receiver, overriding the default forward
// behavior. Passing nil restores plain forwarding.
func (n *Node) SetHandler(h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handler = h
}

// Listen registers child as a downstream listener of n, in registration
// order. Mutating the downstream set during an in-flight ChainSend only
// affects subsequent sends; callers iterate a snapshot taken at send time.
func (n *Node) Listen(child *Node) {
	if child == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, c := range n.downstream {
		if c == child {
			return
		}
	}
	n.downstream = append(n.downstream, child)
}

// Unlisten removes child from n's downstream set, if present.
func (n *Node) Unlisten(child *Node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, c := range n.downstream {
		if c == child {
			n.downstream = append(n.downstream[:i], n.downstream[i+1:]...)
			return
		}
	}
}

// snapshot returns the current downstream list without holding the lock
// during delivery, so a handler that mutates the graph (adds/removes
// listeners) does not deadlock or corrupt iteration.
func (n *Node) snapshot() []*Node {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*Node, len(n.downstream))
	copy(out, n.downstream)
	return out
}

// ChainSend constructs a ChainPacket and delivers it to every downstream
// listener, synchronously and in registration order, before returning.
// Reentrant ChainSend calls from within a handler are permitted and are
// delivered depth-first.
func (n *Node) ChainSend(t PacketType, data interface{}, options map[string]interface{}) {
	pkt := ChainPacket{Type: t, Data: data, Options: options}
	n.sent.Add(1)
	for _, child := range n.snapshot() {
		child.Receive(pkt)
	}
}

// Receive is the node's "_chainHandler": the entry point an upstream node
// calls to deliver a packet. With no custom handler installed the default
// behavior is to forward the packet, unmodified, to this node's own
// downstream listeners.
func (n *Node) Receive(pkt ChainPacket) bool {
	n.mu.Lock()
	h := n.handler
	n.mu.Unlock()

	if h != nil {
		return h(pkt)
	}
	return n.forward(pkt)
}

// forward delivers pkt to every downstream listener of n and always
// reports "not consumed" to its own caller, matching the default
// pass-through Node.
func (n *Node) forward(pkt ChainPacket) bool {
	for _, child := range n.snapshot() {
		child.Receive(pkt)
	}
	return false
}

// SentCount reports how many packets this node has originated via
// ChainSend. Diagnostic only, surfaced through Database.Stats.
func (n *Node) SentCount() uint64 {
	return n.sent.Load()
}
