package reactor

// TransformFunc is the callback interposed between an IO's source and
// sink. It receives the IO's own Node, so it may call self.ChainSend(...)
// to emit rewritten packets to the sink, along with the incoming packet.
// Returning true suppresses the unmodified packet from also reaching the
// sink; returning false forwards it unchanged.
type TransformFunc func(self *Node, pkt ChainPacket) bool

// IO is a Node specialised to interpose a TransformFunc between one
// upstream source and one downstream sink.
type IO struct {
	*Node
	source    *Node
	sink      *Node
	transform TransformFunc
}

// NewIO constructs a ReactorIO: it subscribes itself as a downstream
// listener of source, and registers sink as its own downstream, so that
// the default forward behavior (when transform returns false) delivers
// straight to sink.
func NewIO(source, sink *Node, transform TransformFunc) *IO {
	io := &IO{Node: NewNode(), source: source, sink: sink, transform: transform}
	io.Node.SetHandler(io.receive)
	source.Listen(io.Node)
	io.Node.Listen(sink)
	return io
}

func (io *IO) receive(pkt ChainPacket) bool {
	if io.transform == nil {
		return io.forward(pkt)
	}
	if io.transform(io.Node, pkt) {
		return true
	}
	return io.forward(pkt)
}

// Drop unsubscribes the IO from its source and disconnects its sink. Safe
// to call multiple times.
func (io *IO) Drop() {
	if io.source != nil {
		io.source.Unlisten(io.Node)
	}
	if io.sink != nil {
		io.Unlisten(io.sink)
	}
}
