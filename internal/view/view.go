package view

import (
	"errors"
	"fmt"
	"sync"

	"github.com/obadb/reactor/internal/bucket"
	"github.com/obadb/reactor/internal/collection"
	"github.com/obadb/reactor/internal/document"
	"github.com/obadb/reactor/internal/events"
	"github.com/obadb/reactor/internal/logging"
	"github.com/obadb/reactor/internal/query"
	"github.com/obadb/reactor/internal/reactor"
)

// ErrDropped is returned by calls made against a view after Drop has run.
var ErrDropped = errors.New("view: dropped")

// Source is what a View needs from whatever it binds to: a root Collection
// or another View. collection.Collection satisfies this structurally, and
// so does *View, which is what makes view-on-view composition possible
// without an import cycle between the two packages.
type Source interface {
	Node() *reactor.Node
	Subset(q query.Query, opts map[string]interface{}) []document.Doc
	PrimaryKey() string
	AddDependent(d collection.Dependent)
	RemoveDependent(d collection.Dependent)
	IsDropped() bool

	Insert(docs ...document.Doc) ([]document.Doc, error)
	Update(q query.Query, update document.Doc, opts map[string]interface{}) ([]document.Doc, error)
	UpdateByID(id interface{}, update document.Doc) ([]document.Doc, error)
	Remove(q query.Query, opts map[string]interface{}) (int, error)
}

// DataFunc projects one document into another. It is the building block of
// a View's transform pipeline: dataIn runs on every document entering the
// public projection, dataOut runs on every document leaving it by way of a
// read.
type DataFunc func(document.Doc) document.Doc

func identityData(d document.Doc) document.Doc { return d }

// TransformOptions configures View.Transform.
type TransformOptions struct {
	Enabled bool
	DataIn  DataFunc
	DataOut DataFunc
}

// Cursor mirrors collection.Cursor for the view's own pagination window.
type Cursor = collection.Cursor

// View is a live, query-filtered projection over a Source.
type View struct {
	events.Emitter

	name   string
	source Source
	pk     string

	mu       sync.RWMutex
	query    query.Query
	orderBy  document.IndexSpec
	pageSize int
	page     int

	bucket     *bucket.ActiveBucket
	io         *reactor.IO
	node       *reactor.Node
	dropped    bool
	lastCursor Cursor

	publicData       *collection.MemCollection
	publicIO         *reactor.IO
	transformEnabled bool
	dataIn           DataFunc
	dataOut          DataFunc

	dependents []collection.Dependent
	log        logging.Logger
}

// Option configures a new View.
type Option func(*View)

// WithOrderBy sets the sort order maintained by the view's ActiveBucket.
func WithOrderBy(spec document.IndexSpec) Option {
	return func(v *View) { v.orderBy = spec }
}

// WithPageSize sets a default page size consulted by Find when the caller's
// options don't specify one.
func WithPageSize(n int) Option {
	return func(v *View) { v.pageSize = n }
}

// WithLogger attaches a logger; the default is a no-op logger, which a nil
// l leaves in place.
func WithLogger(l logging.Logger) Option {
	return func(v *View) {
		if l != nil {
			v.log = l
		}
	}
}

// New constructs a View over source filtered by q, binds to source's
// reactor graph, and seeds the view's private result set.
func New(name string, source Source, q query.Query, opts ...Option) *View {
	v := &View{
		name:   name,
		source: source,
		pk:     source.PrimaryKey(),
		query:  q,
		node:   reactor.NewNode(),
		log:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	v.bucket = bucket.New(v.orderBy)
	v.bucket.PrimaryKey(v.pk)

	v.bind()
	return v
}

// Name returns the view's name.
func (v *View) Name() string { return v.name }

// Node returns the view's own reactor.Node, emitting the same packet types
// a Collection does whenever the view's result set changes, so a second
// View can bind to this one.
func (v *View) Node() *reactor.Node { return v.node }

// PrimaryKey returns the identity field inherited from the bound source.
func (v *View) PrimaryKey() string { return v.pk }

// IsDropped reports whether Drop has already run.
func (v *View) IsDropped() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dropped
}

// bind attaches the view to its source: seeds the private result set,
// installs a reactor.IO that resyncs on every packet the source emits, and
// registers the view as a dependent so a source drop propagates.
func (v *View) bind() {
	v.io = reactor.NewIO(v.source.Node(), v.node, func(self *reactor.Node, pkt reactor.ChainPacket) bool {
		v.resync()
		return true
	})
	v.source.AddDependent(v)
	v.resync()
}

// resync re-evaluates the view's query against the source and replaces the
// view's ordered result set wholesale. Recomputing from scratch on every
// packet trades incremental-update performance for a trivially correct,
// drift-free projection.
func (v *View) resync() {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		return
	}
	q, orderBy := v.query, v.orderBy
	v.mu.Unlock()

	opts := map[string]interface{}{}
	if len(orderBy) > 0 {
		opts["$orderBy"] = orderBy
	}
	matches := v.source.Subset(q, opts)

	b := bucket.New(orderBy, bucket.WithCapacityHint(len(matches)))
	b.PrimaryKey(v.pk)
	for _, d := range matches {
		b.Insert(d)
	}

	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		return
	}
	v.bucket = b
	v.mu.Unlock()

	// Delivered outside the lock: a downstream chain-reaction listener
	// (e.g. a view bound on top of this one) may reenter this view's own
	// methods synchronously.
	v.node.ChainSend(reactor.PacketSetData, document.CloneAll(matches), nil)
}

// OnSourceDropped implements collection.Dependent: when the bound source is
// dropped the view detaches (it does not destroy its own result set, which
// remains readable as a frozen snapshot) and propagates the drop to its own
// dependents.
func (v *View) OnSourceDropped() {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		return
	}
	v.dropped = true
	if v.io != nil {
		v.io.Drop()
	}
	if v.publicIO != nil {
		v.publicIO.Drop()
		v.publicIO = nil
	}
	if v.publicData != nil {
		v.publicData.Drop()
		v.publicData = nil
	}
	dependents := make([]collection.Dependent, len(v.dependents))
	copy(dependents, v.dependents)
	v.dependents = nil
	v.mu.Unlock()

	for _, d := range dependents {
		d.OnSourceDropped()
	}
	v.Emit("drop")
}

// Drop detaches the view from its source (without dropping the source
// itself) and notifies the view's own dependents.
func (v *View) Drop() {
	v.mu.Lock()
	if v.dropped {
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	v.source.RemoveDependent(v)
	v.OnSourceDropped()
}

// AddDependent registers d to be notified when this view is dropped.
// This is what makes a View usable as another View's Source.
func (v *View) AddDependent(d collection.Dependent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, existing := range v.dependents {
		if existing == d {
			return
		}
	}
	v.dependents = append(v.dependents, d)
}

func (v *View) RemoveDependent(d collection.Dependent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, existing := range v.dependents {
		if existing == d {
			v.dependents = append(v.dependents[:i], v.dependents[i+1:]...)
			return
		}
	}
}

// Query returns the view's current filter.
func (v *View) Query() query.Query {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.query
}

// SetQuery replaces the view's filter and immediately resyncs.
func (v *View) SetQuery(q query.Query) {
	v.mu.Lock()
	v.query = q
	v.mu.Unlock()
	v.resync()
	v.Emit("queryChange", q)
}

// AddQuery merges extra's keys into the view's filter and resyncs. A key
// already in the filter is replaced by extra's condition for it; keys not
// yet present are added alongside the existing ones.
func (v *View) AddQuery(extra query.Query) {
	v.mu.Lock()
	merged := make(query.Query, len(v.query)+len(extra))
	for k, val := range v.query {
		merged[k] = val
	}
	for k, val := range extra {
		merged[k] = val
	}
	v.query = merged
	v.mu.Unlock()
	v.resync()
	v.Emit("queryChange", v.query)
}

// RemoveQuery drops the named fields from the view's filter and resyncs.
func (v *View) RemoveQuery(fields ...string) {
	v.mu.Lock()
	next := make(query.Query, len(v.query))
	for k, val := range v.query {
		next[k] = val
	}
	for _, f := range fields {
		delete(next, f)
	}
	v.query = next
	v.mu.Unlock()
	v.resync()
	v.Emit("queryChange", v.query)
}

// OrderBy replaces the view's sort order and resyncs.
func (v *View) OrderBy(spec document.IndexSpec) {
	v.mu.Lock()
	v.orderBy = spec
	v.mu.Unlock()
	v.resync()
	v.Emit("queryOptionsChange", spec)
}

// privateDataName names the view's internal, filtered result set, the
// default $from target for a $findSub/$findSubOne sub-query that doesn't
// name one explicitly.
func (v *View) privateDataName() string {
	return v.name + "_internalPrivate"
}

// Transform enables or disables the view's public-projection pipeline.
//
// Enabling allocates a public Collection, seeds it from the view's current
// private result set with dataIn applied to every document, and interposes
// a reactor.IO that mirrors every subsequent private-data packet into it
// the same way. Disabling tears down that Collection and its IO; reads
// fall back to the view's own private result set.
//
// A nil DataIn/DataOut defaults to the identity projection.
func (v *View) Transform(opts TransformOptions) {
	v.mu.Lock()
	if v.publicIO != nil {
		v.publicIO.Drop()
		v.publicIO = nil
	}
	if v.publicData != nil {
		v.publicData.Drop()
		v.publicData = nil
	}
	if !opts.Enabled {
		v.transformEnabled = false
		v.dataIn = nil
		v.dataOut = nil
		v.mu.Unlock()
		return
	}

	dataIn := opts.DataIn
	if dataIn == nil {
		dataIn = identityData
	}
	dataOut := opts.DataOut
	if dataOut == nil {
		dataOut = identityData
	}
	v.dataIn = dataIn
	v.dataOut = dataOut
	v.transformEnabled = true

	pd := collection.New(v.name+"_internalPublic",
		collection.WithPrimaryKey(v.pk),
		collection.WithLogger(v.log),
	)
	v.publicData = pd
	seed := v.bucket.Snapshot()
	v.mu.Unlock()

	mapped := make([]document.Doc, len(seed))
	for i, d := range seed {
		mapped[i] = dataIn(document.Clone(d))
	}
	_ = pd.SetData(mapped, nil)

	io := reactor.NewIO(v.node, pd.Node(), v.mirrorToPublic)
	v.mu.Lock()
	v.publicIO = io
	v.mu.Unlock()
}

// mirrorToPublic is the public IO's transform function: every packet the
// view's own node emits is replayed against publicData with dataIn applied,
// by calling publicData's CRUD surface directly rather than forwarding the
// raw packet (publicData.Node() has no handler of its own to receive it).
// Always returns true: the packet is fully handled here, never forwarded
// unchanged.
func (v *View) mirrorToPublic(self *reactor.Node, pkt reactor.ChainPacket) bool {
	v.mu.RLock()
	dataIn := v.dataIn
	pd := v.publicData
	v.mu.RUnlock()
	if pd == nil || dataIn == nil {
		return true
	}

	switch pkt.Type {
	case reactor.PacketSetData:
		docs, _ := pkt.Data.([]document.Doc)
		mapped := make([]document.Doc, len(docs))
		for i, d := range docs {
			mapped[i] = dataIn(d)
		}
		_ = pd.SetData(mapped, pkt.Options)
	default:
		// The view's own node only ever emits PacketSetData (see resync);
		// any other type reaching here is ignored, per the "invalid
		// payload" handling policy shared with reactor.Node.
	}
	return true
}

// readSnapshot returns the documents reads are currently served from: the
// dataOut-mapped contents of publicData when a transform is enabled,
// otherwise the view's own private, filtered, ordered result set.
//
// Subset is deliberately excluded from this selector: it always reads the
// private result set, preserving a documented inconsistency rather than
// silently fixing it (see DESIGN.md).
func (v *View) readSnapshot() []document.Doc {
	v.mu.RLock()
	enabled := v.transformEnabled
	pd := v.publicData
	dataOut := v.dataOut
	v.mu.RUnlock()

	if !enabled || pd == nil {
		v.mu.RLock()
		docs := v.bucket.Snapshot()
		v.mu.RUnlock()
		return document.CloneAll(docs)
	}

	raw := pd.Find(nil, nil)
	out := make([]document.Doc, len(raw))
	for i, d := range raw {
		out[i] = dataOut(d)
	}
	return out
}

// Find returns the view's current result set, applying pagination from
// opts (falling back to the view's default page size). Delegates to the
// transformed public projection when a transform is enabled.
func (v *View) Find(opts map[string]interface{}) []document.Doc {
	docs := v.readSnapshot()
	v.mu.RLock()
	defaultSize := v.pageSize
	v.mu.RUnlock()

	merged := mergePagingDefaults(opts, defaultSize)
	page, cursor := applyPaging(docs, merged)

	v.mu.Lock()
	v.lastCursor = cursor
	v.mu.Unlock()
	return page
}

// FindOne returns the first document in the view's current result set
// matching an additional, one-off query, without affecting the view's own
// filter. Delegates to the transformed public projection when enabled.
func (v *View) FindOne(extra query.Query) (document.Doc, bool) {
	docs := v.readSnapshot()
	for _, d := range docs {
		if query.Match(d, extra) {
			return d, true
		}
	}
	return nil, false
}

// FindByID is FindOne keyed by the view's primary key.
func (v *View) FindByID(id interface{}) (document.Doc, bool) {
	return v.FindOne(query.Query{v.pk: id})
}

// FindSub evaluates q as a sub-query over the view's current result set.
// opts may carry a "$from" key naming the sub-query's source; when absent,
// it defaults to the view's own private-data name, matching the View core's
// $findSub/$findSubOne option contract. This view resolves a sub-query only
// against its own data: it has no database registry reference to dispatch
// an explicit $from naming a different collection.
func (v *View) FindSub(q query.Query, opts map[string]interface{}) []document.Doc {
	opts = withDefaultFrom(opts, v.privateDataName())
	docs := v.readSnapshot()
	matches := query.Subset(docs, q)
	page, _ := applyPaging(matches, mergePagingDefaults(opts, 0))
	return page
}

// FindSubOne is FindSub narrowed to the first match. The same $from-default
// contract as FindSub applies; the view's own data is always what a
// sub-query is evaluated against.
func (v *View) FindSubOne(q query.Query, opts map[string]interface{}) (document.Doc, bool) {
	docs := v.readSnapshot()
	for _, d := range docs {
		if query.Match(d, q) {
			return d, true
		}
	}
	return nil, false
}

// Distinct returns the unique values of field across the view's current
// result set matching q, in first-seen order.
func (v *View) Distinct(field string, q query.Query) []interface{} {
	docs := v.readSnapshot()
	var out []interface{}
	seen := make(map[string]bool)
	for _, d := range docs {
		if !query.Match(d, q) {
			continue
		}
		val, ok := document.Get(d, field)
		if !ok {
			continue
		}
		key := fmt.Sprint(val)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, val)
	}
	return out
}

// Filter returns every document in the view's current result set for which
// fn reports true.
func (v *View) Filter(fn func(document.Doc) bool) []document.Doc {
	docs := v.readSnapshot()
	var out []document.Doc
	for _, d := range docs {
		if fn(d) {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of documents currently in the view's result set.
// Delegates to the transformed public projection when enabled (the
// transform is a 1:1 per-document projection, so cardinality never
// diverges from the private result set).
func (v *View) Count() int {
	v.mu.RLock()
	enabled := v.transformEnabled
	pd := v.publicData
	v.mu.RUnlock()
	if enabled && pd != nil {
		return pd.Count(nil)
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.bucket.Count()
}

// withDefaultFrom returns a copy of opts with "$from" set to defaultFrom
// when it isn't already present.
func withDefaultFrom(opts map[string]interface{}, defaultFrom string) map[string]interface{} {
	merged := make(map[string]interface{}, len(opts)+1)
	for k, val := range opts {
		merged[k] = val
	}
	if _, ok := merged["$from"]; !ok {
		merged["$from"] = defaultFrom
	}
	return merged
}

// Insert delegates to the bound source: a View never applies writes
// directly to its own data. The mutation re-enters the view via the
// reactor chain once the source propagates it back down through resync.
func (v *View) Insert(docs ...document.Doc) ([]document.Doc, error) {
	v.mu.RLock()
	dropped := v.dropped
	src := v.source
	v.mu.RUnlock()
	if dropped {
		return nil, ErrDropped
	}
	return src.Insert(docs...)
}

// Update delegates to the bound source.
func (v *View) Update(q query.Query, update document.Doc, opts map[string]interface{}) ([]document.Doc, error) {
	v.mu.RLock()
	dropped := v.dropped
	src := v.source
	v.mu.RUnlock()
	if dropped {
		return nil, ErrDropped
	}
	return src.Update(q, update, opts)
}

// UpdateByID delegates to the bound source.
func (v *View) UpdateByID(id interface{}, update document.Doc) ([]document.Doc, error) {
	v.mu.RLock()
	dropped := v.dropped
	src := v.source
	v.mu.RUnlock()
	if dropped {
		return nil, ErrDropped
	}
	return src.UpdateByID(id, update)
}

// Remove delegates to the bound source.
func (v *View) Remove(q query.Query, opts map[string]interface{}) (int, error) {
	v.mu.RLock()
	dropped := v.dropped
	src := v.source
	v.mu.RUnlock()
	if dropped {
		return 0, ErrDropped
	}
	return src.Remove(q, opts)
}

// LastCursor reports the pagination window computed by the most recent
// Find call.
func (v *View) LastCursor() Cursor {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.lastCursor
}

// Subset implements Source: it is Find without pagination, letting a
// second View bind to this one exactly as it would to a root Collection.
func (v *View) Subset(q query.Query, opts map[string]interface{}) []document.Doc {
	v.mu.RLock()
	docs := v.bucket.Snapshot()
	v.mu.RUnlock()
	return query.Subset(document.CloneAll(docs), q)
}

func mergePagingDefaults(opts map[string]interface{}, defaultSize int) map[string]interface{} {
	merged := make(map[string]interface{}, len(opts)+1)
	for k, val := range opts {
		merged[k] = val
	}
	if _, ok := merged["$pageSize"]; !ok && defaultSize > 0 {
		merged["$pageSize"] = defaultSize
	}
	return merged
}
