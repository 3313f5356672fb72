package collection

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/obadb/reactor/internal/document"
	"github.com/obadb/reactor/internal/events"
	"github.com/obadb/reactor/internal/logging"
	"github.com/obadb/reactor/internal/query"
	"github.com/obadb/reactor/internal/reactor"
	"github.com/obadb/reactor/internal/tree"
)

// ErrDropped is returned by any mutating or read call made against a
// collection after Drop has run.
var ErrDropped = errors.New("collection: dropped")

// Dependent is notified when the collection it depends on is dropped. A
// View implements this to detach from its source without the collection
// package ever importing view.
type Dependent interface {
	OnSourceDropped()
}

// Cursor reports the pagination window of the most recently evaluated Find
// call. Subset does not record one.
type Cursor struct {
	Page     int
	PageSize int
	Pages    int
	Records  int
}

// Collection is a document container: CRUD, read, diff and primary-key
// operations, plus the reactor.Node every mutation is announced through.
// View depends only on this interface, never on MemCollection.
type Collection interface {
	Name() string
	PrimaryKey() string
	SetPrimaryKey(field string)

	Insert(docs ...document.Doc) ([]document.Doc, error)
	Update(q query.Query, update document.Doc, opts map[string]interface{}) ([]document.Doc, error)
	UpdateByID(id interface{}, update document.Doc) ([]document.Doc, error)
	Remove(q query.Query, opts map[string]interface{}) (int, error)
	SetData(docs []document.Doc, opts map[string]interface{}) error

	Find(q query.Query, opts map[string]interface{}) []document.Doc
	FindOne(q query.Query, opts map[string]interface{}) (document.Doc, bool)
	FindByID(id interface{}) (document.Doc, bool)
	Subset(q query.Query, opts map[string]interface{}) []document.Doc
	Distinct(field string, q query.Query) []interface{}
	Filter(fn func(document.Doc) bool) []document.Doc
	Count(q query.Query) int
	LastCursor() Cursor

	Diff(target []document.Doc) query.DiffResult
	Match(doc document.Doc, q query.Query) bool

	EnsureIndex(spec document.IndexSpec) error

	Node() *reactor.Node
	On(event string, fn events.Listener) int
	Off(event string, handle int)

	AddDependent(d Dependent)
	RemoveDependent(d Dependent)

	Drop()
	IsDropped() bool
}

// Option configures a new MemCollection.
type Option func(*MemCollection)

// WithPrimaryKey sets the identity field (default "_id").
func WithPrimaryKey(field string) Option {
	return func(c *MemCollection) { c.pk = field }
}

// WithDecouple controls whether reads and writes deep-copy documents at the
// boundary (default true). Disabling it is a performance escape hatch for
// callers that already own their document graph exclusively.
func WithDecouple(on bool) Option {
	return func(c *MemCollection) { c.decouple = on }
}

// WithLogger attaches a logger; the default is a no-op logger, which a nil
// l leaves in place.
func WithLogger(l logging.Logger) Option {
	return func(c *MemCollection) {
		if l != nil {
			c.log = l
		}
	}
}

// MemCollection is the engine's in-memory Collection: a slice of documents
// guarded by a mutex, a reactor.Node for chain-packet emission, and an
// events.Emitter for lifecycle notifications such as "drop".
type MemCollection struct {
	events.Emitter

	name string
	pk   string

	mu         sync.RWMutex
	data       []document.Doc
	indexes    map[string]*tree.Tree
	indexSpecs map[string]document.IndexSpec
	dropped    bool
	decouple   bool

	node       *reactor.Node
	dependents []Dependent
	lastCursor Cursor

	log logging.Logger
}

// New allocates an empty, undropped MemCollection.
func New(name string, opts ...Option) *MemCollection {
	c := &MemCollection{
		name:       name,
		pk:         "_id",
		decouple:   true,
		indexes:    make(map[string]*tree.Tree),
		indexSpecs: make(map[string]document.IndexSpec),
		node:       reactor.NewNode(),
		log:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *MemCollection) Name() string { return c.name }

func (c *MemCollection) PrimaryKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pk
}

// SetPrimaryKey changes the identity field and announces the change down
// the reactor graph so dependents can re-key their own indexes.
func (c *MemCollection) SetPrimaryKey(field string) {
	c.mu.Lock()
	c.pk = field
	c.mu.Unlock()
	c.node.ChainSend(reactor.PacketPrimaryKey, field, nil)
}

func (c *MemCollection) Node() *reactor.Node { return c.node }

// AddDependent registers d to be notified via OnSourceDropped when this
// collection is dropped.
func (c *MemCollection) AddDependent(d Dependent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.dependents {
		if existing == d {
			return
		}
	}
	c.dependents = append(c.dependents, d)
}

func (c *MemCollection) RemoveDependent(d Dependent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.dependents {
		if existing == d {
			c.dependents = append(c.dependents[:i], c.dependents[i+1:]...)
			return
		}
	}
}

// IsDropped reports whether Drop has already run.
func (c *MemCollection) IsDropped() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dropped
}

// Drop marks the collection unusable, notifies every dependent (typically
// bound views), and emits "drop" to any plain event listeners. Safe to call
// more than once; only the first call has an effect.
func (c *MemCollection) Drop() {
	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return
	}
	c.dropped = true
	dependents := make([]Dependent, len(c.dependents))
	copy(dependents, c.dependents)
	c.dependents = nil
	c.mu.Unlock()

	for _, d := range dependents {
		d.OnSourceDropped()
	}
	c.Emit("drop")
}

func (c *MemCollection) assignKey(d document.Doc) {
	if _, ok := document.Get(d, c.pk); ok {
		return
	}
	d[c.pk] = uuid.NewString()
}

// Insert appends docs, assigning a generated primary key to any document
// that omits one, and announces a PacketInsert chain packet carrying the
// stored (not caller-owned) copies.
func (c *MemCollection) Insert(docs ...document.Doc) ([]document.Doc, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return nil, ErrDropped
	}
	stored := make([]document.Doc, 0, len(docs))
	for _, d := range docs {
		cp := document.Clone(d)
		c.assignKey(cp)
		c.data = append(c.data, cp)
		stored = append(stored, cp)
	}
	c.reindexLocked()
	c.mu.Unlock()

	c.node.ChainSend(reactor.PacketInsert, document.CloneAll(stored), nil)
	c.log.Debug("collection insert", "collection", c.name, "count", len(stored))
	return c.decoupleOut(stored), nil
}

// Update applies a shallow field merge to every document matching q and
// announces a PacketUpdate chain packet describing the mutation.
func (c *MemCollection) Update(q query.Query, update document.Doc, opts map[string]interface{}) ([]document.Doc, error) {
	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return nil, ErrDropped
	}
	var changed []document.Doc
	for _, d := range c.data {
		if !query.Match(d, q) {
			continue
		}
		for k, v := range update {
			d[k] = v
		}
		changed = append(changed, d)
	}
	c.reindexLocked()
	c.mu.Unlock()

	c.node.ChainSend(reactor.PacketUpdate, &reactor.UpdateData{
		Query:   q,
		Update:  update,
		Options: opts,
	}, opts)
	c.log.Debug("collection update", "collection", c.name, "matched", len(changed))
	return c.decoupleOut(changed), nil
}

// UpdateByID is Update keyed by the collection's primary key.
func (c *MemCollection) UpdateByID(id interface{}, update document.Doc) ([]document.Doc, error) {
	return c.Update(query.Query{c.PrimaryKey(): id}, update, nil)
}

// Remove deletes every document matching q and announces a PacketRemove
// chain packet. It returns the number of documents removed.
func (c *MemCollection) Remove(q query.Query, opts map[string]interface{}) (int, error) {
	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return 0, ErrDropped
	}
	kept := c.data[:0:0]
	removed := 0
	for _, d := range c.data {
		if query.Match(d, q) {
			removed++
			continue
		}
		kept = append(kept, d)
	}
	c.data = kept
	c.reindexLocked()
	c.mu.Unlock()

	c.node.ChainSend(reactor.PacketRemove, &reactor.RemoveData{Query: q}, opts)
	c.log.Debug("collection remove", "collection", c.name, "removed", removed)
	return removed, nil
}

// SetData replaces the collection's entire contents and announces a
// PacketSetData chain packet.
func (c *MemCollection) SetData(docs []document.Doc, opts map[string]interface{}) error {
	c.mu.Lock()
	if c.dropped {
		c.mu.Unlock()
		return ErrDropped
	}
	stored := document.CloneAll(docs)
	for _, d := range stored {
		c.assignKey(d)
	}
	c.data = stored
	c.reindexLocked()
	c.mu.Unlock()

	c.node.ChainSend(reactor.PacketSetData, document.CloneAll(stored), opts)
	c.log.Debug("collection setData", "collection", c.name, "count", len(stored))
	return nil
}

func (c *MemCollection) decoupleOut(docs []document.Doc) []document.Doc {
	if c.decouple {
		return document.CloneAll(docs)
	}
	out := make([]document.Doc, len(docs))
	copy(out, docs)
	return out
}

// Find returns documents matching q, optionally ordered via opts["$orderBy"]
// (a document.IndexSpec) and paginated via opts["$page"]/opts["$pageSize"].
// The pagination window is recorded and retrievable via LastCursor.
func (c *MemCollection) Find(q query.Query, opts map[string]interface{}) []document.Doc {
	c.mu.RLock()
	matches := c.matchLocked(q)
	c.mu.RUnlock()

	ordered := applyOrderBy(matches, opts)
	page, cursor := applyPaging(ordered, opts)

	c.mu.Lock()
	c.lastCursor = cursor
	c.mu.Unlock()

	return c.decoupleOut(page)
}

// FindOne returns the first document matching q, ignoring pagination.
func (c *MemCollection) FindOne(q query.Query, opts map[string]interface{}) (document.Doc, bool) {
	docs := c.Find(q, withoutPaging(opts))
	if len(docs) == 0 {
		return nil, false
	}
	return docs[0], true
}

// FindByID is FindOne keyed by the collection's primary key.
func (c *MemCollection) FindByID(id interface{}) (document.Doc, bool) {
	return c.FindOne(query.Query{c.PrimaryKey(): id}, nil)
}

// Subset is Find without pagination bookkeeping, the building block View
// seeding and resync use when only the filtered, ordered set matters.
func (c *MemCollection) Subset(q query.Query, opts map[string]interface{}) []document.Doc {
	c.mu.RLock()
	matches := c.matchLocked(q)
	c.mu.RUnlock()
	ordered := applyOrderBy(matches, opts)
	return c.decoupleOut(ordered)
}

// Distinct returns the unique values of field across documents matching q,
// in first-seen order.
func (c *MemCollection) Distinct(field string, q query.Query) []interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []interface{}
	seen := make(map[string]bool)
	for _, d := range c.data {
		if !query.Match(d, q) {
			continue
		}
		v, ok := document.Get(d, field)
		if !ok {
			continue
		}
		key := fmt.Sprint(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// Filter returns every document for which fn reports true. Unlike Find, fn
// is an arbitrary predicate rather than a query.Query.
func (c *MemCollection) Filter(fn func(document.Doc) bool) []document.Doc {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []document.Doc
	for _, d := range c.data {
		if fn(d) {
			out = append(out, d)
		}
	}
	return c.decoupleOut(out)
}

// Count returns the number of documents matching q.
func (c *MemCollection) Count(q query.Query) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matchLocked(q))
}

// LastCursor reports the pagination window computed by the most recent call
// to Find, including the calls FindOne and FindByID make. A Find without
// paging options records the whole result as a single page.
func (c *MemCollection) LastCursor() Cursor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastCursor
}

// Diff computes what would have to change in this collection to match
// target, keyed by primary key.
func (c *MemCollection) Diff(target []document.Doc) query.DiffResult {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return query.Diff(c.data, target, c.pk)
}

// Match reports whether a single document satisfies q, without touching the
// collection's own data.
func (c *MemCollection) Match(doc document.Doc, q query.Query) bool {
	return query.Match(doc, q)
}

// matchLocked resolves q against the stored data, consulting a compound
// index when q is a plain equality predicate over an indexed field set and
// falling back to a linear scan otherwise. Callers must hold c.mu.
func (c *MemCollection) matchLocked(q query.Query) []document.Doc {
	if t, qv, ok := c.indexLookupLocked(q); ok {
		return t.Lookup(qv)
	}
	return query.Subset(c.data, q)
}

func (c *MemCollection) indexLookupLocked(q query.Query) (*tree.Tree, map[string]interface{}, bool) {
	if len(c.indexes) == 0 || len(q) == 0 {
		return nil, nil, false
	}
	fields := make([]string, 0, len(q))
	plain := make(map[string]interface{}, len(q))
	for k, v := range q {
		if len(k) > 0 && k[0] == '$' {
			return nil, nil, false
		}
		if _, isOp := v.(query.Query); isOp {
			return nil, nil, false
		}
		if _, isOp := v.(map[string]interface{}); isOp {
			return nil, nil, false
		}
		fields = append(fields, k)
		plain[k] = v
	}
	sort.Strings(fields)
	t, ok := c.indexes[indexKey(fields)]
	if !ok {
		return nil, nil, false
	}
	return t, plain, true
}

// EnsureIndex (re)builds a compound index over spec's fields from the
// collection's current contents. Subsequent equality-only queries over
// exactly those fields are served from the index instead of a linear scan.
func (c *MemCollection) EnsureIndex(spec document.IndexSpec) error {
	if len(spec) == 0 {
		return errors.New("collection: EnsureIndex requires at least one field")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	fields := make([]string, len(spec))
	for i, f := range spec {
		fields[i] = f.Field
	}
	sort.Strings(fields)

	t := tree.New(spec)
	for _, d := range c.data {
		_ = t.Insert(d)
	}
	key := indexKey(fields)
	c.indexes[key] = t
	c.indexSpecs[key] = spec
	return nil
}

// reindexLocked rebuilds every index from scratch. Called after any
// mutation; correctness-first over incremental maintenance, acceptable for
// an in-memory engine with no durability requirement.
func (c *MemCollection) reindexLocked() {
	for key, spec := range c.indexSpecs {
		fresh := tree.New(spec)
		for _, d := range c.data {
			_ = fresh.Insert(d)
		}
		c.indexes[key] = fresh
	}
}

func indexKey(sortedFields []string) string {
	out := ""
	for i, f := range sortedFields {
		if i > 0 {
			out += ","
		}
		out += f
	}
	return out
}
