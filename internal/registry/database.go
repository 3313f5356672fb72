package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/obadb/reactor/internal/collection"
	"github.com/obadb/reactor/internal/config"
	"github.com/obadb/reactor/internal/document"
	"github.com/obadb/reactor/internal/logging"
	"github.com/obadb/reactor/internal/query"
	"github.com/obadb/reactor/internal/view"
)

// ViewInfo summarizes one registered view, returned by Views.
type ViewInfo struct {
	Name   string
	Source string
	Count  int
	Linked bool
}

// Stats is a point-in-time snapshot of the database's size.
type Stats struct {
	Collections  int
	Views        int
	TotalDocs    int
	ChainSends   uint64
	SourcesByKey map[string]int
}

// Database is the engine's top-level handle: a named set of collections
// plus every view created over them.
type Database struct {
	mu          sync.RWMutex
	collections map[string]*collection.MemCollection
	views       map[string]*view.View
	viewSource  map[string]string
	cfg         config.DatabaseConfig
	log         logging.Logger
}

// New constructs an empty Database governed by cfg.
func New(cfg config.DatabaseConfig, log logging.Logger) *Database {
	if log == nil {
		log = logging.NewNop()
	}
	return &Database{
		collections: make(map[string]*collection.MemCollection),
		views:       make(map[string]*view.View),
		viewSource:  make(map[string]string),
		cfg:         cfg,
		log:         log,
	}
}

// Collection returns a named collection, creating it (with the database's
// configured primary key and decouple defaults) on first reference.
func (db *Database) Collection(name string) *collection.MemCollection {
	db.mu.Lock()
	defer db.mu.Unlock()
	if c, ok := db.collections[name]; ok {
		return c
	}
	c := collection.New(name,
		collection.WithPrimaryKey(db.cfg.PrimaryKey),
		collection.WithDecouple(db.cfg.Decouple),
		collection.WithLogger(db.log),
	)
	db.collections[name] = c
	db.log.Debug("collection created", "name", name)
	return c
}

// CollectionExists reports whether name has already been created.
func (db *Database) CollectionExists(name string) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.collections[name]
	return ok
}

// CreateView creates a named view filtered by q over an existing
// collection or view named sourceName. viewName must not already be in
// use by another view.
func (db *Database) CreateView(viewName, sourceName string, q query.Query, opts ...view.Option) (*view.View, error) {
	db.mu.Lock()
	if _, exists := db.views[viewName]; exists {
		db.mu.Unlock()
		return nil, fmt.Errorf("registry: view %q already exists", viewName)
	}
	if _, exists := db.collections[viewName]; exists {
		db.mu.Unlock()
		return nil, fmt.Errorf("registry: name %q is already a collection", viewName)
	}

	var src view.Source
	if c, ok := db.collections[sourceName]; ok {
		src = c
	} else if v, ok := db.views[sourceName]; ok {
		src = v
	}
	db.mu.Unlock()

	if src == nil {
		return nil, fmt.Errorf("registry: source %q not found", sourceName)
	}

	v := view.New(viewName, src, q, append([]view.Option{view.WithLogger(db.log)}, opts...)...)

	db.mu.Lock()
	db.views[viewName] = v
	db.viewSource[viewName] = sourceName
	db.mu.Unlock()

	v.On("drop", func(args ...interface{}) {
		db.mu.Lock()
		delete(db.views, viewName)
		delete(db.viewSource, viewName)
		db.mu.Unlock()
	})

	db.log.Debug("view created", "name", viewName, "source", sourceName)
	return v, nil
}

// View looks up a registered view by name.
func (db *Database) View(name string) (*view.View, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.views[name]
	return v, ok
}

// ViewExists reports whether name currently names a registered, undropped
// view.
func (db *Database) ViewExists(name string) bool {
	_, ok := db.View(name)
	return ok
}

// Views returns a snapshot of every registered view, sorted by name.
func (db *Database) Views() []ViewInfo {
	db.mu.RLock()
	defer db.mu.RUnlock()

	out := make([]ViewInfo, 0, len(db.views))
	for name, v := range db.views {
		out = append(out, ViewInfo{
			Name:   name,
			Source: db.viewSource[name],
			Count:  v.Count(),
			Linked: !v.IsDropped(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Stats aggregates size and chain-reaction activity across every
// collection and view currently registered.
func (db *Database) Stats() Stats {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s := Stats{
		Collections:  len(db.collections),
		Views:        len(db.views),
		SourcesByKey: make(map[string]int, len(db.viewSource)),
	}
	for name, c := range db.collections {
		s.TotalDocs += c.Count(query.Query(nil))
		s.ChainSends += c.Node().SentCount()
		_ = name
	}
	for _, v := range db.views {
		s.ChainSends += v.Node().SentCount()
	}
	for viewName, sourceName := range db.viewSource {
		s.SourcesByKey[sourceName]++
		_ = viewName
	}
	return s
}

// EnsureIndex delegates to the named collection's index builder.
func (db *Database) EnsureIndex(collectionName string, spec document.IndexSpec) error {
	db.mu.RLock()
	c, ok := db.collections[collectionName]
	db.mu.RUnlock()
	if !ok {
		return fmt.Errorf("registry: collection %q not found", collectionName)
	}
	return c.EnsureIndex(spec)
}
