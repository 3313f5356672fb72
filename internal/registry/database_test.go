package registry

import (
	"testing"

	"github.com/obadb/reactor/internal/config"
	"github.com/obadb/reactor/internal/document"
	"github.com/obadb/reactor/internal/logging"
	"github.com/obadb/reactor/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDatabase() *Database {
	return New(config.DatabaseConfig{PrimaryKey: "_id", Decouple: true}, logging.NewNop())
}

func TestCollectionIsCreatedOnFirstReference(t *testing.T) {
	db := newTestDatabase()
	assert.False(t, db.CollectionExists("people"))

	c := db.Collection("people")
	require.NotNil(t, c)
	assert.True(t, db.CollectionExists("people"))
	assert.Same(t, c, db.Collection("people"))
}

func TestCreateViewAndLookup(t *testing.T) {
	db := newTestDatabase()
	people := db.Collection("people")
	_, _ = people.Insert(document.Doc{"_id": "a", "age": 30})

	v, err := db.CreateView("adults", "people", query.Query{"age": query.Query{"$gte": 18}})
	require.NoError(t, err)
	assert.True(t, db.ViewExists("adults"))

	got, ok := db.View("adults")
	require.True(t, ok)
	assert.Same(t, v, got)
}

func TestCreateViewRejectsDuplicateName(t *testing.T) {
	db := newTestDatabase()
	db.Collection("people")
	_, err := db.CreateView("adults", "people", nil)
	require.NoError(t, err)

	_, err = db.CreateView("adults", "people", nil)
	assert.Error(t, err)
}

func TestCreateViewUnknownSourceFails(t *testing.T) {
	db := newTestDatabase()
	_, err := db.CreateView("v", "missing", nil)
	assert.Error(t, err)
}

func TestViewsSnapshotReflectsDrop(t *testing.T) {
	db := newTestDatabase()
	db.Collection("people")
	_, err := db.CreateView("all", "people", nil)
	require.NoError(t, err)
	assert.Len(t, db.Views(), 1)

	v, _ := db.View("all")
	v.Drop()
	assert.Len(t, db.Views(), 0)
	assert.False(t, db.ViewExists("all"))
}

func TestStatsAggregatesCollectionsAndViews(t *testing.T) {
	db := newTestDatabase()
	people := db.Collection("people")
	_, _ = people.Insert(document.Doc{"_id": "a"}, document.Doc{"_id": "b"})
	_, err := db.CreateView("all", "people", nil)
	require.NoError(t, err)

	stats := db.Stats()
	assert.Equal(t, 1, stats.Collections)
	assert.Equal(t, 1, stats.Views)
	assert.Equal(t, 2, stats.TotalDocs)
}

func TestEnsureIndexDelegatesToCollection(t *testing.T) {
	db := newTestDatabase()
	people := db.Collection("people")
	_, _ = people.Insert(document.Doc{"_id": "a", "dept": "eng"})

	err := db.EnsureIndex("people", document.NewIndexSpec("dept", document.Ascending))
	require.NoError(t, err)

	err = db.EnsureIndex("missing", document.NewIndexSpec("dept", document.Ascending))
	assert.Error(t, err)
}
