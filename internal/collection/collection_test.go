package collection

import (
	"testing"

	"github.com/obadb/reactor/internal/document"
	"github.com/obadb/reactor/internal/query"
	"github.com/obadb/reactor/internal/reactor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignsPrimaryKeyWhenMissing(t *testing.T) {
	c := New("people")
	stored, err := c.Insert(document.Doc{"name": "Ada"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotEmpty(t, stored[0]["_id"])
}

func TestInsertDecouplesFromCallerDocument(t *testing.T) {
	c := New("people")
	src := document.Doc{"_id": "a", "name": "Ada"}
	_, err := c.Insert(src)
	require.NoError(t, err)

	src["name"] = "mutated"
	got, ok := c.FindByID("a")
	require.True(t, ok)
	assert.Equal(t, "Ada", got["name"])
}

func TestFindByQuery(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a", "age": 20}, document.Doc{"_id": "b", "age": 30})

	got := c.Find(query.Query{"age": query.Query{"$gte": 25}}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0]["_id"])
}

func TestFindOrdersByOrderBy(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a", "age": 30}, document.Doc{"_id": "b", "age": 20})

	spec := document.NewIndexSpec("age", document.Ascending)
	got := c.Find(nil, map[string]interface{}{"$orderBy": spec})
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0]["_id"])
	assert.Equal(t, "a", got[1]["_id"])
}

func TestFindPaginatesAndReportsCursor(t *testing.T) {
	c := New("people")
	for i := 0; i < 5; i++ {
		_, _ = c.Insert(document.Doc{"n": i})
	}
	spec := document.NewIndexSpec("n", document.Ascending)
	got := c.Find(nil, map[string]interface{}{"$orderBy": spec, "$page": 2, "$pageSize": 2})
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0]["n"])
	assert.Equal(t, 3, got[1]["n"])

	cursor := c.LastCursor()
	assert.Equal(t, 2, cursor.Page)
	assert.Equal(t, 3, cursor.Pages)
	assert.Equal(t, 5, cursor.Records)
}

func TestUpdateMergesFieldsAndEmitsChainPacket(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a", "age": 20})

	var received *reactor.UpdateData
	downstream := reactor.NewNode()
	downstream.SetHandler(func(pkt reactor.ChainPacket) bool {
		received = pkt.Data.(*reactor.UpdateData)
		return false
	})
	c.Node().Listen(downstream)

	changed, err := c.Update(query.Query{"_id": "a"}, document.Doc{"age": 21}, nil)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, 21, changed[0]["age"])
	require.NotNil(t, received)
	assert.Equal(t, 21, received.Update["age"])
}

func TestRemoveDeletesMatchingDocuments(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a"}, document.Doc{"_id": "b"})

	n, err := c.Remove(query.Query{"_id": "a"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Count(nil))
	_, ok := c.FindByID("a")
	assert.False(t, ok)
}

func TestSetDataReplacesContents(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a"})

	err := c.SetData([]document.Doc{{"_id": "b"}, {"_id": "c"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count(nil))
	_, ok := c.FindByID("a")
	assert.False(t, ok)
}

func TestDropNotifiesDependentsAndEmitsEvent(t *testing.T) {
	c := New("people")
	dropped := false
	c.On("drop", func(args ...interface{}) { dropped = true })

	dep := &recordingDependent{}
	c.AddDependent(dep)

	c.Drop()
	assert.True(t, dropped)
	assert.True(t, dep.notified)
	assert.True(t, c.IsDropped())

	_, err := c.Insert(document.Doc{"_id": "x"})
	assert.ErrorIs(t, err, ErrDropped)
}

func TestEnsureIndexServesEqualityLookups(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a", "dept": "eng"}, document.Doc{"_id": "b", "dept": "sales"})
	require.NoError(t, c.EnsureIndex(document.NewIndexSpec("dept", document.Ascending)))

	got := c.Find(query.Query{"dept": "sales"}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0]["_id"])

	// Index stays correct after further mutation.
	_, _ = c.Insert(document.Doc{"_id": "c", "dept": "sales"})
	got = c.Find(query.Query{"dept": "sales"}, nil)
	assert.Len(t, got, 2)
}

func TestDiffAgainstTarget(t *testing.T) {
	c := New("people")
	_, _ = c.Insert(document.Doc{"_id": "a", "v": 1}, document.Doc{"_id": "b", "v": 2})

	d := c.Diff([]document.Doc{{"_id": "b", "v": 20}, {"_id": "c", "v": 3}})
	assert.Len(t, d.Insert, 1)
	assert.Len(t, d.Update, 1)
	assert.Len(t, d.Remove, 1)
}

type recordingDependent struct {
	notified bool
}

func (r *recordingDependent) OnSourceDropped() { r.notified = true }
