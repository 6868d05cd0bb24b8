package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/table"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "finboard.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finboard.db")
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, SetPreference(first, PrefLanguage, "de"))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := GetPreference(second, PrefLanguage)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "de", v)
}

func TestSortStoreRoundTrip(t *testing.T) {
	store := NewSortStore(openTestDB(t))

	_, ok, err := store.LoadSortState("transactions")
	require.NoError(t, err)
	assert.False(t, ok)

	state := table.SortState{
		{Key: "amount", Direction: table.Desc},
		{Key: "date", Direction: table.Asc},
	}
	require.NoError(t, store.SaveSortState("transactions", state))

	got, ok, err := store.LoadSortState("transactions")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, state, got)

	require.NoError(t, store.SaveSortState("transactions", table.SortState{{Key: "date", Direction: table.Desc}}))
	got, _, err = store.LoadSortState("transactions")
	require.NoError(t, err)
	assert.Equal(t, table.SortState{{Key: "date", Direction: table.Desc}}, got)

	_, ok, err = store.LoadSortState("monthly")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSortStoreEmptyStateIsKnown(t *testing.T) {
	store := NewSortStore(openTestDB(t))
	require.NoError(t, store.SaveSortState("categories", table.SortState{}))

	got, ok, err := store.LoadSortState("categories")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)
}

func TestSortStoreDrivesEngine(t *testing.T) {
	store := NewSortStore(openTestDB(t))
	require.NoError(t, store.SaveSortState("tx", table.SortState{{Key: "n", Direction: table.Asc}}))

	vp := &nopViewport{}
	e := table.NewEngine(table.Options{ID: "tx", SortStateKey: "tx", Persistence: store, Viewport: vp})
	e.Render([]table.Row{{"n": 2}, {"n": 1}}, []table.Column{{Key: "n", Sortable: true, Type: table.TypeNumber}})
	assert.Equal(t, 1, e.Rows()[0]["n"])

	e.Sort("n")
	_, ok, err := store.LoadSortState("tx")
	require.NoError(t, err)
	assert.True(t, ok)
	got, _, _ := store.LoadSortState("tx")
	assert.Empty(t, got)
}

type nopViewport struct{}

func (nopViewport) Replace([]table.RenderedRow) {}
func (nopViewport) Append([]table.RenderedRow)  {}
func (nopViewport) Empty(string)                {}
func (nopViewport) SetFooter(string)            {}

func TestJSONPreference(t *testing.T) {
	conn := openTestDB(t)
	type prefs struct {
		Hidden []string `json:"hidden"`
	}

	var got prefs
	ok, err := GetJSONPreference(conn, "table.transactions", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSONPreference(conn, "table.transactions", prefs{Hidden: []string{"notes"}}))
	ok, err = GetJSONPreference(conn, "table.transactions", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"notes"}, got.Hidden)
}

func TestSnapshots(t *testing.T) {
	conn := openTestDB(t)

	_, err := LatestSnapshot(conn, "https://example.org/export.tsv")
	assert.ErrorIs(t, err, ErrNoSnapshot)

	for _, body := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		require.NoError(t, SaveSnapshot(conn, "https://example.org/export.tsv", []byte(body)))
	}
	require.NoError(t, SaveSnapshot(conn, "other.tsv", []byte("x")))

	snap, err := LatestSnapshot(conn, "https://example.org/export.tsv")
	require.NoError(t, err)
	assert.Equal(t, "g", string(snap.Body))
	assert.False(t, snap.FetchedAt.IsZero())

	n, err := CountSnapshots(conn, "https://example.org/export.tsv")
	require.NoError(t, err)
	assert.Equal(t, snapshotsKept, n)

	n, err = CountSnapshots(conn, "other.tsv")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
