package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "games.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoad(t *testing.T) {
	db := openTemp(t)

	require.NoError(t, db.Save("g1", []byte("snapshot-1"), false))

	data, finished, err := db.Load("g1")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-1"), data)
	assert.False(t, finished)

	// Saves upsert: the latest snapshot wins.
	require.NoError(t, db.Save("g1", []byte("snapshot-2"), true))
	data, finished, err = db.Load("g1")
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-2"), data)
	assert.True(t, finished)
}

func TestLoadMissing(t *testing.T) {
	db := openTemp(t)
	_, _, err := db.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnfinished(t *testing.T) {
	db := openTemp(t)

	require.NoError(t, db.Save("live-1", []byte("a"), false))
	require.NoError(t, db.Save("done", []byte("b"), true))
	require.NoError(t, db.Save("live-2", []byte("c"), false))

	ids, err := db.Unfinished()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"live-1", "live-2"}, ids)

	// Finishing a game removes it from the recovery set.
	require.NoError(t, db.Save("live-1", []byte("a2"), true))
	ids, err = db.Unfinished()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"live-2"}, ids)
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "games.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Save("g", []byte("persisted"), false))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	data, _, err := db.Load("g")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), data)
}
