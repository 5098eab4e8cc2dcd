package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reimu/recommind/persistence"
	"github.com/reimu/recommind/persistence/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	rec := persistence.Record{
		LearnerID:  "L1",
		Mastery:    map[string]float64{"K1": 0.5},
		BatchCount: 1,
		Timestamp:  time.Now(),
	}
	require.NoError(t, store.Save(ctx, rec))

	loaded, found, err := store.Load(ctx, "L1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec.LearnerID, loaded.LearnerID)
	assert.Equal(t, rec.Mastery, loaded.Mastery)
}

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store := openStore(t)
	_, found, err := store.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSaveIsUpsert(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, persistence.Record{LearnerID: "L1", BatchCount: 1}))
	require.NoError(t, store.Save(ctx, persistence.Record{LearnerID: "L1", BatchCount: 2}))

	loaded, found, err := store.Load(ctx, "L1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, loaded.BatchCount)
}

func TestDeleteRemovesRow(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, persistence.Record{LearnerID: "L1"}))
	require.NoError(t, store.Delete(ctx, "L1"))

	_, found, err := store.Load(ctx, "L1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestListReturnsSortedIDs(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, persistence.Record{LearnerID: "L2"}))
	require.NoError(t, store.Save(ctx, persistence.Record{LearnerID: "L1"}))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"L1", "L2"}, ids)
}
