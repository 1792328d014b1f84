package items

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clockd/clockd/internal/client/models"
	"github.com/clockd/clockd/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE items (
  item_id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  clock_in_count INTEGER NOT NULL DEFAULT 0,
  last_modified INTEGER NOT NULL,
  synced INTEGER NOT NULL DEFAULT 0,
  deleted INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsert_InsertAndReplace(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	item := &models.Item{
		ItemID: "i1", UserID: "u1", Name: "Reading",
		Description: "A chapter a day", LastModified: 100,
	}
	require.NoError(t, r.Upsert(ctx, item))

	got, err := r.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Reading", got.Name)
	assert.Equal(t, int64(0), got.ClockInCount)

	item.Name = "Reading more"
	item.ClockInCount = 4
	item.LastModified = 200
	item.Synced = true
	require.NoError(t, r.Upsert(ctx, item))

	got, err = r.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "Reading more", got.Name)
	assert.Equal(t, int64(4), got.ClockInCount)
	assert.Equal(t, int64(200), got.LastModified)
	assert.True(t, got.Synced)
}

func TestGetByID_Missing(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	_, err := r.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestByUser_SkipsTombstonesAndOtherUsers(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Item{ItemID: "a", UserID: "u1", Name: "A", LastModified: 1}))
	require.NoError(t, r.Upsert(ctx, &models.Item{ItemID: "b", UserID: "u1", Name: "B", LastModified: 1, Deleted: true}))
	require.NoError(t, r.Upsert(ctx, &models.Item{ItemID: "c", UserID: "u2", Name: "C", LastModified: 1}))

	got, err := r.ByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ItemID)
}

func TestUnsyncedAndMarkSynced(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.Item{ItemID: "a", UserID: "u1", Name: "A", LastModified: 1}))
	require.NoError(t, r.Upsert(ctx, &models.Item{ItemID: "b", UserID: "u1", Name: "B", LastModified: 1, Deleted: true}))
	require.NoError(t, r.Upsert(ctx, &models.Item{ItemID: "c", UserID: "u1", Name: "C", LastModified: 1, Synced: true}))

	dirty, err := r.Unsynced(ctx, "u1")
	require.NoError(t, err)
	// tombstones are dirty too until pushed
	assert.Len(t, dirty, 2)

	require.NoError(t, r.MarkSynced(ctx, "a", 900))
	require.NoError(t, r.MarkSynced(ctx, "b", 900))

	dirty, err = r.Unsynced(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, dirty)

	got, err := r.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.True(t, got.Synced)
	assert.Equal(t, int64(900), got.LastModified)
}
