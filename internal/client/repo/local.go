// Package repo implements the local repository: the sole mutator of items
// and records. It owns the invariants the row repositories do not know
// about: soft delete with cascades, the clock-in counter staying equal to
// the number of live records, and the tombstone-priority last-write-wins
// merge used by the sync engine.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/clockd/clockd/internal/client/models"
	"github.com/clockd/clockd/internal/client/repositories/items"
	"github.com/clockd/clockd/internal/client/repositories/records"
	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/dbx"
)

// Local is the domain-level repository over the client SQLite store.
// Operations that touch two rows (a record and its owning item's counter)
// run inside a single transaction.
type Local struct {
	db  *sql.DB
	now func() int64
}

func New(db *sql.DB) *Local {
	return NewWithClock(db, func() int64 { return time.Now().UnixMilli() })
}

// NewWithClock lets tests control modification stamps.
func NewWithClock(db *sql.DB, now func() int64) *Local {
	return &Local{db: db, now: now}
}

// InsertItem creates a habit with a zero counter and marks it dirty.
func (l *Local) InsertItem(ctx context.Context, userID, name, description string) (*models.Item, error) {
	item := models.NewItem(userID, name, description)
	item.LastModified = l.now()
	if err := items.NewSQLiteRepository(l.db).Upsert(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem edits name and description. Missing ids are a no-op.
func (l *Local) UpdateItem(ctx context.Context, itemID, name, description string) error {
	ir := items.NewSQLiteRepository(l.db)
	item, err := ir.GetByID(ctx, itemID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	item.Name = name
	item.Description = description
	item.Touch(l.now())
	return ir.Upsert(ctx, item)
}

// DeleteItem tombstones the item and cascades to its records. The rows stay
// in the store so the deletion propagates on the next push. Missing ids and
// already-tombstoned items are no-ops; the latter keeps repeated tombstone
// merges from re-dirtying the row and re-pushing it forever.
func (l *Local) DeleteItem(ctx context.Context, itemID string) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ir := items.NewSQLiteRepository(tx)
		item, err := ir.GetByID(ctx, itemID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if item.Deleted {
			return nil
		}
		now := l.now()
		item.Deleted = true
		item.Touch(now)
		if err := ir.Upsert(ctx, item); err != nil {
			return err
		}
		return records.NewSQLiteRepository(tx).TombstoneByItem(ctx, item.UserID, itemID, now)
	})
}

// IncrementClockInCount bumps the counter by one, stamping the mutation.
func (l *Local) IncrementClockInCount(ctx context.Context, itemID string) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return l.adjustCount(ctx, items.NewSQLiteRepository(tx), itemID, 1)
	})
}

// DecrementClockInCount lowers the counter by one, clamping at zero.
func (l *Local) DecrementClockInCount(ctx context.Context, itemID string) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return l.adjustCount(ctx, items.NewSQLiteRepository(tx), itemID, -1)
	})
}

func (l *Local) adjustCount(ctx context.Context, ir items.Repository, itemID string, delta int64) error {
	item, err := ir.GetByID(ctx, itemID)
	if errors.Is(err, common.ErrorNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	n := item.ClockInCount + delta
	if n < 0 {
		n = 0
	}
	item.ClockInCount = n
	item.Touch(l.now())
	return ir.Upsert(ctx, item)
}

// InsertRecord creates a check-in and bumps the owning item's counter in
// the same transaction: a stored record always has a counter reflecting it.
func (l *Local) InsertRecord(ctx context.Context, userID, itemID string) (*models.Record, error) {
	record := models.NewRecord(userID, itemID)
	now := l.now()
	record.Timestamp = now
	record.LastModified = now

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := records.NewSQLiteRepository(tx).Upsert(ctx, record); err != nil {
			return err
		}
		return l.adjustCount(ctx, items.NewSQLiteRepository(tx), itemID, 1)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteRecord tombstones a check-in and decrements the owning item's
// counter in the same transaction. Missing ids and already-tombstoned
// records are no-ops; the latter keeps repeated tombstone merges from
// decrementing the counter twice.
func (l *Local) DeleteRecord(ctx context.Context, recordID string) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rr := records.NewSQLiteRepository(tx)
		record, err := rr.GetByID(ctx, recordID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if record.Deleted {
			return nil
		}
		return l.tombstoneRecord(ctx, tx, rr, record)
	})
}

// DeleteMostRecentRecord withdraws the newest live check-in for an item.
// With no live records it is a no-op.
func (l *Local) DeleteMostRecentRecord(ctx context.Context, userID, itemID string) error {
	return dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rr := records.NewSQLiteRepository(tx)
		record, err := rr.MostRecent(ctx, userID, itemID)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return l.tombstoneRecord(ctx, tx, rr, record)
	})
}

func (l *Local) tombstoneRecord(ctx context.Context, tx dbx.DBTX, rr records.Repository, record *models.Record) error {
	record.Deleted = true
	record.Touch(l.now())
	if err := rr.Upsert(ctx, record); err != nil {
		return err
	}
	return l.adjustCount(ctx, items.NewSQLiteRepository(tx), record.ItemID, -1)
}

// HasClockInOnDay reports whether the item has a live check-in on the given
// calendar day. The day boundary is [start of day, start of next day) in
// day's own location.
func (l *Local) HasClockInOnDay(ctx context.Context, userID, itemID string, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)
	return records.NewSQLiteRepository(l.db).HasInRange(ctx, userID, itemID, start.UnixMilli(), end.UnixMilli())
}

// MergeItem is the entrypoint for remote item state.
//
// A remote tombstone wins unconditionally, whatever the timestamps say:
// once any client deleted the item, no other copy may keep it. Otherwise
// the remote version is applied, marked clean, only when the local copy is
// absent or not strictly newer; a strictly newer local copy is kept and
// will be pushed on its own.
func (l *Local) MergeItem(ctx context.Context, remote *models.Item) error {
	if remote.Deleted {
		return l.DeleteItem(ctx, remote.ItemID)
	}

	ir := items.NewSQLiteRepository(l.db)
	local, err := ir.GetByID(ctx, remote.ItemID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if local != nil && local.LastModified > remote.LastModified {
		return nil
	}

	merged := *remote
	merged.Synced = true
	return ir.Upsert(ctx, &merged)
}

// MergeRecord applies remote record state under the same rule as MergeItem.
// The tombstone path goes through DeleteRecord so the counter follows; the
// accept path does not touch the counter, since a remote check-in arrives
// together with its item's already-updated count.
func (l *Local) MergeRecord(ctx context.Context, remote *models.Record) error {
	if remote.Deleted {
		return l.DeleteRecord(ctx, remote.RecordID)
	}

	rr := records.NewSQLiteRepository(l.db)
	local, err := rr.GetByID(ctx, remote.RecordID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return err
	}
	if local != nil && local.LastModified > remote.LastModified {
		return nil
	}

	merged := *remote
	merged.Synced = true
	return rr.Upsert(ctx, &merged)
}

// MarkItemSynced clears the dirty flag after a successful push, storing the
// server-observed modification stamp so a later pull of the same document
// compares equal instead of newer.
func (l *Local) MarkItemSynced(ctx context.Context, itemID string, lastModified int64) error {
	return items.NewSQLiteRepository(l.db).MarkSynced(ctx, itemID, lastModified)
}

// MarkRecordSynced is the record counterpart of MarkItemSynced.
func (l *Local) MarkRecordSynced(ctx context.Context, recordID string, lastModified int64) error {
	return records.NewSQLiteRepository(l.db).MarkSynced(ctx, recordID, lastModified)
}

// ItemByID returns any stored item, tombstoned or not.
func (l *Local) ItemByID(ctx context.Context, itemID string) (*models.Item, error) {
	return items.NewSQLiteRepository(l.db).GetByID(ctx, itemID)
}

// ItemsByUser lists the user's live items.
func (l *Local) ItemsByUser(ctx context.Context, userID string) ([]models.Item, error) {
	return items.NewSQLiteRepository(l.db).ByUser(ctx, userID)
}

// RecordsByItem lists an item's live check-ins, newest first.
func (l *Local) RecordsByItem(ctx context.Context, userID, itemID string) ([]models.Record, error) {
	return records.NewSQLiteRepository(l.db).ByItem(ctx, userID, itemID)
}

// UnsyncedItems returns the items the push phase must upload.
func (l *Local) UnsyncedItems(ctx context.Context, userID string) ([]*models.Item, error) {
	return items.NewSQLiteRepository(l.db).Unsynced(ctx, userID)
}

// UnsyncedRecords returns the records the push phase must upload.
func (l *Local) UnsyncedRecords(ctx context.Context, userID string) ([]*models.Record, error) {
	return records.NewSQLiteRepository(l.db).Unsynced(ctx, userID)
}

// SeedDefaults inserts a few starter habits for a fresh account. It does
// nothing when the user already has live items.
func (l *Local) SeedDefaults(ctx context.Context, userID string) error {
	existing, err := l.ItemsByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	defaults := []struct {
		name        string
		description string
	}{
		{"Early rise", "Up before 7am"},
		{"Exercise", "At least 30 minutes"},
		{"Reading", "A chapter a day"},
	}
	for _, d := range defaults {
		if _, err := l.InsertItem(ctx, userID, d.name, d.description); err != nil {
			return err
		}
	}
	return nil
}
