package records

import (
	"context"

	"github.com/clockd/clockd/internal/client/models"
)

// Repository describes row-level storage for check-in records. As with the
// items repository, invariants (counter coupling, tombstone cascades) are
// owned by the repo facade.
type Repository interface {
	// Upsert inserts a new record or replaces an existing one by id.
	Upsert(ctx context.Context, record *models.Record) error

	// GetByID returns a record regardless of its tombstone state.
	// Missing ids yield common.ErrorNotFound.
	GetByID(ctx context.Context, recordID string) (*models.Record, error)

	// ByItem lists non-deleted records for an item, newest check-in first.
	ByItem(ctx context.Context, userID, itemID string) ([]models.Record, error)

	// Unsynced returns records with local changes not yet pushed,
	// tombstones included.
	Unsynced(ctx context.Context, userID string) ([]*models.Record, error)

	// MostRecent returns the newest non-deleted record for an item by
	// check-in timestamp, or common.ErrorNotFound when there is none.
	MostRecent(ctx context.Context, userID, itemID string) (*models.Record, error)

	// HasInRange reports whether the item has a non-deleted check-in with
	// start <= timestamp < end.
	HasInRange(ctx context.Context, userID, itemID string, start, end int64) (bool, error)

	// TombstoneByItem soft-deletes every live record of an item, stamping
	// the given modification time and marking the rows dirty.
	TombstoneByItem(ctx context.Context, userID, itemID string, now int64) error

	// MarkSynced clears the dirty flag and stores the server-observed
	// modification stamp after a successful push.
	MarkSynced(ctx context.Context, recordID string, lastModified int64) error
}
