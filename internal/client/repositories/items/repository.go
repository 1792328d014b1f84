package items

import (
	"context"

	"github.com/clockd/clockd/internal/client/models"
)

// Repository describes row-level storage for items. It is deliberately dumb:
// soft-delete, counter and dirty-flag rules live in the repo facade, not here.
type Repository interface {
	// Upsert inserts a new item or replaces an existing one by id.
	Upsert(ctx context.Context, item *models.Item) error

	// GetByID returns an item regardless of its tombstone state.
	// Missing ids yield common.ErrorNotFound.
	GetByID(ctx context.Context, itemID string) (*models.Item, error)

	// ByUser lists the user's non-deleted items ordered by id.
	ByUser(ctx context.Context, userID string) ([]models.Item, error)

	// Unsynced returns items with local changes not yet pushed,
	// tombstones included.
	Unsynced(ctx context.Context, userID string) ([]*models.Item, error)

	// MarkSynced clears the dirty flag and stores the server-observed
	// modification stamp after a successful push.
	MarkSynced(ctx context.Context, itemID string, lastModified int64) error
}
