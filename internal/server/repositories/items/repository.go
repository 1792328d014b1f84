package items

import (
	"context"

	"github.com/clockd/clockd/internal/server/models"
)

type Repository interface {
	// Upsert creates or replaces an item document by id. The user scope in
	// the conflict guard keeps one user from overwriting another's id.
	Upsert(ctx context.Context, item *models.Item) error

	// SelectUpdated returns all of the user's items, tombstones included,
	// with last_modified strictly greater than since.
	SelectUpdated(ctx context.Context, userID string, since int64) ([]*models.Item, error)
}
