package records

import (
	"context"

	"github.com/clockd/clockd/internal/server/models"
)

type Repository interface {
	// Upsert creates or replaces a record document by id, guarded by user
	// scope like the items repository.
	Upsert(ctx context.Context, record *models.Record) error

	// SelectUpdated returns all of the user's records, tombstones included,
	// with last_modified strictly greater than since.
	SelectUpdated(ctx context.Context, userID string, since int64) ([]*models.Record, error)
}
