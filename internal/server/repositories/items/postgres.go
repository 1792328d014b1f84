// Package items provides PostgreSQL-backed storage for server-side item
// documents and their sync queries.
package items

import (
	"context"
	"fmt"

	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/dbx"
	"github.com/clockd/clockd/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates or replaces an item by id. If the id exists under another
// user, no row is updated and common.ErrorUnauthorized is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (item_id, user_id, name, description, clock_in_count, last_modified, deleted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (item_id)
		DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			clock_in_count = EXCLUDED.clock_in_count,
			last_modified = EXCLUDED.last_modified,
			deleted = EXCLUDED.deleted
			WHERE items.user_id = EXCLUDED.user_id
	`
	res, err := r.db.ExecContext(ctx, query,
		item.ItemID, item.UserID, item.Name, item.Description,
		item.ClockInCount, item.LastModified, item.Deleted)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorUnauthorized
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, since int64) ([]*models.Item, error) {
	query := `SELECT item_id, user_id, name, description, clock_in_count, last_modified, deleted
		FROM items WHERE user_id = $1 AND last_modified > $2`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(
			&item.ItemID, &item.UserID, &item.Name, &item.Description,
			&item.ClockInCount, &item.LastModified, &item.Deleted); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
