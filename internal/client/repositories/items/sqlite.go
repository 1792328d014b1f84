package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/clockd/clockd/internal/client/models"
	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, item *models.Item) error {
	query := `INSERT INTO items (item_id, user_id, name, description, clock_in_count, last_modified, synced, deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(item_id) DO UPDATE SET
				name = excluded.name,
				description = excluded.description,
				clock_in_count = excluded.clock_in_count,
				last_modified = excluded.last_modified,
				synced = excluded.synced,
				deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		item.ItemID, item.UserID, item.Name, item.Description,
		item.ClockInCount, item.LastModified, item.Synced, item.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert item: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, itemID string) (*models.Item, error) {
	query := `SELECT item_id, user_id, name, description, clock_in_count, last_modified, synced, deleted
		FROM items WHERE item_id = ?`
	item := &models.Item{}
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(
		&item.ItemID, &item.UserID, &item.Name, &item.Description,
		&item.ClockInCount, &item.LastModified, &item.Synced, &item.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func (r *SQLiteRepository) ByUser(ctx context.Context, userID string) ([]models.Item, error) {
	query := `SELECT item_id, user_id, name, description, clock_in_count, last_modified, synced, deleted
		FROM items WHERE user_id = ? AND deleted = 0 ORDER BY item_id`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select items: %w", err)
	}
	defer rows.Close()

	var result []models.Item
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(
			&item.ItemID, &item.UserID, &item.Name, &item.Description,
			&item.ClockInCount, &item.LastModified, &item.Synced, &item.Deleted); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Unsynced(ctx context.Context, userID string) ([]*models.Item, error) {
	query := `SELECT item_id, user_id, name, description, clock_in_count, last_modified, synced, deleted
		FROM items WHERE user_id = ? AND synced = 0`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced items: %w", err)
	}
	defer rows.Close()

	var result []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(
			&item.ItemID, &item.UserID, &item.Name, &item.Description,
			&item.ClockInCount, &item.LastModified, &item.Synced, &item.Deleted); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, itemID string, lastModified int64) error {
	query := `UPDATE items SET synced = 1, last_modified = ? WHERE item_id = ?`
	if _, err := r.db.ExecContext(ctx, query, lastModified, itemID); err != nil {
		return fmt.Errorf("failed to mark item synced: %w", err)
	}
	return nil
}
