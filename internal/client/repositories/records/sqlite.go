package records

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

func (r *SQLiteRepository) Upsert(ctx context.Context, record *models.Record) error {
	query := `INSERT INTO records (record_id, user_id, item_id, timestamp, last_modified, synced, deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(record_id) DO UPDATE SET
				timestamp = excluded.timestamp,
				last_modified = excluded.last_modified,
				synced = excluded.synced,
				deleted = excluded.deleted
	`
	_, err := r.db.ExecContext(ctx, query,
		record.RecordID, record.UserID, record.ItemID,
		record.Timestamp, record.LastModified, record.Synced, record.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert record: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, recordID string) (*models.Record, error) {
	query := `SELECT record_id, user_id, item_id, timestamp, last_modified, synced, deleted
		FROM records WHERE record_id = ?`
	record := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, recordID).Scan(
		&record.RecordID, &record.UserID, &record.ItemID,
		&record.Timestamp, &record.LastModified, &record.Synced, &record.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) ByItem(ctx context.Context, userID, itemID string) ([]models.Record, error) {
	query := `SELECT record_id, user_id, item_id, timestamp, last_modified, synced, deleted
		FROM records WHERE user_id = ? AND item_id = ? AND deleted = 0 ORDER BY timestamp DESC`
	rows, err := r.db.QueryContext(ctx, query, userID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []models.Record
	for rows.Next() {
		var record models.Record
		if err := rows.Scan(
			&record.RecordID, &record.UserID, &record.ItemID,
			&record.Timestamp, &record.LastModified, &record.Synced, &record.Deleted); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Unsynced(ctx context.Context, userID string) ([]*models.Record, error) {
	query := `SELECT record_id, user_id, item_id, timestamp, last_modified, synced, deleted
		FROM records WHERE user_id = ? AND synced = 0`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to select unsynced records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		record := &models.Record{}
		if err := rows.Scan(
			&record.RecordID, &record.UserID, &record.ItemID,
			&record.Timestamp, &record.LastModified, &record.Synced, &record.Deleted); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) MostRecent(ctx context.Context, userID, itemID string) (*models.Record, error) {
	query := `SELECT record_id, user_id, item_id, timestamp, last_modified, synced, deleted
		FROM records WHERE user_id = ? AND item_id = ? AND deleted = 0
		ORDER BY timestamp DESC LIMIT 1`
	record := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, userID, itemID).Scan(
		&record.RecordID, &record.UserID, &record.ItemID,
		&record.Timestamp, &record.LastModified, &record.Synced, &record.Deleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get most recent record: %w", err)
	}
	return record, nil
}

func (r *SQLiteRepository) HasInRange(ctx context.Context, userID, itemID string, start, end int64) (bool, error) {
	query := `SELECT EXISTS(
		SELECT 1 FROM records
		WHERE user_id = ? AND item_id = ? AND deleted = 0
		  AND timestamp >= ? AND timestamp < ?
	)`
	var exists bool
	err := r.db.QueryRowContext(ctx, query, userID, itemID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query record range: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) TombstoneByItem(ctx context.Context, userID, itemID string, now int64) error {
	query := `UPDATE records SET deleted = 1, synced = 0, last_modified = ?
		WHERE user_id = ? AND item_id = ? AND deleted = 0`
	if _, err := r.db.ExecContext(ctx, query, now, userID, itemID); err != nil {
		return fmt.Errorf("failed to tombstone records: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, recordID string, lastModified int64) error {
	query := `UPDATE records SET synced = 1, last_modified = ? WHERE record_id = ?`
	if _, err := r.db.ExecContext(ctx, query, lastModified, recordID); err != nil {
		return fmt.Errorf("failed to mark record synced: %w", err)
	}
	return nil
}
