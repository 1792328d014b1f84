// Package records provides PostgreSQL-backed storage for server-side
// check-in documents and their sync queries.
package records

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

// Upsert creates or replaces a record by id. If the id exists under another
// user, no row is updated and common.ErrorUnauthorized is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO records (record_id, user_id, item_id, timestamp, last_modified, deleted)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (record_id)
		DO UPDATE SET
			timestamp = EXCLUDED.timestamp,
			last_modified = EXCLUDED.last_modified,
			deleted = EXCLUDED.deleted
			WHERE records.user_id = EXCLUDED.user_id
	`
	res, err := r.db.ExecContext(ctx, query,
		record.RecordID, record.UserID, record.ItemID,
		record.Timestamp, record.LastModified, record.Deleted)
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

func (r *PostgresRepository) SelectUpdated(ctx context.Context, userID string, since int64) ([]*models.Record, error) {
	query := `SELECT record_id, user_id, item_id, timestamp, last_modified, deleted
		FROM records WHERE user_id = $1 AND last_modified > $2`
	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		record := &models.Record{}
		if err := rows.Scan(
			&record.RecordID, &record.UserID, &record.ItemID,
			&record.Timestamp, &record.LastModified, &record.Deleted); err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
