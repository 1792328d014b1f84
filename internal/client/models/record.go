package models

import (
	"time"

	"github.com/google/uuid"
)

// Record is a single check-in. Timestamp is when the check-in happened;
// LastModified is when the row itself was last edited. The two differ as
// soon as a record is tombstoned or merged.
type Record struct {
	RecordID     string
	UserID       string
	ItemID       string
	Timestamp    int64
	LastModified int64
	Synced       bool
	Deleted      bool
}

// NewRecord allocates the client-generated id before first persistence,
// same as NewItem.
func NewRecord(userID, itemID string) *Record {
	now := time.Now().UnixMilli()
	return &Record{
		RecordID:     uuid.NewString(),
		UserID:       userID,
		ItemID:       itemID,
		Timestamp:    now,
		LastModified: now,
	}
}

// Touch stamps a local mutation on the record metadata. The check-in
// Timestamp itself is never changed after creation.
func (r *Record) Touch(now int64) {
	r.LastModified = now
	r.Synced = false
}
