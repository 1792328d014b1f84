// Package models holds the client-side entities and their mutation helpers.
//
// Every timestamp is unix milliseconds (UTC). A local mutation must go
// through Touch so the dirty flag and modification stamp stay consistent;
// the sync engine relies on both.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Item is a habit the user checks in against. ClockInCount is maintained
// incrementally by the local repository and always equals the number of
// non-deleted records for the item.
type Item struct {
	ItemID       string
	UserID       string
	Name         string
	Description  string
	ClockInCount int64
	LastModified int64
	Synced       bool
	Deleted      bool
}

// NewItem allocates the client-generated id up front so that pushing the
// item to the server is idempotent: the same id always names the same
// logical habit.
func NewItem(userID, name, description string) *Item {
	return &Item{
		ItemID:       uuid.NewString(),
		UserID:       userID,
		Name:         name,
		Description:  description,
		LastModified: time.Now().UnixMilli(),
	}
}

// Touch stamps a local mutation: the item carries the mutation time and
// becomes dirty until the next successful push or accepted pull.
func (i *Item) Touch(now int64) {
	i.LastModified = now
	i.Synced = false
}
