package services

import (
	"context"
	"fmt"
	"time"

	"github.com/clockd/clockd/internal/server/models"
	"github.com/clockd/clockd/internal/server/repositories/items"
	"github.com/clockd/clockd/internal/server/repositories/records"
)

// SyncService applies pushed documents and answers incremental fetches.
// Every accepted document is stamped with the server clock so that
// last_modified ordering is consistent across clients regardless of their
// local clocks.
type SyncService struct {
	items   items.Repository
	records records.Repository
	now     func() int64
}

func NewSyncService(i items.Repository, r records.Repository) *SyncService {
	return &SyncService{
		items:   i,
		records: r,
		now:     func() int64 { return time.Now().UnixMilli() },
	}
}

// PushItems upserts the client's items under the authenticated user and
// returns them with the server-assigned last_modified stamps. The user id
// from the token always wins over whatever the payload carries.
func (s *SyncService) PushItems(ctx context.Context, userID string, in []*models.Item) ([]*models.Item, error) {
	now := s.now()
	result := make([]*models.Item, 0, len(in))
	for _, item := range in {
		stamped := *item
		stamped.UserID = userID
		stamped.LastModified = now
		if err := s.items.Upsert(ctx, &stamped); err != nil {
			return nil, fmt.Errorf("error upserting item %s: %w", stamped.ItemID, err)
		}
		result = append(result, &stamped)
	}
	return result, nil
}

func (s *SyncService) PushRecords(ctx context.Context, userID string, in []*models.Record) ([]*models.Record, error) {
	now := s.now()
	result := make([]*models.Record, 0, len(in))
	for _, record := range in {
		stamped := *record
		stamped.UserID = userID
		stamped.LastModified = now
		if err := s.records.Upsert(ctx, &stamped); err != nil {
			return nil, fmt.Errorf("error upserting record %s: %w", stamped.RecordID, err)
		}
		result = append(result, &stamped)
	}
	return result, nil
}

// ItemsSince returns the user's items changed strictly after since,
// tombstones included.
func (s *SyncService) ItemsSince(ctx context.Context, userID string, since int64) ([]*models.Item, error) {
	return s.items.SelectUpdated(ctx, userID, since)
}

func (s *SyncService) RecordsSince(ctx context.Context, userID string, since int64) ([]*models.Record, error) {
	return s.records.SelectUpdated(ctx, userID, since)
}
