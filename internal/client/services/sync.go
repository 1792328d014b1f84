// Package services wires the repo facade, the remote adapter and the
// settings store into user-level operations: authentication and the sync
// pass.
//
// Conflict resolution is timestamp-only (no vector clocks). That is
// adequate under the assumption of a single concurrent writer per entity;
// when two clients edit the same entity at once, the lower-stamped edit is
// silently discarded.
package services

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/clockd/clockd/internal/client/client"
	"github.com/clockd/clockd/internal/client/repo"
	"github.com/clockd/clockd/internal/client/repositories/settings"
	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/logging"
)

// WatermarkKey is the settings key holding the last fully-successful sync
// start time, unix milliseconds.
const WatermarkKey = "last_sync_ts"

// SyncService drives one full reconciliation pass: pull items, pull
// records, push items, push records, strictly in that order. Records
// reference items by id, so items must land first on both directions.
type SyncService struct {
	client   client.Client
	local    *repo.Local
	settings settings.Repository
	logger   logging.Logger

	userID  string
	syncing atomic.Bool
	now     func() int64
}

func NewSyncService(c client.Client, local *repo.Local, s settings.Repository, logger logging.Logger) *SyncService {
	return &SyncService{
		client:   c,
		local:    local,
		settings: s,
		logger:   logger.With("module", "sync"),
		now:      func() int64 { return time.Now().UnixMilli() },
	}
}

// SetUser binds the pass to the signed-in user. An empty id clears it.
func (s *SyncService) SetUser(userID string) {
	s.userID = userID
}

// Syncing reports whether a pass is in flight. Observation only.
func (s *SyncService) Syncing() bool {
	return s.syncing.Load()
}

// Sync runs one pass. A call while another pass is in flight returns
// common.ErrSyncInProgress without starting anything. On any failure the
// watermark is left unadvanced, so the next invocation retries the same
// window; merges are idempotent, so re-applying snapshots is harmless.
func (s *SyncService) Sync(ctx context.Context) error {
	if s.userID == "" {
		return common.ErrorNoUserID
	}
	if !s.syncing.CompareAndSwap(false, true) {
		return common.ErrSyncInProgress
	}
	defer s.syncing.Store(false)

	since, err := s.lastSync(ctx)
	if err != nil {
		return err
	}
	started := s.now()

	s.logger.Info(ctx, "sync pass started", "since", since)

	if err := s.pull(ctx, since); err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	if err := s.push(ctx); err != nil {
		return fmt.Errorf("push: %w", err)
	}

	if err := s.saveLastSync(ctx, started); err != nil {
		return err
	}

	s.logger.Info(ctx, "sync pass finished", "watermark", started)
	return nil
}

func (s *SyncService) pull(ctx context.Context, since int64) error {
	items, err := s.client.FetchItemsSince(ctx, since)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.local.MergeItem(ctx, item); err != nil {
			return err
		}
	}

	records, err := s.client.FetchRecordsSince(ctx, since)
	if err != nil {
		return err
	}
	for _, record := range records {
		if err := s.local.MergeRecord(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (s *SyncService) push(ctx context.Context) error {
	items, err := s.local.UnsyncedItems(ctx, s.userID)
	if err != nil {
		return err
	}
	if len(items) > 0 {
		stamped, err := s.client.PushItems(ctx, items)
		if err != nil {
			return err
		}
		for _, item := range stamped {
			if err := s.local.MarkItemSynced(ctx, item.ItemID, item.LastModified); err != nil {
				return err
			}
		}
	}

	records, err := s.local.UnsyncedRecords(ctx, s.userID)
	if err != nil {
		return err
	}
	if len(records) > 0 {
		stamped, err := s.client.PushRecords(ctx, records)
		if err != nil {
			return err
		}
		for _, record := range stamped {
			if err := s.local.MarkRecordSynced(ctx, record.RecordID, record.LastModified); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SyncService) lastSync(ctx context.Context) (int64, error) {
	value, err := s.settings.Get(ctx, WatermarkKey)
	if err != nil {
		return 0, err
	}
	if value == "" {
		return 0, nil
	}
	ts, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt sync watermark %q: %w", value, err)
	}
	return ts, nil
}

func (s *SyncService) saveLastSync(ctx context.Context, ts int64) error {
	return s.settings.Set(ctx, WatermarkKey, strconv.FormatInt(ts, 10))
}
