// Package client holds the remote adapter: the translation of domain
// operations into calls against the sync server, plus local database
// bootstrap. It carries no merge logic; the repo facade decides what to do
// with fetched snapshots.
package client

import (
	"context"

	"github.com/clockd/clockd/internal/client/models"
)

// Client is the remote side of the sync pair.
type Client interface {
	Close() error

	// Register creates an account.
	Register(ctx context.Context, username, password string) error

	// Login authenticates and returns the user id the local store scopes
	// everything by. Tokens are retained inside the client.
	Login(ctx context.Context, username, password string) (string, error)

	// Ping probes server reachability.
	Ping(ctx context.Context) error

	// FetchItemsSince returns items, tombstones included, whose remote
	// lastModified is strictly greater than since.
	FetchItemsSince(ctx context.Context, since int64) ([]*models.Item, error)

	// FetchRecordsSince is the record counterpart of FetchItemsSince.
	FetchRecordsSince(ctx context.Context, since int64) ([]*models.Record, error)

	// PushItems upserts the given items by id and returns copies carrying
	// the server-observed lastModified stamped at write time.
	PushItems(ctx context.Context, items []*models.Item) ([]*models.Item, error)

	// PushRecords is the record counterpart of PushItems.
	PushRecords(ctx context.Context, records []*models.Record) ([]*models.Record, error)
}
