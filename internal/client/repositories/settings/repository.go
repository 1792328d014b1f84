// Package settings is a small key-value area for process-wide scalars.
// Its only production tenant is the sync watermark.
package settings

import "context"

type Repository interface {
	// Get returns the stored value, or "" when the key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value, replacing any previous one.
	Set(ctx context.Context, key, value string) error

	// Delete removes the key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes everything, used on logout.
	Clear(ctx context.Context) error
}
