package refreshtokens

import (
	"context"
	"time"

	"github.com/clockd/clockd/internal/server/models"
)

type Repository interface {
	// Create persists a refresh token valid for the given duration.
	Create(ctx context.Context, userID, token string, validity time.Duration) error

	// Get returns the stored token or common.ErrorNotFound.
	Get(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete revokes a token. Missing tokens are not an error.
	Delete(ctx context.Context, token string) error
}
