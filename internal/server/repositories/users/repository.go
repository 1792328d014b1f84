package users

import (
	"context"

	"github.com/clockd/clockd/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A taken username yields
	// common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) error

	// GetByUsername returns the user or common.ErrorNotFound.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}
