package services

import (
	"context"
	"fmt"

	"github.com/clockd/clockd/internal/client/client"
	"github.com/clockd/clockd/internal/client/repo"
)

// AuthService handles account registration and sign-in against the server.
// It also seeds the starter habits for a brand-new local store.
type AuthService struct {
	client client.Client
	local  *repo.Local
}

func NewAuthService(c client.Client, local *repo.Local) *AuthService {
	return &AuthService{client: c, local: local}
}

func (s *AuthService) Register(ctx context.Context, username, password string) error {
	if err := s.client.Register(ctx, username, password); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return nil
}

// Login signs in and returns the user id. First login on a device gets the
// default habits.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	userID, err := s.client.Login(ctx, username, password)
	if err != nil {
		return "", fmt.Errorf("login failed: %w", err)
	}

	if err := s.local.SeedDefaults(ctx, userID); err != nil {
		return "", fmt.Errorf("failed to seed defaults: %w", err)
	}

	return userID, nil
}

func (s *AuthService) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *AuthService) Close(ctx context.Context) error {
	return s.client.Close()
}
