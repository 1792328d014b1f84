// Package services holds the server-side business logic behind the HTTP
// handlers: account management and the sync document exchange.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clockd/clockd/internal/common"
	"github.com/clockd/clockd/internal/server/auth"
	"github.com/clockd/clockd/internal/server/config"
	"github.com/clockd/clockd/internal/server/models"
	"github.com/clockd/clockd/internal/server/repositories/refreshtokens"
	"github.com/clockd/clockd/internal/server/repositories/users"
)

const refreshTokenBytes = 32

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type UserService struct {
	users                        users.Repository
	refreshTokens                refreshtokens.Repository
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewUserService(u users.Repository, r refreshtokens.Repository, cfg *config.Config) *UserService {
	return &UserService{
		users:                        u,
		refreshTokens:                r,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Login verifies the credentials and issues a token pair. A missing user and
// a wrong password both come back as common.ErrorUnauthorized so the response
// does not reveal which usernames exist.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, fmt.Errorf("error searching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return "", nil, common.ErrorUnauthorized
	}

	pair, err := s.generateTokenPair(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	return user.ID, pair, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued. An unknown or already-rotated token is unauthorized.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (string, *TokenPair, error) {
	token, err := s.refreshTokens.Get(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", nil, common.ErrorUnauthorized
		}
		return "", nil, fmt.Errorf("error searching refresh token: %w", err)
	}

	if token.ExpiresAt.Before(time.Now()) {
		return "", nil, common.ErrRefreshTokenExpired
	}

	if err := s.refreshTokens.Delete(ctx, refreshToken); err != nil {
		return "", nil, fmt.Errorf("error deleting refresh token: %w", err)
	}

	pair, err := s.generateTokenPair(ctx, token.UserID)
	if err != nil {
		return "", nil, err
	}

	return token.UserID, pair, nil
}

func (s *UserService) generateTokenPair(ctx context.Context, userID string) (*TokenPair, error) {
	accessToken, err := auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	refreshToken, err := common.MakeRandHexString(refreshTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("error generating refresh token: %w", err)
	}

	if err := s.refreshTokens.Create(ctx, userID, refreshToken, s.refreshTokenValidityDuration); err != nil {
		return nil, fmt.Errorf("error saving refresh token: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
