// Package models holds the server-side entities.
package models

import "time"

type User struct {
	ID           string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}

// RefreshToken is an opaque token persisted server-side so it can be
// revoked and rotated.
type RefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
