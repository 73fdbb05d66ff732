// Package domain contains the core business entities, rules and ports.
package domain

import (
	"context"
	"time"
)

// User represents an account. ID is opaque and scopes every per-user record.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session represents an active user session.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	UserAgent string    `json:"userAgent"`
	IP        string    `json:"ip"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserRepository defines the port for user persistence operations. Lookups
// return ErrNotFound for unknown users and Create returns ErrConflict when the
// email is taken.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, email, name, passwordHash string) (*User, error)
	Count(ctx context.Context) (int, error)
}

// SessionRepository defines the port for session persistence operations.
// GetByToken returns ErrNotFound for unknown tokens.
type SessionRepository interface {
	Create(ctx context.Context, userID, token, userAgent, ip string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
}
