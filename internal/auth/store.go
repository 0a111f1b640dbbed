// Package auth manages admin users and their sessions. Any valid session
// is authorized; there are no roles.
package auth

import (
	"context"
	"errors"
	"time"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoSession          = errors.New("no active session")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrStoreClosed        = errors.New("auth store is closed")
)

// User is an admin account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is a signed-in admin.
type Session struct {
	Token     string    `json:"access_token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has lapsed at now.
func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists users and sessions.
type Store interface {
	// CreateUser adds a user. It returns ErrUserExists for a taken email.
	CreateUser(ctx context.Context, user User) error

	// UserByEmail looks up a user.
	UserByEmail(ctx context.Context, email string) (User, error)

	// CreateSession stores a new session.
	CreateSession(ctx context.Context, session Session) error

	// Session returns a session by token, or ErrNoSession.
	Session(ctx context.Context, token string) (Session, error)

	// DeleteSession removes a session. Missing sessions are ignored.
	DeleteSession(ctx context.Context, token string) error

	// DeleteExpired removes every session expired at now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// Close releases resources.
	Close() error
}
