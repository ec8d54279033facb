package domain

import (
	"errors"
	"time"
)

var (
	// Expected business failures — mapped to 4xx at the transport layer.
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrTokenInvalid         = errors.New("token is invalid or expired")
	ErrRefreshTokenInvalid  = errors.New("refresh token is invalid or expired")
	ErrResetTokenInvalid    = errors.New("reset token is invalid or expired")
	ErrSessionNotFound      = errors.New("session not found")
	ErrRevocationIncomplete = errors.New("session or refresh token not found")
	ErrProviderNotLinked    = errors.New("provider account not linked")
	ErrProfileIncomplete    = errors.New("provider profile missing email")

	// ErrTokenNotFound is the store-level "no matching row" result. It is
	// never an infrastructure failure; backend errors are wrapped and
	// propagate as-is.
	ErrTokenNotFound = errors.New("token not found")
)

type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TokenKind discriminates the unified auth_tokens table.
type TokenKind string

const (
	KindSession TokenKind = "session"
	KindRefresh TokenKind = "refresh"
	KindReset   TokenKind = "reset_password"
)

type Token struct {
	Value     string
	UserID    int64
	Kind      TokenKind
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Expired reports whether the token is no longer valid at ref.
// The boundary is exclusive: ExpiresAt == ref counts as expired.
func (t *Token) Expired(ref time.Time) bool {
	return !t.ExpiresAt.After(ref)
}

// TokenPair is what a successful authentication hands back: a bearer
// session token plus the single-use refresh token that rotates it.
type TokenPair struct {
	Session *Token
	Refresh *Token
}

type ProviderLink struct {
	UserID     int64
	Provider   string
	ProviderID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

const ProviderGoogle = "google"
