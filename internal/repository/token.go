package repository

import (
	"context"
	"time"

	"github.com/sessionforge/sessionforge/internal/domain"
)

// RevocationResult reports, per kind, whether signout actually removed rows.
type RevocationResult struct {
	SessionRevoked bool
	RefreshRevoked bool
}

// TokenRepository is the unified store for session, refresh, and reset
// tokens. "Not found" and "expired" surface as domain.ErrTokenNotFound;
// any other error is a backend failure.
type TokenRepository interface {
	// CreatePair mints a session+refresh pair for the user in a single
	// transaction, replacing any existing session token (single active
	// session per user).
	CreatePair(ctx context.Context, userID int64) (*domain.TokenPair, error)

	// CreateSessionToken replaces the user's session token with a fresh one.
	CreateSessionToken(ctx context.Context, userID int64) (*domain.Token, error)
	CreateRefreshToken(ctx context.Context, userID int64) (*domain.Token, error)

	// GetValidSession ignores rows whose expiry is at or before now.
	GetValidSession(ctx context.Context, tokenValue string) (*domain.Token, error)

	// FindSessionOwner resolves a session token to its user without an
	// expiry check — signout must work on a stale session too.
	FindSessionOwner(ctx context.Context, tokenValue string) (int64, error)

	// ConsumeRefreshToken atomically deletes the refresh token and returns
	// the owning user. Of two concurrent redemptions exactly one succeeds.
	ConsumeRefreshToken(ctx context.Context, tokenValue string) (int64, error)

	// CreateResetToken replaces any pending reset token for the user.
	CreateResetToken(ctx context.Context, userID int64, ttl time.Duration) (*domain.Token, error)

	// ConsumeResetToken atomically deletes a live reset token and returns
	// the owning user.
	ConsumeResetToken(ctx context.Context, tokenValue string) (int64, error)

	// RevokeUserTokens deletes the user's session and refresh tokens.
	RevokeUserTokens(ctx context.Context, userID int64) (*RevocationResult, error)

	// RevokeAllForUser deletes every token of every kind for the user.
	RevokeAllForUser(ctx context.Context, userID int64) error

	// SweepExpired deletes rows with expires_at <= now, optionally scoped
	// to one kind (empty kind sweeps all), and returns the count removed.
	SweepExpired(ctx context.Context, kind domain.TokenKind) (int64, error)
}
