package repository

import (
	"context"

	"github.com/sessionforge/sessionforge/internal/domain"
)

type ProviderLinkRepository interface {
	// Find returns domain.ErrProviderNotLinked when no link exists.
	Find(ctx context.Context, userID int64, provider, providerID string) (*domain.ProviderLink, error)
	// Create is idempotent on (provider, providerID).
	Create(ctx context.Context, userID int64, provider, providerID string) error
}
