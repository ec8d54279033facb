package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sessionforge/sessionforge/internal/domain"
)

type ProviderLinkRepository struct {
	pool *pgxpool.Pool
}

func NewProviderLinkRepository(pool *pgxpool.Pool) *ProviderLinkRepository {
	return &ProviderLinkRepository{pool: pool}
}

func (r *ProviderLinkRepository) Find(ctx context.Context, userID int64, provider, providerID string) (*domain.ProviderLink, error) {
	query := `
		SELECT user_id, provider, provider_id, created_at, updated_at
		FROM auth_providers
		WHERE user_id = $1 AND provider = $2 AND provider_id = $3`

	var l domain.ProviderLink
	err := r.pool.QueryRow(ctx, query, userID, provider, providerID).
		Scan(&l.UserID, &l.Provider, &l.ProviderID, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProviderNotLinked
		}
		return nil, fmt.Errorf("find provider link: %w", err)
	}
	return &l, nil
}

func (r *ProviderLinkRepository) Create(ctx context.Context, userID int64, provider, providerID string) error {
	// Unique index on (provider, provider_id) makes re-linking a no-op.
	_, err := r.pool.Exec(ctx, `
		INSERT INTO auth_providers (user_id, provider, provider_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider, provider_id) DO NOTHING`,
		userID, provider, providerID,
	)
	if err != nil {
		return fmt.Errorf("create provider link: %w", err)
	}
	return nil
}
