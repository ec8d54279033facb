package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/repository"
)

const (
	sessionTTL = 30 * 24 * time.Hour
	refreshTTL = 30 * 24 * time.Hour
)

const tokenColumns = `token_value, user_id, kind, expires_at, created_at, updated_at`

type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

// queryRower is satisfied by both *pgxpool.Pool and pgx.Tx, so inserts can
// run inside or outside a transaction.
type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TokenRepository) CreatePair(ctx context.Context, userID int64) (*domain.TokenPair, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create pair: %w", err)
	}
	defer tx.Rollback(ctx)

	// Single active session per user: the old session row dies in the same
	// transaction that mints the new pair, so a racing inspect never sees
	// a user with zero sessions.
	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 AND kind = $2`,
		userID, domain.KindSession,
	); err != nil {
		return nil, fmt.Errorf("delete previous session: %w", err)
	}

	session, err := insertToken(ctx, tx, userID, domain.KindSession, newOpaqueValue(), sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("insert session token: %w", err)
	}
	refresh, err := insertToken(ctx, tx, userID, domain.KindRefresh, newOpaqueValue(), refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create pair: %w", err)
	}
	return &domain.TokenPair{Session: session, Refresh: refresh}, nil
}

func (r *TokenRepository) CreateSessionToken(ctx context.Context, userID int64) (*domain.Token, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create session: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 AND kind = $2`,
		userID, domain.KindSession,
	); err != nil {
		return nil, fmt.Errorf("delete previous session: %w", err)
	}

	token, err := insertToken(ctx, tx, userID, domain.KindSession, newOpaqueValue(), sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("insert session token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create session: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) CreateRefreshToken(ctx context.Context, userID int64) (*domain.Token, error) {
	token, err := insertToken(ctx, r.pool, userID, domain.KindRefresh, newOpaqueValue(), refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("insert refresh token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) GetValidSession(ctx context.Context, tokenValue string) (*domain.Token, error) {
	query := `
		SELECT ` + tokenColumns + `
		FROM auth_tokens
		WHERE token_value = $1 AND kind = $2 AND expires_at > $3`

	row := r.pool.QueryRow(ctx, query, tokenValue, domain.KindSession, time.Now())
	return scanToken(row)
}

func (r *TokenRepository) FindSessionOwner(ctx context.Context, tokenValue string) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx,
		`SELECT user_id FROM auth_tokens WHERE token_value = $1 AND kind = $2`,
		tokenValue, domain.KindSession,
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrTokenNotFound
		}
		return 0, fmt.Errorf("find session owner: %w", err)
	}
	return userID, nil
}

func (r *TokenRepository) ConsumeRefreshToken(ctx context.Context, tokenValue string) (int64, error) {
	// DELETE … RETURNING is the atomicity guarantee: two concurrent
	// redemptions of the same value get exactly one row between them.
	var userID int64
	err := r.pool.QueryRow(ctx, `
		DELETE FROM auth_tokens
		WHERE token_value = $1 AND kind = $2 AND expires_at > $3
		RETURNING user_id`,
		tokenValue, domain.KindRefresh, time.Now(),
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrTokenNotFound
		}
		return 0, fmt.Errorf("consume refresh token: %w", err)
	}
	return userID, nil
}

func (r *TokenRepository) CreateResetToken(ctx context.Context, userID int64, ttl time.Duration) (*domain.Token, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create reset token: %w", err)
	}
	defer tx.Rollback(ctx)

	// At most one pending reset token per user.
	if _, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 AND kind = $2`,
		userID, domain.KindReset,
	); err != nil {
		return nil, fmt.Errorf("delete pending reset tokens: %w", err)
	}

	token, err := insertToken(ctx, tx, userID, domain.KindReset, uuid.NewString(), ttl)
	if err != nil {
		return nil, fmt.Errorf("insert reset token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create reset token: %w", err)
	}
	return token, nil
}

func (r *TokenRepository) ConsumeResetToken(ctx context.Context, tokenValue string) (int64, error) {
	var userID int64
	err := r.pool.QueryRow(ctx, `
		DELETE FROM auth_tokens
		WHERE token_value = $1 AND kind = $2 AND expires_at > $3
		RETURNING user_id`,
		tokenValue, domain.KindReset, time.Now(),
	).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrTokenNotFound
		}
		return 0, fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (r *TokenRepository) RevokeUserTokens(ctx context.Context, userID int64) (*repository.RevocationResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin revoke: %w", err)
	}
	defer tx.Rollback(ctx)

	sessions, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 AND kind = $2`,
		userID, domain.KindSession,
	)
	if err != nil {
		return nil, fmt.Errorf("revoke sessions: %w", err)
	}

	refreshes, err := tx.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1 AND kind = $2`,
		userID, domain.KindRefresh,
	)
	if err != nil {
		return nil, fmt.Errorf("revoke refresh tokens: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit revoke: %w", err)
	}

	return &repository.RevocationResult{
		SessionRevoked: sessions.RowsAffected() > 0,
		RefreshRevoked: refreshes.RowsAffected() > 0,
	}, nil
}

func (r *TokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM auth_tokens WHERE user_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}
	return nil
}

func (r *TokenRepository) SweepExpired(ctx context.Context, kind domain.TokenKind) (int64, error) {
	if kind == "" {
		tag, err := r.pool.Exec(ctx,
			`DELETE FROM auth_tokens WHERE expires_at <= $1`, time.Now())
		if err != nil {
			return 0, fmt.Errorf("sweep expired tokens: %w", err)
		}
		return tag.RowsAffected(), nil
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM auth_tokens WHERE expires_at <= $1 AND kind = $2`,
		time.Now(), kind)
	if err != nil {
		return 0, fmt.Errorf("sweep expired %s tokens: %w", kind, err)
	}
	return tag.RowsAffected(), nil
}

func insertToken(ctx context.Context, q queryRower, userID int64, kind domain.TokenKind, value string, ttl time.Duration) (*domain.Token, error) {
	query := `
		INSERT INTO auth_tokens (token_value, user_id, kind, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + tokenColumns

	row := q.QueryRow(ctx, query, value, userID, kind, time.Now().Add(ttl))
	return scanToken(row)
}

func scanToken(row pgx.Row) (*domain.Token, error) {
	var t domain.Token
	err := row.Scan(&t.Value, &t.UserID, &t.Kind, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("scan token: %w", err)
	}
	return &t, nil
}

// newOpaqueValue returns 32 bytes of CSPRNG entropy, hex encoded. Token
// values are globally unique across kinds — the primary key enforces it.
func newOpaqueValue() string {
	raw := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		// rand.Reader failing means the process is unusable anyway.
		panic(fmt.Sprintf("read random: %v", err))
	}
	return hex.EncodeToString(raw)
}
