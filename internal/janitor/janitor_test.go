package janitor_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/janitor"
	"github.com/sessionforge/sessionforge/internal/repository"
)

// fakeTokenRepo implements repository.TokenRepository; only SweepExpired
// matters for the janitor, everything else panics if called.
type fakeTokenRepo struct {
	sweepExpired func(ctx context.Context, kind domain.TokenKind) (int64, error)
}

func (r *fakeTokenRepo) SweepExpired(ctx context.Context, kind domain.TokenKind) (int64, error) {
	return r.sweepExpired(ctx, kind)
}

func (r *fakeTokenRepo) CreatePair(context.Context, int64) (*domain.TokenPair, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) CreateSessionToken(context.Context, int64) (*domain.Token, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) CreateRefreshToken(context.Context, int64) (*domain.Token, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) GetValidSession(context.Context, string) (*domain.Token, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) FindSessionOwner(context.Context, string) (int64, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) ConsumeRefreshToken(context.Context, string) (int64, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) CreateResetToken(context.Context, int64, time.Duration) (*domain.Token, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) ConsumeResetToken(context.Context, string) (int64, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) RevokeUserTokens(context.Context, int64) (*repository.RevocationResult, error) {
	panic("unexpected call")
}
func (r *fakeTokenRepo) RevokeAllForUser(context.Context, int64) error {
	panic("unexpected call")
}

func newJanitor(repo repository.TokenRepository) *janitor.Janitor {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return janitor.New(repo, logger)
}

func TestRunAll_SweepsEveryKind(t *testing.T) {
	var kinds []domain.TokenKind
	repo := &fakeTokenRepo{
		sweepExpired: func(_ context.Context, kind domain.TokenKind) (int64, error) {
			kinds = append(kinds, kind)
			return 0, nil
		},
	}

	newJanitor(repo).RunAll(context.Background())

	want := []domain.TokenKind{domain.KindSession, domain.KindRefresh, domain.KindReset}
	if len(kinds) != len(want) {
		t.Fatalf("swept %d kinds, want %d", len(kinds), len(want))
	}
	for i, kind := range want {
		if kinds[i] != kind {
			t.Errorf("sweep %d = %q, want %q", i, kinds[i], kind)
		}
	}
}

func TestRunAll_OneSweepFailing_OthersStillRun(t *testing.T) {
	var calls int
	repo := &fakeTokenRepo{
		sweepExpired: func(_ context.Context, kind domain.TokenKind) (int64, error) {
			calls++
			if kind == domain.KindSession {
				return 0, errors.New("db down")
			}
			return 1, nil
		},
	}

	newJanitor(repo).RunAll(context.Background())

	if calls != 3 {
		t.Errorf("sweeps ran %d times, want 3 (failure must not short-circuit)", calls)
	}
}
