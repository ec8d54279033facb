// Package janitor removes expired tokens on a fixed schedule.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/metrics"
	"github.com/sessionforge/sessionforge/internal/repository"
)

type Janitor struct {
	tokens repository.TokenRepository
	logger *slog.Logger
}

func New(tokens repository.TokenRepository, logger *slog.Logger) *Janitor {
	return &Janitor{
		tokens: tokens,
		logger: logger.With("component", "janitor"),
	}
}

// RunAll executes the per-kind sweeps independently. A failing sweep is
// logged and does not stop the others or the next scheduled run.
func (j *Janitor) RunAll(ctx context.Context) {
	start := time.Now()

	j.SweepSessions(ctx)
	j.SweepRefreshTokens(ctx)
	j.SweepResetTokens(ctx)

	metrics.SweepDuration.Observe(time.Since(start).Seconds())
}

func (j *Janitor) SweepSessions(ctx context.Context) {
	j.sweep(ctx, domain.KindSession)
}

func (j *Janitor) SweepRefreshTokens(ctx context.Context) {
	j.sweep(ctx, domain.KindRefresh)
}

func (j *Janitor) SweepResetTokens(ctx context.Context) {
	j.sweep(ctx, domain.KindReset)
}

func (j *Janitor) sweep(ctx context.Context, kind domain.TokenKind) {
	count, err := j.tokens.SweepExpired(ctx, kind)
	if err != nil {
		j.logger.Error("sweep expired tokens", "kind", kind, "error", err)
		return
	}

	metrics.TokensSweptTotal.WithLabelValues(string(kind)).Add(float64(count))
	if count > 0 {
		j.logger.Info("swept expired tokens", "kind", kind, "count", count)
	}
}
