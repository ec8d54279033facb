// janitor runs the periodic expired-token sweeps as its own process,
// decoupled from the API server's lifecycle.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"github.com/sessionforge/sessionforge/config"
	"github.com/sessionforge/sessionforge/internal/health"
	"github.com/sessionforge/sessionforge/internal/infrastructure/postgres"
	"github.com/sessionforge/sessionforge/internal/janitor"
	ctxlog "github.com/sessionforge/sessionforge/internal/log"
	"github.com/sessionforge/sessionforge/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	tokenRepo := postgres.NewTokenRepository(pool)
	j := janitor.New(tokenRepo, logger)

	c := cron.New()
	if _, err := c.AddFunc(cfg.CleanupSchedule, func() {
		j.RunAll(ctx)
	}); err != nil {
		stop()
		log.Fatalf("invalid CLEANUP_SCHEDULE %q: %v", cfg.CleanupSchedule, err)
	}
	c.Start()
	logger.Info("janitor started", "schedule", cfg.CleanupSchedule)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	// Let an in-flight sweep finish before exiting.
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("janitor shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
