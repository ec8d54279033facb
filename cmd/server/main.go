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

	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sessionforge/sessionforge/config"
	"github.com/sessionforge/sessionforge/internal/email"
	"github.com/sessionforge/sessionforge/internal/health"
	"github.com/sessionforge/sessionforge/internal/infrastructure/google"
	"github.com/sessionforge/sessionforge/internal/infrastructure/postgres"
	ctxlog "github.com/sessionforge/sessionforge/internal/log"
	"github.com/sessionforge/sessionforge/internal/metrics"
	httptransport "github.com/sessionforge/sessionforge/internal/transport/http"
	"github.com/sessionforge/sessionforge/internal/transport/http/handler"
	"github.com/sessionforge/sessionforge/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	tokenRepo := postgres.NewTokenRepository(pool)
	linkRepo := postgres.NewProviderLinkRepository(pool)

	secureCookie := cfg.Env != "local"

	// Session lifecycle
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenRepo, logger)
	authHandler := handler.NewAuthHandler(authUsecase, secureCookie, logger)

	// Password reset
	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)
	resetUsecase := usecase.NewResetUsecase(userRepo, tokenRepo, sender, cfg.FrontendBaseURL, logger)
	resetHandler := handler.NewResetHandler(resetUsecase, cfg.ExposeResetLink, cfg.FrontendBaseURL+"/auth/login", logger)

	// Google identity bridge
	googleClient := google.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.APIBaseURL)
	googleUsecase := usecase.NewGoogleUsecase(googleClient, userRepo, linkRepo, authUsecase, logger)
	googleHandler := handler.NewGoogleHandler(googleUsecase, cfg.FrontendBaseURL, secureCookie, logger)

	metrics.Register()
	checker := health.NewChecker(pool, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr:    ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, authHandler, resetHandler, googleHandler, authUsecase),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
