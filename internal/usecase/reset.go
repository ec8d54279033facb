package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/email"
	"github.com/sessionforge/sessionforge/internal/metrics"
	"github.com/sessionforge/sessionforge/internal/password"
	"github.com/sessionforge/sessionforge/internal/repository"
)

const defaultResetTTL = 15 * time.Minute

// ResetUsecase issues single-use reset tokens and consumes them to
// authorize a password change.
type ResetUsecase struct {
	users        repository.UserRepository
	tokens       repository.TokenRepository
	sender       email.Sender
	logger       *slog.Logger
	frontendBase string
	resetTTL     time.Duration
}

func NewResetUsecase(users repository.UserRepository, tokens repository.TokenRepository, sender email.Sender, frontendBase string, logger *slog.Logger) *ResetUsecase {
	return &ResetUsecase{
		users:        users,
		tokens:       tokens,
		sender:       sender,
		logger:       logger.With("component", "reset_usecase"),
		frontendBase: frontendBase,
		resetTTL:     defaultResetTTL,
	}
}

type ResetRequest struct {
	Token     string
	ExpiresAt time.Time
	Link      string
}

// RequestReset issues a short-lived reset token and mails the reset link.
// A mail failure is logged but does not fail the request — the token is
// already persisted and the link is recoverable by the caller when link
// exposure is enabled.
func (u *ResetUsecase) RequestReset(ctx context.Context, emailAddr string) (*ResetRequest, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(emailAddr))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.ResetRequestsTotal.WithLabelValues("unknown_user").Inc()
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	token, err := u.tokens.CreateResetToken(ctx, user.ID, u.resetTTL)
	if err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}

	link := u.frontendBase + "/auth/reset?token=" + token.Value
	subject := "Reset your password"
	body := fmt.Sprintf(
		`<p>You requested a password reset.</p><p>Click the link below to set a new password (expires in %d minutes):</p><p><a href="%s">%s</a></p><p>If you did not request this, you can ignore this email.</p>`,
		int(u.resetTTL.Minutes()), link, link,
	)
	if err := u.sender.Send(ctx, user.Email, subject, body); err != nil {
		u.logger.ErrorContext(ctx, "send reset email", "error", err, "user_id", user.ID)
	}

	metrics.ResetRequestsTotal.WithLabelValues("ok").Inc()
	return &ResetRequest{Token: token.Value, ExpiresAt: token.ExpiresAt, Link: link}, nil
}

// ConfirmReset consumes the reset token, installs the new password hash,
// and revokes every outstanding token for the user — a reset signs the
// user out everywhere.
func (u *ResetUsecase) ConfirmReset(ctx context.Context, tokenValue, newPassword string) (int64, error) {
	userID, err := u.tokens.ConsumeResetToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			metrics.ResetConfirmsTotal.WithLabelValues("rejected").Inc()
			return 0, domain.ErrResetTokenInvalid
		}
		return 0, fmt.Errorf("consume reset token: %w", err)
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return 0, err
	}

	if err := u.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return 0, fmt.Errorf("update password hash: %w", err)
	}

	if err := u.tokens.RevokeAllForUser(ctx, userID); err != nil {
		return 0, fmt.Errorf("revoke tokens after reset: %w", err)
	}

	metrics.ResetConfirmsTotal.WithLabelValues("ok").Inc()
	return userID, nil
}
