package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/metrics"
	"github.com/sessionforge/sessionforge/internal/password"
	"github.com/sessionforge/sessionforge/internal/repository"
)

// AuthUsecase drives the session lifecycle: anonymous → authenticated via
// login/signup, rotation via refresh, back to anonymous via signout.
type AuthUsecase struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	logger *slog.Logger
}

func NewAuthUsecase(users repository.UserRepository, tokens repository.TokenRepository, logger *slog.Logger) *AuthUsecase {
	return &AuthUsecase{
		users:  users,
		tokens: tokens,
		logger: logger.With("component", "auth_usecase"),
	}
}

// Identity is what a successful authentication returns to the caller.
type Identity struct {
	User *domain.User
	Pair *domain.TokenPair
}

// Login authenticates an email/password pair. Unknown email and wrong
// password collapse into the same ErrInvalidCredentials so the response
// never reveals whether the email is registered.
func (u *AuthUsecase) Login(ctx context.Context, email, plainPassword string) (*Identity, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	ok, err := password.Verify(plainPassword, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		metrics.LoginsTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := u.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	return &Identity{User: user, Pair: pair}, nil
}

// Signup creates the user and immediately authenticates them.
func (u *AuthUsecase) Signup(ctx context.Context, email, plainPassword, name string) (*Identity, error) {
	email = normalizeEmail(email)

	_, err := u.users.FindByEmail(ctx, email)
	if err == nil {
		metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, err
	}

	user, err := u.users.Create(ctx, repository.CreateUserInput{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		// Unique-email violation here means a concurrent signup won the race.
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			metrics.SignupsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := u.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	metrics.SignupsTotal.WithLabelValues("ok").Inc()
	return &Identity{User: user, Pair: pair}, nil
}

// CreateSession mints a session+refresh pair. Both rows land in one store
// transaction — a partial pair is never considered a valid session.
func (u *AuthUsecase) CreateSession(ctx context.Context, userID int64) (*domain.TokenPair, error) {
	pair, err := u.tokens.CreatePair(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create session pair: %w", err)
	}
	metrics.SessionsCreatedTotal.Inc()
	return pair, nil
}

// Refresh redeems a refresh token for a brand-new pair. The presented token
// is consumed atomically, so it is never reusable — the loser of a
// concurrent redemption gets ErrRefreshTokenInvalid and must re-authenticate.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshTokenValue string) (*domain.TokenPair, error) {
	userID, err := u.tokens.ConsumeRefreshToken(ctx, refreshTokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			metrics.RefreshRotationsTotal.WithLabelValues("rejected").Inc()
			return nil, domain.ErrRefreshTokenInvalid
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	pair, err := u.CreateSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	metrics.RefreshRotationsTotal.WithLabelValues("ok").Inc()
	return pair, nil
}

// Signout resolves the session's owner and revokes the session together
// with every refresh token the user holds.
func (u *AuthUsecase) Signout(ctx context.Context, sessionTokenValue string) (int64, error) {
	userID, err := u.tokens.FindSessionOwner(ctx, sessionTokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			metrics.SignoutsTotal.WithLabelValues("rejected").Inc()
			return 0, domain.ErrSessionNotFound
		}
		return 0, fmt.Errorf("find session owner: %w", err)
	}

	result, err := u.tokens.RevokeUserTokens(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}
	if !result.SessionRevoked || !result.RefreshRevoked {
		metrics.SignoutsTotal.WithLabelValues("incomplete").Inc()
		return 0, domain.ErrRevocationIncomplete
	}

	metrics.SignoutsTotal.WithLabelValues("ok").Inc()
	return userID, nil
}

// InspectSession validates a session token without side effects. Expired
// rows are rejected exactly like absent ones.
func (u *AuthUsecase) InspectSession(ctx context.Context, sessionTokenValue string) (*domain.Token, error) {
	token, err := u.tokens.GetValidSession(ctx, sessionTokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, fmt.Errorf("get valid session: %w", err)
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
