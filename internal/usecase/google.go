package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/password"
	"github.com/sessionforge/sessionforge/internal/repository"
)

// FlowMode selects which callback URL the provider redirects to.
type FlowMode string

const (
	FlowLogin  FlowMode = "login"
	FlowSignup FlowMode = "signup"
)

// GoogleProfile is the subset of the provider's userinfo we care about.
type GoogleProfile struct {
	ID    string
	Email string
	Name  string
}

// ProfileFetcher hides the OAuth mechanics (authorization URL construction,
// code exchange, userinfo fetch) behind an interface so tests can fake it.
type ProfileFetcher interface {
	AuthURL(mode FlowMode) string
	FetchProfile(ctx context.Context, code string, mode FlowMode) (*GoogleProfile, error)
}

// sessionCreator is the slice of AuthUsecase the bridge needs.
type sessionCreator interface {
	CreateSession(ctx context.Context, userID int64) (*domain.TokenPair, error)
}

// GoogleUsecase links federated Google identities to local accounts and
// feeds authenticated users into the session lifecycle.
type GoogleUsecase struct {
	fetcher  ProfileFetcher
	users    repository.UserRepository
	links    repository.ProviderLinkRepository
	sessions sessionCreator
	logger   *slog.Logger
}

func NewGoogleUsecase(fetcher ProfileFetcher, users repository.UserRepository, links repository.ProviderLinkRepository, sessions sessionCreator, logger *slog.Logger) *GoogleUsecase {
	return &GoogleUsecase{
		fetcher:  fetcher,
		users:    users,
		links:    links,
		sessions: sessions,
		logger:   logger.With("component", "google_usecase"),
	}
}

func (u *GoogleUsecase) AuthURL(mode FlowMode) string {
	return u.fetcher.AuthURL(mode)
}

// CompleteLogin exchanges the code and signs in an existing, linked user.
// Unknown users and unlinked accounts are pushed to the signup flow.
func (u *GoogleUsecase) CompleteLogin(ctx context.Context, code string) (*Identity, error) {
	profile, err := u.fetchProfile(ctx, code, FlowLogin)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, normalizeEmail(profile.Email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	if _, err := u.links.Find(ctx, user.ID, domain.ProviderGoogle, profile.ID); err != nil {
		if errors.Is(err, domain.ErrProviderNotLinked) {
			return nil, domain.ErrProviderNotLinked
		}
		return nil, fmt.Errorf("find provider link: %w", err)
	}

	pair, err := u.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Identity{User: user, Pair: pair}, nil
}

// CompleteSignup exchanges the code, creates or links the local account,
// and signs the user in. Linking is idempotent.
func (u *GoogleUsecase) CompleteSignup(ctx context.Context, code string) (*Identity, error) {
	profile, err := u.fetchProfile(ctx, code, FlowSignup)
	if err != nil {
		return nil, err
	}

	user, err := u.users.FindByEmail(ctx, normalizeEmail(profile.Email))
	switch {
	case err == nil:
		if _, err := u.links.Find(ctx, user.ID, domain.ProviderGoogle, profile.ID); err != nil {
			if !errors.Is(err, domain.ErrProviderNotLinked) {
				return nil, fmt.Errorf("find provider link: %w", err)
			}
			if err := u.links.Create(ctx, user.ID, domain.ProviderGoogle, profile.ID); err != nil {
				return nil, fmt.Errorf("link provider: %w", err)
			}
		}

	case errors.Is(err, domain.ErrUserNotFound):
		// Federated-only account: the local password is an unguessable
		// random placeholder that can only be replaced via reset.
		placeholder, err := password.Hash(uuid.NewString())
		if err != nil {
			return nil, err
		}

		name := profile.Name
		if name == "" {
			name = "Google User"
		}
		user, err = u.users.Create(ctx, repository.CreateUserInput{
			Email:        normalizeEmail(profile.Email),
			Name:         name,
			PasswordHash: placeholder,
		})
		if err != nil {
			return nil, fmt.Errorf("create federated user: %w", err)
		}
		if err := u.links.Create(ctx, user.ID, domain.ProviderGoogle, profile.ID); err != nil {
			return nil, fmt.Errorf("link provider: %w", err)
		}

	default:
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	pair, err := u.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Identity{User: user, Pair: pair}, nil
}

func (u *GoogleUsecase) fetchProfile(ctx context.Context, code string, mode FlowMode) (*GoogleProfile, error) {
	profile, err := u.fetcher.FetchProfile(ctx, code, mode)
	if err != nil {
		return nil, fmt.Errorf("fetch google profile: %w", err)
	}
	if profile.Email == "" {
		return nil, domain.ErrProfileIncomplete
	}
	return profile, nil
}
