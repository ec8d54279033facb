package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/password"
	"github.com/sessionforge/sessionforge/internal/repository"
	"github.com/sessionforge/sessionforge/internal/usecase"
)

type fakeFetcher struct {
	authURL      func(mode usecase.FlowMode) string
	fetchProfile func(ctx context.Context, code string, mode usecase.FlowMode) (*usecase.GoogleProfile, error)
}

func (f *fakeFetcher) AuthURL(mode usecase.FlowMode) string { return f.authURL(mode) }

func (f *fakeFetcher) FetchProfile(ctx context.Context, code string, mode usecase.FlowMode) (*usecase.GoogleProfile, error) {
	return f.fetchProfile(ctx, code, mode)
}

type fakeLinkRepo struct {
	find   func(ctx context.Context, userID int64, provider, providerID string) (*domain.ProviderLink, error)
	create func(ctx context.Context, userID int64, provider, providerID string) error
}

func (r *fakeLinkRepo) Find(ctx context.Context, userID int64, provider, providerID string) (*domain.ProviderLink, error) {
	return r.find(ctx, userID, provider, providerID)
}

func (r *fakeLinkRepo) Create(ctx context.Context, userID int64, provider, providerID string) error {
	return r.create(ctx, userID, provider, providerID)
}

type fakeSessionCreator struct {
	createSession func(ctx context.Context, userID int64) (*domain.TokenPair, error)
}

func (s *fakeSessionCreator) CreateSession(ctx context.Context, userID int64) (*domain.TokenPair, error) {
	return s.createSession(ctx, userID)
}

func staticProfile(p *usecase.GoogleProfile) *fakeFetcher {
	return &fakeFetcher{
		fetchProfile: func(_ context.Context, _ string, _ usecase.FlowMode) (*usecase.GoogleProfile, error) {
			return p, nil
		},
	}
}

func pairCreator() *fakeSessionCreator {
	return &fakeSessionCreator{
		createSession: func(_ context.Context, userID int64) (*domain.TokenPair, error) {
			return newPair(userID), nil
		},
	}
}

func TestGoogleLogin_LinkedUser_GetsSession(t *testing.T) {
	user := &domain.User{ID: 9, Email: "a@x.com", Name: "A"}
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "A@x.com", Name: "A"})
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, email string) (*domain.User, error) {
			if email != "a@x.com" {
				t.Errorf("lookup email = %q, want normalized %q", email, "a@x.com")
			}
			return user, nil
		},
	}
	links := &fakeLinkRepo{
		find: func(_ context.Context, userID int64, provider, providerID string) (*domain.ProviderLink, error) {
			if provider != domain.ProviderGoogle || providerID != "g-1" {
				t.Errorf("link lookup (%s, %s)", provider, providerID)
			}
			return &domain.ProviderLink{UserID: userID, Provider: provider, ProviderID: providerID}, nil
		},
	}

	u := usecase.NewGoogleUsecase(fetcher, users, links, pairCreator(), testLogger())
	identity, err := u.CompleteLogin(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.User.ID != user.ID || identity.Pair.Session.Value == "" {
		t.Errorf("identity = %+v", identity)
	}
}

func TestGoogleLogin_UnknownUser_Fails(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "new@x.com"})
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}

	u := usecase.NewGoogleUsecase(fetcher, users, &fakeLinkRepo{}, pairCreator(), testLogger())
	_, err := u.CompleteLogin(context.Background(), "code-1")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestGoogleLogin_UnlinkedAccount_Fails(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "a@x.com"})
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 9, Email: "a@x.com"}, nil
		},
	}
	links := &fakeLinkRepo{
		find: func(_ context.Context, _ int64, _, _ string) (*domain.ProviderLink, error) {
			return nil, domain.ErrProviderNotLinked
		},
	}

	u := usecase.NewGoogleUsecase(fetcher, users, links, pairCreator(), testLogger())
	_, err := u.CompleteLogin(context.Background(), "code-1")
	if !errors.Is(err, domain.ErrProviderNotLinked) {
		t.Errorf("want ErrProviderNotLinked, got %v", err)
	}
}

func TestGoogleLogin_ProfileWithoutEmail_Fails(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: ""})

	u := usecase.NewGoogleUsecase(fetcher, &fakeUserRepo{}, &fakeLinkRepo{}, pairCreator(), testLogger())
	_, err := u.CompleteLogin(context.Background(), "code-1")
	if !errors.Is(err, domain.ErrProfileIncomplete) {
		t.Errorf("want ErrProfileIncomplete, got %v", err)
	}
}

func TestGoogleSignup_NewUser_CreatedWithPlaceholderPassword(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "New@x.com", Name: "New User"})
	var created repository.CreateUserInput
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		create: func(_ context.Context, input repository.CreateUserInput) (*domain.User, error) {
			created = input
			return &domain.User{ID: 11, Email: input.Email, Name: input.Name, PasswordHash: input.PasswordHash}, nil
		},
	}
	var linked bool
	links := &fakeLinkRepo{
		create: func(_ context.Context, userID int64, provider, providerID string) error {
			if userID != 11 || provider != domain.ProviderGoogle || providerID != "g-1" {
				t.Errorf("link (%d, %s, %s)", userID, provider, providerID)
			}
			linked = true
			return nil
		},
	}

	u := usecase.NewGoogleUsecase(fetcher, users, links, pairCreator(), testLogger())
	identity, err := u.CompleteSignup(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !linked {
		t.Error("provider link was not created")
	}
	if identity.User.ID != 11 {
		t.Errorf("user ID = %d, want 11", identity.User.ID)
	}
	if created.Email != "new@x.com" {
		t.Errorf("stored email = %q, want normalized %q", created.Email, "new@x.com")
	}
	// The placeholder must be a real bcrypt hash, never empty or guessable.
	if created.PasswordHash == "" {
		t.Fatal("placeholder password hash is empty")
	}
	if ok, err := password.Verify("", created.PasswordHash); err != nil || ok {
		t.Errorf("empty password verifies against placeholder (ok=%v err=%v)", ok, err)
	}
}

func TestGoogleSignup_NewUserWithoutName_GetsFallback(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "new@x.com", Name: ""})
	var createdName string
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
		create: func(_ context.Context, input repository.CreateUserInput) (*domain.User, error) {
			createdName = input.Name
			return &domain.User{ID: 11, Email: input.Email, Name: input.Name}, nil
		},
	}
	links := &fakeLinkRepo{
		create: func(_ context.Context, _ int64, _, _ string) error { return nil },
	}

	u := usecase.NewGoogleUsecase(fetcher, users, links, pairCreator(), testLogger())
	if _, err := u.CompleteSignup(context.Background(), "code-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if createdName != "Google User" {
		t.Errorf("name = %q, want fallback %q", createdName, "Google User")
	}
}

func TestGoogleSignup_ExistingLinkedUser_Idempotent(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "a@x.com"})
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 9, Email: "a@x.com"}, nil
		},
	}
	links := &fakeLinkRepo{
		find: func(_ context.Context, userID int64, provider, providerID string) (*domain.ProviderLink, error) {
			return &domain.ProviderLink{UserID: userID, Provider: provider, ProviderID: providerID}, nil
		},
		create: func(_ context.Context, _ int64, _, _ string) error {
			t.Fatal("link already exists, must not be recreated")
			return nil
		},
	}

	u := usecase.NewGoogleUsecase(fetcher, users, links, pairCreator(), testLogger())
	identity, err := u.CompleteSignup(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.User.ID != 9 {
		t.Errorf("user ID = %d, want 9", identity.User.ID)
	}
}

func TestGoogleSignup_ExistingUnlinkedUser_GetsLinked(t *testing.T) {
	fetcher := staticProfile(&usecase.GoogleProfile{ID: "g-1", Email: "a@x.com"})
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return &domain.User{ID: 9, Email: "a@x.com"}, nil
		},
	}
	var linked bool
	links := &fakeLinkRepo{
		find: func(_ context.Context, _ int64, _, _ string) (*domain.ProviderLink, error) {
			return nil, domain.ErrProviderNotLinked
		},
		create: func(_ context.Context, userID int64, _, _ string) error {
			if userID != 9 {
				t.Errorf("link for user %d, want 9", userID)
			}
			linked = true
			return nil
		},
	}

	u := usecase.NewGoogleUsecase(fetcher, users, links, pairCreator(), testLogger())
	if _, err := u.CompleteSignup(context.Background(), "code-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !linked {
		t.Error("existing account was not linked to the provider identity")
	}
}
