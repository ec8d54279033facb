package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/password"
	"github.com/sessionforge/sessionforge/internal/usecase"
)

type fakeSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	return s.send(ctx, to, subject, body)
}

const frontendBase = "http://localhost:3000"

func newResetToken(userID int64, ttl time.Duration) *domain.Token {
	now := time.Now()
	return &domain.Token{
		Value:     uuid.NewString(),
		UserID:    userID,
		Kind:      domain.KindReset,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

func TestRequestReset_MailsLink(t *testing.T) {
	user := &domain.User{ID: 5, Email: "a@x.com", Name: "A"}
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	var issuedTTL time.Duration
	tokens := &fakeTokenRepo{
		createResetToken: func(_ context.Context, userID int64, ttl time.Duration) (*domain.Token, error) {
			issuedTTL = ttl
			return newResetToken(userID, ttl), nil
		},
	}
	var mailedTo, mailedBody string
	sender := &fakeSender{
		send: func(_ context.Context, to, _, body string) error {
			mailedTo, mailedBody = to, body
			return nil
		},
	}

	u := usecase.NewResetUsecase(users, tokens, sender, frontendBase, testLogger())
	req, err := u.RequestReset(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if issuedTTL != 15*time.Minute {
		t.Errorf("reset TTL = %v, want 15m", issuedTTL)
	}
	wantLink := frontendBase + "/auth/reset?token=" + req.Token
	if req.Link != wantLink {
		t.Errorf("link = %q, want %q", req.Link, wantLink)
	}
	if mailedTo != user.Email {
		t.Errorf("mailed to %q, want %q", mailedTo, user.Email)
	}
	if !strings.Contains(mailedBody, req.Link) {
		t.Errorf("mail body does not contain the reset link: %q", mailedBody)
	}
}

func TestRequestReset_UnknownEmail_Fails(t *testing.T) {
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	sender := &fakeSender{send: func(_ context.Context, _, _, _ string) error {
		t.Fatal("no mail should be sent for an unknown email")
		return nil
	}}

	u := usecase.NewResetUsecase(users, &fakeTokenRepo{}, sender, frontendBase, testLogger())
	_, err := u.RequestReset(context.Background(), "nobody@x.com")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("want ErrUserNotFound, got %v", err)
	}
}

func TestRequestReset_MailFailure_StillSucceeds(t *testing.T) {
	user := &domain.User{ID: 5, Email: "a@x.com"}
	users := &fakeUserRepo{
		findByEmail: func(_ context.Context, _ string) (*domain.User, error) { return user, nil },
	}
	tokens := &fakeTokenRepo{
		createResetToken: func(_ context.Context, userID int64, ttl time.Duration) (*domain.Token, error) {
			return newResetToken(userID, ttl), nil
		},
	}
	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error { return errors.New("smtp down") },
	}

	u := usecase.NewResetUsecase(users, tokens, sender, frontendBase, testLogger())
	req, err := u.RequestReset(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("mail failure must not fail the request, got %v", err)
	}
	if req.Token == "" {
		t.Error("token missing from response")
	}
}

func TestConfirmReset_InstallsHashAndRevokesEverything(t *testing.T) {
	const userID int64 = 5
	var installedHash string
	var updated, revoked bool
	users := &fakeUserRepo{
		updatePasswordHash: func(_ context.Context, uid int64, hash string) error {
			if uid != userID {
				t.Errorf("update for user %d, want %d", uid, userID)
			}
			installedHash = hash
			updated = true
			return nil
		},
	}
	tokens := &fakeTokenRepo{
		consumeResetToken: func(_ context.Context, _ string) (int64, error) { return userID, nil },
		revokeAllForUser: func(_ context.Context, uid int64) error {
			if !updated {
				t.Error("tokens revoked before the new password was installed")
			}
			if uid != userID {
				t.Errorf("revoke for user %d, want %d", uid, userID)
			}
			revoked = true
			return nil
		},
	}

	u := usecase.NewResetUsecase(users, tokens, &fakeSender{}, frontendBase, testLogger())
	got, err := u.ConfirmReset(context.Background(), "reset-1", "NewP@ss")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Errorf("returned user %d, want %d", got, userID)
	}
	if !revoked {
		t.Error("outstanding tokens were not revoked")
	}
	ok, err := password.Verify("NewP@ss", installedHash)
	if err != nil || !ok {
		t.Errorf("installed hash does not verify new password (ok=%v err=%v)", ok, err)
	}
}

func TestConfirmReset_UnknownOrExpiredToken_Fails(t *testing.T) {
	tokens := &fakeTokenRepo{
		consumeResetToken: func(_ context.Context, _ string) (int64, error) {
			return 0, domain.ErrTokenNotFound
		},
	}

	u := usecase.NewResetUsecase(&fakeUserRepo{}, tokens, &fakeSender{}, frontendBase, testLogger())
	_, err := u.ConfirmReset(context.Background(), "stale", "NewP@ss")
	if !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Errorf("want ErrResetTokenInvalid, got %v", err)
	}
}

func TestConfirmReset_TokenIsSingleUse(t *testing.T) {
	live := map[string]int64{"reset-1": 5}
	tokens := &fakeTokenRepo{
		consumeResetToken: func(_ context.Context, value string) (int64, error) {
			uid, ok := live[value]
			if !ok {
				return 0, domain.ErrTokenNotFound
			}
			delete(live, value)
			return uid, nil
		},
		revokeAllForUser: func(_ context.Context, _ int64) error { return nil },
	}
	users := &fakeUserRepo{
		updatePasswordHash: func(_ context.Context, _ int64, _ string) error { return nil },
	}

	u := usecase.NewResetUsecase(users, tokens, &fakeSender{}, frontendBase, testLogger())
	if _, err := u.ConfirmReset(context.Background(), "reset-1", "First"); err != nil {
		t.Fatalf("first confirm failed: %v", err)
	}
	if _, err := u.ConfirmReset(context.Background(), "reset-1", "Second"); !errors.Is(err, domain.ErrResetTokenInvalid) {
		t.Errorf("second confirm: want ErrResetTokenInvalid, got %v", err)
	}
}
