// Package google implements the OAuth side of the identity provider
// bridge: authorization URLs, code exchange, and userinfo retrieval.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/usecase"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type Client struct {
	clientID     string
	clientSecret string
	// Mode-specific callbacks: the redirect used for the exchange must
	// match the one the authorization URL was built with.
	loginRedirect  string
	signupRedirect string
}

// NewClient builds a fetcher whose callbacks live under apiBase
// (e.g. https://api.example.com → …/auth/google/login/callback).
func NewClient(clientID, clientSecret, apiBase string) *Client {
	return &Client{
		clientID:       clientID,
		clientSecret:   clientSecret,
		loginRedirect:  apiBase + "/auth/google/login/callback",
		signupRedirect: apiBase + "/auth/google/signup/callback",
	}
}

func (c *Client) config(mode usecase.FlowMode) *oauth2.Config {
	redirect := c.loginRedirect
	if mode == usecase.FlowSignup {
		redirect = c.signupRedirect
	}
	return &oauth2.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		RedirectURL:  redirect,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     googleoauth.Endpoint,
	}
}

func (c *Client) AuthURL(mode usecase.FlowMode) string {
	return c.config(mode).AuthCodeURL(
		string(mode),
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

func (c *Client) FetchProfile(ctx context.Context, code string, mode usecase.FlowMode) (*usecase.GoogleProfile, error) {
	cfg := c.config(mode)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := cfg.Client(ctx, token).Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" {
		return nil, domain.ErrProfileIncomplete
	}

	return &usecase.GoogleProfile{ID: info.ID, Email: info.Email, Name: info.Name}, nil
}
