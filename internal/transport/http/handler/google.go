package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/usecase"
)

type googleUsecaser interface {
	AuthURL(mode usecase.FlowMode) string
	CompleteLogin(ctx context.Context, code string) (*usecase.Identity, error)
	CompleteSignup(ctx context.Context, code string) (*usecase.Identity, error)
}

type GoogleHandler struct {
	googleUsecase googleUsecaser
	logger        *slog.Logger
	frontendBase  string
	secureCookie  bool
}

func NewGoogleHandler(googleUsecase googleUsecaser, frontendBase string, secureCookie bool, logger *slog.Logger) *GoogleHandler {
	return &GoogleHandler{
		googleUsecase: googleUsecase,
		logger:        logger.With("component", "google_handler"),
		frontendBase:  frontendBase,
		secureCookie:  secureCookie,
	}
}

// GET /auth/google/login
func (h *GoogleHandler) Login(c *gin.Context) {
	c.Redirect(http.StatusFound, h.googleUsecase.AuthURL(usecase.FlowLogin))
}

// GET /auth/google/signup
func (h *GoogleHandler) Signup(c *gin.Context) {
	c.Redirect(http.StatusFound, h.googleUsecase.AuthURL(usecase.FlowSignup))
}

// GET /auth/google/login/callback
// An unknown or unlinked account lands on the frontend signup page.
func (h *GoogleHandler) LoginCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, h.frontendBase+"/auth/signup")
		return
	}

	identity, err := h.googleUsecase.CompleteLogin(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) ||
			errors.Is(err, domain.ErrProviderNotLinked) ||
			errors.Is(err, domain.ErrProfileIncomplete) {
			c.Redirect(http.StatusFound, h.frontendBase+"/auth/signup")
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "google login callback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	setRefreshCookie(c, identity.Pair.Refresh.Value, h.secureCookie)
	c.Redirect(http.StatusFound, fmt.Sprintf(
		"%s/auth/callback?token=%s&userId=%d",
		h.frontendBase, identity.Pair.Session.Value, identity.User.ID,
	))
}

// GET /auth/google/signup/callback
func (h *GoogleHandler) SignupCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}

	identity, err := h.googleUsecase.CompleteSignup(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrProfileIncomplete) {
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrProfileIncomplete.Error()})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "google signup callback", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	setRefreshCookie(c, identity.Pair.Refresh.Value, h.secureCookie)
	c.Redirect(http.StatusFound, fmt.Sprintf(
		"%s/auth/callback?token=%s",
		h.frontendBase, identity.Pair.Session.Value,
	))
}
