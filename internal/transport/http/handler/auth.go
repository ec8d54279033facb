package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sessionforge/sessionforge/internal/domain"
	"github.com/sessionforge/sessionforge/internal/usecase"
)

// authUsecaser is the subset of AuthUsecase the handler needs.
// Defined here (point of use) so tests can inject a fake.
type authUsecaser interface {
	Login(ctx context.Context, email, password string) (*usecase.Identity, error)
	Signup(ctx context.Context, email, password, name string) (*usecase.Identity, error)
	Refresh(ctx context.Context, refreshTokenValue string) (*domain.TokenPair, error)
	Signout(ctx context.Context, sessionTokenValue string) (int64, error)
	InspectSession(ctx context.Context, sessionTokenValue string) (*domain.Token, error)
}

type AuthHandler struct {
	authUsecase  authUsecaser
	logger       *slog.Logger
	secureCookie bool
}

func NewAuthHandler(authUsecase authUsecaser, secureCookie bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUsecase:  authUsecase,
		logger:       logger.With("component", "auth_handler"),
		secureCookie: secureCookie,
	}
}

type loginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signupRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=5"`
	Name     string `json:"name"     binding:"required"`
}

type identityResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	UserID       int64  `json:"userId"`
	Name         string `json:"name"`
}

type sessionResponse struct {
	UserID       int64     `json:"userId"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		// Same response for unknown email and wrong password.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidCredentials})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	h.respondIdentity(c, identity)
}

// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	identity, err := h.authUsecase.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errUserAlreadyExists})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "signup", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	h.respondIdentity(c, identity)
}

// GET /auth/inspect
func (h *AuthHandler) Inspect(c *gin.Context) {
	tokenValue := extractSessionToken(c)
	if tokenValue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingAuthHeader})
		return
	}

	token, err := h.authUsecase.InspectSession(c.Request.Context(), tokenValue)
	if err != nil {
		if errors.Is(err, domain.ErrTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errTokenInvalid})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "inspect session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, sessionResponse{
		UserID:       token.UserID,
		SessionToken: token.Value,
		ExpiresAt:    token.ExpiresAt,
		CreatedAt:    token.CreatedAt,
		UpdatedAt:    token.UpdatedAt,
	})
}

// POST /auth/signout
func (h *AuthHandler) Signout(c *gin.Context) {
	tokenValue := extractSessionToken(c)
	if tokenValue == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": errMissingAuthHeader})
		return
	}

	userID, err := h.authUsecase.Signout(c.Request.Context(), tokenValue)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": errSessionNotFound})
		case errors.Is(err, domain.ErrRevocationIncomplete):
			c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrRevocationIncomplete.Error()})
		default:
			h.logger.ErrorContext(c.Request.Context(), "signout", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	clearRefreshCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"userId": userID})
}

// POST /auth/refresh
// The refresh token travels in an httpOnly cookie scoped to this path.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshCookieName)
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
		return
	}

	pair, err := h.authUsecase.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": errRefreshInvalid})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "refresh", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	setRefreshCookie(c, pair.Refresh.Value, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{
		"sessionToken": pair.Session.Value,
		"refreshToken": pair.Refresh.Value,
	})
}

func (h *AuthHandler) respondIdentity(c *gin.Context, identity *usecase.Identity) {
	setRefreshCookie(c, identity.Pair.Refresh.Value, h.secureCookie)
	c.JSON(http.StatusOK, identityResponse{
		Token:        identity.Pair.Session.Value,
		RefreshToken: identity.Pair.Refresh.Value,
		UserID:       identity.User.ID,
		Name:         identity.User.Name,
	})
}
