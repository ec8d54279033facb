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

type resetUsecaser interface {
	RequestReset(ctx context.Context, email string) (*usecase.ResetRequest, error)
	ConfirmReset(ctx context.Context, tokenValue, newPassword string) (int64, error)
}

type ResetHandler struct {
	resetUsecase resetUsecaser
	logger       *slog.Logger
	// exposeLink echoes the token and link in the response body — a local
	// debug affordance, refused by config in production.
	exposeLink  bool
	redirectURL string
}

func NewResetHandler(resetUsecase resetUsecaser, exposeLink bool, redirectURL string, logger *slog.Logger) *ResetHandler {
	return &ResetHandler{
		resetUsecase: resetUsecase,
		logger:       logger.With("component", "reset_handler"),
		exposeLink:   exposeLink,
		redirectURL:  redirectURL,
	}
}

type resetRequestBody struct {
	Email string `json:"email" binding:"required,email"`
}

type resetConfirmBody struct {
	Token    string `json:"token"    binding:"required"`
	Password string `json:"password" binding:"required,min=5"`
}

type resetRequestResponse struct {
	ExpiresAt time.Time `json:"expiresAt"`
	Token     string    `json:"token,omitempty"`
	ResetLink string    `json:"resetLink,omitempty"`
}

// POST /auth/reset/request
func (h *ResetHandler) Request(c *gin.Context) {
	var req resetRequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.resetUsecase.RequestReset(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errUserNotFound})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "request reset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := resetRequestResponse{ExpiresAt: result.ExpiresAt}
	if h.exposeLink {
		resp.Token = result.Token
		resp.ResetLink = result.Link
	}
	c.JSON(http.StatusOK, resp)
}

// POST /auth/reset/confirm
func (h *ResetHandler) Confirm(c *gin.Context) {
	var req resetConfirmBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := h.resetUsecase.ConfirmReset(c.Request.Context(), req.Token, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrResetTokenInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errResetInvalid})
			return
		}
		h.logger.ErrorContext(c.Request.Context(), "confirm reset", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":   userID,
		"redirect": h.redirectURL,
	})
}
