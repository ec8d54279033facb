package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sessionforge/sessionforge/internal/domain"
)

const errUnauthorized = "Unauthorized"

// sessionInspector is the slice of AuthUsecase the guard needs.
type sessionInspector interface {
	InspectSession(ctx context.Context, sessionTokenValue string) (*domain.Token, error)
}

// SessionAuth validates the bearer session token against the store and
// sets "userID" in the gin context. Expired tokens are rejected exactly
// like unknown ones.
func SessionAuth(sessions sessionInspector) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenValue := bearerToken(c.GetHeader("Authorization"))
		if tokenValue == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		token, err := sessions.InspectSession(c.Request.Context(), tokenValue)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthorized})
			return
		}

		c.Set("userID", token.UserID)
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
