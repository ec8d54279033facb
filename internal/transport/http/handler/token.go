package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookieName   = "refreshToken"
	refreshCookiePath   = "/auth/refresh"
	refreshCookieMaxAge = 30 * 24 * 60 * 60 // seconds
)

// extractSessionToken pulls the session token from the Authorization
// header. A "Bearer " prefix is optional — a bare token is accepted too.
func extractSessionToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// setRefreshCookie installs the rotated refresh token, scoped to the
// refresh path so no other endpoint ever sees it.
func setRefreshCookie(c *gin.Context, value string, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, value, refreshCookieMaxAge, refreshCookiePath, "", secure, true)
}

func clearRefreshCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, "", secure, true)
}
