package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sessionforge/sessionforge/internal/transport/http/handler"
	"github.com/sessionforge/sessionforge/internal/transport/http/middleware"
	"github.com/sessionforge/sessionforge/internal/usecase"

	sloggin "github.com/samber/slog-gin"
)

func NewRouter(logger *slog.Logger, authHandler *handler.AuthHandler, resetHandler *handler.ResetHandler, googleHandler *handler.GoogleHandler, authUsecase *usecase.AuthUsecase) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Security())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())

	auth := r.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/signup", authHandler.Signup)
	auth.GET("/inspect", authHandler.Inspect)
	auth.POST("/signout", authHandler.Signout)
	auth.POST("/refresh", authHandler.Refresh)

	auth.POST("/reset/request", resetHandler.Request)
	auth.POST("/reset/confirm", resetHandler.Confirm)

	google := auth.Group("/google")
	google.GET("/login", googleHandler.Login)
	google.GET("/signup", googleHandler.Signup)
	google.GET("/login/callback", googleHandler.LoginCallback)
	google.GET("/signup/callback", googleHandler.SignupCallback)

	// Session-guarded probe — what downstream services put in front of
	// their own protected routes.
	auth.GET("/whoami", middleware.SessionAuth(authUsecase), func(c *gin.Context) {
		userID, _ := c.Get("userID")
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})

	return r
}
