// Package http assembles the gin router for the API server.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"aegis/internal/interfaces/http/handlers"
	"aegis/internal/interfaces/http/middleware"
	"aegis/internal/shared/logger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Service *handlers.ServiceHandler
	Admin   *handlers.AdminHandler
}

// NewRouter builds the engine with all routes and middleware attached.
func NewRouter(h Handlers, authMW *middleware.AuthMiddleware, log logger.Interface) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(log.Named("http")))

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("", authMW.RequireAuth())
	{
		authed.GET("/me", h.User.Me)
		authed.PUT("/me/main-character", h.User.SetMainCharacter)
		authed.GET("/me/notifications", h.User.Notifications)
		authed.POST("/me/notifications/:id/read", h.User.MarkNotificationRead)
		authed.POST("/characters/claim", h.User.ClaimCharacter)

		authed.GET("/services", h.Service.List)
		authed.POST("/services/:service/activate", h.Service.Activate)
		authed.DELETE("/services/:service", h.Service.Deactivate)
	}

	admin := authed.Group("/admin", authMW.RequireAdmin())
	{
		admin.POST("/users/:id/activate", h.Admin.ActivateUser)
		admin.POST("/users/:id/deactivate", h.Admin.DeactivateUser)
		admin.PUT("/users/:id/grants/:service", h.Admin.GrantService)
		admin.DELETE("/users/:id/grants/:service", h.Admin.RevokeService)
		admin.POST("/users/:id/resync", h.Admin.ResyncUser)
		admin.GET("/states", h.Admin.ListStates)
		admin.GET("/groups/:id/members", h.Admin.ListGroupMembers)
		admin.PUT("/groups/:id/members/:user_id", h.Admin.AddGroupMember)
		admin.DELETE("/groups/:id/members/:user_id", h.Admin.RemoveGroupMember)
		admin.POST("/services/:service/resync", h.Admin.ResyncService)
		admin.POST("/resync", h.Admin.ResyncAll)
	}

	return engine
}

func requestLogger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
