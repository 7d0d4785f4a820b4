// Package middleware contains the gin middleware for the API surface.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"aegis/internal/infrastructure/auth"
	"aegis/internal/shared/constants"
	"aegis/internal/shared/logger"
)

type AuthMiddleware struct {
	jwt    *auth.JWTService
	logger logger.Interface
}

func NewAuthMiddleware(jwt *auth.JWTService, log logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, logger: log.Named("auth")}
}

// RequireAuth validates the bearer token and stores the caller's identity in
// the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := m.jwt.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(constants.ContextKeyUserID, claims.UserID)
		c.Set(constants.ContextKeyRole, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
// Must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(constants.ContextKeyRole) != auth.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated user ID from the request context.
func CallerID(c *gin.Context) uint {
	if v, ok := c.Get(constants.ContextKeyUserID); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
