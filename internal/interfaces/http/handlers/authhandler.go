// Package handlers contains the gin HTTP handlers for the API.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	userUsecases "aegis/internal/application/user/usecases"
	"aegis/internal/domain/permission"
	"aegis/internal/domain/user"
	"aegis/internal/infrastructure/auth"
	"aegis/internal/shared/logger"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Password string `json:"password" binding:"required,min=8,password"`
}

type AuthHandler struct {
	users       user.Repository
	register    *userUsecases.RegisterUserUseCase
	credentials *auth.CredentialStore
	jwt         *auth.JWTService
	enforcer    permission.Enforcer
	logger      logger.Interface
}

func NewAuthHandler(
	users user.Repository,
	register *userUsecases.RegisterUserUseCase,
	credentials *auth.CredentialStore,
	jwt *auth.JWTService,
	enforcer permission.Enforcer,
	log logger.Interface,
) *AuthHandler {
	return &AuthHandler{
		users:       users,
		register:    register,
		credentials: credentials,
		jwt:         jwt,
		enforcer:    enforcer,
		logger:      log.Named("auth_handler"),
	}
}

// Register creates a pending account with credentials and the member role.
// The account stays pending until an operator activates it.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.register.Execute(c.Request.Context(), req.Email, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorw("registration failed", "email", req.Email, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.credentials.SetPassword(c.Request.Context(), account.ID(), req.Password); err != nil {
		h.logger.Errorw("failed to store credentials", "user_id", account.ID(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if err := h.enforcer.AddRoleForUser(account.ID(), auth.RoleMember); err != nil {
		h.logger.Warnw("failed to assign member role", "user_id", account.ID(), "error", err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"user_id": account.ID(),
		"status":  account.Status().String(),
	})
}

// Login exchanges email and password for an access token. The token role
// comes from the caller's casbin roles.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Errorw("login lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if err := h.credentials.VerifyPassword(c.Request.Context(), account.ID(), req.Password); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	role := auth.RoleMember
	if roles, err := h.enforcer.GetRolesForUser(account.ID()); err == nil {
		for _, r := range roles {
			if r == auth.RoleAdmin {
				role = auth.RoleAdmin
				break
			}
		}
	}

	token, expiresIn, err := h.jwt.Generate(account.ID(), role)
	if err != nil {
		h.logger.Errorw("token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"expires_in":   expiresIn,
		"user_id":      account.ID(),
		"role":         role,
	})
}
