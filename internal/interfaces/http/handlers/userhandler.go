package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	userUsecases "aegis/internal/application/user/usecases"
	"aegis/internal/domain/character"
	"aegis/internal/domain/user"
	"aegis/internal/infrastructure/notify"
	"aegis/internal/interfaces/http/middleware"
	"aegis/internal/shared/logger"
)

type claimCharacterRequest struct {
	CharacterID int64  `json:"character_id" binding:"required"`
	Proof       string `json:"proof" binding:"required,oneof=manual token sso"`
}

type setMainCharacterRequest struct {
	CharacterID int64 `json:"character_id" binding:"required"`
}

// UserHandler serves the caller's own account: profile, character claims,
// main character selection and the notification inbox.
type UserHandler struct {
	users    user.Repository
	profiles user.ProfileRepository
	claim    *userUsecases.ClaimCharacterUseCase
	setMain  *userUsecases.SetMainCharacterUseCase
	inbox    *notify.InboxNotifier
	logger   logger.Interface
}

func NewUserHandler(
	users user.Repository,
	profiles user.ProfileRepository,
	claim *userUsecases.ClaimCharacterUseCase,
	setMain *userUsecases.SetMainCharacterUseCase,
	inbox *notify.InboxNotifier,
	log logger.Interface,
) *UserHandler {
	return &UserHandler{
		users:    users,
		profiles: profiles,
		claim:    claim,
		setMain:  setMain,
		inbox:    inbox,
		logger:   log.Named("user_handler"),
	}
}

// Me returns the caller's account and profile.
func (h *UserHandler) Me(c *gin.Context) {
	userID := middleware.CallerID(c)

	account, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	resp := gin.H{
		"id":     account.ID(),
		"email":  account.Email(),
		"name":   account.Name(),
		"status": account.Status().String(),
	}
	if profile, err := h.profiles.GetByUserID(c.Request.Context(), userID); err == nil {
		resp["main_character_id"] = profile.MainCharacterID()
	}
	c.JSON(http.StatusOK, resp)
}

// ClaimCharacter records the caller as owner of a character.
func (h *UserHandler) ClaimCharacter(c *gin.Context) {
	userID := middleware.CallerID(c)

	var req claimCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ownership, err := h.claim.Execute(c.Request.Context(), userID, req.CharacterID, character.OwnershipProof(req.Proof))
	if err != nil {
		if errors.Is(err, character.ErrWeakerProof) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorw("character claim failed", "user_id", userID, "character_id", req.CharacterID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"character_id": ownership.CharacterID(),
		"proof":        string(ownership.Proof()),
	})
}

// SetMainCharacter changes which owned character anchors state resolution.
func (h *UserHandler) SetMainCharacter(c *gin.Context) {
	userID := middleware.CallerID(c)

	var req setMainCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.setMain.Execute(c.Request.Context(), userID, req.CharacterID); err != nil {
		if errors.Is(err, user.ErrNotOwned) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		h.logger.Errorw("set main character failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"main_character_id": req.CharacterID})
}

// Notifications lists the caller's unread notifications.
func (h *UserHandler) Notifications(c *gin.Context) {
	userID := middleware.CallerID(c)

	notifications, err := h.inbox.ListUnread(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list notifications", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, gin.H{
			"id":         n.ID,
			"subject":    n.Subject,
			"body":       n.Body,
			"created_at": n.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

// MarkNotificationRead marks one notification as read.
func (h *UserHandler) MarkNotificationRead(c *gin.Context) {
	userID := middleware.CallerID(c)

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	if err := h.inbox.MarkRead(c.Request.Context(), userID, uint(notificationID)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
