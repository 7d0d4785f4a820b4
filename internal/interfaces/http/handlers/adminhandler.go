package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	groupUsecases "aegis/internal/application/group/usecases"
	"aegis/internal/application/provisioning"
	userUsecases "aegis/internal/application/user/usecases"
	"aegis/internal/domain/authstate"
	"aegis/internal/domain/group"
	"aegis/internal/shared/logger"
)

// AdminHandler exposes operator actions: user lifecycle, service grants,
// manual group membership, state and membership reads and forced
// resynchronization.
type AdminHandler struct {
	activateUser   *userUsecases.ActivateUserUseCase
	deactivateUser *userUsecases.DeactivateUserUseCase
	grant          *provisioning.GrantServiceUseCase
	revoke         *provisioning.RevokeServiceUseCase
	addMember      *groupUsecases.AddMemberUseCase
	removeMember   *groupUsecases.RemoveMemberUseCase
	states         authstate.Repository
	groups         group.Repository
	memberships    group.MembershipRepository
	scheduler      provisioning.Scheduler
	sweep          *provisioning.ResyncSweep
	logger         logger.Interface
}

func NewAdminHandler(
	activateUser *userUsecases.ActivateUserUseCase,
	deactivateUser *userUsecases.DeactivateUserUseCase,
	grant *provisioning.GrantServiceUseCase,
	revoke *provisioning.RevokeServiceUseCase,
	addMember *groupUsecases.AddMemberUseCase,
	removeMember *groupUsecases.RemoveMemberUseCase,
	states authstate.Repository,
	groups group.Repository,
	memberships group.MembershipRepository,
	scheduler provisioning.Scheduler,
	sweep *provisioning.ResyncSweep,
	log logger.Interface,
) *AdminHandler {
	return &AdminHandler{
		activateUser:   activateUser,
		deactivateUser: deactivateUser,
		grant:          grant,
		revoke:         revoke,
		addMember:      addMember,
		removeMember:   removeMember,
		states:         states,
		groups:         groups,
		memberships:    memberships,
		scheduler:      scheduler,
		sweep:          sweep,
		logger:         log.Named("admin_handler"),
	}
}

func pathUint(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}

func (h *AdminHandler) ActivateUser(c *gin.Context) {
	userID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	if err := h.activateUser.Execute(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "status": "active"})
}

func (h *AdminHandler) DeactivateUser(c *gin.Context) {
	userID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	if err := h.deactivateUser.Execute(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "status": "disabled"})
}

func (h *AdminHandler) GrantService(c *gin.Context) {
	userID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	service := c.Param("service")
	if err := h.grant.Execute(c.Request.Context(), userID, service); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "service": service, "granted": true})
}

func (h *AdminHandler) RevokeService(c *gin.Context) {
	userID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	service := c.Param("service")
	if err := h.revoke.Execute(c.Request.Context(), userID, service); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": userID, "service": service, "granted": false})
}

func (h *AdminHandler) AddGroupMember(c *gin.Context) {
	groupID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	userID, ok := pathUint(c, "user_id")
	if !ok {
		return
	}
	if err := h.addMember.Execute(c.Request.Context(), groupID, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) RemoveGroupMember(c *gin.Context) {
	groupID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	userID, ok := pathUint(c, "user_id")
	if !ok {
		return
	}
	if err := h.removeMember.Execute(c.Request.Context(), groupID, userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListStates returns every configured state definition.
func (h *AdminHandler) ListStates(c *gin.Context) {
	states, err := h.states.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Errorw("failed to list states", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]gin.H, 0, len(states))
	for _, s := range states {
		out = append(out, gin.H{
			"id":               s.ID(),
			"name":             s.Name(),
			"priority":         s.Priority(),
			"public":           s.Public(),
			"character_ids":    s.CharacterIDs(),
			"organization_ids": s.OrganizationIDs(),
			"alliance_ids":     s.AllianceIDs(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"states": out})
}

// ListGroupMembers returns the direct member IDs of one group.
func (h *AdminHandler) ListGroupMembers(c *gin.Context) {
	groupID, ok := pathUint(c, "id")
	if !ok {
		return
	}

	g, err := h.groups.GetByID(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	userIDs, err := h.memberships.ListUserIDsByGroup(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Errorw("failed to list group members", "group_id", groupID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"group_id": g.ID(),
		"name":     g.Name(),
		"source":   string(g.Source()),
		"user_ids": userIDs,
	})
}

// ResyncUser forces a reconciliation pass on every service for one user.
func (h *AdminHandler) ResyncUser(c *gin.Context) {
	userID, ok := pathUint(c, "id")
	if !ok {
		return
	}
	h.scheduler.ScheduleAll(userID)
	c.JSON(http.StatusAccepted, gin.H{"user_id": userID, "status": "scheduled"})
}

// ResyncService schedules a reconciliation for every account link on one
// service.
func (h *AdminHandler) ResyncService(c *gin.Context) {
	service := c.Param("service")
	count, err := h.sweep.ExecuteService(c.Request.Context(), service)
	if err != nil {
		if errors.Is(err, provisioning.ErrServiceUnknown) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown service"})
			return
		}
		h.logger.Errorw("service resync failed", "service", service, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resync failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"service": service, "scheduled_links": count})
}

// ResyncAll schedules the full sweep immediately.
func (h *AdminHandler) ResyncAll(c *gin.Context) {
	count, err := h.sweep.Execute(c.Request.Context())
	if err != nil {
		h.logger.Errorw("manual sweep failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"scheduled_tasks": count})
}
