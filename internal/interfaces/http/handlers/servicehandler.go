package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"aegis/internal/application/provisioning"
	"aegis/internal/domain/sync"
	"aegis/internal/interfaces/http/middleware"
	apperrors "aegis/internal/shared/errors"
	"aegis/internal/shared/logger"
)

// ServiceHandler exposes a user's external service accounts: listing,
// activation and deactivation. Activation is asynchronous: the response is
// always a pending link, provisioning happens in the worker.
type ServiceHandler struct {
	registry   sync.Registry
	links      sync.LinkRepository
	activate   *provisioning.ActivateServiceUseCase
	deactivate *provisioning.DeactivateServiceUseCase
	logger     logger.Interface
}

func NewServiceHandler(
	registry sync.Registry,
	links sync.LinkRepository,
	activate *provisioning.ActivateServiceUseCase,
	deactivate *provisioning.DeactivateServiceUseCase,
	log logger.Interface,
) *ServiceHandler {
	return &ServiceHandler{
		registry:   registry,
		links:      links,
		activate:   activate,
		deactivate: deactivate,
		logger:     log.Named("service_handler"),
	}
}

type serviceView struct {
	Service      string `json:"service"`
	Status       string `json:"status"`
	RemoteName   string `json:"remote_name,omitempty"`
	LastSyncedAt string `json:"last_synced_at,omitempty"`
}

// List returns every configured service with the caller's link status.
func (h *ServiceHandler) List(c *gin.Context) {
	userID := middleware.CallerID(c)

	links, err := h.links.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Errorw("failed to list links", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	byService := make(map[string]*sync.AccountLink, len(links))
	for _, l := range links {
		byService[l.Service()] = l
	}

	out := make([]serviceView, 0, len(h.registry.Names()))
	for _, name := range h.registry.Names() {
		view := serviceView{Service: name, Status: "inactive"}
		if l, ok := byService[name]; ok {
			view.Status = string(l.Status())
			view.RemoteName = l.RemoteName()
			if t := l.LastSyncedAt(); t != nil {
				view.LastSyncedAt = t.Format("2006-01-02T15:04:05Z07:00")
			}
		}
		out = append(out, view)
	}
	c.JSON(http.StatusOK, gin.H{"services": out})
}

// Activate requests an account on the named service.
func (h *ServiceHandler) Activate(c *gin.Context) {
	userID := middleware.CallerID(c)
	service := c.Param("service")

	link, err := h.activate.Execute(c.Request.Context(), userID, service)
	if err != nil {
		switch {
		case errors.Is(err, provisioning.ErrServiceUnknown):
			respondError(c, apperrors.NewNotFoundError(err.Error()))
		case errors.Is(err, provisioning.ErrServiceNotGranted),
			errors.Is(err, provisioning.ErrUserNotActive):
			respondError(c, apperrors.NewForbiddenError(err.Error()))
		case errors.Is(err, provisioning.ErrAlreadyActivated):
			respondError(c, apperrors.NewConflictError(err.Error()))
		default:
			h.logger.Errorw("activation failed", "user_id", userID, "service", service, "error", err)
			respondError(c, err)
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"service": service,
		"status":  string(link.Status()),
	})
}

// Deactivate removes the caller's account on the named service.
func (h *ServiceHandler) Deactivate(c *gin.Context) {
	userID := middleware.CallerID(c)
	service := c.Param("service")

	if err := h.deactivate.Execute(c.Request.Context(), userID, service); err != nil {
		switch {
		case errors.Is(err, provisioning.ErrServiceUnknown),
			errors.Is(err, provisioning.ErrServiceNotEnabled):
			respondError(c, apperrors.NewNotFoundError(err.Error()))
		default:
			h.logger.Errorw("deactivation failed", "user_id", userID, "service", service, "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "failed to disable remote account"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"service": service, "status": "deactivated"})
}
