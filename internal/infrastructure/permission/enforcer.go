// Package permission implements authorization with casbin backed by the
// application database.
package permission

import (
	"fmt"
	stdsync "sync"

	"github.com/casbin/casbin/v2"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"aegis/internal/domain/permission"
	"aegis/internal/shared/logger"
)

var _ permission.Enforcer = (*Enforcer)(nil)

// ActionUse is the action checked before provisioning a service account.
const ActionUse = "use"

type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       stdsync.RWMutex
	logger   logger.Interface
}

func NewEnforcer(db *gorm.DB, modelPath string, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(modelPath, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	return &Enforcer{
		enforcer: enforcer,
		logger:   log.Named("permission"),
	}, nil
}

func subject(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func serviceResource(service string) string {
	return "service:" + service
}

func (e *Enforcer) Enforce(userID uint, resource string, action string) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(subject(userID), resource, action)
	if err != nil {
		e.logger.Errorw("permission check failed", "error", err, "user_id", userID, "resource", resource, "action", action)
		return false, fmt.Errorf("permission check failed: %w", err)
	}
	return allowed, nil
}

func (e *Enforcer) CanUseService(userID uint, service string) (bool, error) {
	return e.Enforce(userID, serviceResource(service), ActionUse)
}

func (e *Enforcer) GrantServiceAccess(userID uint, service string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.AddPolicy(subject(userID), serviceResource(service), ActionUse)
	if err != nil {
		return fmt.Errorf("failed to grant service access: %w", err)
	}
	return e.enforcer.SavePolicy()
}

func (e *Enforcer) RevokeServiceAccess(userID uint, service string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.RemovePolicy(subject(userID), serviceResource(service), ActionUse)
	if err != nil {
		return fmt.Errorf("failed to revoke service access: %w", err)
	}
	return e.enforcer.SavePolicy()
}

func (e *Enforcer) AddRoleForUser(userID uint, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.AddRoleForUser(subject(userID), role)
	if err != nil {
		e.logger.Errorw("failed to add role for user", "error", err, "user_id", userID, "role", role)
		return fmt.Errorf("failed to add role for user: %w", err)
	}
	return e.enforcer.SavePolicy()
}

func (e *Enforcer) DeleteRoleForUser(userID uint, role string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, err := e.enforcer.DeleteRoleForUser(subject(userID), role)
	if err != nil {
		e.logger.Errorw("failed to delete role for user", "error", err, "user_id", userID, "role", role)
		return fmt.Errorf("failed to delete role for user: %w", err)
	}
	return e.enforcer.SavePolicy()
}

func (e *Enforcer) GetRolesForUser(userID uint) ([]string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	roles, err := e.enforcer.GetRolesForUser(subject(userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get roles for user: %w", err)
	}
	return roles, nil
}

func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	e.logger.Infow("policy reloaded")
	return nil
}
