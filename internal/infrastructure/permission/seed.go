package permission

import (
	"fmt"

	"aegis/internal/shared/logger"
)

// SeedDefaultPolicies installs the baseline role policies. Individual service
// grants are added per user through the admin API and are not seeded here.
func SeedDefaultPolicies(e *Enforcer, log logger.Interface) error {
	policies := [][]string{
		{"admin", "users", "read"},
		{"admin", "users", "update"},
		{"admin", "users", "delete"},
		{"admin", "groups", "create"},
		{"admin", "groups", "read"},
		{"admin", "groups", "update"},
		{"admin", "groups", "delete"},
		{"admin", "rules", "create"},
		{"admin", "rules", "read"},
		{"admin", "rules", "update"},
		{"admin", "rules", "delete"},
		{"admin", "states", "read"},
		{"admin", "states", "update"},
		{"admin", "sync", "trigger"},
		{"admin", "grants", "create"},
		{"admin", "grants", "delete"},

		{"member", "notifications", "read"},
		{"member", "notifications", "update"},
		{"member", "services", "read"},
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, policy := range policies {
		if _, err := e.enforcer.AddPolicy(policy); err != nil {
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w",
				policy[0], policy[1], policy[2], err)
		}
	}

	if err := e.enforcer.SavePolicy(); err != nil {
		return fmt.Errorf("failed to save default policies: %w", err)
	}

	log.Infow("default policies seeded", "count", len(policies))
	return nil
}
