package migration

import (
	"fmt"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"aegis/internal/shared/constants"
	"aegis/internal/shared/logger"
)

// Manager picks and runs a migration strategy for the current environment.
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

func NewManager(environment string, log logger.Interface) *Manager {
	var strategy Strategy
	switch strings.ToLower(environment) {
	case constants.EnvTest, constants.EnvProduction:
		scriptsPath, _ := filepath.Abs("./internal/infrastructure/migration/scripts")
		strategy = NewGolangMigrateStrategy(scriptsPath, log)
	default:
		strategy = NewGormAutoMigrateStrategy(log)
	}

	return &Manager{
		strategy: strategy,
		logger:   log.Named("migration"),
	}
}

func NewManagerWithStrategy(strategy Strategy, log logger.Interface) *Manager {
	return &Manager{strategy: strategy, logger: log.Named("migration")}
}

func (m *Manager) Migrate(db *gorm.DB, models ...interface{}) error {
	m.logger.Infow("starting database migration",
		"strategy", m.strategy.GetName(),
		"models", len(models),
	)

	if err := m.strategy.Migrate(db, models...); err != nil {
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed", "strategy", m.strategy.GetName())
	return nil
}
