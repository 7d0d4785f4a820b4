// Package bootstrap wires the application core shared by the API server and
// the background worker: repositories, domain services, the event bus and the
// reconciliation dispatcher.
package bootstrap

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"aegis/internal/application/provisioning"
	"aegis/internal/application/triggers"
	"aegis/internal/domain/authstate"
	"aegis/internal/domain/character"
	"aegis/internal/domain/group"
	"aegis/internal/domain/permission"
	"aegis/internal/domain/shared/events"
	"aegis/internal/domain/sync"
	"aegis/internal/domain/user"
	"aegis/internal/infrastructure/adapters"
	"aegis/internal/infrastructure/affiliation"
	"aegis/internal/infrastructure/config"
	"aegis/internal/infrastructure/dispatcher"
	"aegis/internal/infrastructure/notify"
	infraPermission "aegis/internal/infrastructure/permission"
	"aegis/internal/infrastructure/repository"
	"aegis/internal/shared/logger"
)

// App holds the wired application core. The event bus and the dispatcher are
// constructed stopped; call Start and Stop around the process lifetime.
type App struct {
	Users            user.Repository
	Profiles         user.ProfileRepository
	Characters       character.Repository
	Ownerships       character.OwnershipRepository
	Groups           group.Repository
	Memberships      group.MembershipRepository
	Links            sync.LinkRepository
	Registry         sync.Registry
	Enforcer         permission.Enforcer
	Affiliations     *affiliation.Source
	States           *authstate.Service
	StateDefinitions authstate.Repository
	Calculator       *group.Calculator
	Notifier         notify.Notifier
	Inbox            *notify.InboxNotifier
	Pipeline         *provisioning.Pipeline
	Dispatcher       *dispatcher.Dispatcher
	Events           *events.InMemoryEventDispatcher
}

// New wires the core. The redis client may be nil; the affiliation cache and
// the cross-process in-flight guard then degrade to local-only behavior.
func New(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, modelPath string, log logger.Interface) (*App, error) {
	users := repository.NewUserRepository(db, log)
	profiles := repository.NewProfileRepository(db, log)
	characters := repository.NewCharacterRepository(db, log)
	ownerships := repository.NewOwnershipRepository(db, log)
	orgs := repository.NewOrganizationRepository(db)
	alliances := repository.NewAllianceRepository(db)
	states := repository.NewStateRepository(db, log)
	userStates := repository.NewUserStateRepository(db, log)
	groups := repository.NewGroupRepository(db, log)
	bindings := repository.NewBindingRepository(db)
	memberships := repository.NewMembershipRepository(db)
	rules := repository.NewAutoGroupRuleRepository(db, log)
	links := repository.NewAccountLinkRepository(db, log)

	eventBus := events.NewInMemoryEventDispatcher(1024, log)

	registry, err := adapters.LoadRegistry(cfg.Sync.RegistryPath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load service registry: %w", err)
	}

	enforcer, err := infraPermission.NewEnforcer(db, modelPath, log)
	if err != nil {
		return nil, err
	}
	if err := infraPermission.SeedDefaultPolicies(enforcer, log); err != nil {
		return nil, err
	}

	affClient := affiliation.NewClient(&cfg.Affiliation, redisClient, log)
	affSource := affiliation.NewSource(affClient, profiles, characters, orgs, alliances, eventBus, log)

	stateService := authstate.NewService(states, userStates, affSource, eventBus, log)
	calculator := group.NewCalculator(groups, bindings, memberships, rules, orgs, alliances, log)
	engine := sync.NewEngine(log)

	notifier := notify.NewMultiNotifier(log,
		notify.NewInboxNotifier(db),
		notify.NewEmailNotifier(&cfg.Email, users),
	)

	pipeline := provisioning.NewPipeline(
		users, stateService, affSource, calculator, engine,
		links, registry, enforcer, notifier, log,
	)
	escalator := provisioning.NewLinkEscalator(links, notifier, log)
	taskDispatcher := dispatcher.New(pipeline, escalator, registry, redisClient, &cfg.Sync, log)

	if err := triggers.Register(eventBus, taskDispatcher, ownerships, log); err != nil {
		return nil, fmt.Errorf("failed to register event triggers: %w", err)
	}

	return &App{
		Users:            users,
		Profiles:         profiles,
		Characters:       characters,
		Ownerships:       ownerships,
		Groups:           groups,
		Memberships:      memberships,
		Links:            links,
		Registry:         registry,
		Enforcer:         enforcer,
		Affiliations:     affSource,
		States:           stateService,
		StateDefinitions: states,
		Calculator:       calculator,
		Notifier:         notifier,
		Inbox:            notify.NewInboxNotifier(db),
		Pipeline:         pipeline,
		Dispatcher:       taskDispatcher,
		Events:           eventBus,
	}, nil
}

// Start brings up the event bus and the dispatcher workers.
func (a *App) Start() error {
	if err := a.Events.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	a.Dispatcher.Start()
	return nil
}

// Stop drains the dispatcher first so in-flight reconciliations can still
// publish events, then stops the bus.
func (a *App) Stop() error {
	a.Dispatcher.Stop()
	return a.Events.Stop()
}
