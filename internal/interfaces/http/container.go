package http

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	groupUsecases "aegis/internal/application/group/usecases"
	"aegis/internal/application/provisioning"
	userUsecases "aegis/internal/application/user/usecases"
	"aegis/internal/bootstrap"
	"aegis/internal/domain/character"
	"aegis/internal/infrastructure/auth"
	"aegis/internal/infrastructure/config"
	"aegis/internal/interfaces/http/handlers"
	"aegis/internal/interfaces/http/middleware"
	"aegis/internal/shared/logger"
)

// Build assembles the router on top of the wired application core.
func Build(cfg *config.Config, app *bootstrap.App, db *gorm.DB, log logger.Interface) *gin.Engine {
	claims := character.NewClaimService(app.Ownerships, app.Events)
	hasher := auth.NewBcryptPasswordHasher(cfg.Auth.BcryptCost)
	credentials := auth.NewCredentialStore(db, hasher)
	jwtService := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)

	if err := handlers.RegisterValidations(); err != nil {
		log.Warnw("failed to register custom validations", "error", err)
	}

	h := Handlers{
		Auth: handlers.NewAuthHandler(
			app.Users,
			userUsecases.NewRegisterUserUseCase(app.Users, app.Profiles, log),
			credentials, jwtService, app.Enforcer, log,
		),
		User: handlers.NewUserHandler(
			app.Users, app.Profiles,
			userUsecases.NewClaimCharacterUseCase(claims, app.Profiles, app.Ownerships, app.Events, log),
			userUsecases.NewSetMainCharacterUseCase(app.Profiles, app.Ownerships, app.Events, log),
			app.Inbox, log,
		),
		Service: handlers.NewServiceHandler(
			app.Registry, app.Links,
			provisioning.NewActivateServiceUseCase(app.Users, app.Links, app.Registry, app.Enforcer, app.Dispatcher, log),
			provisioning.NewDeactivateServiceUseCase(app.Links, app.Registry, app.Notifier, log),
			log,
		),
		Admin: handlers.NewAdminHandler(
			userUsecases.NewActivateUserUseCase(app.Users, app.Events, log),
			userUsecases.NewDeactivateUserUseCase(app.Users, app.Events, log),
			provisioning.NewGrantServiceUseCase(app.Enforcer, log),
			provisioning.NewRevokeServiceUseCase(app.Enforcer, app.Dispatcher, log),
			groupUsecases.NewAddMemberUseCase(app.Groups, app.Memberships, app.Events, log),
			groupUsecases.NewRemoveMemberUseCase(app.Groups, app.Memberships, app.Events, log),
			app.StateDefinitions,
			app.Groups,
			app.Memberships,
			app.Dispatcher,
			provisioning.NewResyncSweep(app.Links, app.Registry, app.Calculator, app.Dispatcher, log),
			log,
		),
	}

	return NewRouter(h, middleware.NewAuthMiddleware(jwtService, log), log)
}
