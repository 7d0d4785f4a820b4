// Package usecases contains the user-facing application operations around
// accounts, characters and group membership.
package usecases

import (
	"context"
	"errors"
	"fmt"

	domainUser "aegis/internal/domain/user"
	"aegis/internal/shared/logger"
)

// RegisterUserUseCase creates a user in pending status together with an empty
// profile. The user holds no main character until one is claimed.
type RegisterUserUseCase struct {
	users    domainUser.Repository
	profiles domainUser.ProfileRepository
	logger   logger.Interface
}

func NewRegisterUserUseCase(
	users domainUser.Repository,
	profiles domainUser.ProfileRepository,
	log logger.Interface,
) *RegisterUserUseCase {
	return &RegisterUserUseCase{
		users:    users,
		profiles: profiles,
		logger:   log.Named("register_user"),
	}
}

func (uc *RegisterUserUseCase) Execute(ctx context.Context, email, name string) (*domainUser.User, error) {
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, domainUser.ErrEmailTaken
	}

	account, err := domainUser.NewUser(email, name)
	if err != nil {
		return nil, err
	}
	if err := uc.users.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	profile, err := domainUser.NewProfile(account.ID())
	if err != nil {
		return nil, err
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	uc.logger.Infow("user registered", "user_id", account.ID(), "email", account.Email())
	return account, nil
}
