package authstate

import (
	"context"
	"time"
)

// Repository persists state definitions.
type Repository interface {
	Create(ctx context.Context, s *State) error
	Update(ctx context.Context, s *State) error
	GetByID(ctx context.Context, id uint) (*State, error)
	GetByName(ctx context.Context, name string) (*State, error)
	ListAll(ctx context.Context) ([]*State, error)
}

// UserState records which state a user currently holds.
type UserState struct {
	UserID    uint
	StateID   uint
	UpdatedAt time.Time
}

// UserStateRepository persists the per-user resolved state.
type UserStateRepository interface {
	GetCurrent(ctx context.Context, userID uint) (*UserState, error)
	SetCurrent(ctx context.Context, userID, stateID uint) error
	ListUserIDsByState(ctx context.Context, stateID uint) ([]uint, error)
}
