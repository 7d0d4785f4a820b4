package user

import "context"

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter ListFilter) ([]*User, int64, error)
}

// ProfileRepository persists user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p *Profile) error
	Update(ctx context.Context, p *Profile) error
	GetByUserID(ctx context.Context, userID uint) (*Profile, error)
}

// ListFilter carries pagination and filtering for user listings.
type ListFilter struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Status   string `json:"status,omitempty"`
	OrderBy  string `json:"order_by,omitempty"`
	Order    string `json:"order,omitempty"`
}
