package user

import "errors"

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrNotOwned        = errors.New("character is not owned by this user")
	ErrEmailTaken      = errors.New("email already registered")
)
