package authstate

import "errors"

var (
	ErrStateNotFound      = errors.New("state not found")
	ErrUserStateNotFound  = errors.New("user state not recorded")
	ErrNoStatesConfigured = errors.New("no states configured")
)
