package group

import "errors"

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrRuleNotFound  = errors.New("auto group rule not found")
	ErrNameTaken     = errors.New("group name already taken by a different source")
)
