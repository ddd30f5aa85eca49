package utils

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrConflict       = errors.New("account already has a pending order")
	ErrNotFound       = errors.New("order not found")
	ErrInvalidState   = errors.New("order is not in a state that allows this transition")
	ErrAuthentication = errors.New("authentication failed")
	ErrForbidden      = errors.New("forbidden")
	ErrTransientStore = errors.New("store unavailable")
	ErrUpstream       = errors.New("payment provider unavailable")
)
