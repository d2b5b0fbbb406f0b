package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownContent = errors.New("unknown content type")
	ErrInvalidContent = errors.New("invalid content")
	ErrNotConnected   = errors.New("not connected")
	ErrNoRecipe       = errors.New("no recipe to save")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNetwork        = errors.New("network error")
)
