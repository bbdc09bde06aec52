// Package common defines shared constants and sentinel errors used across
// gophdrive layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrNotFoundOrExpired is returned for share ids that are unknown or past
	// their expiration. The two cases are never told apart.
	ErrNotFoundOrExpired = errors.New("shared folder not found or expired")

	// Upload errors.
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrStorage         = errors.New("storage error")

	// ErrValidation marks malformed input such as an empty folder name.
	ErrValidation = errors.New("validation error")

	// Auth errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
