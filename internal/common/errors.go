// Package common defines shared constants and sentinel errors used across
// the Daily Grace client, its local stores and the hosted backend adapters.
// Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorUnavailable  = errors.New("cloud backend unavailable")

	// Validation / record-specific errors.
	ErrorValidation    = errors.New("validation error")
	ErrDuplicateName   = errors.New("duplicate category name")
	ErrCategoryLimit   = errors.New("custom category limit reached")
	ErrBuiltinCategory = errors.New("built-in category is read-only")

	// Account errors.
	ErrorAlreadyExists        = errors.New("already exists")
	ErrorInvalidLoginPassword = errors.New("invalid email/password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
