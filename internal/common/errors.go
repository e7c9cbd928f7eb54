// Package common defines sentinel errors and small helpers shared by the
// repositories, services and transport layers. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Domain errors surfaced to API clients.
	ErrUserExists          = errors.New("user already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleExists          = errors.New("role with this name already exists")
	ErrRoleAssignment      = errors.New("role assignment failed")
	ErrInvalidPermission   = errors.New("invalid permission")
	ErrPostNotFound        = errors.New("post not found")
	ErrResetTokenNotFound  = errors.New("reset token not found or expired")
	ErrMasterDataNotFound  = errors.New("master data not found")
	ErrInvalidMasterType   = errors.New("invalid master data type")
	ErrPhotoStoreDisabled  = errors.New("profile photo storage is disabled")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)
