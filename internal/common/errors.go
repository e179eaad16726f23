// Package common defines the sentinel errors shared across the storage and
// catalog layers. Callers match them with errors.Is.
package common

import "errors"

var (
	// Storage-level errors.
	ErrNotFound           = errors.New("not found")
	ErrDuplicateKey       = errors.New("duplicate key")
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrUnknownCollection  = errors.New("unknown collection")
	ErrUnknownIndex       = errors.New("unknown index")

	// Catalog-level errors.
	ErrAlreadyRegistered = errors.New("already registered")
	ErrUserNotFound      = errors.New("user not found")
	ErrFileNotFound      = errors.New("file not found")
	ErrNotAuthenticated  = errors.New("not authenticated")

	// Auth collaborator errors.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)
