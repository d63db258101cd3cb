package domain

import "errors"

// Sentinel errors shared by every layer; wrap them with fmt.Errorf and
// test with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("validation failed")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrEmailTaken           = errors.New("email already registered")
)
