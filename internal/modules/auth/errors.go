package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrAccountOnHold      = errors.New("account is on hold")
	ErrNotVerified        = errors.New("account is not verified")
	ErrUnauthorized       = errors.New("unauthorized")
)
