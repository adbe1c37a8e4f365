package admin

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidKYCStatus = errors.New("invalid kyc status")
	ErrInvalidRole      = errors.New("invalid role")
	ErrSelfDemotion     = errors.New("admins cannot change their own role")
)
