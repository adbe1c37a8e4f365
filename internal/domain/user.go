package domain

import "time"

type UserRole string

const (
	RoleUser     UserRole = "user"
	RoleVerifier UserRole = "verifier"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleVerifier, RoleAdmin:
		return true
	}
	return false
}

// KYCStatus is the account-level verification gate. It is a separate state
// machine from per-record verification status: an account can be verified
// while individual verification records are still in progress.
type KYCStatus string

const (
	KYCNotStarted KYCStatus = "not_started"
	KYCPending    KYCStatus = "pending"
	KYCVerified   KYCStatus = "verified"
	KYCRejected   KYCStatus = "rejected"
	KYCHold       KYCStatus = "hold"
)

func (s KYCStatus) Valid() bool {
	switch s {
	case KYCNotStarted, KYCPending, KYCVerified, KYCRejected, KYCHold:
		return true
	}
	return false
}

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Phone        string     `json:"phone,omitempty"`
	Role         UserRole   `json:"role"`
	IsVerified   bool       `json:"is_verified"`
	KYCStatus    KYCStatus  `json:"kyc_status" gorm:"column:kyc_status"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CanLogin reports whether the KYC gate allows authentication.
// A hold is a hard block and is surfaced separately by the auth service.
func (u *User) CanLogin() bool {
	return u.IsVerified && u.KYCStatus == KYCVerified
}
