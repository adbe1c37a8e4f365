package auth

import (
	"time"

	"veriflow/internal/domain"
)

type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required,min=2"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
	Password  string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	KYCStatus  string     `json:"kyc_status"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func ToUserResponse(u *domain.User) *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		Role:       string(u.Role),
		IsVerified: u.IsVerified,
		KYCStatus:  string(u.KYCStatus),
		LastLogin:  u.LastLogin,
		CreatedAt:  u.CreatedAt,
	}
}
