package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"veriflow/internal/domain"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

type Service struct {
	users  UserRepositoryInterface
	jwt    jwtService
	events EventPublisher
}

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

func NewService(users UserRepositoryInterface, jwt jwtService, events EventPublisher) *Service {
	return &Service{users: users, jwt: jwt, events: events}
}

// Register creates an account in the pending KYC state. The user cannot log
// in until an admin approves their verification.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Role:         domain.RoleUser,
		IsVerified:   false,
		KYCStatus:    domain.KYCPending,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.events.Publish(domain.Event{
		Type:      domain.EventNewUserRegistered,
		Broadcast: domain.BroadcastAdmins,
		Message:   fmt.Sprintf("New user registered: %s %s", user.FirstName, user.LastName),
		Payload: map[string]any{
			"user_id": user.ID,
			"email":   user.Email,
		},
	})

	user.PasswordHash = ""
	return user, nil
}

// Login authenticates and enforces the KYC gate. A held account is refused
// with a distinct error even when the password is correct; unverified
// accounts get ErrNotVerified.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.KYCStatus == domain.KYCHold {
		return nil, ErrAccountOnHold
	}
	if !user.CanLogin() {
		return nil, ErrNotVerified
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	user.PasswordHash = ""
	return &LoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}
