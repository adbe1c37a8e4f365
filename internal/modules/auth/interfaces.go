package auth

import (
	"context"
	"time"

	"veriflow/internal/domain"
)

// UserRepositoryInterface — only the methods auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
}

// EventPublisher decouples auth from notification delivery.
type EventPublisher interface {
	Publish(ev domain.Event)
}
