package notification

import (
	"context"

	"veriflow/internal/domain"
)

type Service struct {
	repo NotificationRepository
}

func NewService(repo NotificationRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetUserNotifications(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]domain.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

func (s *Service) MarkAsRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllRead(ctx, userID)
}
