package notification

import (
	"time"

	"veriflow/internal/domain"
)

type NotificationResponse struct {
	ID        int64            `json:"id"`
	Type      domain.EventType `json:"type"`
	Message   string           `json:"message,omitempty"`
	IsRead    bool             `json:"is_read"`
	Data      any              `json:"data,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func ToNotificationResponse(n *domain.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		IsRead:    n.IsRead,
		Data:      n.Data,
		CreatedAt: n.CreatedAt,
	}
}
