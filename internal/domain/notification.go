package domain

import "time"

type EventType string

const (
	EventConnectionEstablished EventType = "CONNECTION_ESTABLISHED"
	EventNewUserRegistered     EventType = "NEW_USER_REGISTERED"
	EventVerificationStatus    EventType = "VERIFICATION_STATUS_UPDATE"
	EventUserVerificationAdmin EventType = "USER_VERIFICATION_UPDATED"
	EventDocumentUpdated       EventType = "DOCUMENT_UPDATED"
	EventVerificationUpdated   EventType = "VERIFICATION_RECORD_UPDATED"
	EventRoleChanged           EventType = "ROLE_CHANGED"
	EventUserDeleted           EventType = "USER_DELETED"
)

// Broadcast targets for events without a single recipient.
const (
	BroadcastAdmins = "admins"
	BroadcastAll    = "all"
)

// EmailRequest rides along on an Event when the transition should also
// trigger a best-effort email. Delivery failures are logged, never
// propagated.
type EmailRequest struct {
	To       string            `json:"to"`
	Template string            `json:"template"`
	Context  map[string]string `json:"context,omitempty"`
}

// Event is one outbound notification raised by a workflow transition. Core
// services enqueue events; the dispatcher drains the queue and performs
// delivery so that collaborator failures cannot block or roll back the
// transition itself.
type Event struct {
	Type         EventType     `json:"type"`
	TargetUserID int64         `json:"target_user_id,omitempty"`
	Broadcast    string        `json:"broadcast,omitempty"`
	Message      string        `json:"message,omitempty"`
	Payload      any           `json:"payload,omitempty"`
	Email        *EmailRequest `json:"email,omitempty"`
	Timestamp    time.Time     `json:"timestamp"`
}

// Notification is the persisted in-app copy of a per-user event.
type Notification struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"index"`
	Type      EventType `json:"type"`
	Message   string    `json:"message,omitempty"`
	IsRead    bool      `json:"is_read"`
	Data      any       `json:"data,omitempty" gorm:"serializer:json"`
	CreatedAt time.Time `json:"created_at"`
}
