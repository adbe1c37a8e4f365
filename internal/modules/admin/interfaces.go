package admin

import (
	"context"
	"time"

	"veriflow/internal/domain"
)

type UserRepositoryInterface interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdateKYCStatus(ctx context.Context, id int64, status domain.KYCStatus, verified bool) error
	UpdateRole(ctx context.Context, id int64, role domain.UserRole) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, role, kycStatus string, limit, offset int) ([]domain.User, int64, error)
	CountByKYCStatus(ctx context.Context) (map[domain.KYCStatus]int64, error)
}

type DocumentRecordReader interface {
	CountByStatus(ctx context.Context) (map[domain.RecordStatus]int64, error)
	DeleteByUserID(ctx context.Context, userID int64) error
}

type VerificationRecordReader interface {
	CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error)
}

type NotificationCleaner interface {
	DeleteByUser(ctx context.Context, userID int64) error
}

type EventPublisher interface {
	Publish(ev domain.Event)
}

// Statistics is the admin dashboard aggregate.
type Statistics struct {
	UsersByKYCStatus    map[domain.KYCStatus]int64          `json:"users_by_kyc_status"`
	DocumentRecords     map[domain.RecordStatus]int64       `json:"document_records_by_status"`
	VerificationRecords map[domain.VerificationStatus]int64 `json:"verification_records_by_status"`
	GeneratedAt         time.Time                           `json:"generated_at"`
}
