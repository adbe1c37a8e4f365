package verification

import (
	"context"
	"mime/multipart"

	"veriflow/internal/domain"
	"veriflow/internal/modules/storage"
)

type VerificationRepositoryInterface interface {
	Create(ctx context.Context, rec *domain.VerificationRecord) error
	GetByDocumentNumber(ctx context.Context, number string) (*domain.VerificationRecord, error)
	Update(ctx context.Context, rec *domain.VerificationRecord) error
	Delete(ctx context.Context, number string) error
	List(ctx context.Context, status string, limit, offset int) ([]domain.VerificationRecord, int64, error)
	CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error)
}

// NumberAllocator hands out unique document numbers.
type NumberAllocator interface {
	Allocate(ctx context.Context) (string, error)
}

type FileStore interface {
	Save(fileHeader *multipart.FileHeader) (*storage.StoredFile, error)
	Delete(url string)
}

type EventPublisher interface {
	Publish(ev domain.Event)
}
