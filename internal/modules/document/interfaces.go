package document

import (
	"context"
	"mime/multipart"

	"veriflow/internal/domain"
	"veriflow/internal/modules/storage"
)

type DocumentRecordRepositoryInterface interface {
	Create(ctx context.Context, rec *domain.DocumentRecord) error
	GetByUserID(ctx context.Context, userID int64) (*domain.DocumentRecord, error)
	Update(ctx context.Context, rec *domain.DocumentRecord) error
	List(ctx context.Context, status string, limit, offset int) ([]domain.DocumentRecord, int64, error)
	CountByStatus(ctx context.Context) (map[domain.RecordStatus]int64, error)
}

type FileStore interface {
	Save(fileHeader *multipart.FileHeader) (*storage.StoredFile, error)
	Delete(url string)
	AbsPath(url string) (string, bool)
}

type EventPublisher interface {
	Publish(ev domain.Event)
}
