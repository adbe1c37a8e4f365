package document

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"veriflow/internal/domain"
	"veriflow/internal/pkg/metrics"
)

type Service struct {
	records DocumentRecordRepositoryInterface
	files   FileStore
	events  EventPublisher
	log     *zap.Logger
}

func NewService(records DocumentRecordRepositoryInterface, files FileStore, events EventPublisher, log *zap.Logger) *Service {
	return &Service{records: records, files: files, events: events, log: log}
}

// RegisterOrGet returns the user's document record, creating an empty one on
// first touch. Each user has exactly one record.
func (s *Service) RegisterOrGet(ctx context.Context, userID int64) (*domain.DocumentRecord, error) {
	rec, err := s.records.GetByUserID(ctx, userID)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec = &domain.DocumentRecord{UserID: userID}
	rec.Recompute()
	if err := s.records.Create(ctx, rec); err != nil {
		// Lost a create race: someone else registered the record first.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.records.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return rec, nil
}

// AddDocument stores the uploaded file and appends it to the category list.
// Re-uploading a personal document of the same type replaces the previous
// entry; financial and address documents accumulate.
func (s *Service) AddDocument(ctx context.Context, userID int64, category domain.DocumentCategory, meta UploadMetadata, fileHeader *multipart.FileHeader) (*domain.DocumentRecord, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if !domain.AllowedDocumentType(category, meta.DocumentType) {
		return nil, ErrInvalidDocumentType
	}

	rec, err := s.RegisterOrGet(ctx, userID)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(fileHeader)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	entry := domain.DocumentFile{
		ID:             uuid.New().String(),
		DocumentType:   meta.DocumentType,
		DocumentNumber: meta.DocumentNumber,
		BankName:       meta.BankName,
		AccountNumber:  meta.AccountNumber,
		MonthYear:      meta.MonthYear,
		Address:        meta.Address,
		FileURL:        stored.URL,
		FileName:       stored.FileName,
		FileSize:       stored.Size,
		MimeType:       stored.MimeType,
		UploadedAt:     now,
		Status:         domain.FilePending,
	}

	list := rec.Category(category)
	if category == domain.CategoryPersonal {
		for i, existing := range list {
			if existing.DocumentType == entry.DocumentType {
				s.files.Delete(existing.FileURL)
				list = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
	rec.SetCategory(category, append(list, entry))

	rec.LastDocumentUpload = &now
	rec.AddHistory(domain.HistoryEntry{
		Action:       domain.HistoryDocumentUploaded,
		DocumentType: entry.DocumentType,
		EntryID:      entry.ID,
		PerformedBy:  userID,
	})
	rec.Recompute()

	if err := s.records.Update(ctx, rec); err != nil {
		s.files.Delete(stored.URL)
		return nil, err
	}

	metrics.DocumentUploads.WithLabelValues(string(category)).Inc()
	s.events.Publish(domain.Event{
		Type:      domain.EventDocumentUpdated,
		Broadcast: domain.BroadcastAdmins,
		Message:   fmt.Sprintf("Document uploaded: %s", entry.DocumentType),
		Payload: map[string]any{
			"user_id":  userID,
			"category": category,
			"entry_id": entry.ID,
		},
	})

	return rec, nil
}

// VerifyEntry marks one uploaded file as approved by a reviewer.
func (s *Service) VerifyEntry(ctx context.Context, reviewerID, userID int64, req ReviewEntryRequest) (*domain.DocumentRecord, error) {
	return s.reviewEntry(ctx, reviewerID, userID, req, true)
}

// RejectEntry marks one uploaded file as rejected, recording the reason.
func (s *Service) RejectEntry(ctx context.Context, reviewerID, userID int64, req ReviewEntryRequest) (*domain.DocumentRecord, error) {
	return s.reviewEntry(ctx, reviewerID, userID, req, false)
}

func (s *Service) reviewEntry(ctx context.Context, reviewerID, userID int64, req ReviewEntryRequest, approve bool) (*domain.DocumentRecord, error) {
	category := domain.DocumentCategory(req.Category)
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	rec, err := s.getRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := rec.Category(category)
	idx := -1
	for i := range list {
		if list[i].ID == req.EntryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrEntryNotFound
	}

	now := time.Now()
	entry := &list[idx]
	action := domain.HistoryDocumentVerified
	message := fmt.Sprintf("Your %s document was approved", entry.DocumentType)

	if approve {
		entry.Verified = true
		entry.Status = domain.FileApproved
		entry.VerificationDate = &now
		entry.VerifiedBy = &reviewerID
		entry.RejectionReason = ""
	} else {
		entry.Verified = false
		entry.Status = domain.FileRejected
		entry.VerificationDate = &now
		entry.VerifiedBy = &reviewerID
		entry.RejectionReason = req.Reason
		action = domain.HistoryDocumentRejected
		message = fmt.Sprintf("Your %s document was rejected", entry.DocumentType)
	}
	rec.SetCategory(category, list)

	rec.AddHistory(domain.HistoryEntry{
		Action:       action,
		DocumentType: entry.DocumentType,
		EntryID:      entry.ID,
		PerformedBy:  reviewerID,
		Notes:        req.Notes,
	})
	rec.Recompute()

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.events.Publish(domain.Event{
		Type:         domain.EventDocumentUpdated,
		TargetUserID: userID,
		Message:      message,
		Payload: map[string]any{
			"category": category,
			"entry_id": entry.ID,
			"status":   entry.Status,
		},
	})

	return rec, nil
}

// DeleteEntry removes an uploaded file from a category list along with its
// stored file.
func (s *Service) DeleteEntry(ctx context.Context, userID int64, req DeleteEntryRequest) (*domain.DocumentRecord, error) {
	category := domain.DocumentCategory(req.Category)
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	rec, err := s.getRecord(ctx, userID)
	if err != nil {
		return nil, err
	}

	list := rec.Category(category)
	idx := -1
	for i := range list {
		if list[i].ID == req.EntryID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrEntryNotFound
	}

	fileURL := list[idx].FileURL
	rec.SetCategory(category, append(list[:idx], list[idx+1:]...))
	rec.Recompute()

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.files.Delete(fileURL)
	return rec, nil
}

// LinkVerification attaches a field verification record reference to the
// user's document record. Linking is idempotent.
func (s *Service) LinkVerification(ctx context.Context, actorID, userID int64, documentNumber string) (*domain.DocumentRecord, error) {
	rec, err := s.RegisterOrGet(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, ref := range rec.VerificationRefs {
		if ref == documentNumber {
			return rec, nil
		}
	}

	rec.VerificationRefs = append(rec.VerificationRefs, documentNumber)
	rec.AddHistory(domain.HistoryEntry{
		Action:      domain.HistoryVerificationAdded,
		EntryID:     documentNumber,
		PerformedBy: actorID,
	})
	rec.Recompute()

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, userID int64) (*domain.DocumentRecord, error) {
	return s.getRecord(ctx, userID)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.DocumentRecord, int64, error) {
	return s.records.List(ctx, status, limit, offset)
}

func (s *Service) Statistics(ctx context.Context) (map[domain.RecordStatus]int64, error) {
	return s.records.CountByStatus(ctx)
}

func (s *Service) getRecord(ctx context.Context, userID int64) (*domain.DocumentRecord, error) {
	rec, err := s.records.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}
