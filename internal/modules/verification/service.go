package verification

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
	"veriflow/internal/modules/docnumber"
	"veriflow/internal/pkg/metrics"
	"veriflow/internal/repository"
)

const createMergeAttempts = 3

type Service struct {
	records VerificationRepositoryInterface
	numbers NumberAllocator
	files   FileStore
	events  EventPublisher
	log     *zap.Logger
}

func NewService(records VerificationRepositoryInterface, numbers NumberAllocator, files FileStore, events EventPublisher, log *zap.Logger) *Service {
	return &Service{records: records, numbers: numbers, files: files, events: events, log: log}
}

// CreateOrMerge creates a verification record, or merges the requested types
// into the existing record when the document number is already taken. Losing
// a concurrent create race degrades into a merge, so the same number can
// never yield two records. Returns true when a new record was created.
func (s *Service) CreateOrMerge(ctx context.Context, actorID int64, req CreateRequest) (*domain.VerificationRecord, bool, error) {
	types, err := parseTypes(req.Types)
	if err != nil {
		return nil, false, err
	}

	number := req.DocumentNumber
	if number != "" && !docnumber.ValidFormat.MatchString(number) {
		return nil, false, ErrInvalidDocumentNumber
	}
	if number == "" {
		if number, err = s.numbers.Allocate(ctx); err != nil {
			return nil, false, err
		}
	}

	for attempt := 0; attempt < createMergeAttempts; attempt++ {
		existing, err := s.records.GetByDocumentNumber(ctx, number)
		if err == nil {
			return s.mergeTypes(ctx, actorID, existing, types)
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}

		rec := &domain.VerificationRecord{
			DocumentNumber: number,
			CreatedBy:      actorID,
			UpdatedBy:      actorID,
		}
		for _, t := range types {
			rec.AddType(t)
		}
		if req.Administrative != nil {
			rec.Administrative = *req.Administrative
		}
		rec.RecomputeCompletion()

		err = s.records.Create(ctx, rec)
		if err == nil {
			s.events.Publish(domain.Event{
				Type:      domain.EventVerificationUpdated,
				Broadcast: domain.BroadcastAdmins,
				Message:   fmt.Sprintf("Verification record created: %s", number),
				Payload:   map[string]any{"document_number": number},
			})
			return rec, true, nil
		}
		if !errors.Is(err, repository.ErrDuplicateDocumentNumber) {
			return nil, false, err
		}
		// Someone created the record between our read and write; re-read
		// and merge into theirs.
	}

	return nil, false, fmt.Errorf("create verification record %s: retries exhausted", number)
}

func (s *Service) mergeTypes(ctx context.Context, actorID int64, rec *domain.VerificationRecord, types []domain.VerificationType) (*domain.VerificationRecord, bool, error) {
	grew := false
	for _, t := range types {
		if rec.AddType(t) {
			grew = true
		}
	}
	if !grew {
		return rec, false, nil
	}

	rec.UpdatedBy = actorID
	rec.RecomputeCompletion()
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

// UpdateSection applies a shallow patch to one form section and refreshes
// completion. The completion-driven DRAFT/SUBMITTED transition runs here;
// admin-set states are never touched.
func (s *Service) UpdateSection(ctx context.Context, actorID int64, req UpdateSectionRequest) (*domain.VerificationRecord, error) {
	typ := domain.VerificationType(req.Type)
	if !typ.Valid() {
		return nil, ErrInvalidType
	}

	rec, err := s.getRecord(ctx, req.DocumentNumber)
	if err != nil {
		return nil, err
	}
	if !rec.HasType(typ) {
		return nil, ErrTypeNotAttached
	}

	target, err := sectionTarget(rec, typ, req.Section)
	if err != nil {
		return nil, err
	}
	if err := mergeSection(target, req.Payload); err != nil {
		return nil, err
	}

	before := rec.OverallStatus
	rec.UpdatedBy = actorID
	rec.RecomputeCompletion()

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	if before != rec.OverallStatus {
		metrics.VerificationTransitions.WithLabelValues(string(before), string(rec.OverallStatus)).Inc()
	}
	s.events.Publish(domain.Event{
		Type:      domain.EventVerificationUpdated,
		Broadcast: domain.BroadcastAdmins,
		Message:   fmt.Sprintf("Verification %s updated: %s", rec.DocumentNumber, req.Section),
		Payload: map[string]any{
			"document_number": rec.DocumentNumber,
			"section":         req.Section,
			"completion":      rec.CompletionPercentage(),
		},
	})

	return rec, nil
}

// UpdateStatus records an admin decision on one verification type and derives
// the record-level status from all per-type decisions. Decisions are only
// accepted once the record has left DRAFT.
func (s *Service) UpdateStatus(ctx context.Context, actorID int64, req UpdateStatusRequest) (*domain.VerificationRecord, error) {
	typ := domain.VerificationType(req.Type)
	if !typ.Valid() {
		return nil, ErrInvalidType
	}
	status := domain.TypeStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	rec, err := s.getRecord(ctx, req.DocumentNumber)
	if err != nil {
		return nil, err
	}
	if rec.OverallStatus != domain.StatusSubmitted && rec.OverallStatus != domain.StatusInProgress {
		return nil, ErrNotReviewable
	}

	decision := rec.Decision(typ)
	if decision == nil {
		return nil, ErrTypeNotAttached
	}

	now := time.Now()
	decision.Status = status
	decision.VerificationDate = &now
	if req.VerifiedBy != "" {
		decision.VerifiedBy = req.VerifiedBy
	}

	before := rec.OverallStatus
	rec.OverallStatus = deriveOverallStatus(rec)
	rec.UpdatedBy = actorID

	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}

	if before != rec.OverallStatus {
		metrics.VerificationTransitions.WithLabelValues(string(before), string(rec.OverallStatus)).Inc()
	}
	s.events.Publish(domain.Event{
		Type:         domain.EventVerificationStatus,
		TargetUserID: rec.CreatedBy,
		Message:      fmt.Sprintf("Verification %s: %s is now %s", rec.DocumentNumber, typ, status),
		Payload: map[string]any{
			"document_number": rec.DocumentNumber,
			"type":            typ,
			"type_status":     status,
			"overall_status":  rec.OverallStatus,
		},
	})

	return rec, nil
}

// deriveOverallStatus aggregates per-type decisions: any rejection rejects
// the record, all-verified verifies it, any open decision keeps it in
// progress, and no decisions yet leaves it submitted.
func deriveOverallStatus(rec *domain.VerificationRecord) domain.VerificationStatus {
	allVerified := len(rec.Types) > 0
	anyDecided := false

	for _, t := range rec.Types {
		d := rec.Decision(t)
		if d == nil {
			allVerified = false
			continue
		}
		switch d.Status {
		case domain.TypeRejected:
			return domain.StatusRejected
		case domain.TypeVerified:
			anyDecided = true
		case domain.TypeInProgress:
			anyDecided = true
			allVerified = false
		default:
			allVerified = false
		}
	}

	switch {
	case allVerified:
		return domain.StatusVerified
	case anyDecided:
		return domain.StatusInProgress
	default:
		return domain.StatusSubmitted
	}
}

// AttachDocument stores an uploaded file on the record's shared documents
// list. The documentUpload completion step follows from the list.
func (s *Service) AttachDocument(ctx context.Context, actorID int64, documentNumber string, meta AttachDocumentMetadata, fileHeader *multipart.FileHeader) (*domain.VerificationRecord, error) {
	rec, err := s.getRecord(ctx, documentNumber)
	if err != nil {
		return nil, err
	}

	stored, err := s.files.Save(fileHeader)
	if err != nil {
		return nil, err
	}

	rec.Documents = append(rec.Documents, domain.DocumentFile{
		ID:           uuid.New().String(),
		DocumentType: meta.DocumentType,
		FileURL:      stored.URL,
		FileName:     stored.FileName,
		FileSize:     stored.Size,
		MimeType:     stored.MimeType,
		UploadedAt:   time.Now(),
		Status:       domain.FilePending,
	})

	rec.UpdatedBy = actorID
	rec.RecomputeCompletion()

	if err := s.records.Update(ctx, rec); err != nil {
		s.files.Delete(stored.URL)
		return nil, err
	}

	return rec, nil
}

// Delete removes a record along with its stored files.
func (s *Service) Delete(ctx context.Context, documentNumber string) error {
	rec, err := s.getRecord(ctx, documentNumber)
	if err != nil {
		return err
	}

	if err := s.records.Delete(ctx, documentNumber); err != nil {
		return err
	}
	for _, f := range rec.Documents {
		s.files.Delete(f.FileURL)
	}
	return nil
}

func (s *Service) GetByNumber(ctx context.Context, documentNumber string) (*domain.VerificationRecord, error) {
	return s.getRecord(ctx, documentNumber)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]domain.VerificationRecord, int64, error) {
	return s.records.List(ctx, status, limit, offset)
}

func (s *Service) Statistics(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	return s.records.CountByStatus(ctx)
}

func (s *Service) getRecord(ctx context.Context, documentNumber string) (*domain.VerificationRecord, error) {
	rec, err := s.records.GetByDocumentNumber(ctx, documentNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func parseTypes(raw []string) ([]domain.VerificationType, error) {
	if len(raw) == 0 {
		return nil, ErrInvalidType
	}
	types := make([]domain.VerificationType, 0, len(raw))
	for _, r := range raw {
		t := domain.VerificationType(r)
		if !t.Valid() {
			return nil, ErrInvalidType
		}
		types = append(types, t)
	}
	return types, nil
}
