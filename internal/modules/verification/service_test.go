package verification

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"veriflow/internal/domain"
	"veriflow/internal/modules/storage"
	"veriflow/internal/repository"
)

/* ==================== FAKES ==================== */

type memVerificationRepo struct {
	byNumber map[string]*domain.VerificationRecord
	nextID   int64
}

func newMemVerificationRepo() *memVerificationRepo {
	return &memVerificationRepo{byNumber: make(map[string]*domain.VerificationRecord), nextID: 1}
}

func (m *memVerificationRepo) Create(_ context.Context, rec *domain.VerificationRecord) error {
	if _, exists := m.byNumber[rec.DocumentNumber]; exists {
		return repository.ErrDuplicateDocumentNumber
	}
	rec.ID = m.nextID
	m.nextID++
	cp := *rec
	m.byNumber[rec.DocumentNumber] = &cp
	return nil
}

func (m *memVerificationRepo) GetByDocumentNumber(_ context.Context, number string) (*domain.VerificationRecord, error) {
	if rec, ok := m.byNumber[number]; ok {
		cp := *rec
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memVerificationRepo) Update(_ context.Context, rec *domain.VerificationRecord) error {
	cp := *rec
	m.byNumber[rec.DocumentNumber] = &cp
	return nil
}

func (m *memVerificationRepo) Delete(_ context.Context, number string) error {
	delete(m.byNumber, number)
	return nil
}

func (m *memVerificationRepo) List(_ context.Context, status string, _, _ int) ([]domain.VerificationRecord, int64, error) {
	var out []domain.VerificationRecord
	for _, rec := range m.byNumber {
		if status == "" || string(rec.OverallStatus) == status {
			out = append(out, *rec)
		}
	}
	return out, int64(len(out)), nil
}

func (m *memVerificationRepo) CountByStatus(_ context.Context) (map[domain.VerificationStatus]int64, error) {
	counts := make(map[domain.VerificationStatus]int64)
	for _, rec := range m.byNumber {
		counts[rec.OverallStatus]++
	}
	return counts, nil
}

type seqAllocator struct {
	n int
}

func (a *seqAllocator) Allocate(context.Context) (string, error) {
	a.n++
	return fmt.Sprintf("%03d/21-08-2026", a.n), nil
}

type stubFileStore struct {
	deleted []string
}

func (s *stubFileStore) Save(fh *multipart.FileHeader) (*storage.StoredFile, error) {
	return &storage.StoredFile{
		URL:      "/uploads/test/" + fh.Filename,
		FileName: fh.Filename,
		MimeType: "application/pdf",
		Size:     fh.Size,
	}, nil
}

func (s *stubFileStore) Delete(url string) { s.deleted = append(s.deleted, url) }

type capturedEvents struct {
	events []domain.Event
}

func (c *capturedEvents) Publish(ev domain.Event) { c.events = append(c.events, ev) }

func newTestService() (*Service, *memVerificationRepo, *capturedEvents) {
	repo := newMemVerificationRepo()
	events := &capturedEvents{}
	svc := NewService(repo, &seqAllocator{}, &stubFileStore{}, events, zap.NewNop())
	return svc, repo, events
}

func raw(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

/* ==================== TESTS ==================== */

func TestCreateOrMerge_AllocatesNumberWhenEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	rec, created, err := svc.CreateOrMerge(context.Background(), 1, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "001/21-08-2026", rec.DocumentNumber)
	assert.Equal(t, domain.StatusDraft, rec.OverallStatus)
	require.NotNil(t, rec.Residence)
}

func TestCreateOrMerge_SameNumberMergesTypes(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	first, created, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)
	require.True(t, created)

	// Fill in some residence data, then merge a second type in.
	_, err = svc.UpdateSection(ctx, 1, UpdateSectionRequest{
		DocumentNumber: first.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Section:        "propertyDetails",
		Payload:        raw(t, map[string]any{"ownershipResidence": "OWNED"}),
	})
	require.NoError(t, err)

	merged, created, err := svc.CreateOrMerge(ctx, 2, CreateRequest{
		DocumentNumber: first.DocumentNumber,
		Types:          []string{string(domain.OfficeVerification)},
	})
	require.NoError(t, err)
	assert.False(t, created, "existing number must merge, never duplicate")

	assert.Len(t, repo.byNumber, 1)
	assert.ElementsMatch(t,
		[]domain.VerificationType{domain.ResidenceVerification, domain.OfficeVerification},
		merged.Types)
	assert.Equal(t, "OWNED", merged.Residence.PropertyDetails.OwnershipResidence,
		"merging a type must not reset existing sub-forms")
	require.NotNil(t, merged.Office)
}

func TestCreateOrMerge_RejectsBadNumberFormat(t *testing.T) {
	svc, _, _ := newTestService()

	_, _, err := svc.CreateOrMerge(context.Background(), 1, CreateRequest{
		DocumentNumber: "1/2026",
		Types:          []string{string(domain.ResidenceVerification)},
	})
	assert.ErrorIs(t, err, ErrInvalidDocumentNumber)
}

func TestUpdateSection_ShallowMergeKeepsOtherFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)

	_, err = svc.UpdateSection(ctx, 1, UpdateSectionRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Section:        "propertyDetails",
		Payload:        raw(t, map[string]any{"ownershipResidence": "OWNED", "typeOfResidence": "FLAT"}),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSection(ctx, 1, UpdateSectionRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Section:        "propertyDetails",
		Payload:        raw(t, map[string]any{"numberOfFloors": 2}),
	})
	require.NoError(t, err)

	assert.Equal(t, "OWNED", updated.Residence.PropertyDetails.OwnershipResidence)
	assert.Equal(t, "FLAT", updated.Residence.PropertyDetails.TypeOfResidence)
	assert.Equal(t, 2, updated.Residence.PropertyDetails.NumberOfFloors)
	assert.True(t, updated.CompletionSteps.PropertyDetails)
}

func TestUpdateSection_RejectsUnknownFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)

	_, err = svc.UpdateSection(ctx, 1, UpdateSectionRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Section:        "propertyDetails",
		Payload:        raw(t, map[string]any{"ownershipRes1dence": "OWNED"}),
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestUpdateSection_TypeNotAttached(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)

	_, err = svc.UpdateSection(ctx, 1, UpdateSectionRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.OfficeVerification),
		Section:        "personalInformation",
		Payload:        raw(t, map[string]any{"mobileNo1": "9999999999"}),
	})
	assert.ErrorIs(t, err, ErrTypeNotAttached)
}

// submitResidenceRecord drives a fresh residence record through every section
// until the completion transition flips it to SUBMITTED.
func submitResidenceRecord(t *testing.T, svc *Service, actorID int64) *domain.VerificationRecord {
	t.Helper()
	ctx := context.Background()

	rec, _, err := svc.CreateOrMerge(ctx, actorID, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)

	patches := []struct {
		section string
		payload any
	}{
		{"administrativeDetails", map[string]any{"dateOfReceipt": "2026-08-20T00:00:00Z", "referenceNo": "REF-9"}},
		{"addressInformation", map[string]any{"presentAddress": map[string]any{"city": "Pune"}}},
		{"propertyDetails", map[string]any{"ownershipResidence": "OWNED"}},
		{"personalInformation", map[string]any{"dateOfBirth": "1990-01-01T00:00:00Z"}},
		{"verificationStatus", map[string]any{"status": "PENDING"}},
		{"commentsAuthorization", map[string]any{"verifiersName": "R. Iyer"}},
	}
	for _, p := range patches {
		rec, err = svc.UpdateSection(ctx, actorID, UpdateSectionRequest{
			DocumentNumber: rec.DocumentNumber,
			Type:           string(domain.ResidenceVerification),
			Section:        p.section,
			Payload:        raw(t, p.payload),
		})
		require.NoError(t, err)
	}

	// Last milestone: an uploaded document.
	rec.Documents = append(rec.Documents, domain.DocumentFile{ID: "d1", FileURL: "/uploads/x.pdf"})
	rec.RecomputeCompletion()
	require.NoError(t, svc.records.Update(ctx, rec))

	rec, err = svc.GetByNumber(ctx, rec.DocumentNumber)
	require.NoError(t, err)
	require.Equal(t, domain.StatusSubmitted, rec.OverallStatus)
	return rec
}

func TestUpdateStatus_DraftIsNotReviewable(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	rec, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		Types: []string{string(domain.ResidenceVerification)},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, 9, UpdateStatusRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Status:         string(domain.TypeVerified),
	})
	assert.ErrorIs(t, err, ErrNotReviewable)
}

func TestUpdateStatus_SingleTypeVerifiedVerifiesRecord(t *testing.T) {
	svc, _, events := newTestService()
	rec := submitResidenceRecord(t, svc, 1)

	updated, err := svc.UpdateStatus(context.Background(), 9, UpdateStatusRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Status:         string(domain.TypeVerified),
		VerifiedBy:     "Inspector K",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusVerified, updated.OverallStatus)
	assert.Equal(t, domain.TypeVerified, updated.Residence.VerificationStatus.Status)
	assert.Equal(t, "Inspector K", updated.Residence.VerificationStatus.VerifiedBy)

	last := events.events[len(events.events)-1]
	assert.Equal(t, domain.EventVerificationStatus, last.Type)
	assert.Equal(t, int64(1), last.TargetUserID)
}

func TestUpdateStatus_AnyRejectionRejectsRecord(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := submitResidenceRecord(t, svc, 1)

	// Attach a second type; completion stays intact (OR-merge).
	merged, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		DocumentNumber: rec.DocumentNumber,
		Types:          []string{string(domain.OfficeVerification)},
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusSubmitted, merged.OverallStatus)

	updated, err := svc.UpdateStatus(ctx, 9, UpdateStatusRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.OfficeVerification),
		Status:         string(domain.TypeRejected),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, updated.OverallStatus)
}

func TestUpdateStatus_PartialDecisionsKeepInProgress(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := submitResidenceRecord(t, svc, 1)

	_, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		DocumentNumber: rec.DocumentNumber,
		Types:          []string{string(domain.OfficeVerification)},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, 9, UpdateStatusRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Status:         string(domain.TypeVerified),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.OverallStatus,
		"one verified type out of two keeps the record in progress")

	updated, err = svc.UpdateStatus(ctx, 9, UpdateStatusRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.OfficeVerification),
		Status:         string(domain.TypeVerified),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, updated.OverallStatus)
}

func TestUpdateStatus_AdminStateSurvivesSectionEdits(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	rec := submitResidenceRecord(t, svc, 1)

	_, err := svc.UpdateStatus(ctx, 9, UpdateStatusRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Status:         string(domain.TypeInProgress),
	})
	require.NoError(t, err)

	updated, err := svc.UpdateSection(ctx, 1, UpdateSectionRequest{
		DocumentNumber: rec.DocumentNumber,
		Type:           string(domain.ResidenceVerification),
		Section:        "commentsAuthorization",
		Payload:        raw(t, map[string]any{"comments": "second visit done"}),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.OverallStatus,
		"completion recompute must not clobber an admin-set state")
}

func TestDelete_RemovesRecord(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	rec, _, err := svc.CreateOrMerge(ctx, 1, CreateRequest{
		Types: []string{string(domain.BusinessVerification)},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, rec.DocumentNumber))
	assert.Empty(t, repo.byNumber)

	err = svc.Delete(ctx, rec.DocumentNumber)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
