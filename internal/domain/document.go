package domain

import (
	"math"
	"time"
)

type DocumentCategory string

const (
	CategoryPersonal  DocumentCategory = "personal"
	CategoryFinancial DocumentCategory = "financial"
	CategoryAddress   DocumentCategory = "address"
)

func (c DocumentCategory) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryFinancial, CategoryAddress:
		return true
	}
	return false
}

// Allowed document types per category.
var (
	PersonalDocumentTypes = map[string]bool{
		"AADHAAR": true, "PAN": true, "PASSPORT": true, "VOTER_ID": true, "DRIVING_LICENSE": true,
	}
	FinancialDocumentTypes = map[string]bool{
		"BANK_STATEMENT": true, "SALARY_SLIP": true, "ITR": true, "FORM_16": true, "PAYSLIP": true,
	}
	AddressDocumentTypes = map[string]bool{
		"UTILITY_BILL": true, "RENT_AGREEMENT": true, "PROPERTY_TAX": true, "LEASE_DEED": true,
	}
)

func AllowedDocumentType(category DocumentCategory, documentType string) bool {
	switch category {
	case CategoryPersonal:
		return PersonalDocumentTypes[documentType]
	case CategoryFinancial:
		return FinancialDocumentTypes[documentType]
	case CategoryAddress:
		return AddressDocumentTypes[documentType]
	}
	return false
}

type FileStatus string

const (
	FilePending  FileStatus = "PENDING"
	FileApproved FileStatus = "APPROVED"
	FileRejected FileStatus = "REJECTED"
	FileExpired  FileStatus = "EXPIRED"
)

// DocumentFile is one uploaded file entry inside a category list (or inside a
// verification record's shared documents list).
type DocumentFile struct {
	ID               string     `json:"id"`
	DocumentType     string     `json:"document_type"`
	DocumentNumber   string     `json:"document_number,omitempty"`
	BankName         string     `json:"bank_name,omitempty"`
	AccountNumber    string     `json:"account_number,omitempty"`
	MonthYear        string     `json:"month_year,omitempty"`
	Address          string     `json:"address,omitempty"`
	FileURL          string     `json:"file_url"`
	FileName         string     `json:"file_name"`
	FileSize         int64      `json:"file_size"`
	MimeType         string     `json:"mime_type,omitempty"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	Verified         bool       `json:"verified"`
	VerificationDate *time.Time `json:"verification_date,omitempty"`
	Status           FileStatus `json:"status"`
	RejectionReason  string     `json:"rejection_reason,omitempty"`
	VerifiedBy       *int64     `json:"verified_by,omitempty"`
}

type CategoryProgress struct {
	Verified   int `json:"verified"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

type RecordCompletionSteps struct {
	PersonalDocuments  bool `json:"personalDocuments"`
	FinancialDocuments bool `json:"financialDocuments"`
	AddressDocuments   bool `json:"addressDocuments"`
	Verifications      bool `json:"verifications"`
}

type VerificationProgress struct {
	PersonalDocuments  CategoryProgress `json:"personalDocuments"`
	FinancialDocuments CategoryProgress `json:"financialDocuments"`
	AddressDocuments   CategoryProgress `json:"addressDocuments"`
	OverallPercentage  int              `json:"overallPercentage"`
}

// RecordStatus is the derived aggregate status of a DocumentRecord. It is
// always recomputed from the document lists and must never be written by
// callers directly.
type RecordStatus string

const (
	RecordIncomplete  RecordStatus = "INCOMPLETE"
	RecordPending     RecordStatus = "PENDING"
	RecordUnderReview RecordStatus = "UNDER_REVIEW"
	RecordVerified    RecordStatus = "VERIFIED"
	RecordRejected    RecordStatus = "REJECTED"
)

type HistoryAction string

const (
	HistoryDocumentUploaded  HistoryAction = "DOCUMENT_UPLOADED"
	HistoryDocumentVerified  HistoryAction = "DOCUMENT_VERIFIED"
	HistoryDocumentRejected  HistoryAction = "DOCUMENT_REJECTED"
	HistoryStatusChanged     HistoryAction = "STATUS_CHANGED"
	HistoryVerificationAdded HistoryAction = "VERIFICATION_ADDED"
)

const maxHistoryEntries = 50

type HistoryEntry struct {
	Action         HistoryAction `json:"action"`
	DocumentType   string        `json:"document_type,omitempty"`
	EntryID        string        `json:"entry_id,omitempty"`
	PerformedBy    int64         `json:"performed_by"`
	Timestamp      time.Time     `json:"timestamp"`
	Notes          string        `json:"notes,omitempty"`
	PreviousStatus string        `json:"previous_status,omitempty"`
	NewStatus      string        `json:"new_status,omitempty"`
}

// DocumentRecord holds all uploaded KYC documents of one user, one record per
// user. Everything under CompletionSteps, Progress and OverallStatus is
// derived; Recompute must run after every mutation of the lists.
type DocumentRecord struct {
	ID                 int64                 `json:"id" gorm:"primaryKey"`
	UserID             int64                 `json:"user_id" gorm:"uniqueIndex"`
	PersonalDocuments  []DocumentFile        `json:"personal_documents" gorm:"serializer:json"`
	FinancialDocuments []DocumentFile        `json:"financial_documents" gorm:"serializer:json"`
	AddressDocuments   []DocumentFile        `json:"address_documents" gorm:"serializer:json"`
	VerificationRefs   []string              `json:"verification_refs" gorm:"serializer:json"`
	CompletionSteps    RecordCompletionSteps `json:"completion_steps" gorm:"serializer:json"`
	Progress           VerificationProgress  `json:"verification_progress" gorm:"serializer:json;column:verification_progress"`
	OverallStatus      RecordStatus          `json:"overall_status"`
	History            []HistoryEntry        `json:"verification_history" gorm:"serializer:json"`
	LastDocumentUpload *time.Time            `json:"last_document_upload,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

func (r *DocumentRecord) Category(c DocumentCategory) []DocumentFile {
	switch c {
	case CategoryPersonal:
		return r.PersonalDocuments
	case CategoryFinancial:
		return r.FinancialDocuments
	case CategoryAddress:
		return r.AddressDocuments
	}
	return nil
}

func (r *DocumentRecord) SetCategory(c DocumentCategory, files []DocumentFile) {
	switch c {
	case CategoryPersonal:
		r.PersonalDocuments = files
	case CategoryFinancial:
		r.FinancialDocuments = files
	case CategoryAddress:
		r.AddressDocuments = files
	}
}

// CompletionPercentage counts the four completion steps (three categories plus
// verifications-present).
func (r *DocumentRecord) CompletionPercentage() int {
	steps := [...]bool{
		r.CompletionSteps.PersonalDocuments,
		r.CompletionSteps.FinancialDocuments,
		r.CompletionSteps.AddressDocuments,
		r.CompletionSteps.Verifications,
	}
	done := 0
	for _, s := range steps {
		if s {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(steps)) * 100))
}

// Recompute recalculates completion steps, per-category and overall
// verification progress, and the derived overall status. It is a pure
// function of the three document lists and the linked verification refs and
// is idempotent.
func (r *DocumentRecord) Recompute() {
	r.CompletionSteps = RecordCompletionSteps{
		PersonalDocuments:  len(r.PersonalDocuments) > 0,
		FinancialDocuments: len(r.FinancialDocuments) > 0,
		AddressDocuments:   len(r.AddressDocuments) > 0,
		Verifications:      len(r.VerificationRefs) > 0,
	}

	personal := categoryProgress(r.PersonalDocuments)
	financial := categoryProgress(r.FinancialDocuments)
	address := categoryProgress(r.AddressDocuments)

	r.Progress = VerificationProgress{
		PersonalDocuments:  personal,
		FinancialDocuments: financial,
		AddressDocuments:   address,
	}

	// Document-count-weighted average, not a simple mean of the three
	// percentages: a category with more files pulls harder.
	totalDocs := personal.Total + financial.Total + address.Total
	if totalDocs > 0 {
		weighted := personal.Percentage*personal.Total +
			financial.Percentage*financial.Total +
			address.Percentage*address.Total
		r.Progress.OverallPercentage = int(math.Round(float64(weighted) / float64(totalDocs)))
	}

	completion := r.CompletionPercentage()
	verification := r.Progress.OverallPercentage
	switch {
	case completion == 100 && verification == 100:
		r.OverallStatus = RecordVerified
	case completion == 100 && verification > 0:
		r.OverallStatus = RecordUnderReview
	case completion == 100:
		r.OverallStatus = RecordPending
	default:
		r.OverallStatus = RecordIncomplete
	}
}

// AddHistory appends an audit entry, keeping the most recent entries only.
func (r *DocumentRecord) AddHistory(h HistoryEntry) {
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now()
	}
	r.History = append(r.History, h)
	if len(r.History) > maxHistoryEntries {
		r.History = r.History[len(r.History)-maxHistoryEntries:]
	}
}

func categoryProgress(files []DocumentFile) CategoryProgress {
	p := CategoryProgress{Total: len(files)}
	for _, f := range files {
		if f.Verified {
			p.Verified++
		}
	}
	if p.Total > 0 {
		p.Percentage = int(math.Round(float64(p.Verified) / float64(p.Total) * 100))
	}
	return p
}
