package verification

import (
	"encoding/json"

	"veriflow/internal/domain"
)

type CreateRequest struct {
	DocumentNumber string                        `json:"document_number"`
	Types          []string                      `json:"verification_type" binding:"required,min=1"`
	Administrative *domain.AdministrativeDetails `json:"administrative_details"`
}

type UpdateSectionRequest struct {
	DocumentNumber string          `json:"document_number" binding:"required"`
	Type           string          `json:"verification_type" binding:"required"`
	Section        string          `json:"section" binding:"required"`
	Payload        json.RawMessage `json:"payload" binding:"required"`
}

type UpdateStatusRequest struct {
	DocumentNumber string `json:"document_number" binding:"required"`
	Type           string `json:"verification_type" binding:"required"`
	Status         string `json:"status" binding:"required"`
	VerifiedBy     string `json:"verified_by"`
}

type AttachDocumentMetadata struct {
	DocumentType string `form:"document_type" binding:"required"`
}

type DeleteRequest struct {
	DocumentNumber string `json:"document_number" binding:"required"`
}
