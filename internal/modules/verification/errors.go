package verification

import "errors"

var (
	ErrRecordNotFound        = errors.New("verification record not found")
	ErrInvalidType           = errors.New("invalid verification type")
	ErrTypeNotAttached       = errors.New("verification type not attached to record")
	ErrInvalidSection        = errors.New("unknown form section for this verification type")
	ErrInvalidPayload        = errors.New("section payload is not valid")
	ErrInvalidStatus         = errors.New("invalid verification status")
	ErrNotReviewable         = errors.New("record is not in a reviewable state")
	ErrInvalidDocumentNumber = errors.New("document number has an invalid format")
)
