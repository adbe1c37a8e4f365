package document

import "errors"

var (
	ErrRecordNotFound      = errors.New("document record not found")
	ErrEntryNotFound       = errors.New("document entry not found")
	ErrInvalidCategory     = errors.New("invalid document category")
	ErrInvalidDocumentType = errors.New("document type not allowed for category")
	ErrNothingToArchive    = errors.New("no documents to archive")
)
