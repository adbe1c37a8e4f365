package storage

import "errors"

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
	ErrInvalidMimeType = errors.New("file type is not allowed")
)
