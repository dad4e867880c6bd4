package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyExists      = errors.New("already exists")
	ErrQuotaExceeded      = errors.New("storage quota exceeded")
	ErrUnsupportedVersion = errors.New("unsupported archive version")
)
