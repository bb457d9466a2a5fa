package catalog

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateCode = errors.New("product code already exists")
	ErrDuplicateID   = errors.New("product id already exists")
	ErrMissingFields = errors.New("missing required fields")
	ErrNotFound      = errors.New("product not found")
	ErrInvalidID     = errors.New("product id must be specified")
	ErrStorage       = errors.New("catalog storage failure")

	// ErrArchive means a delete went through but the removed product could
	// not be appended to the archive file.
	ErrArchive = errors.New("archive storage failure")
)

// MissingFieldsError lists the JSON names of the fields that were absent or
// falsy when a product was added.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return ErrMissingFields.Error() + ": " + strings.Join(e.Fields, ", ")
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingFields }

// Kind maps an error returned by Manager to a short stable label.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDuplicateCode):
		return "duplicate_code"
	case errors.Is(err, ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, ErrMissingFields):
		return "missing_fields"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, ErrArchive):
		return "archive"
	default:
		return "storage"
	}
}
