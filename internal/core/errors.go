package core

import (
	"errors"
	"fmt"
)

// Fatal load conditions. Everything else found in a cell is imputed.
var (
	// ErrNotFound is returned when the age-group folder or one of its files is absent.
	ErrNotFound = errors.New("dataset file not found")

	// ErrParse is returned when a file cannot be tokenized as CSV at all.
	ErrParse = errors.New("invalid csv")

	// ErrSchemaMismatch is returned when a file parses but its header does not
	// match the declared schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidAgeGroup is returned for identifiers that cannot name a folder.
	ErrInvalidAgeGroup = errors.New("invalid age group")
)

// Query errors.
var (
	ErrYearOutOfRange = errors.New("year out of range")
	ErrNoData         = errors.New("no data for selection")
	ErrInvalidQuery   = errors.New("invalid query parameter")
)

// LoadError records which file and step failed during a load.
type LoadError struct {
	AgeGroup string
	Path     string
	Op       string // "open", "read", "header", "schema"
	Err      error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load %s: %s %s: %v", e.AgeGroup, e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("load %s: %s: %v", e.AgeGroup, e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsFatalLoad reports whether err is one of the load failures a caller must
// surface instead of rendering data.
func IsFatalLoad(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrParse) ||
		errors.Is(err, ErrSchemaMismatch) ||
		errors.Is(err, ErrInvalidAgeGroup)
}
