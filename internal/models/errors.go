package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors
type ErrorType int

const (
	ErrIndexParse ErrorType = iota
	ErrUnsupportedSchema
	ErrUnknownCategory
	ErrFileOp
	ErrDecode
	ErrMalformedRecord
	ErrChecksum
	ErrSignature
	ErrInvalidConfig
)

// String returns the string representation of ErrorType
func (e ErrorType) String() string {
	switch e {
	case ErrIndexParse:
		return "IndexParse"
	case ErrUnsupportedSchema:
		return "UnsupportedSchema"
	case ErrUnknownCategory:
		return "UnknownCategory"
	case ErrFileOp:
		return "FileOp"
	case ErrDecode:
		return "Decode"
	case ErrMalformedRecord:
		return "MalformedRecord"
	case ErrChecksum:
		return "Checksum"
	case ErrSignature:
		return "Signature"
	case ErrInvalidConfig:
		return "InvalidConfig"
	default:
		return "Unknown"
	}
}

// ErrUnsupportedSchemaVersion is wrapped by every error raised for a
// database artifact whose declared version is outside the supported set.
var ErrUnsupportedSchemaVersion = errors.New("unsupported schema version")

// PipelineError represents an error raised while ingesting one category
type PipelineError struct {
	Type     ErrorType
	Category string
	Err      error
}

// Error implements the error interface
func (e *PipelineError) Error() string {
	if e.Category != "" {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Category, e.Err)
	}
	return fmt.Sprintf("[%s] %v", e.Type, e.Err)
}

// Unwrap returns the wrapped error
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// ErrorTypeOf reports the ErrorType of the first PipelineError in err's
// chain.
func ErrorTypeOf(err error) (ErrorType, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Type, true
	}
	return 0, false
}

// MissingFieldsError is returned when a record lacks fields its entity
// kind requires.
type MissingFieldsError struct {
	Kind    Kind
	Missing []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("%s: missing: %s", e.Kind.DisplayName(), strings.Join(e.Missing, ", "))
}

// Rejection is a single record that could not be decoded or built.
type Rejection struct {
	Kind   Kind
	PkgID  string
	Record Record
	Err    error
}

// NewRejection records rec as a malformed record of category. The cause
// stays reachable through errors.As.
func NewRejection(category Category, kind Kind, pkgID string, rec Record, err error) Rejection {
	return Rejection{
		Kind:   kind,
		PkgID:  pkgID,
		Record: rec,
		Err: &PipelineError{
			Type:     ErrMalformedRecord,
			Category: category.String(),
			Err:      err,
		},
	}
}
