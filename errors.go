package nilability

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeMalformed   ErrorType = "malformed"
	ErrorTypeUnavailable ErrorType = "unavailable"
	ErrorTypeValidation  ErrorType = "validation"
	ErrorTypeInternal    ErrorType = "internal"
)

// Error codes for metadata plumbing. Resolvers never surface these.
const (
	ErrCodeRecordNotFound     = "RECORD_NOT_FOUND"
	ErrCodeColumnsUnavailable = "COLUMNS_UNAVAILABLE"
	ErrCodeMalformedMetadata  = "MALFORMED_METADATA"
	ErrCodeSnapshotNotFound   = "SNAPSHOT_NOT_FOUND"
	ErrCodeSourceUnavailable  = "SOURCE_UNAVAILABLE"
	ErrCodeInvalidOption      = "INVALID_OPTION"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// MetadataError represents failures while loading or querying record metadata.
type MetadataError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Record  string         `json:"record,omitempty"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *MetadataError) Error() string {
	if e.Record != "" && e.Field != "" {
		return fmt.Sprintf("[%s:%s] record %s field '%s': %s", e.Type, e.Code, e.Record, e.Field, e.Message)
	}
	if e.Record != "" {
		return fmt.Sprintf("[%s:%s] record %s: %s", e.Type, e.Code, e.Record, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *MetadataError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a single detail to a MetadataError
func (e *MetadataError) WithDetail(key string, value any) *MetadataError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adds a cause to a MetadataError
func (e *MetadataError) WithCause(cause error) *MetadataError {
	e.Cause = cause
	return e
}

// WithRecord adds record context to a MetadataError
func (e *MetadataError) WithRecord(record string) *MetadataError {
	e.Record = record
	return e
}

// WithField adds field context to a MetadataError
func (e *MetadataError) WithField(field string) *MetadataError {
	e.Field = field
	return e
}

// NewMetadataError creates a new MetadataError
func NewMetadataError(errorType ErrorType, code, message string) *MetadataError {
	return &MetadataError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// NewRecordNotFoundError creates a record not found error
func NewRecordNotFoundError(record string) *MetadataError {
	return &MetadataError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeRecordNotFound,
		Message: "record not found",
		Record:  record,
	}
}

// NewColumnsUnavailableError reports that a record has no column metadata
func NewColumnsUnavailableError(record string) *MetadataError {
	return &MetadataError{
		Type:    ErrorTypeUnavailable,
		Code:    ErrCodeColumnsUnavailable,
		Message: "column metadata unavailable",
		Record:  record,
	}
}

// NewMalformedMetadataError creates an error for a document that cannot be parsed
func NewMalformedMetadataError(source, message string, cause error) *MetadataError {
	return &MetadataError{
		Type:    ErrorTypeMalformed,
		Code:    ErrCodeMalformedMetadata,
		Message: message,
		Details: map[string]any{"source": source},
		Cause:   cause,
	}
}

// NewSnapshotNotFoundError creates an error for a missing snapshot object or directory
func NewSnapshotNotFoundError(location string, cause error) *MetadataError {
	return &MetadataError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeSnapshotNotFound,
		Message: "snapshot not found",
		Details: map[string]any{"location": location},
		Cause:   cause,
	}
}

// NewSourceUnavailableError wraps an I/O failure of a metadata source
func NewSourceUnavailableError(source string, cause error) *MetadataError {
	return &MetadataError{
		Type:    ErrorTypeUnavailable,
		Code:    ErrCodeSourceUnavailable,
		Message: "metadata source unavailable",
		Details: map[string]any{"source": source},
		Cause:   cause,
	}
}

// NewInvalidOptionError reports an unknown option value
func NewInvalidOptionError(option, value string) *MetadataError {
	return &MetadataError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeInvalidOption,
		Message: fmt.Sprintf("unknown value %q for option %s", value, option),
		Field:   option,
	}
}

func hasCode(err error, code string) bool {
	var metaErr *MetadataError
	if errors.As(err, &metaErr) {
		return metaErr.Code == code
	}
	return false
}

// IsRecordNotFoundError checks if an error is a record not found error
func IsRecordNotFoundError(err error) bool {
	return hasCode(err, ErrCodeRecordNotFound)
}

// IsColumnsUnavailableError checks if an error reports missing column metadata
func IsColumnsUnavailableError(err error) bool {
	return hasCode(err, ErrCodeColumnsUnavailable)
}

// IsMalformedMetadataError checks if an error is a malformed metadata error
func IsMalformedMetadataError(err error) bool {
	return hasCode(err, ErrCodeMalformedMetadata)
}

// IsSnapshotNotFoundError checks if an error is a snapshot not found error
func IsSnapshotNotFoundError(err error) bool {
	return hasCode(err, ErrCodeSnapshotNotFound)
}
