package services

import (
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeConfiguration ErrorType = "configuration"
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeEmbedding     ErrorType = "embedding"
	ErrorTypeDrafting      ErrorType = "drafting"
	ErrorTypeInternal      ErrorType = "internal"
)

// DomainError represents a structured error with additional context
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// Domain error variables

var (
	// Configuration errors (fatal at initialization time)
	ErrInvalidCorpus       = NewDomainError(ErrorTypeConfiguration, "corpus contains invalid principle", nil)
	ErrDimensionMismatch   = NewDomainError(ErrorTypeConfiguration, "embedding dimensionality mismatch", nil)
	ErrMissingCompliance   = NewDomainError(ErrorTypeConfiguration, "compliance hash constant is empty", nil)
	ErrIndexNotInitialized = NewDomainError(ErrorTypeConfiguration, "retrieval index not initialized", nil)

	// Transient errors (recovered by the orchestrator via the fallback path)
	ErrEmbeddingFailed = NewDomainError(ErrorTypeEmbedding, "embedding backend failed", nil)
	ErrDraftingFailed  = NewDomainError(ErrorTypeDrafting, "rule drafting failed", nil)
)
