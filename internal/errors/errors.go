package errors

import (
	"fmt"
)

// RagError is the structured error type for ragtime.
// It provides context for error handling, logging, and user presentation.
type RagError struct {
	// Code is the unique error code (e.g., "ERR_301_FETCH_FAILED").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Store, Network, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *RagError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RagError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with RagError.
func (e *RagError) Is(target error) bool {
	if t, ok := target.(*RagError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *RagError) WithDetail(key, value string) *RagError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *RagError) WithSuggestion(suggestion string) *RagError {
	e.Suggestion = suggestion
	return e
}

// New creates a new RagError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *RagError {
	return &RagError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a RagError from an existing error.
// The error's message becomes the RagError message.
func Wrap(code string, err error) *RagError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// FetchError creates a content-fetch error. Callers are expected to log it,
// skip the source, and continue the indexing run.
func FetchError(url string, cause error) *RagError {
	return New(ErrCodeFetchFailed, fmt.Sprintf("failed to fetch content from %s", url), cause).
		WithDetail("url", url)
}

// EncodingError creates a tokenizer failure error for malformed input.
func EncodingError(message string, cause error) *RagError {
	return New(ErrCodeEncodingFailed, message, cause)
}

// DuplicateSourceError creates the internal uniqueness-violation error.
// It is suppressed at the store boundary and converted into a skip.
func DuplicateSourceError(source string) *RagError {
	return New(ErrCodeDuplicateSource, fmt.Sprintf("source already indexed: %s", source), nil).
		WithDetail("source", source)
}

// GenerationError creates a model-backend failure error. The query fails as a
// whole; no partial or fabricated answer is returned.
func GenerationError(message string, cause error) *RagError {
	return New(ErrCodeGenerationFailed, message, cause).
		WithSuggestion("Check that the generation model backend is running and reachable")
}

// StoreUnavailableError creates a persistence-layer failure error, fatal to
// the current indexing run or query.
func StoreUnavailableError(message string, cause error) *RagError {
	return New(ErrCodeStoreUnavailable, message, cause).
		WithSuggestion("Verify the store path exists and is writable")
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *RagError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *RagError {
	return New(ErrCodeInvalidInput, message, cause)
}

// IsRetryable checks if an error is retryable.
// Works with both RagError and standard errors (standard errors are not retryable).
func IsRetryable(err error) bool {
	if re, ok := err.(*RagError); ok {
		return re.Retryable
	}
	return false
}

// GetCode extracts the error code from an error.
// Returns ErrCodeInternal for non-RagError errors.
func GetCode(err error) string {
	if re, ok := err.(*RagError); ok {
		return re.Code
	}
	return ErrCodeInternal
}
