// Package errors provides structured error handling for ragtime.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Store and file errors
//   - 3XX: Network and model-backend errors
//   - 4XX: Validation and encoding errors
//   - 5XX: Internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryStore indicates persistence and file I/O errors.
	CategoryStore Category = "STORE"
	// CategoryNetwork indicates network and model-backend errors.
	CategoryNetwork Category = "NETWORK"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryInternal indicates unexpected internal errors.
	CategoryInternal Category = "INTERNAL"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Store errors (200-299)
	ErrCodeStoreUnavailable = "ERR_201_STORE_UNAVAILABLE"
	ErrCodeStoreCorrupt     = "ERR_202_STORE_CORRUPT"
	ErrCodeDuplicateSource  = "ERR_203_DUPLICATE_SOURCE"
	ErrCodeFileUnreadable   = "ERR_204_FILE_UNREADABLE"

	// Network errors (300-399)
	ErrCodeFetchFailed      = "ERR_301_FETCH_FAILED"
	ErrCodeFetchTimeout     = "ERR_302_FETCH_TIMEOUT"
	ErrCodeModelUnavailable = "ERR_303_MODEL_UNAVAILABLE"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeEncodingFailed    = "ERR_402_ENCODING_FAILED"
	ErrCodeQueryEmpty        = "ERR_403_QUERY_EMPTY"
	ErrCodeDimensionMismatch = "ERR_404_DIMENSION_MISMATCH"

	// Internal errors (500-599)
	ErrCodeInternal         = "ERR_501_INTERNAL"
	ErrCodeEmbeddingFailed  = "ERR_502_EMBEDDING_FAILED"
	ErrCodeGenerationFailed = "ERR_503_GENERATION_FAILED"
	ErrCodeIndexFailed      = "ERR_504_INDEX_FAILED"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryInternal
	}

	// Numeric portion, e.g. "201" from "ERR_201_STORE_UNAVAILABLE".
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryStore
	case '3':
		return CategoryNetwork
	case '4':
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	switch code {
	case ErrCodeStoreUnavailable, ErrCodeStoreCorrupt:
		return SeverityFatal
	case ErrCodeDuplicateSource, ErrCodeFileUnreadable:
		// Recovered locally: the offending item is skipped and the run continues.
		return SeverityWarning
	}

	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	switch code {
	case ErrCodeFetchFailed, ErrCodeFetchTimeout, ErrCodeModelUnavailable:
		return true
	}
	return false
}
