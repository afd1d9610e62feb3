// Package errors provides standardized error handling for the estimation pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors: fail fast, no partial estimate.
	ErrCodeInvalidInput      ErrorCode = "INVALID_INPUT"
	ErrCodeMissingCoordinate ErrorCode = "MISSING_COORDINATE"
	ErrCodeMissingBedrooms   ErrorCode = "MISSING_BEDROOMS"

	// Source errors: recovered locally, the source degrades to absent.
	ErrCodeBenchmarkUnavailable ErrorCode = "BENCHMARK_UNAVAILABLE"
	ErrCodeCompsUnavailable     ErrorCode = "COMPS_UNAVAILABLE"
	ErrCodeModelUnavailable     ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeSourceTimeout        ErrorCode = "SOURCE_TIMEOUT"

	// Store/infrastructure errors.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeSearchQueryFailed        ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeGISQueryFailed           ErrorCode = "GIS_QUERY_FAILED"
	ErrCodeArtifactLoadFailed       ErrorCode = "ARTIFACT_LOAD_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode from err, or empty string.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Property query failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingCoordinateError creates a non-retryable error for absent lat/lon.
func NewMissingCoordinateError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingCoordinate,
		Message:   "Property query is missing a coordinate",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMissingBedroomsError creates a non-retryable error for an absent bedroom count.
func NewMissingBedroomsError() *StandardError {
	return &StandardError{
		Code:      ErrCodeMissingBedrooms,
		Message:   "Property query is missing a bedroom count",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBenchmarkUnavailableError creates a retryable benchmark store error.
func NewBenchmarkUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBenchmarkUnavailable,
		Message:   "Benchmark store error during SAFMR lookup",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCompsUnavailableError creates a retryable comparables store error.
func NewCompsUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCompsUnavailable,
		Message:   "Comparables store error during candidate fetch",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelUnavailableError creates a non-retryable model source error.
func NewModelUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "No trained model artifact available",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSourceTimeoutError creates a retryable per-source timeout error.
func NewSourceTimeoutError(source string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSourceTimeout,
		Message:   "Source fetch timed out",
		Details:   fmt.Sprintf("source: %s", source),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryName string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("query: %s, error: %s", queryName, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable Elasticsearch query error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGISQueryFailedError creates a retryable Overpass query error.
func NewGISQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGISQueryFailed,
		Message:   "GIS proximity query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactLoadFailedError creates a non-retryable model artifact error.
func NewArtifactLoadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactLoadFailed,
		Message:   "Model artifact load error",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
