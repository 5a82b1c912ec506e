package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeRateLimit        ErrorType = "rate_limit"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeServerError      ErrorType = "server_error"
	ErrorTypeClientError      ErrorType = "client_error"
	ErrorTypeParsing          ErrorType = "parsing"
	ErrorTypeStorage          ErrorType = "storage"
	ErrorTypeTooLarge         ErrorType = "too_large"
	ErrorTypeDisallowed       ErrorType = "disallowed"
	ErrorTypeUnexpectedStatus ErrorType = "status"
	ErrorTypeUnknown          ErrorType = "unknown"
)

// Error represents a request or storage error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("%s error: %s", e.Type, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error
func New(errorType ErrorType, code int, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errorType,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	}
}

// TypeOf returns the type of a typed error anywhere in the chain, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var typed *Error
	if stderrors.As(err, &typed) {
		return typed.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}

// FromStatusCode maps a non-2xx HTTP status to a typed error
func FromStatusCode(statusCode int) *Error {
	switch {
	case statusCode == 404:
		return New(ErrorTypeNotFound, statusCode, "resource not found")
	case statusCode == 429:
		return New(ErrorTypeRateLimit, statusCode, "rate limit exceeded")
	case statusCode >= 500:
		return New(ErrorTypeServerError, statusCode, "server error")
	case statusCode >= 400:
		return New(ErrorTypeClientError, statusCode, "request rejected")
	default:
		return New(ErrorTypeUnexpectedStatus, statusCode, "unexpected status %d", statusCode)
	}
}
