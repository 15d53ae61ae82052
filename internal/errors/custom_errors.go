package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error with user-friendly and technical details.
type AppError struct {
	TechnicalMessage string
	UserMessage      string
	Code             string
	HTTPStatus       int
	OriginalError    error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %v", e.UserMessage, e.OriginalError)
}

// Unwrap returns the original error for error chaining.
func (e *AppError) Unwrap() error {
	return e.OriginalError
}

// NewAppError creates a new AppError instance.
func NewAppError(technicalMessage, userMessage, code string, status int, originalErr error) *AppError {
	return &AppError{
		TechnicalMessage: technicalMessage,
		UserMessage:      userMessage,
		Code:             code,
		HTTPStatus:       status,
		OriginalError:    originalErr,
	}
}

// Common error codes
const (
	ErrCodeInvalidParameters   = "INVALID_PARAMETERS"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeCacheUnavailable    = "CACHE_UNAVAILABLE"
	ErrCodeRateLimited         = "RATE_LIMITED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// Sentinels the service layer wraps; MapError matches them with errors.Is.
var (
	ErrInvalidParameters = stderrors.New("invalid parameters")
	ErrUpstream          = stderrors.New("upstream request failed")
)

// NewUpstreamError wraps a failed call to postcodes.io or the Land Registry.
func NewUpstreamError(operation string, err error) *AppError {
	return NewAppError(
		fmt.Sprintf("%s: %v", operation, err),
		MsgInternalError,
		ErrCodeUpstreamUnavailable,
		http.StatusInternalServerError,
		fmt.Errorf("%w: %w", ErrUpstream, err),
	)
}

func NewInvalidParametersError(reason string) *AppError {
	return NewAppError(
		reason,
		MsgInvalidParameters,
		ErrCodeInvalidParameters,
		http.StatusBadRequest,
		fmt.Errorf("%w: %s", ErrInvalidParameters, reason),
	)
}
