package errors

import (
	"context"
	stderrors "errors"
	"net/http"
)

// MapError converts a technical error into a user-friendly AppError.
func MapError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	technicalMessage := err.Error()

	switch {
	case stderrors.Is(err, ErrInvalidParameters):
		return &AppError{
			TechnicalMessage: technicalMessage,
			UserMessage:      MsgInvalidParameters,
			Code:             ErrCodeInvalidParameters,
			HTTPStatus:       http.StatusBadRequest,
			OriginalError:    err,
		}
	case stderrors.Is(err, ErrUpstream), stderrors.Is(err, context.DeadlineExceeded):
		return &AppError{
			TechnicalMessage: technicalMessage,
			UserMessage:      MsgInternalError,
			Code:             ErrCodeUpstreamUnavailable,
			HTTPStatus:       http.StatusInternalServerError,
			OriginalError:    err,
		}
	default:
		return &AppError{
			TechnicalMessage: technicalMessage,
			UserMessage:      MsgInternalError,
			Code:             ErrCodeInternal,
			HTTPStatus:       http.StatusInternalServerError,
			OriginalError:    err,
		}
	}
}
