package errors

import (
	stderrors "errors"
	"net/http"
)

// HTTPError is the wire form of a failed request.
// Message is the exact string written into the error body, so the mapping
// here is part of the protocol, not just logging cosmetics.
type HTTPError struct {
	Status  int
	Message string
}

// MapToHTTPError translates domain errors into their HTTP status and body.
// Unknown errors are masked as an internal error to avoid leaking internals
// to the caller.
func MapToHTTPError(err error) HTTPError {
	switch {
	case stderrors.Is(err, ErrEmptyMessage):
		return HTTPError{Status: http.StatusBadRequest, Message: "Message cannot be empty"}
	case stderrors.Is(err, ErrInvalidJSON):
		return HTTPError{Status: http.StatusBadRequest, Message: "Invalid JSON"}
	case stderrors.Is(err, ErrMessageTooLong):
		return HTTPError{Status: http.StatusBadRequest, Message: "Message too long"}
	case stderrors.Is(err, ErrInvalidInput):
		return HTTPError{Status: http.StatusBadRequest, Message: "Invalid input"}
	case stderrors.Is(err, ErrNotFound):
		return HTTPError{Status: http.StatusNotFound, Message: "Not found"}
	default:
		return HTTPError{Status: http.StatusInternalServerError, Message: "Internal server error"}
	}
}
