package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/bananamath/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidMove        = "INVALID_MOVE"
	CodeGameplay           = "GAMEPLAY_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeRegistrationFailed = "REGISTRATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeOutOfResources     = "OUT_OF_RESOURCES"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	if he.status == http.StatusTooManyRequests {
		w.Header().Set("Retry-After", "1")
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var me *model.Error
	if !errors.As(err, &me) {
		return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
	}

	if errors.Is(err, model.ErrNotFound) {
		return &httpError{http.StatusNotFound, APIError{Code: CodeNotFound, Message: me.Message}}
	}

	client := func(status int, code string) *httpError {
		return &httpError{status, APIError{Code: code, Message: me.Message, Details: me.Context}}
	}
	internal := &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: me.Message}}

	switch me.Kind {
	case model.KindValidation:
		return client(http.StatusBadRequest, CodeInvalidRequest)
	case model.KindInvalidMove:
		return client(http.StatusBadRequest, CodeInvalidMove)
	case model.KindGameplay:
		return client(http.StatusConflict, CodeGameplay)
	case model.KindRegistration:
		if me.Cause != nil {
			return internal
		}
		return client(http.StatusBadRequest, CodeRegistrationFailed)
	case model.KindAuthentication:
		if _, locked := me.Context["locked_until"]; locked {
			return client(http.StatusLocked, CodeAccountLocked)
		}
		if me.Cause != nil {
			return internal
		}
		return client(http.StatusUnauthorized, CodeUnauthorized)
	case model.KindOutOfResources:
		return &httpError{http.StatusServiceUnavailable, APIError{Code: CodeOutOfResources, Message: me.Message}}
	default:
		return internal
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{Code: CodeInvalidRequest, Message: message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{Code: CodeUnauthorized, Message: "Authentication required"}}
}

// NewRateLimitedError creates a too-many-requests error
func NewRateLimitedError() error {
	return &httpError{http.StatusTooManyRequests, APIError{Code: CodeRateLimited, Message: "Too many requests"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{Code: CodeInternalError, Message: "Internal server error"}}
}
