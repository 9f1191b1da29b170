package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcoot/bananamath/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// decodeBody decodes a JSON body into v. An empty body leaves v unchanged
// when optional is set.
func decodeBody(r *http.Request, v any, optional bool) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) && optional {
		return nil
	}
	if err != nil {
		return NewInvalidRequestError("invalid request body")
	}
	return nil
}

// PanicHandler answers a recovered panic with a JSON internal error
func PanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	WriteError(w, apierr.NewInternalError())
}
