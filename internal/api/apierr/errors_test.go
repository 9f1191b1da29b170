package apierr

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bananamath/internal/model"
)

func TestStatusByKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"validation", model.NewError(model.KindValidation, "bad", nil), http.StatusBadRequest},
		{"invalid move", model.NewError(model.KindInvalidMove, "Invalid answer format", nil), http.StatusBadRequest},
		{"gameplay", model.NewError(model.KindGameplay, "No active puzzle", nil), http.StatusConflict},
		{"registration", model.NewError(model.KindRegistration, "Username already exists", nil), http.StatusBadRequest},
		{"registration infra", model.WrapError(model.KindRegistration, "Failed to register user", errors.New("io"), nil), http.StatusInternalServerError},
		{"authentication", model.NewError(model.KindAuthentication, "Invalid username or password", nil), http.StatusUnauthorized},
		{"locked", model.NewError(model.KindAuthentication, "Account locked", map[string]any{"locked_until": time.Now()}), http.StatusLocked},
		{"out of resources", model.NewError(model.KindOutOfResources, "Failed to generate puzzle", nil), http.StatusServiceUnavailable},
		{"missing save", model.WrapError(model.KindGameState, "Failed to load game state", model.ErrNotFound, nil), http.StatusNotFound},
		{"game state", model.NewError(model.KindGameState, "Failed to save game state", nil), http.StatusInternalServerError},
		{"rate limited", NewRateLimitedError(), http.StatusTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func TestWriteErrorBody(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.NewError(model.KindAuthentication, "Invalid username or password", map[string]any{
		"attempts_remaining": 2,
	}))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, CodeUnauthorized, resp.Error.Code)
	assert.Equal(t, "Invalid username or password", resp.Error.Message)
	assert.Equal(t, float64(2), resp.Error.Details["attempts_remaining"])
}

func TestInternalErrorsHideDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, model.NewError(model.KindProfile, "Failed to save profile", map[string]any{"user_id": "u1"}))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, CodeInternalError, resp.Error.Code)
	assert.Nil(t, resp.Error.Details)
}
