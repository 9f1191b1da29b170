package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bananamath/internal/testutil"
)

func TestLoggingAssignsRequestID(t *testing.T) {
	logger, logs := testutil.CaptureLogger()

	var seen string
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))

	entries := logs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "http request", entries[0]["msg"])
	assert.Equal(t, "INFO", entries[0]["level"])
	assert.Equal(t, seen, entries[0]["request_id"])
	assert.Equal(t, float64(http.StatusTeapot), entries[0]["status"])
}

func TestLoggingServerErrorsAtErrorLevel(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	entries := logs.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "ERROR", entries[0]["level"])
}

func TestLoggingKeepsClientRequestID(t *testing.T) {
	h := Logging(testutil.NopLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, "abc", rr.Header().Get(RequestIDHeader))
}

func TestRecoveryHandlesPanic(t *testing.T) {
	logger, logs := testutil.CaptureLogger()
	h := Logging(logger)(Recovery(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	rr := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	entries := logs.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "panic recovered", entries[0]["msg"])
	assert.Equal(t, rr.Header().Get(RequestIDHeader), entries[0]["request_id"])
	assert.Equal(t, false, entries[0]["response_started"])
}

func TestRecoveryLeavesStartedResponse(t *testing.T) {
	called := false
	handler := func(w http.ResponseWriter, r *http.Request, _ any) { called = true }
	h := Recovery(testutil.NopLogger(), handler)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.False(t, called)
	assert.Equal(t, http.StatusAccepted, rr.Code)
}

func TestRecoveryReraisesAbort(t *testing.T) {
	h := Recovery(testutil.NopLogger(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))
	})
}
