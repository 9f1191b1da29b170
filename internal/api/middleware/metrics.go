package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/bananamath/internal/metrics"
	"github.com/mcoot/bananamath/internal/middleware"
)

// Metrics records request counts and latency labelled by route template
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.NewResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			m.RecordRequest(r.Method, endpoint(r), wrapped.Status(), time.Since(start))
		})
	}
}

// endpoint returns the matched route template so label values stay bounded
func endpoint(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return "unmatched"
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
