package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/bananamath/internal/api/apierr"
	"github.com/mcoot/bananamath/internal/model"
	"github.com/mcoot/bananamath/internal/services/auth"
)

type contextKey string

const (
	profileContextKey contextKey = "profile"
	sessionContextKey contextKey = "session"
)

// SessionCookie is the cookie that may carry the session token
const SessionCookie = "session"

// Auth creates authentication middleware
func Auth(authManager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			session, profile, err := authManager.SessionProfile(r.Context(), token)
			if err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, sessionContextKey, session)
			ctx = context.WithValue(ctx, profileContextKey, profile)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the session token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(SessionCookie)
	if err == nil {
		return cookie.Value
	}

	return ""
}

// GetProfile returns the authenticated profile from the request context
func GetProfile(ctx context.Context) *model.UserProfile {
	profile, _ := ctx.Value(profileContextKey).(*model.UserProfile)
	return profile
}

// GetSession returns the session from the request context
func GetSession(ctx context.Context) *model.Session {
	session, _ := ctx.Value(sessionContextKey).(*model.Session)
	return session
}

// MustGetProfile returns the authenticated profile or panics
func MustGetProfile(ctx context.Context) *model.UserProfile {
	profile := GetProfile(ctx)
	if profile == nil {
		panic("no profile in context - auth middleware not applied?")
	}
	return profile
}
