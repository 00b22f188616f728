package middleware

import (
	"context"
	"net/http"
)

type contextKey string

const sessionContextKey contextKey = "session"

// RequireSession is middleware that requires a valid logged-in session.
func RequireSession(sm *SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := sm.GetSessionFromRequest(r)
			if session == nil {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			// Add session to context
			ctx := context.WithValue(r.Context(), sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSuperUser restricts a route group to review-mode sessions. It
// must run after RequireSession.
func RequireSuperUser() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := GetSessionFromContext(r.Context())
			if session == nil || !session.SuperUser {
				http.Error(w, `{"error": "super user access required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSessionFromContext retrieves the session from the request context
func GetSessionFromContext(ctx context.Context) *Session {
	session, ok := ctx.Value(sessionContextKey).(*Session)
	if !ok {
		return nil
	}
	return session
}

// SetSessionInContext adds a session to the context.
// This is primarily for testing - use RequireSession middleware in production.
func SetSessionInContext(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}
