package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"fitpulse/internal/session"
)

const sessionCookieName = "fitpulse_session"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func newSlogMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			duration := time.Since(start)
			logger.Info("http request", "method", r.Method, "path", r.URL.Path, "status", recorder.status, "duration", duration.String())
		})
	}
}

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const sessionIDContextKey contextKey = "sessionID"

// SessionIDFromContext extracts the session identifier placed by the
// session middleware. Returns "" if the middleware did not run.
func SessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}

// newSessionMiddleware associates every request with an opaque session
// identifier. A browser without a session cookie gets one on its first
// response; the store record itself is only created when tokens are
// written during the OAuth callback.
func newSessionMiddleware(secureCookie bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
				id = cookie.Value
			} else {
				newID, err := session.NewID()
				if err != nil {
					logger.Error("failed to generate session id", "error", err)
					writeError(w, http.StatusInternalServerError, "internal error")
					return
				}
				id = newID
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionIDContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
