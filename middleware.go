package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"turfreports/internal/auth"
	"turfreports/internal/httputil"
)

type contextKey string

const (
	SessionKey   contextKey = "session"
	RequestIDKey contextKey = "request_id"
)

// SessionFromContext returns the authenticated session placed by
// AuthMiddleware. Handlers behind the middleware can rely on it being set.
func SessionFromContext(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(SessionKey).(*auth.Session)
	return sess
}

func (app *App) RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				app.Log.Error().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("panic", fmt.Sprintf("%v", err)).
					Str("remote_addr", r.RemoteAddr).
					Msg("Panic recovered in HTTP handler")
				httputil.InternalError(w, fmt.Errorf("%v", err), app.Config.Debug)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (app *App) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: 200}
		r = r.WithContext(context.WithValue(r.Context(), RequestIDKey, requestID))

		next.ServeHTTP(wrapper, r)

		app.Log.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status_code", wrapper.statusCode).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Str("remote_addr", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("HTTP request completed")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// CORSMiddleware echoes the request origin and allows credentials, since the
// frontend talks to the API with session cookies from another origin.
func (app *App) CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "86400")
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-CSRF-Token, X-Requested-With")
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware applies the fixed window per client. Requests with a
// session cookie are keyed by it so clients behind one NAT don't share a
// budget; everything else falls back to the remote address.
func (app *App) RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if cookie, err := r.Cookie(auth.SessionName); err == nil && cookie.Value != "" {
			key = cookie.Value
		}

		if !app.Limiter.Allow(key) {
			app.Log.Warn().
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Msg("Rate limit exceeded")
			httputil.RateLimitError(w)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware resolves the session and rejects the request when there is
// none. Being an API, it answers 401 instead of redirecting.
func (app *App) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := app.Sessions.Current(w, r)
		if sess == nil {
			httputil.AuthenticationError(w)
			return
		}

		ctx := context.WithValue(r.Context(), SessionKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequirePermission gates a handler on one permission of the session role.
func (app *App) RequirePermission(perm auth.Permission, next http.HandlerFunc) http.HandlerFunc {
	return app.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		sess := SessionFromContext(r.Context())
		if !sess.HasPermission(perm) {
			app.Log.Warn().
				Str("username", sess.Username).
				Str("role", string(sess.Role)).
				Str("permission", string(perm)).
				Str("path", r.URL.Path).
				Msg("Permission denied")
			httputil.AuthorizationError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRFMiddleware validates the X-CSRF-Token header on state-changing methods
// against the token stored in the session.
func (app *App) CSRFMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodDelete {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				httputil.AuthenticationError(w)
				return
			}

			provided := r.Header.Get("X-CSRF-Token")
			if provided == "" {
				provided = r.FormValue("csrf_token")
			}

			if !sess.ValidateCSRFToken(provided) {
				app.Log.Warn().
					Str("username", sess.Username).
					Str("path", r.URL.Path).
					Msg("CSRF token mismatch")
				httputil.RespondWithError(w, http.StatusForbidden, "Token CSRF inválido")
				return
			}
		}

		next.ServeHTTP(w, r)
	}
}
