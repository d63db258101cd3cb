package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"campaignhub/internal/domain"
	"campaignhub/internal/session"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	sessionContextKey contextKey = "session"
)

const authCookie = "auth_token"

// authMiddleware resolves the session of the caller. The profile is
// reloaded on every request so role and shop changes apply immediately.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			s.respondError(w, r, session.ErrInvalidToken)
			return
		}

		claims, err := s.sessions.Parse(tokenString)
		if err != nil {
			clearAuthCookie(w)
			s.respondError(w, r, err)
			return
		}

		sess, err := s.sessions.RefreshProfile(r.Context(), claims)
		if err != nil {
			clearAuthCookie(w)
			if isNotFound(err) {
				err = session.ErrInvalidToken
			}
			s.respondError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken reads the token from the cookie first, then the
// Authorization header
func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie(authCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// roleMiddleware restricts access based on user role
func (s *Server) roleMiddleware(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := getSession(r)
			if sess == nil {
				s.respondError(w, r, session.ErrInvalidToken)
				return
			}

			allowed := false
			for _, role := range allowedRoles {
				if sess.Profile.Role == role {
					allowed = true
					break
				}
			}

			// Admin always has access
			if sess.Profile.HasAdminRights() {
				allowed = true
			}

			if !allowed {
				s.respondError(w, r, fmt.Errorf("%w: requires role %s", domain.ErrForbidden, strings.Join(allowedRoles, " or ")))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// getSession extracts the session from request context
func getSession(r *http.Request) *session.Session {
	sess, ok := r.Context().Value(sessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}

// setAuthCookie sets the authentication cookie
func (s *Server) setAuthCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !s.config.Debug, // Enable in production with HTTPS
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookie removes the authentication cookie
func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// loggingMiddleware logs one line per request
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response wrapper to capture status code
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(ww, r)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.statusCode),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("remote", r.RemoteAddr),
		}
		if ww.statusCode >= http.StatusInternalServerError {
			s.logger.Warn("request", fields...)
			return
		}
		s.logger.Info("request", fields...)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
