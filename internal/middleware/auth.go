package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"swatch-backend/internal/services"

	"github.com/rs/zerolog/log"
)

type contextKey string

const subjectKey contextKey = "subject"

// DefaultExemptPaths are never touched by the sliding session layer
var DefaultExemptPaths = []string{"/login", "/register", "/", "/docs", "/openapi.json"}

// TokenRenewer decodes a bearer token and issues its replacement
type TokenRenewer interface {
	Renew(token string) (string, *services.Claims, error)
}

// SlidingSession renews valid bearer tokens on every request outside the
// exempt paths. The new token goes out in refreshHeader. Missing, malformed
// or invalid tokens are passed through without an error; routes that need
// a subject check for one with RequireSubject.
func SlidingSession(tokens TokenRenewer, refreshHeader string, exempt []string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(exempt))
	for _, p := range exempt {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			renewed, claims, err := tokens.Renew(token)
			if err != nil {
				log.Debug().Err(err).Str("path", r.URL.Path).Msg("Bearer token not renewed")
				next.ServeHTTP(w, r)
				return
			}

			// Headers must be set before the handler writes the status line.
			w.Header().Set(refreshHeader, renewed)

			ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSubject rejects requests that did not carry a valid bearer token.
// It must run after SlidingSession.
func RequireSubject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetSubject(r.Context()) == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			respondError(w, "Not authenticated", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}

	return strings.TrimSpace(parts[1]), true
}

// GetSubject returns the username carried by a renewed token, if any
func GetSubject(ctx context.Context) string {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok {
		return ""
	}
	return subject
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}
