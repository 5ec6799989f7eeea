package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"questbuddy/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	ClaimsContextKey  ContextKey = "claims"
	TraceIDContextKey ContextKey = "traceID"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokenSecret string
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(tokenSecret string) *Middleware {
	return &Middleware{tokenSecret: tokenSecret}
}

// RequireToken validates the bearer token and puts its claims on the
// request context.
func (m *Middleware) RequireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondWithError(w, http.StatusUnauthorized, "Missing bearer token", "", nil)
			return
		}

		claims, err := security.ParseDeviceToken(m.tokenSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Invalid token", "Token validation failed", err)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// Logging middleware tags each request with a trace ID and logs it
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get("X-Trace-Id")
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set("X-Trace-Id", traceID)

		ctx := context.WithValue(r.Context(), TraceIDContextKey, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))

		log.Printf("[%s] %s %s %s", traceID, r.Method, r.URL.Path, time.Since(start))
	})
}

// GetClaimsFromContext retrieves the token claims from the request context
func GetClaimsFromContext(ctx context.Context) *security.Claims {
	claims, ok := ctx.Value(ClaimsContextKey).(*security.Claims)
	if !ok {
		return nil
	}
	return claims
}
