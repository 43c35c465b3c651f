package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/iamankun/studio-sub000/internal/models"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFrom extracts the authenticated user from the request context.
// Returns nil when the request carried no valid token.
func PrincipalFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(principalKey).(*models.User)
	return user
}

// WithPrincipal returns a context carrying user as the authenticated principal.
// Handler tests use this to skip the identity middleware.
func WithPrincipal(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, principalKey, user)
}

// TokenResolver looks an API token up and returns the matching user.
type TokenResolver interface {
	GetByToken(ctx context.Context, token string) (*models.User, error)
}

// Identity resolves the Authorization bearer token to a user and stores it in
// the request context. Requests without a token pass through unauthenticated;
// handlers decide whether a principal is required.
func Identity(resolver TokenResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.GetByToken(r.Context(), token)
			if err != nil {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// Logging records method, path, status, and duration for every request.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(recorder, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start),
			)
		})
	}
}

// RateLimit rejects requests beyond the configured sustained rate with 429.
func RateLimit(perSecond float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				http.Error(w, "Too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
