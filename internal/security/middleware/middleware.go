package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/fasterr/marketplace/internal/security/auth"
	"github.com/fasterr/marketplace/internal/security/ratelimit"
)

type UserContextKey struct{}
type ClaimsContextKey struct{}

// publicPath reports whether the request can be served without a token
func publicPath(r *http.Request) bool {
	// CORS preflights carry no Authorization header and must reach the
	// CORS handler so it can answer them
	if r.Method == http.MethodOptions {
		return true
	}
	if r.URL.Path == "/healthz" || r.URL.Path == "/readyz" || r.URL.Path == "/metrics" ||
		r.URL.Path == "/api/auth/register" || r.URL.Path == "/api/auth/login" ||
		strings.HasPrefix(r.URL.Path, "/ws/threads/") {
		return true
	}
	// Browsing is open to guests; every mutation needs a token
	if r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return false
}

func JWTMiddleware(tm *auth.TokenManager, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			tokenString, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			claims, err := tm.ValidateToken(tokenString)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClaimsContextKey{}, claims)
			ctx = context.WithValue(ctx, UserContextKey{}, claims.UserID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPath(r) {
				next.ServeHTTP(w, r)
				return
			}

			userID := ""
			if u := r.Context().Value(UserContextKey{}); u != nil {
				userID = u.(string)
			}

			if !limiter.Allow(userID) {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetUserFromContext(ctx context.Context) string {
	if u := ctx.Value(UserContextKey{}); u != nil {
		return u.(string)
	}
	return ""
}

func GetClaimsFromContext(ctx context.Context) *auth.Claims {
	if c := ctx.Value(ClaimsContextKey{}); c != nil {
		return c.(*auth.Claims)
	}
	return nil
}
