package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fasterr/marketplace/internal/security/auth"
	"github.com/fasterr/marketplace/internal/security/ratelimit"
)

func newTestLimiter(t *testing.T) *ratelimit.Limiter {
	t.Helper()
	l := ratelimit.NewLimiter(100, time.Minute)
	t.Cleanup(l.Stop)
	return l
}

func protectedEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("user:" + GetUserFromContext(r.Context())))
	})
}

func TestJWTMiddlewareAllowsPublicPaths(t *testing.T) {
	tm := auth.NewTokenManager("secret", "fasterr")
	h := JWTMiddleware(tm, nil)(protectedEcho(t))

	public := []struct {
		method, path string
	}{
		{http.MethodGet, "/healthz"},
		{http.MethodGet, "/metrics"},
		{http.MethodGet, "/api/products"},
		{http.MethodGet, "/api/products/p1"},
		{http.MethodGet, "/api/catalog"},
		{http.MethodGet, "/api/sellers/u1/stats"},
		{http.MethodPost, "/api/auth/login"},
		{http.MethodPost, "/api/auth/register"},
	}
	for _, tc := range public {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s should be public, got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestJWTMiddlewareLetsPreflightReachCORSHandler(t *testing.T) {
	tm := auth.NewTokenManager("secret", "fasterr")
	cors := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", r.Header.Get("Origin"))
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		protectedEcho(t).ServeHTTP(w, r)
	})
	h := JWTMiddleware(tm, nil)(RateLimitMiddleware(newTestLimiter(t), nil)(cors))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight should reach the CORS handler, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatalf("preflight response missing CORS headers")
	}
}

func TestJWTMiddlewareRejectsMutationsWithoutToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", "fasterr")
	h := JWTMiddleware(tm, nil)(protectedEcho(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/catalog", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestJWTMiddlewarePassesClaimsThrough(t *testing.T) {
	tm := auth.NewTokenManager("secret", "fasterr")
	h := JWTMiddleware(tm, nil)(protectedEcho(t))

	token, err := tm.GenerateToken("u1", "Alice", "alice@example.com", time.Hour)
	if err != nil {
		t.Fatalf("generate token failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "user:u1" {
		t.Fatalf("claims not propagated: %q", rec.Body.String())
	}
}

func TestJWTMiddlewareRejectsGarbageToken(t *testing.T) {
	tm := auth.NewTokenManager("secret", "fasterr")
	h := JWTMiddleware(tm, nil)(protectedEcho(t))

	req := httptest.NewRequest(http.MethodPost, "/api/catalog", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
