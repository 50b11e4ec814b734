package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func rateLimitedHandler(limiter func(http.Handler) http.Handler) http.Handler {
	return limiter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func burst(t *testing.T, handler http.Handler, requests int) (allowed, limited int) {
	t.Helper()
	for i := 0; i < requests; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "198.51.100.7:4242"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		switch rec.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			limited++
		default:
			t.Fatalf("unexpected status %d", rec.Code)
		}
	}
	return allowed, limited
}

func TestStrictRateLimiterThrottlesBurst(t *testing.T) {
	handler := rateLimitedHandler(StrictRateLimiter())

	allowed, limited := burst(t, handler, 50)
	if allowed != 10 {
		t.Errorf("expected 10 requests allowed, got %d", allowed)
	}
	if limited != 40 {
		t.Errorf("expected 40 requests limited, got %d", limited)
	}
}

func TestRateLimiterAllowsNormalTraffic(t *testing.T) {
	handler := rateLimitedHandler(RateLimiter())

	allowed, limited := burst(t, handler, 50)
	if allowed != 50 {
		t.Errorf("expected all 50 requests allowed, got %d allowed, %d limited", allowed, limited)
	}
}
