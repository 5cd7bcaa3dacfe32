package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, cfg RateLimitConfig) *RateLimiter {
	t.Helper()
	l := NewRateLimiter(cfg, discardLogger())
	t.Cleanup(l.Stop)
	return l
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	h := newTestLimiter(t, RateLimitConfig{RPS: 0.001, Burst: 2}).Handler(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestRateLimit_SpoofedForwardingHeadersShareOneBucket(t *testing.T) {
	h := newTestLimiter(t, RateLimitConfig{RPS: 1, Burst: 1}).Handler(okHandler())

	allowed := 0
	for i := 0; i < 50; i++ {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		r.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		r.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		if rec.Code == http.StatusOK {
			allowed++
		} else {
			assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		}
	}

	assert.Equal(t, 1, allowed)
}

func TestRateLimit_TrustedProxyForwardsClientAddress(t *testing.T) {
	l := newTestLimiter(t, RateLimitConfig{RPS: 0.001, Burst: 1, TrustedProxies: []string{"10.0.0.0/8"}})
	h := l.Handler(okHandler())

	for _, client := range []string{"198.51.100.1", "198.51.100.2"} {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", nil)
		r.RemoteAddr = "10.0.0.2:80"
		r.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code, client)
	}
	assert.Equal(t, 2, l.store.len())
}

func TestRateLimit_KeysByUserWhenAuthenticated(t *testing.T) {
	l := newTestLimiter(t, RateLimitConfig{RPS: 0.001, Burst: 1})
	h := l.Handler(okHandler())

	for _, user := range []string{"u-1", "u-2"} {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		r = r.WithContext(WithIdentity(r.Context(), &Identity{UserID: user}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code, user)
	}
	assert.Equal(t, 2, l.store.len())
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	l := newTestLimiter(t, RateLimitConfig{})
	assert.Nil(t, l.store)

	h := l.Handler(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	var nilLimiter *RateLimiter
	assert.NotNil(t, nilLimiter.Handler(okHandler()))
	nilLimiter.Stop()
}

func TestRateLimiter_StopEndsCleanupLoop(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		store.cleanupLoop(time.Millisecond, stop)
		close(done)
	}()

	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleanup loop still running after stop")
	}
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	l := NewRateLimiter(RateLimitConfig{RPS: 1, Burst: 1}, discardLogger())
	require.NotPanics(t, func() {
		l.Stop()
		l.Stop()
	})
}

func TestVisitorStore_Cleanup(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	store.get("ip:1")
	now = now.Add(30 * time.Second)
	store.get("ip:2")
	now = now.Add(45 * time.Second)
	store.cleanup()

	assert.Equal(t, 1, store.len())
}

func TestClientIP(t *testing.T) {
	trusted := parseCIDRs([]string{"10.0.0.0/8"}, discardLogger())

	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"untrusted forwarded ignored", "198.51.100.1", "", "203.0.113.7:80", "203.0.113.7"},
		{"untrusted real ip ignored", "", "198.51.100.2", "203.0.113.7:80", "203.0.113.7"},
		{"trusted forwarded chain", "198.51.100.1, 10.0.0.1", "", "10.0.0.2:80", "198.51.100.1"},
		{"spoofed leftmost hop", "192.0.2.66, 198.51.100.1", "", "10.0.0.2:80", "198.51.100.1"},
		{"trusted real ip", "", "198.51.100.2", "10.0.0.2:80", "198.51.100.2"},
		{"all hops trusted", "10.0.0.5", "", "10.0.0.2:80", "10.0.0.2"},
		{"remote addr", "", "", "192.0.2.9:4431", "192.0.2.9"},
		{"garbage forwarded", "nope", "", "10.0.0.2:80", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, clientIP(r, trusted))
		})
	}
}
