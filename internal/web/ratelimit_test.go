package web

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	defer rl.stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	require.True(t, rl.allow("a"))
	require.True(t, rl.allow("a"))
	assert.False(t, rl.allow("a"), "third request in window is limited")
	assert.True(t, rl.allow("b"), "other clients have their own budget")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("a"), "budget resets after the window")
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := newRateLimiter(1, time.Minute)
	defer rl.stop()
	h := rl.middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
}

func TestLocalReferer(t *testing.T) {
	tests := []struct {
		referer string
		want    string
	}{
		{"", "/inventory"},
		{"http://example.com/help", "/help"},
		{"http://example.com/inventory?page=2", "/inventory?page=2"},
		{"http://evil.test/phish", "/inventory"},
		{"not a url\x7f", "/inventory"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "http://example.com/x", nil)
		if tt.referer != "" {
			req.Header.Set("Referer", tt.referer)
		}
		assert.Equal(t, tt.want, localReferer(req, "/inventory"), "referer %q", tt.referer)
	}
}
