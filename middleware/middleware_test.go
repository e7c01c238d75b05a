package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultd/logs"
)

func TestAllowWindow(t *testing.T) {
	l, err := NewRateLimiter(2, time.Second, 16)
	require.NoError(t, err)
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("1.2.3.4"))
	assert.True(t, l.Allow("1.2.3.4"))
	assert.False(t, l.Allow("1.2.3.4"))
	// 其它 IP 互不影响
	assert.True(t, l.Allow("5.6.7.8"))

	now = now.Add(2 * time.Second)
	assert.True(t, l.Allow("1.2.3.4"))
}

func TestDisabledLimiter(t *testing.T) {
	l, err := NewRateLimiter(0, time.Second, 0)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow("1.2.3.4"))
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	l, err := NewRateLimiter(1, time.Minute, 16)
	require.NoError(t, err)
	h := LogRequests(logs.NewNopLogger(), l.RateLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	do := func() int {
		req := httptest.NewRequest(http.MethodGet, "/status", nil)
		req.RemoteAddr = "[::1]:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}
	assert.Equal(t, http.StatusNoContent, do())
	assert.Equal(t, http.StatusTooManyRequests, do())
}
