package limiter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) int {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w.Code
}

func TestMiddlewareAllowsWithinBurst(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 3)
	h := l.Middleware(okHandler())

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234"))
	}
}

func TestMiddlewareRejectsWhenBucketEmpty(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)
	h := l.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:1234"))
}

func TestMiddlewareTracksIPsIndependently(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(0.001), 1)
	h := l.Middleware(okHandler())

	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:5678"), "same IP, different port")
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.2:1234"), "a different IP has its own bucket")
}

func TestGetLimiterReusesInstance(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)

	first := l.GetLimiter("10.0.0.1")
	second := l.GetLimiter("10.0.0.1")

	assert.Same(t, first, second)
}
