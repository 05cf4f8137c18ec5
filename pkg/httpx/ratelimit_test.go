package httpx_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("remote addr", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})
}

func TestForwardedIPKeyExtractor(t *testing.T) {
	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ForwardedIPKeyExtractor(req))
	})

	t.Run("X-Real-IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ForwardedIPKeyExtractor(req))
	})

	t.Run("falls back to peer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		require.Equal(t, "192.168.1.1", httpx.ForwardedIPKeyExtractor(req))
	})
}

func TestRateLimitByIP_ProxyHeaders(t *testing.T) {
	send := func(h http.Handler, xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:1"
		req.Header.Set("X-Forwarded-For", xff)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("rotating header does not reset the bucket", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
		h := httpx.RateLimitByIP(cfg)(okHandler())

		require.Equal(t, http.StatusOK, send(h, "203.0.113.1"))
		require.Equal(t, http.StatusOK, send(h, "203.0.113.2"))
		require.Equal(t, http.StatusTooManyRequests, send(h, "203.0.113.3"))
	})

	t.Run("trusted header keys the bucket", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1, TrustProxyHeaders: true}
		h := httpx.RateLimitByIP(cfg)(okHandler())

		require.Equal(t, http.StatusOK, send(h, "203.0.113.1"))
		require.Equal(t, http.StatusTooManyRequests, send(h, "203.0.113.1"))
		require.Equal(t, http.StatusOK, send(h, "203.0.113.2"))
	})
}

func TestJSONFieldKeyExtractor(t *testing.T) {
	t.Run("reads field and restores body", func(t *testing.T) {
		body := `{"email":"  Wes@Example.com ","password":"x"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "wes@example.com", httpx.JSONFieldKeyExtractor("email")(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	t.Run("missing field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"password":"x"}`))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("email")(req))
	})

	t.Run("not json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`email=a`))
		require.Equal(t, "", httpx.JSONFieldKeyExtractor("email")(req))
	})
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.RemoteAddr = "192.168.1.1:12345"

	ex := httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.UserIDKeyExtractor)
	require.Equal(t, "192.168.1.1", ex(req))

	req = req.WithContext(httpx.WithUserID(req.Context(), "u1"))
	require.Equal(t, "192.168.1.1:u1", ex(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks over limit", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitByIP(cfg)(okHandler())

		for i := range 3 {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "192.168.1.1:1"
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		}

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.1:1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Contains(t, rec.Body.String(), "rate_limit_exceeded")

		other := httptest.NewRequest(http.MethodGet, "/", nil)
		other.RemoteAddr = "192.168.1.2:1"
		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, other)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(okHandler())

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
	h := httpx.RateLimitByIPAndJSONField(cfg, "email")(okHandler())

	send := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"`+email+`"}`))
		req.RemoteAddr = "192.168.1.1:1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("alice@example.com"))
	require.Equal(t, http.StatusOK, send("ALICE@example.com"))
	require.Equal(t, http.StatusTooManyRequests, send("alice@example.com"))
	require.Equal(t, http.StatusOK, send("bob@example.com"))
}

func TestDefaultRateLimits(t *testing.T) {
	l := httpx.DefaultRateLimits()
	for _, cfg := range []httpx.RateLimitConfig{l.Strict, l.Moderate, l.Lenient} {
		require.Positive(t, cfg.RequestsPerWindow)
		require.Positive(t, cfg.Burst)
		require.Positive(t, cfg.Window)
	}
	require.Less(t, l.Strict.RequestsPerWindow, l.Moderate.RequestsPerWindow)
}
