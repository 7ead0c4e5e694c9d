package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"strings"
	"testing"
	"time"

	"geoattend/internal/platform/metrics"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGeneratesAndPropagates(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Fatalf("expected generated request id, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc-123" {
		t.Fatalf("expected caller request id, got %q", seen)
	}
}

func TestLoggerRecordsMetrics(t *testing.T) {
	collector := metrics.New()
	h := Logger(collector)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "missing") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	snap := collector.Snapshot()
	if snap["requestsTotal"] != uint64(2) {
		t.Fatalf("expected 2 requests, got %v", snap["requestsTotal"])
	}
	if snap["clientErrorsTotal"] != uint64(1) {
		t.Fatalf("expected 1 client error, got %v", snap["clientErrorsTotal"])
	}
}

func TestRateLimitPerClientIP(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/runs", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		if rl.enforce(rec, req) {
			rec.WriteHeader(http.StatusOK)
		}
		return rec.Code
	}

	if call("10.0.0.1") != http.StatusOK || call("10.0.0.1") != http.StatusOK {
		t.Fatal("expected first two requests to pass")
	}
	if code := call("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := call("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", code)
	}

	now = now.Add(2 * time.Minute)
	if code := call("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("expected reset after window, got %d", code)
	}
}

func TestRateLimitDisabled(t *testing.T) {
	h := RateLimit(0, time.Minute)(okHandler())
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	}
}

func TestRateLimitSweepsExpiredClients(t *testing.T) {
	rl := newRateLimiter(5, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = fmt.Sprintf("10.0.1.%d:5000", i)
		rl.enforce(httptest.NewRecorder(), req)
	}
	if len(rl.clients) != 50 {
		t.Fatalf("expected 50 buckets, got %d", len(rl.clients))
	}

	now = now.Add(2 * time.Minute)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.2.1:5000"
	rl.enforce(httptest.NewRecorder(), req)
	if len(rl.clients) != 1 {
		t.Fatalf("expected expired buckets to be dropped, got %d", len(rl.clients))
	}
}

func resolvedIP(t *testing.T, trusted []netip.Prefix, remoteAddr, forwarded string) string {
	t.Helper()
	var got string
	h := ClientAddr(trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = ClientIP(r)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	if forwarded != "" {
		req.Header.Set("X-Forwarded-For", forwarded)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestClientAddrIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	if ip := resolvedIP(t, nil, "192.168.1.5:1234", "203.0.113.7"); ip != "192.168.1.5" {
		t.Fatalf("expected peer address, got %q", ip)
	}
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	if ip := resolvedIP(t, trusted, "192.168.1.5:1234", "203.0.113.7"); ip != "192.168.1.5" {
		t.Fatalf("expected peer address, got %q", ip)
	}
}

func TestClientAddrUsesForwardedForBehindTrustedProxy(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	// the left-most hop is client supplied; the proxy appends the real peer
	if ip := resolvedIP(t, trusted, "10.0.0.1:1234", "198.51.100.9, 203.0.113.7, 10.0.0.2"); ip != "203.0.113.7" {
		t.Fatalf("expected right-most untrusted hop, got %q", ip)
	}
	if ip := resolvedIP(t, trusted, "10.0.0.1:1234", ""); ip != "10.0.0.1" {
		t.Fatalf("expected proxy address without header, got %q", ip)
	}
	if ip := resolvedIP(t, trusted, "10.0.0.1:1234", "not-an-ip"); ip != "10.0.0.1" {
		t.Fatalf("expected proxy address for garbage header, got %q", ip)
	}
}

func TestRateLimitCannotBeDodgedWithForwardedFor(t *testing.T) {
	h := ClientAddr(nil)(RateLimit(1, time.Minute)(okHandler()))
	codes := make([]int, 0, 2)
	for _, fwd := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.5:1234"
		req.Header.Set("X-Forwarded-For", fwd)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be limited, got %v", codes)
	}
}

func TestSecureHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecureHeaders(true)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("expected nosniff header")
	}
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Fatal("expected HSTS in production")
	}

	rec = httptest.NewRecorder()
	SecureHeaders(false)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("expected no HSTS outside production")
	}
}

func TestBodyLimitRejectsLargePayload(t *testing.T) {
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 32))))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}
