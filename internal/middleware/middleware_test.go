package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestCORS_AllowsConfiguredOriginWithCredentials(t *testing.T) {
	e := echo.New()
	h := CORS(CORSConfig{
		AllowedOrigins:   []string{"https://app.example.com/"},
		AllowCredentials: true,
	})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()

	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("expected origin echoed, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials allowed, got %q", got)
	}
}

func TestCORS_IgnoresUnknownOrigin(t *testing.T) {
	e := echo.New()
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, AllowCredentials: true})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()

	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS headers, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, AllowCredentials: true})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()

	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, OPTIONS" {
		t.Errorf("unexpected allowed methods %q", got)
	}
}

func TestCORS_WildcardDisablesCredentials(t *testing.T) {
	e := echo.New()
	h := CORS(CORSConfig{AllowedOrigins: []string{"*"}, AllowCredentials: true})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example.com")
	rec := httptest.NewRecorder()

	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := rec.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("expected credentials disabled for wildcard, got %q", got)
	}
}

func TestIPRateLimiter_BurstThenRefill(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(2, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("1.2.3.4") || !l.Allow("1.2.3.4") {
		t.Fatal("expected first two requests to pass")
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("expected third request to be limited")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("expected a different IP to have its own bucket")
	}

	now = now.Add(30 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Fatal("expected one token refilled after half the window")
	}
}

func TestIPRateLimiter_AllowSweepsIdleVisitors(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(5, time.Minute)
	l.now = func() time.Time { return now }

	l.Allow("1.2.3.4")
	now = now.Add(90 * time.Second)
	l.Allow("5.6.7.8")
	if got := l.Len(); got != 2 {
		t.Fatalf("expected both visitors before they go idle, got %d", got)
	}

	// Next request after the sweep interval drops 1.2.3.4, idle for 150s.
	now = now.Add(60 * time.Second)
	l.Allow("9.9.9.9")

	if got := l.Len(); got != 2 {
		t.Errorf("expected 2 visitors after sweep, got %d", got)
	}
	l.mu.Lock()
	_, stale := l.visitors["1.2.3.4"]
	l.mu.Unlock()
	if stale {
		t.Error("expected idle visitor 1.2.3.4 to be swept")
	}
}

func TestRateLimit_Returns429(t *testing.T) {
	e := echo.New()
	h := RateLimit(NewIPRateLimiter(1, time.Minute))(okHandler)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.9:5555"
		rec := httptest.NewRecorder()
		if err := h(e.NewContext(req, rec)); err != nil {
			t.Fatalf("request %d: unexpected error: %v", i, err)
		}
		if rec.Code != want {
			t.Errorf("request %d: expected %d, got %d", i, want, rec.Code)
		}
	}
}

func TestRecovery_ConvertsPanicToJSON500(t *testing.T) {
	e := echo.New()
	h := Recovery()(func(c echo.Context) error {
		panic("boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	if err := h(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "{\"error\":\"Internal Server Error\"}\n" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestIPExtractor_TrustsHeadersOnlyFromProxies(t *testing.T) {
	extract := buildIPExtractor([]string{"10.0.0.0/8", "not-a-cidr"})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:1234"
	req.Header.Set("X-Forwarded-For", "198.51.100.7, 10.1.2.3")
	if got := extract(req); got != "198.51.100.7" {
		t.Errorf("expected forwarded client IP, got %q", got)
	}

	req.RemoteAddr = "198.51.100.99:1234"
	if got := extract(req); got != "198.51.100.99" {
		t.Errorf("expected direct IP for untrusted peer, got %q", got)
	}
}

func TestSecurityHeaders_HSTSOnlyWhenEnabled(t *testing.T) {
	e := echo.New()
	for _, hsts := range []bool{false, true} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		if err := SecurityHeaders(hsts)(okHandler)(e.NewContext(req, rec)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := rec.Header().Get("Strict-Transport-Security") != ""
		if got != hsts {
			t.Errorf("hsts=%v: header present=%v", hsts, got)
		}
		if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("expected nosniff header")
		}
	}
}
