package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatalf("no %q cookie in response", CookieName)
	return nil
}

func TestCookieTransport_SetProduction(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

	NewCookieTransport(true).Set(c, "signed.jwt.value")

	cookie := sessionCookie(t, rec)
	if cookie.Value != "signed.jwt.value" {
		t.Errorf("Value = %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly")
	}
	if !cookie.Secure {
		t.Error("expected Secure in production")
	}
	if cookie.SameSite != http.SameSiteNoneMode {
		t.Errorf("SameSite = %v, want None", cookie.SameSite)
	}
	if cookie.MaxAge != 604800 {
		t.Errorf("MaxAge = %d, want 604800", cookie.MaxAge)
	}
	if cookie.Path != "/" {
		t.Errorf("Path = %q, want /", cookie.Path)
	}
}

func TestCookieTransport_SetDevelopment(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)

	NewCookieTransport(false).Set(c, "tok")

	cookie := sessionCookie(t, rec)
	if cookie.Secure {
		t.Error("expected non-Secure cookie in development")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly")
	}
}

func TestCookieTransport_Clear(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec)

	NewCookieTransport(true).Clear(c)

	cookie := sessionCookie(t, rec)
	if cookie.Value != "" {
		t.Errorf("expected empty value, got %q", cookie.Value)
	}
	if cookie.MaxAge >= 0 {
		t.Errorf("expected negative MaxAge, got %d", cookie.MaxAge)
	}
	if !cookie.Secure || cookie.SameSite != http.SameSiteNoneMode {
		t.Error("expected cleared cookie to keep production attributes")
	}
}

func TestCookieTransport_Read(t *testing.T) {
	e := echo.New()
	transport := NewCookieTransport(false)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if got := transport.Read(e.NewContext(req, httptest.NewRecorder())); got != "" {
		t.Errorf("Read() without cookie = %q, want empty", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "abc"})
	if got := transport.Read(e.NewContext(req, httptest.NewRecorder())); got != "abc" {
		t.Errorf("Read() = %q, want %q", got, "abc")
	}
}
