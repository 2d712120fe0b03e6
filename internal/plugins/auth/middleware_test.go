package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

// mockAuthService lets middleware tests pick the verification outcome.
type mockAuthService struct {
	AuthService
	authenticateFn func(ctx context.Context, token string) (string, error)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (string, error) {
	return m.authenticateFn(ctx, token)
}

// testErrorHandler renders errors the way the app's handler does.
func testErrorHandler(err error, c echo.Context) {
	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		_ = c.JSON(echoErr.Code, map[string]string{"error": http.StatusText(echoErr.Code)})
		return
	}
	_ = c.JSON(apperror.SafeCode(err), map[string]string{"error": apperror.SafeMessage(err)})
}

func runGate(t *testing.T, svc AuthService, cookie *http.Cookie) (*httptest.ResponseRecorder, string) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = testErrorHandler

	var seen string
	e.GET("/me", func(c echo.Context) error {
		seen = GetUserID(c)
		if fromCtx, _ := UserIDFromContext(c.Request().Context()); fromCtx != seen {
			t.Errorf("request context user = %q, echo context user = %q", fromCtx, seen)
		}
		return c.NoContent(http.StatusOK)
	}, RequireAuth(svc, NewCookieTransport(false)))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding error body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestRequireAuth_NoCookie(t *testing.T) {
	called := false
	svc := &mockAuthService{authenticateFn: func(context.Context, string) (string, error) {
		called = true
		return "", nil
	}}

	rec, seen := runGate(t, svc, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != MsgNoToken {
		t.Errorf("error = %q, want %q", msg, MsgNoToken)
	}
	if called || seen != "" {
		t.Error("handler or verifier ran without a cookie")
	}
}

func TestRequireAuth_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
		clears   bool
	}{
		{"invalid", ErrInvalidToken, http.StatusUnauthorized, MsgInvalidToken, true},
		{"expired", ErrExpiredToken, http.StatusUnauthorized, MsgExpiredToken, true},
		{"revoked", ErrTokenRevoked, http.StatusUnauthorized, MsgRevokedToken, true},
		{"not yet active", ErrTokenNotActive, http.StatusInternalServerError, "Internal server error", false},
		{"backend failure", errors.New("redis down"), http.StatusInternalServerError, "Internal server error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAuthService{authenticateFn: func(context.Context, string) (string, error) {
				return "", tt.err
			}}

			rec, seen := runGate(t, svc, &http.Cookie{Name: CookieName, Value: "tok"})
			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if msg := errorMessage(t, rec); msg != tt.wantMsg {
				t.Errorf("error = %q, want %q", msg, tt.wantMsg)
			}
			if seen != "" {
				t.Error("handler ran for a rejected token")
			}

			cleared := false
			for _, c := range rec.Result().Cookies() {
				if c.Name == CookieName && c.MaxAge < 0 {
					cleared = true
				}
			}
			if cleared != tt.clears {
				t.Errorf("cookie cleared = %v, want %v", cleared, tt.clears)
			}
		})
	}
}

func TestRequireAuth_Admits(t *testing.T) {
	var gotToken string
	svc := &mockAuthService{authenticateFn: func(_ context.Context, token string) (string, error) {
		gotToken = token
		return "user-42", nil
	}}

	rec, seen := runGate(t, svc, &http.Cookie{Name: CookieName, Value: "good-token"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotToken != "good-token" {
		t.Errorf("verified token = %q", gotToken)
	}
	if seen != "user-42" {
		t.Errorf("GetUserID() = %q, want user-42", seen)
	}
}

func TestRequireAuth_RealTokens(t *testing.T) {
	svc := newTestService(t, &mockUserRepo{}, nil)

	token, err := svc.tokens.Issue("user-7")
	if err != nil {
		t.Fatal(err)
	}
	rec, seen := runGate(t, svc, &http.Cookie{Name: CookieName, Value: token})
	if rec.Code != http.StatusOK || seen != "user-7" {
		t.Fatalf("status = %d user = %q, want 200 user-7", rec.Code, seen)
	}

	other, _ := NewTokenIssuer("another-secret-with-enough-length!!")
	forged, _ := other.Issue("user-7")
	rec, _ = runGate(t, svc, &http.Cookie{Name: CookieName, Value: forged})
	if rec.Code != http.StatusUnauthorized || errorMessage(t, rec) != MsgInvalidToken {
		t.Errorf("forged token: status = %d body = %s", rec.Code, rec.Body.String())
	}

	expiredIssuer, _ := NewTokenIssuer(testSecret)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	expired, _ := expiredIssuer.Issue("user-7")
	rec, _ = runGate(t, svc, &http.Cookie{Name: CookieName, Value: expired})
	if rec.Code != http.StatusUnauthorized || errorMessage(t, rec) != MsgExpiredToken {
		t.Errorf("expired token: status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestGetUserID_Unauthenticated(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	if got := GetUserID(c); got != "" {
		t.Errorf("GetUserID() = %q, want empty", got)
	}
	if _, ok := UserIDFromContext(context.Background()); ok {
		t.Error("UserIDFromContext() ok on empty context")
	}
}
