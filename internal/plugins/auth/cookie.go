package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// CookieName is the HTTP cookie that carries the session token.
const CookieName = "token"

// CookieTransport writes and reads the session cookie. Its value is always
// exactly the signed token; no other claims are stored client-side.
type CookieTransport struct {
	secure   bool
	sameSite http.SameSite
}

// NewCookieTransport returns the transport for the current environment.
// Production serves the frontend from another origin, so the cookie must be
// SameSite=None, which browsers only accept together with Secure.
func NewCookieTransport(production bool) CookieTransport {
	if production {
		return CookieTransport{secure: true, sameSite: http.SameSiteNoneMode}
	}
	return CookieTransport{secure: false, sameSite: http.SameSiteLaxMode}
}

// Set attaches token to the response as an HTTP-only cookie lasting TokenTTL.
func (t CookieTransport) Set(c echo.Context, token string) {
	c.SetCookie(t.cookie(token, int(TokenTTL.Seconds())))
}

// Clear expires the session cookie. Attributes must match the ones used by
// Set or browsers keep the SameSite=None cookie.
func (t CookieTransport) Clear(c echo.Context) {
	c.SetCookie(t.cookie("", -1))
}

// Read returns the session token from the request, or "" if absent.
func (t CookieTransport) Read(c echo.Context) string {
	cookie, err := c.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (t CookieTransport) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	}
}
