package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/hackhub/internal/middleware"
)

// RegisterRoutes sets up the auth endpoints on the given Echo instance.
// Signup and login are rate-limited per IP; each call costs a bcrypt run.
// /me sits behind requireAuth; logout does not, so a client holding an
// expired or broken cookie can still clear it.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc, signupLimit, loginLimit *middleware.IPRateLimiter) {
	e.POST("/signup", h.Signup, middleware.RateLimit(signupLimit))
	e.POST("/login", h.Login, middleware.RateLimit(loginLimit))
	e.GET("/me", h.Me, requireAuth)
	e.POST("/logout", h.Logout)
}
