package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

// Client-facing rejection messages of the auth gate.
const (
	MsgNoToken      = "Access denied. No token provided."
	MsgInvalidToken = "Invalid token"
	MsgExpiredToken = "Token expired"
	MsgRevokedToken = "Token revoked"
)

// contextKeyUserID is the Echo context key holding the authenticated user ID.
const contextKeyUserID = "auth_user_id"

// userIDKey is the context.Context key for the authenticated user ID.
type userIDKey struct{}

// RequireAuth returns middleware that admits a request only if it carries a
// valid, unrevoked session cookie. The decoded user ID is stored on both the
// Echo context (GetUserID) and the request context (UserIDFromContext).
// Verification happens exactly once per request; nothing is retried.
func RequireAuth(service AuthService, cookies CookieTransport) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := cookies.Read(c)
			if token == "" {
				return apperror.NewUnauthorized(MsgNoToken)
			}

			userID, err := service.Authenticate(c.Request().Context(), token)
			if err != nil {
				return rejectToken(c, cookies, err)
			}

			c.Set(contextKeyUserID, userID)
			req := c.Request()
			c.SetRequest(req.WithContext(context.WithValue(req.Context(), userIDKey{}, userID)))

			return next(c)
		}
	}
}

// rejectToken classifies a verification failure. Known token problems are
// 401s and clear the stale cookie; anything else is a generic 500.
func rejectToken(c echo.Context, cookies CookieTransport, err error) error {
	var msg string
	switch {
	case errors.Is(err, ErrInvalidToken):
		msg = MsgInvalidToken
	case errors.Is(err, ErrExpiredToken):
		msg = MsgExpiredToken
	case errors.Is(err, ErrTokenRevoked):
		msg = MsgRevokedToken
	default:
		slog.Error("token verification failed",
			slog.Any("error", err),
			slog.String("path", c.Request().URL.Path),
		)
		return apperror.NewInternalWithMessage("Internal server error", err)
	}

	cookies.Clear(c)
	return apperror.NewUnauthorized(msg)
}

// --- Exported getters for other plugins ---

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// UserIDFromContext retrieves the authenticated user's ID from a request
// context, for code below the HTTP layer.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}
