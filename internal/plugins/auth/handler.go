package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

// errMissingUserID means /me was mounted without RequireAuth.
var errMissingUserID = errors.New("auth middleware not applied")

// Handler handles the auth HTTP endpoints. Handlers are thin: they bind the
// request, call the service, and write the response. No business logic
// lives here.
type Handler struct {
	service AuthService
	cookies CookieTransport
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService, cookies CookieTransport) *Handler {
	return &Handler{service: service, cookies: cookies}
}

// Signup creates an account (POST /signup).
func (h *Handler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Invalid request body")
	}

	user, err := h.service.Signup(c.Request().Context(), SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, SignupResponse{
		Message: "User created",
		User:    user.Public(),
	})
}

// Login checks credentials and sets the session cookie (POST /login). The
// response body carries no user data; clients call /me afterwards.
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("Invalid request body")
	}

	token, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.cookies.Set(c, token)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Login successful"})
}

// Me returns the authenticated user (GET /me). Must run behind RequireAuth.
func (h *Handler) Me(c echo.Context) error {
	userID := GetUserID(c)
	if userID == "" {
		return apperror.NewInternal(errMissingUserID)
	}

	user, err := h.service.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MeResponse{User: user.Public()})
}

// Logout revokes the presented token and clears the cookie (POST /logout).
// It always answers 200: the cookie is gone either way, and a revocation
// failure only means the token stays valid until its natural expiry.
func (h *Handler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), h.cookies.Read(c)); err != nil {
		slog.Warn("token revocation failed on logout", slog.Any("error", err))
	}

	h.cookies.Clear(c)
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}
