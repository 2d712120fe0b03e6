package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/hackhub/internal/middleware"
	"github.com/keyxmakerx/hackhub/internal/plugins/auth"
)

// RegisterRoutes builds the auth plugin from the shared infrastructure and
// registers every route. This is the single place where routes are
// aggregated. Fails only on configuration errors.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	e.GET("/healthz", a.healthz)

	tokens, err := auth.NewTokenIssuer(a.Config.Auth.JWTSecret)
	if err != nil {
		return err
	}

	service := auth.NewAuthService(
		auth.NewUserRepository(a.DB),
		auth.NewBcryptHasher(auth.DefaultBcryptCost, a.Config.Auth.HashConcurrency),
		tokens,
		auth.NewRevocationList(a.Redis),
	)
	cookies := auth.NewCookieTransport(a.Config.IsProduction())

	auth.RegisterRoutes(e,
		auth.NewHandler(service, cookies),
		auth.RequireAuth(service, cookies),
		middleware.NewIPRateLimiter(5, time.Minute),
		middleware.NewIPRateLimiter(10, time.Minute),
	)

	return nil
}

// healthz reports whether MariaDB and Redis are reachable.
func (a *App) healthz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := a.Ping(ctx); err != nil {
		slog.Warn("health check failed", slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
