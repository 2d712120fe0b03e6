// Package database provides connection setup for MariaDB (the credential
// store) and Redis (the token revocation list). Both connections are created
// once at startup and shared across the application via dependency
// injection. This package owns the connection lifecycle (open, configure
// pool, ping, close) and the startup migrations.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	// MariaDB driver -- imported for side effect of registering the driver.
	_ "github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/hackhub/internal/config"
)

// connectAttempts bounds how long startup waits for MariaDB.
const connectAttempts = 10

// NewMariaDB opens the credential store pool and waits until MariaDB answers
// a ping. Cancelling ctx (e.g. SIGTERM during a cold start) aborts the wait.
func NewMariaDB(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening mariadb connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := waitForPing(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// waitForPing pings with exponential backoff (1s doubling, capped at 30s).
// MariaDB is usually still starting when the app container launches.
func waitForPing(ctx context.Context, db *sql.DB) error {
	backoff := time.Second
	var pingErr error

	for attempt := 1; attempt <= connectAttempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		pingErr = db.PingContext(pingCtx)
		cancel()
		if pingErr == nil {
			return nil
		}
		if attempt == connectAttempts {
			break
		}

		slog.Warn("mariadb not ready, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("backoff", backoff),
			slog.Any("error", pingErr),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for mariadb: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, 30*time.Second)
	}

	return fmt.Errorf("pinging mariadb after %d attempts: %w", connectAttempts, pingErr)
}
