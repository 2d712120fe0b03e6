package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

// mysqlErrDuplicateEntry is the MariaDB/MySQL error number for a unique key
// violation (ER_DUP_ENTRY).
const mysqlErrDuplicateEntry = 1062

// Client-facing conflict messages, keyed off the unique index names declared
// in db/migrations/000001_create_users.up.sql.
const (
	MsgUsernameTaken = "Username already exists."
	MsgEmailTaken    = "Email already used."
)

// UserRepository defines the data access contract for the credential store.
// All SQL lives in the concrete implementation -- no SQL leaks out.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user row. Uniqueness of username and email is left to
// the table's unique keys so concurrent signups cannot both succeed; a
// violation comes back as a 409 naming the field.
func (r *userRepository) Create(ctx context.Context, user *User) error {
	query := `INSERT INTO users (id, username, email, password_hash, created_at)
	          VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		return translateInsertError(err)
	}
	return nil
}

// FindByID retrieves a user by their UUID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at
	          FROM users WHERE id = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return user, nil
}

// FindByEmail retrieves a user by their (already normalized) email address.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT id, username, email, password_hash, created_at
	          FROM users WHERE email = ?`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("querying user by email: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("User not found")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// translateInsertError maps a duplicate-key failure to a conflict naming the
// violated field. MariaDB reports the key as 'uq_users_email'; MySQL 8 as
// 'users.uq_users_email', so match on the index name alone.
func translateInsertError(err error) error {
	var myErr *mysql.MySQLError
	if !errors.As(err, &myErr) || myErr.Number != mysqlErrDuplicateEntry {
		return fmt.Errorf("inserting user: %w", err)
	}

	switch {
	case strings.Contains(myErr.Message, "uq_users_username"):
		return apperror.NewConflict(MsgUsernameTaken)
	case strings.Contains(myErr.Message, "uq_users_email"):
		return apperror.NewConflict(MsgEmailTaken)
	default:
		return apperror.NewConflict("User already exists.")
	}
}
