// Package auth handles user signup, login, session lookup, and logout for
// hackhub. Sessions are stateless: a signed JWT carrying only the user ID
// rides in an HTTP-only cookie, and a Redis revocation list lets logout
// invalidate a token before it expires.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"context"
	"fmt"
	"time"
)

// User represents a registered hackhub user as stored in the credential
// store. PasswordHash is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetPassword hashes plaintext and stores the digest on the user. It is the
// only code path that assigns PasswordHash, so saving a user for any other
// reason never re-hashes an existing digest.
func (u *User) SetPassword(ctx context.Context, hasher PasswordHasher, plaintext string) error {
	hash, err := hasher.Hash(ctx, plaintext)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

// Public returns the subset of the user that clients may see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// PublicUser is the client-facing user payload.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// --- Request DTOs (bound from HTTP requests) ---

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// SignupInput is the raw input for creating a new user. The service trims,
// lowercases, and validates it.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput is the input for authenticating a user.
type LoginInput struct {
	Email    string
	Password string
}

// --- Response DTOs ---

// SignupResponse echoes the created record.
type SignupResponse struct {
	Message string     `json:"message"`
	User    PublicUser `json:"user"`
}

// MeResponse is the body of GET /me.
type MeResponse struct {
	User PublicUser `json:"user"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}
