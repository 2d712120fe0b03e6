package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

// Field constraints for new accounts.
const (
	minUsernameLen = 3
	maxUsernameLen = 64
	maxEmailLen    = 255
	minPasswordLen = 6
	// bcrypt rejects input beyond 72 bytes.
	maxPasswordBytes = 72
)

// emailPattern is the accepted address shape: word characters with optional
// single '.' or '-' separators, then a 2-3 letter final label.
var emailPattern = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, err error)
	Authenticate(ctx context.Context, token string) (userID string, err error)
	CurrentUser(ctx context.Context, userID string) (*User, error)
	Logout(ctx context.Context, token string) error
}

// authService implements AuthService with bcrypt, JWT, and a Redis
// revocation list.
type authService struct {
	repo        UserRepository
	hasher      PasswordHasher
	tokens      *TokenIssuer
	revocations RevocationList
	now         func() time.Time
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, hasher PasswordHasher, tokens *TokenIssuer, revocations RevocationList) AuthService {
	return &authService{
		repo:        repo,
		hasher:      hasher,
		tokens:      tokens,
		revocations: revocations,
		now:         time.Now,
	}
}

// Signup validates and normalizes the input, hashes the password, and
// persists the user. Duplicate usernames or emails surface as 409s from
// the repository.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = normalizeEmail(input.Email)

	if err := validateSignup(input); err != nil {
		return nil, err
	}

	user := &User{
		ID:        uuid.NewString(),
		Username:  input.Username,
		Email:     input.Email,
		CreatedAt: s.now().UTC(),
	}
	if err := user.SetPassword(ctx, s.hasher, input.Password); err != nil {
		return nil, apperror.NewInternal(err)
	}

	if err := s.repo.Create(ctx, user); err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login checks the email/password pair and returns a fresh session token.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return "", apperror.NewBadRequest("Email and password are required.")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if apperror.Is(err, http.StatusNotFound) {
		return "", apperror.NewNotFound("User Not Found")
	}
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !s.hasher.Verify(ctx, input.Password, user.PasswordHash) {
		slog.Warn("login rejected: password mismatch", slog.String("user_id", user.ID))
		return "", errBadCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", apperror.NewInternal(err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// Authenticate verifies a session token and checks it has not been logged
// out. Token errors come back unwrapped (ErrInvalidToken, ErrExpiredToken,
// ErrTokenRevoked, ErrTokenNotActive) so the middleware can classify them.
func (s *authService) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}

	revoked, err := s.revocations.IsRevoked(ctx, token)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", ErrTokenRevoked
	}
	return userID, nil
}

// CurrentUser loads the account behind an authenticated request.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if apperror.Is(err, http.StatusNotFound) {
		return nil, apperror.NewNotFound("User not found")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// Logout revokes token for the rest of its lifetime. Missing, malformed,
// or expired tokens have nothing to revoke and succeed silently, which makes
// repeated logouts harmless.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, token, claims.ExpiresAt.Time); err != nil {
		return apperror.NewInternal(err)
	}

	slog.Info("user logged out", slog.String("user_id", claims.Subject))
	return nil
}

// errBadCredentials is the response to a wrong password. It keeps the 500
// status the existing frontend was built against; see DESIGN.md.
func errBadCredentials() *apperror.AppError {
	return &apperror.AppError{
		Code:    http.StatusInternalServerError,
		Type:    "invalid_credentials",
		Message: "Either Username or Password is incorrect",
	}
}

// --- Validation helpers ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validateSignup checks already-normalized input field by field, in order,
// and returns the first failure as a 422 naming the field.
func validateSignup(in SignupInput) *apperror.AppError {
	const badEmail = "Please fill a valid email address"

	fields := []struct {
		name  string
		value string
		rules []validation.Rule
	}{
		{"username", in.Username, []validation.Rule{
			validation.Required.Error("Username is required."),
			validation.RuneLength(minUsernameLen, 0).Error("Username must be at least 3 characters long."),
			validation.RuneLength(0, maxUsernameLen).Error("Username must be at most 64 characters long."),
		}},
		{"email", in.Email, []validation.Rule{
			validation.Required.Error("Email is required."),
			validation.Length(0, maxEmailLen).Error(badEmail),
			validation.Match(emailPattern).Error(badEmail),
		}},
		{"password", in.Password, []validation.Rule{
			validation.Required.Error("Password is required."),
			validation.RuneLength(minPasswordLen, 0).Error("Password must be at least 6 characters long."),
			validation.Length(0, maxPasswordBytes).Error("Password must be at most 72 bytes long."),
		}},
	}

	for _, f := range fields {
		if err := validation.Validate(f.value, f.rules...); err != nil {
			return apperror.NewValidation(f.name, err.Error())
		}
	}
	return nil
}
