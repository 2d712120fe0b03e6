package hackhub

import (
	"context"
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ErrSignupFailed wraps any server-side signup rejection returned by
// SignupForm.Submit.
var ErrSignupFailed = errors.New("signup failed")

// FormError is a client-side validation failure. Its message is shown to the
// user as is.
type FormError struct {
	Message string
}

func (e *FormError) Error() string { return e.Message }

const (
	msgAllRequired      = "All fields are required"
	msgPasswordMismatch = "Passwords do not match"
	msgPasswordTooShort = "Password must be at least 6 characters long"
)

// SignupForm is the signup page's input.
type SignupForm struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Validate checks the form before it is sent. Only the first problem is
// reported.
func (f SignupForm) Validate() error {
	required := validation.Required.Error(msgAllRequired)
	for _, v := range []string{f.Username, f.Email, f.Password, f.ConfirmPassword} {
		if err := validation.Validate(v, required); err != nil {
			return &FormError{Message: err.Error()}
		}
	}

	err := validation.Validate(f.ConfirmPassword,
		validation.In(f.Password).Error(msgPasswordMismatch),
	)
	if err != nil {
		return &FormError{Message: err.Error()}
	}

	if err := validation.Validate(f.Password, validation.RuneLength(6, 0).Error(msgPasswordTooShort)); err != nil {
		return &FormError{Message: err.Error()}
	}
	return nil
}

// Submit validates the form and creates the account.
func (f SignupForm) Submit(ctx context.Context, c *Client) (*User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	user, err := c.Signup(ctx, f.Username, f.Email, f.Password)
	if err != nil {
		return nil, errors.Join(ErrSignupFailed, err)
	}
	return user, nil
}

// LoginForm is the login page's input.
type LoginForm struct {
	Email    string
	Password string
}

// Validate checks that both fields are filled.
func (f LoginForm) Validate() error {
	required := validation.Required.Error(msgAllRequired)
	for _, v := range []string{f.Email, f.Password} {
		if err := validation.Validate(v, required); err != nil {
			return &FormError{Message: err.Error()}
		}
	}
	return nil
}

// Submit validates the form and logs in through the store.
func (f LoginForm) Submit(ctx context.Context, store *AuthStore) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return store.Login(ctx, f.Email, f.Password)
}

// UserMessage turns any error from this package into one line fit for an end
// user. Raw server payloads are never passed through.
func UserMessage(err error) string {
	var formErr *FormError
	var apiErr *APIError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &formErr):
		return formErr.Message
	case errors.Is(err, ErrLoginFailed):
		return "Login failed. Please try again."
	case errors.Is(err, ErrSignupFailed):
		return "Signup failed. Please try again."
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized:
		return "Please log in to continue."
	default:
		return "Something went wrong. Please try again."
	}
}
