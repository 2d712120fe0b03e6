package auth

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/keyxmakerx/hackhub/internal/apperror"
)

func TestTranslateInsertError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{
			name:     "duplicate email mariadb",
			err:      &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice@x.com' for key 'uq_users_email'"},
			wantCode: http.StatusConflict,
			wantMsg:  MsgEmailTaken,
		},
		{
			name:     "duplicate email mysql8",
			err:      &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice@x.com' for key 'users.uq_users_email'"},
			wantCode: http.StatusConflict,
			wantMsg:  MsgEmailTaken,
		},
		{
			name:     "duplicate username",
			err:      &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'uq_users_username'"},
			wantCode: http.StatusConflict,
			wantMsg:  MsgUsernameTaken,
		},
		{
			name:     "duplicate primary key",
			err:      &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'x' for key 'PRIMARY'"},
			wantCode: http.StatusConflict,
			wantMsg:  "User already exists.",
		},
		{
			name:     "other driver error",
			err:      &mysql.MySQLError{Number: 1146, Message: "Table 'hackhub.users' doesn't exist"},
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal Server Error",
		},
		{
			name:     "connection error",
			err:      errors.New("connection refused"),
			wantCode: http.StatusInternalServerError,
			wantMsg:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateInsertError(tt.err)
			if code := apperror.SafeCode(got); code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if msg := apperror.SafeMessage(got); msg != tt.wantMsg {
				t.Errorf("message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestTranslateInsertError_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	if err := translateInsertError(cause); !errors.Is(err, cause) {
		t.Errorf("expected wrapped cause, got %v", err)
	}
}
