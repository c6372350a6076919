package errmsg_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
)

type codedErr struct {
	code, msg string
}

func (e codedErr) Error() string     { return e.msg }
func (e codedErr) ErrorCode() string { return e.code }

type panicky struct{}

func (panicky) Error() string { panic("boom") }

var loginOverrides = map[string]string{
	"auth/user-not-found":     "We could not find an account with that email.",
	"auth/wrong-password":     "Email or password is incorrect.",
	"auth/invalid-credential": "Email or password is incorrect.",
	"auth/too-many-requests":  "Too many failed attempts. Please wait and try again.",
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		err  error
		opts errmsg.Options
		want string
	}{
		{
			name: "nil uses default",
			err:  nil,
			want: errmsg.DefaultMessage,
		},
		{
			name: "nil uses caller fallback",
			err:  nil,
			opts: errmsg.Options{Fallback: "Unable to sign in right now."},
			want: "Unable to sign in right now.",
		},
		{
			name: "override wins over builtin",
			err:  apperr.Collaborator("auth/too-many-requests", nil),
			opts: errmsg.Options{Overrides: loginOverrides},
			want: "Too many failed attempts. Please wait and try again.",
		},
		{
			name: "builtin when no override",
			err:  apperr.Collaborator("auth/too-many-requests", nil),
			want: "Too many attempts. Try again in a few minutes.",
		},
		{
			name: "code is case insensitive",
			err:  codedErr{code: "AUTH/Invalid-Credential", msg: "raw"},
			want: "Email or password is incorrect.",
		},
		{
			name: "known code hides raw text",
			err:  codedErr{code: "unavailable", msg: "server selection error: context deadline exceeded, current topology: { Type: Unknown }"},
			want: "Service is temporarily unavailable. Please retry shortly.",
		},
		{
			name: "wrapped coded error",
			err:  fmt.Errorf("upload: %w", apperr.Collaborator("storage/quota-exceeded", errors.New("x"))),
			want: "Storage quota exceeded. Remove files or try later.",
		},
		{
			name: "engine admission code",
			err:  apperr.ErrAccountPending,
			want: "Your officer account is awaiting admin approval.",
		},
		{
			name: "validation uses engine message",
			err:  apperr.Validation("description is required", "description"),
			want: "description is required",
		},
		{
			name: "brand prefix and suffix stripped",
			err:  codedErr{code: "auth/unknown-thing", msg: "Firebase: Error Something odd happened (auth/unknown-thing)."},
			want: "Something odd happened",
		},
		{
			name: "prefix only stripped",
			err:  errors.New("Firebase: Quota reached"),
			want: "Quota reached",
		},
		{
			name: "suffix kept without prefix",
			err:  errors.New("Something odd (auth/unknown-thing)."),
			want: "Something odd (auth/unknown-thing).",
		},
		{
			name: "decoration only falls back",
			err:  errors.New("Firebase: Error (auth/internal-error)."),
			opts: errmsg.Options{Fallback: "Try later."},
			want: "Try later.",
		},
		{
			name: "blank message falls back",
			err:  errors.New("   "),
			want: errmsg.DefaultMessage,
		},
		{
			name: "panicking error falls back",
			err:  panicky{},
			want: errmsg.DefaultMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errmsg.Resolve(tt.err, tt.opts); got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuiltinTableCoversCollaboratorCodes(t *testing.T) {
	codes := []string{
		"auth/invalid-credential", "auth/invalid-email", "auth/user-disabled",
		"auth/user-not-found", "auth/wrong-password", "auth/too-many-requests",
		"auth/network-request-failed", "auth/email-already-in-use", "auth/weak-password",
		"auth/missing-email", "auth/missing-password", "auth/operation-not-allowed",
		"storage/canceled", "storage/unauthorized", "storage/quota-exceeded",
		"storage/retry-limit-exceeded", "permission-denied", "unavailable", "cancelled",
		"deadline-exceeded", "not-found", "resource-exhausted", "aborted",
	}
	for _, c := range codes {
		if _, ok := errmsg.Builtin(c); !ok {
			t.Errorf("missing builtin message for %s", c)
		}
	}
}
