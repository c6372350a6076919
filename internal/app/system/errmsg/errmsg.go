// Package errmsg turns errors into messages that are safe to show an actor.
//
// Resolution order: caller override for the error's code, then the built-in
// table, then the error's own message with backend decoration stripped, then
// the fallback.
package errmsg

import (
	"errors"
	"regexp"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
)

// DefaultMessage is returned when nothing better is known.
const DefaultMessage = "Something went wrong. Please try again."

// Coded is implemented by errors that carry a categorical code.
type Coded interface {
	ErrorCode() string
}

// Options tune a single resolution.
type Options struct {
	// Fallback replaces DefaultMessage when set.
	Fallback string
	// Overrides map lowercase codes to caller-specific messages.
	Overrides map[string]string
}

var builtin = map[string]string{
	"auth/invalid-credential":      "Email or password is incorrect.",
	"auth/invalid-email":           "Enter a valid email address.",
	"auth/user-disabled":           "This account has been disabled. Contact support.",
	"auth/user-not-found":          "No account exists for this email address.",
	"auth/wrong-password":          "Email or password is incorrect.",
	"auth/too-many-requests":       "Too many attempts. Try again in a few minutes.",
	"auth/network-request-failed":  "Network error. Check your connection and try again.",
	"auth/email-already-in-use":    "An account already exists with this email.",
	"auth/weak-password":           "Password should be at least 6 characters.",
	"auth/missing-email":           "Email cannot be empty.",
	"auth/missing-password":        "Password cannot be empty.",
	"auth/operation-not-allowed":   "This sign-in method is disabled for now.",
	"auth/user-token-expired":      "Your session has expired. Please sign in again.",
	"storage/canceled":             "Upload was cancelled before it completed.",
	"storage/unauthorized":         "You do not have permission to upload this file.",
	"storage/quota-exceeded":       "Storage quota exceeded. Remove files or try later.",
	"storage/retry-limit-exceeded": "Upload took too long. Try again.",
	"permission-denied":            "You do not have permission to perform this action.",
	"unavailable":                  "Service is temporarily unavailable. Please retry shortly.",
	"cancelled":                    "Request was cancelled before completing.",
	"deadline-exceeded":            "Request timed out. Please retry.",
	"not-found":                    "Requested record was not found.",
	"resource-exhausted":           "Quota exceeded. Please try again later.",
	"aborted":                      "Operation aborted due to a conflicting change. Reload the page.",
	"already-exists":               "A record with these details already exists.",

	apperr.CodeProfileMissing:     "Account profile not found. Please register first.",
	apperr.CodeRoleMismatch:       "This account cannot sign in from here. Choose the correct access type.",
	apperr.CodeAccountPending:     "Your officer account is awaiting admin approval.",
	apperr.CodeAccountRejected:    "Your officer registration was rejected. Contact the administrator.",
	apperr.CodeZoneWardMismatch:   "The selected zone or ward does not match your registered profile.",
	apperr.CodeInvalidTransition:  "That status change is not allowed.",
	apperr.CodeOfficerNotEligible: "The selected officer is not approved for assignments.",
	apperr.CodeForbidden:          "You do not have permission to perform this action.",
	apperr.CodeUnauthenticated:    "Please sign in to continue.",
}

var (
	brandPrefix = regexp.MustCompile(`(?i)^Firebase: (?:Error )?`)
	codeSuffix  = regexp.MustCompile(`(?i)\((?:auth|firestore|storage|functions|messaging|database)/[^(]+\)\.?$`)
)

// Builtin returns the built-in message for code, if any.
func Builtin(code string) (string, bool) {
	m, ok := builtin[strings.ToLower(code)]
	return m, ok
}

// Resolve returns the presentable message for err. It never panics.
func Resolve(err error, opts Options) (msg string) {
	fallback := opts.Fallback
	if fallback == "" {
		fallback = DefaultMessage
	}
	defer func() {
		if recover() != nil {
			msg = fallback
		}
	}()

	if err == nil {
		return fallback
	}

	if code := strings.ToLower(CodeOf(err)); code != "" {
		if m := opts.Overrides[code]; m != "" {
			return m
		}
		if m, ok := builtin[code]; ok {
			return m
		}
	}

	if cleaned := Clean(messageOf(err)); cleaned != "" {
		return cleaned
	}
	return fallback
}

// CodeOf returns the first code found in err's chain.
func CodeOf(err error) string {
	var c Coded
	if errors.As(err, &c) {
		return c.ErrorCode()
	}
	return ""
}

// Clean strips backend brand decoration from a raw message. The trailing
// "(auth/...)" code suffix is only removed when the brand prefix was present.
func Clean(message string) string {
	if strings.TrimSpace(message) == "" {
		return ""
	}
	if !brandPrefix.MatchString(message) {
		return strings.TrimSpace(message)
	}
	s := strings.TrimSpace(brandPrefix.ReplaceAllString(message, ""))
	return strings.TrimSpace(codeSuffix.ReplaceAllString(s, ""))
}

// messageOf prefers the human message of an *apperr.Error over its
// code-prefixed Error() text.
func messageOf(err error) string {
	if e, ok := apperr.As(err); ok {
		if e.Message != "" {
			return e.Message
		}
		if e.Err != nil {
			return e.Err.Error()
		}
		return ""
	}
	return err.Error()
}
