// Package apperr carries the error taxonomy shared by the engine, the
// collaborators and the HTTP layer.
//
// Every failure that reaches an actor is an *Error with a Kind (how it is
// surfaced) and a Code (what happened). Collaborator failures keep the
// backend-style code ("auth/invalid-credential", "storage/unauthorized") so
// errmsg can resolve a presentable message for them.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind groups codes by how they are surfaced.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthorization
	KindAdmission
	KindStateTransition
	KindNotFound
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindAdmission:
		return "admission"
	case KindStateTransition:
		return "state-transition"
	case KindNotFound:
		return "not-found"
	case KindCollaborator:
		return "collaborator"
	}
	return "unknown"
}

// Engine codes.
const (
	CodeValidation         = "validation"
	CodeProfileMissing     = "profile-missing"
	CodeRoleMismatch       = "role-mismatch"
	CodeAccountPending     = "account-pending"
	CodeAccountRejected    = "account-rejected"
	CodeZoneWardMismatch   = "zone-ward-mismatch"
	CodeInvalidTransition  = "invalid-transition"
	CodeOfficerNotEligible = "officer-not-eligible"
	CodeForbidden          = "forbidden"
	CodeUnauthenticated    = "unauthenticated"
	CodeNotFound           = "not-found"
)

// Sentinels for errors.Is. Matching is by code, so any *Error with the same
// code matches regardless of message or fields.
var (
	ErrValidation         = &Error{Kind: KindValidation, Code: CodeValidation}
	ErrProfileMissing     = &Error{Kind: KindAuthorization, Code: CodeProfileMissing}
	ErrRoleMismatch       = &Error{Kind: KindAuthorization, Code: CodeRoleMismatch}
	ErrAccountPending     = &Error{Kind: KindAdmission, Code: CodeAccountPending}
	ErrAccountRejected    = &Error{Kind: KindAdmission, Code: CodeAccountRejected}
	ErrZoneWardMismatch   = &Error{Kind: KindAuthorization, Code: CodeZoneWardMismatch}
	ErrInvalidTransition  = &Error{Kind: KindStateTransition, Code: CodeInvalidTransition}
	ErrOfficerNotEligible = &Error{Kind: KindStateTransition, Code: CodeOfficerNotEligible}
	ErrForbidden          = &Error{Kind: KindAuthorization, Code: CodeForbidden}
	ErrUnauthenticated    = &Error{Kind: KindAuthorization, Code: CodeUnauthenticated}
	ErrNotFound           = &Error{Kind: KindNotFound, Code: CodeNotFound}
)

// Error is the concrete error type.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Fields names the offending inputs of a validation failure.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Fields, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ErrorCode satisfies the coded-error contract used by errmsg.
func (e *Error) ErrorCode() string {
	if e == nil {
		return ""
	}
	return e.Code
}

// New builds an error of the given kind and code.
func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Validation reports missing or malformed input fields.
func Validation(msg string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Code: CodeValidation, Message: msg, Fields: fields}
}

// NotFound reports an absent record.
func NotFound(what string) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: what + " not found"}
}

// Collaborator wraps a failure from the auth provider, document store or
// blob store under a backend-style code.
func Collaborator(code string, err error) *Error {
	return &Error{Kind: KindCollaborator, Code: code, Err: err}
}

// With returns a copy of the sentinel carrying a message.
func (e *Error) With(msg string) *Error {
	c := *e
	c.Message = msg
	return &c
}

// Wrap returns a copy of the sentinel wrapping err.
func (e *Error) Wrap(err error) *Error {
	c := *e
	c.Err = err
	return &c
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// CodeOf returns the code of err, or "".
func CodeOf(err error) string {
	if e, ok := As(err); ok {
		return e.Code
	}
	return ""
}

// FieldsOf returns the offending fields of a validation error.
func FieldsOf(err error) []string {
	if e, ok := As(err); ok {
		return e.Fields
	}
	return nil
}
