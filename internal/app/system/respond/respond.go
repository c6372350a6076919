// Package respond writes JSON responses and turns engine errors into
// status codes and presentable messages.
package respond

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"go.uber.org/zap"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error    string   `json:"error"`
	Code     string   `json:"code,omitempty"`
	Fields   []string `json:"fields,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// collaboratorStatus maps collaborator codes that deserve a specific status.
var collaboratorStatus = map[string]int{
	"auth/invalid-credential":     http.StatusUnauthorized,
	"auth/user-not-found":         http.StatusUnauthorized,
	"auth/wrong-password":         http.StatusUnauthorized,
	"auth/user-token-expired":     http.StatusUnauthorized,
	"auth/too-many-requests":      http.StatusTooManyRequests,
	"auth/email-already-in-use":   http.StatusConflict,
	"already-exists":              http.StatusConflict,
	"auth/weak-password":          http.StatusBadRequest,
	"auth/invalid-email":          http.StatusBadRequest,
	"auth/missing-email":          http.StatusBadRequest,
	"auth/missing-password":       http.StatusBadRequest,
	"storage/unauthorized":        http.StatusForbidden,
	"storage/quota-exceeded":      http.StatusInsufficientStorage,
	"deadline-exceeded":           http.StatusGatewayTimeout,
	"auth/network-request-failed": http.StatusBadGateway,
}

// StatusOf picks the HTTP status for err.
func StatusOf(err error) int {
	e, ok := apperr.As(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization:
		if e.Code == apperr.CodeUnauthenticated {
			return http.StatusUnauthorized
		}
		return http.StatusForbidden
	case apperr.KindAdmission:
		return http.StatusForbidden
	case apperr.KindStateTransition:
		return http.StatusConflict
	case apperr.KindCollaborator:
		if s, ok := collaboratorStatus[e.Code]; ok {
			return s
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// Error writes err as an ErrorBody with a presentable message;
// server-side failures are logged with the raw error.
func Error(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, opts errmsg.Options) {
	status := StatusOf(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
	JSON(w, status, ErrorBody{
		Error:  message(err, opts),
		Code:   apperr.CodeOf(err),
		Fields: apperr.FieldsOf(err),
	})
}

// message prefers an engine error's own text, which is written for the
// actor. Collaborator failures and uncoded errors go through errmsg; caller
// overrides always win.
func message(err error, opts errmsg.Options) string {
	e, ok := apperr.As(err)
	if !ok {
		// Untyped errors are internal; their text is not for the actor.
		if opts.Fallback != "" {
			return opts.Fallback
		}
		return errmsg.DefaultMessage
	}
	if _, override := opts.Overrides[strings.ToLower(e.Code)]; !override && e.Kind != apperr.KindCollaborator && e.Message != "" {
		return e.Message
	}
	return errmsg.Resolve(err, opts)
}

// Redirect tells a JSON client where to go instead, with the given status.
func Redirect(w http.ResponseWriter, status int, to, msg string) {
	JSON(w, status, ErrorBody{Error: msg, Redirect: to})
}

// Decode reads a JSON body into v. A malformed body is a validation error.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("Request body is not valid JSON.", "body").Wrap(err)
	}
	return nil
}
