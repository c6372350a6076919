package auth

import (
	"crypto/sha256"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// CSRF token transport. Forms post the field; scripts send the header.
const (
	CSRFHeader = "X-CSRF-Token"
	CSRFField  = "csrf_token"
	csrfCookie = "wardwatch-csrf"
)

// CodeRequestForgery marks an unsafe request without a valid CSRF token.
const CodeRequestForgery = "request-forgery"

// CSRF rejects POST, PUT, PATCH and DELETE requests that do not carry the
// token issued by ServeCSRFToken. The token key is derived from the
// session key. With secure=false the request is treated as plain HTTP so
// local development skips the Referer check.
func CSRF(sessionKey string, secure bool, trusted []string, logger *zap.Logger) func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte("csrf:" + sessionKey))
	protect := csrf.Protect(key[:],
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.Path("/"),
		csrf.CookieName(csrfCookie),
		csrf.RequestHeader(CSRFHeader),
		csrf.FieldName(CSRFField),
		csrf.TrustedOrigins(trusted),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info("request forgery check failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("origin", r.Header.Get("Origin")),
				zap.NamedError("reason", csrf.FailureReason(r)))
			err := apperr.New(apperr.KindAuthorization, CodeRequestForgery,
				"This request could not be verified. Reload the page and try again.")
			respond.Error(w, r, logger, err, errmsg.Options{})
		})),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

// ServeCSRFToken handles GET /csrf. The token is returned in the body and in
// the X-CSRF-Token header; the matching cookie is set by the CSRF middleware.
func ServeCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := csrf.Token(r)
	w.Header().Set(CSRFHeader, token)
	w.Header().Set("Cache-Control", "no-store")
	respond.OK(w, map[string]string{"token": token})
}
