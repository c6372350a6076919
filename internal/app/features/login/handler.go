// internal/app/features/login/handler.go
package login

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Guard      *session.Guard
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(guard *session.Guard, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Guard:      guard,
		SessionMgr: sm,
		AuditLog:   audit,
		Log:        logger,
	}
}

var loginMessages = errmsg.Options{
	Fallback: "Unable to sign in right now. Please try again.",
	Overrides: map[string]string{
		authprovider.CodeInvalidCredential: "Invalid email or password.",
	},
}

// loginResponse tells the client who signed in and where to go next.
type loginResponse struct {
	Account  models.Account `json:"account"`
	Redirect string         `json:"redirect"`
}

func readCredential(w http.ResponseWriter, r *http.Request) (session.Credential, error) {
	var cred session.Credential
	if !formutil.IsForm(r) {
		return cred, respond.Decode(w, r, &cred)
	}
	if err := formutil.Parse(w, r); err != nil {
		return cred, err
	}
	cred.Email = formutil.Trimmed(r, "email")
	cred.Password = r.FormValue("password")
	cred.AccessType = formutil.Trimmed(r, "accessType")
	cred.ZoneID = formutil.Trimmed(r, "zoneId")
	cred.Ward = formutil.Trimmed(r, "ward")
	return cred, nil
}

// HandleLoginPost handles POST /login.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	cred, err := readCredential(w, r)
	if err != nil {
		respond.Error(w, r, h.Log, err, loginMessages)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	s, err := h.Guard.Login(ctx, cred)
	if err != nil {
		if code := apperr.CodeOf(err); code == authprovider.CodeTooManyRequests {
			h.AuditLog.LoginFailedRateLimit(ctx, r, cred.Email)
		} else {
			h.AuditLog.LoginFailed(ctx, r, cred.Email, code)
		}
		respond.Error(w, r, h.Log, err, loginMessages)
		return
	}

	if err := h.SessionMgr.Establish(w, r, s); err != nil {
		h.Log.Error("login: save session cookie", zap.Error(err))
		h.Guard.Logout(ctx, s)
		respond.Error(w, r, h.Log, apperr.Collaborator("unavailable", err), loginMessages)
		return
	}

	acct, _ := s.Account()
	h.AuditLog.LoginSuccess(ctx, r, acct.ID, string(acct.Role), acct.Email)
	h.Log.Info("login", zap.String("uid", acct.ID), zap.String("role", string(acct.Role)))

	respond.OK(w, loginResponse{Account: acct, Redirect: session.Landing(acct.Role)})
}
