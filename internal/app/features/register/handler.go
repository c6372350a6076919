// internal/app/features/register/handler.go
package register

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Registration *registration.Service
	AuditLog     *auditlog.Logger
	Log          *zap.Logger
}

func NewHandler(svc *registration.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Registration: svc, AuditLog: audit, Log: logger}
}

var registerMessages = errmsg.Options{Fallback: "Registration failed. Please try again."}

// registerResponse echoes the stored profile. Officers are told to wait for
// approval before signing in.
type registerResponse struct {
	Account  models.Account `json:"account"`
	Message  string         `json:"message"`
	Redirect string         `json:"redirect"`
}

// readRequest accepts JSON or a (multipart) form. Only the form carries a
// badge file.
func readRequest(w http.ResponseWriter, r *http.Request) (registration.Request, *blobstore.File, func(), error) {
	var req registration.Request
	done := func() {}
	if !formutil.IsForm(r) {
		return req, nil, done, respond.Decode(w, r, &req)
	}
	if err := formutil.Parse(w, r); err != nil {
		return req, nil, done, err
	}
	req = registration.Request{
		Email:    formutil.Trimmed(r, "email"),
		Password: r.FormValue("password"),
		Role:     formutil.Trimmed(r, "role"),
		Name:     formutil.Trimmed(r, "name"),
		Phone:    formutil.Trimmed(r, "phone"),
		Address:  formutil.Trimmed(r, "address"),
		ZoneID:   formutil.Trimmed(r, "zoneId"),
		Ward:     formutil.Trimmed(r, "ward"),
	}
	badge, done, err := formutil.File(r, "badge")
	return req, badge, done, err
}

// HandleRegister handles POST /register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	req, badge, done, err := readRequest(w, r)
	defer done()
	if err != nil {
		respond.Error(w, r, h.Log, err, registerMessages)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	acct, err := h.Registration.Register(ctx, req, badge)
	if err != nil {
		respond.Error(w, r, h.Log, err, registerMessages)
		return
	}
	h.AuditLog.Registered(ctx, r, acct.ID, string(acct.Role), acct.Ward)

	msg := "Registration complete. Please sign in."
	if acct.Role == models.RoleOfficer {
		msg = "Registration submitted. An administrator must approve your account before you can sign in."
	}
	respond.JSON(w, http.StatusCreated, registerResponse{Account: acct, Message: msg, Redirect: "/"})
}
