// internal/app/features/complaints/handler.go
package complaints

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves complaint detail and status changes to officers and
// admins.
type Handler struct {
	Complaints *complaint.Service
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(svc *complaint.Service, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Complaints: svc, AuditLog: audit, Log: logger}
}

var statusMessages = errmsg.Options{Fallback: "Unable to update status."}

// ServeDetail handles GET /complaints/{id}.
func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, err := h.Complaints.Get(ctx, acct, chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load complaint."})
		return
	}
	respond.OK(w, c)
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus handles POST /complaints/{id}/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)
	id := chi.URLParam(r, "id")

	var req statusRequest
	if formutil.IsForm(r) {
		if err := formutil.Parse(w, r); err != nil {
			respond.Error(w, r, h.Log, err, statusMessages)
			return
		}
		req.Status = formutil.Trimmed(r, "status")
	} else if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.Log, err, statusMessages)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, from, err := h.Complaints.AdvanceStatus(ctx, acct, id, req.Status)
	if err != nil {
		respond.Error(w, r, h.Log, err, statusMessages)
		return
	}
	if from != c.Status {
		h.AuditLog.StatusAdvanced(ctx, r, acct.ID, c.ID, string(from), string(c.Status))
	}
	respond.OK(w, c)
}
