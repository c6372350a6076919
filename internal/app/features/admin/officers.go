package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

var admissionMessages = errmsg.Options{Fallback: "Unable to update officer status."}

// ServeOfficers handles GET /admin/officers[?status=pending|approved|rejected].
func (h *Handler) ServeOfficers(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	var status models.AdmissionStatus
	if s := r.URL.Query().Get("status"); s != "" {
		var ok bool
		if status, ok = models.ParseAdmissionStatus(s); !ok {
			respond.Error(w, r, h.Log, apperr.Validation("Status must be pending, approved or rejected.", "status"), errmsg.Options{})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	officers, err := h.Admission.Officers(ctx, acct, status)
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load officers."})
		return
	}
	respond.OK(w, map[string]any{"officers": officers})
}

// ServeEligible handles GET /admin/officers/eligible[?ward=]: approved
// officers that can receive an assignment.
func (h *Handler) ServeEligible(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	officers, err := h.Admission.Eligible(ctx, r.URL.Query().Get("ward"))
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load officers."})
		return
	}
	respond.OK(w, map[string]any{"officers": officers})
}

// HandleApprove handles POST /admin/officers/{id}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AdmissionApproved)
}

// HandleReject handles POST /admin/officers/{id}/reject.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, models.AdmissionRejected)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, target models.AdmissionStatus) {
	acct, _ := auth.CurrentAccount(r)
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	officer, from, err := h.Admission.Transition(ctx, acct, id, target)
	if err != nil {
		respond.Error(w, r, h.Log, err, admissionMessages)
		return
	}
	if from != officer.Admission() {
		if target == models.AdmissionApproved {
			h.AuditLog.OfficerApproved(ctx, r, acct.ID, officer.ID)
		} else {
			h.AuditLog.OfficerRejected(ctx, r, acct.ID, officer.ID)
		}
	}
	respond.OK(w, officer)
}
