package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
	"github.com/dalemusser/wardwatch/internal/app/system/normalize"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var assignMessages = errmsg.Options{Fallback: "Unable to assign officer."}

// ServeComplaints handles GET /admin/complaints. Optional ward, status,
// unassigned=1 and q (description search, case and accent folded) query
// parameters narrow the list.
func (h *Handler) ServeComplaints(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Complaints.All(ctx, acct)
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load complaints."})
		return
	}

	q := r.URL.Query()
	ward := normalize.Ward(q.Get("ward"))
	status, hasStatus := models.ParseComplaintStatus(q.Get("status"))
	unassigned := q.Get("unassigned") == "1" || q.Get("unassigned") == "true"
	search := text.Fold(normalize.QueryParam(q.Get("q")))

	out := make([]models.Complaint, 0, len(list))
	for _, c := range list {
		if ward != "" && c.Ward != ward {
			continue
		}
		if hasStatus && c.Status != status {
			continue
		}
		if unassigned && c.Assigned() {
			continue
		}
		if search != "" && !strings.Contains(text.Fold(c.Description), search) {
			continue
		}
		out = append(out, c)
	}
	respond.OK(w, map[string]any{"complaints": out})
}

type assignRequest struct {
	OfficerID string `json:"officerId"`
}

// HandleAssign handles POST /admin/complaints/{id}/assign.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)
	id := chi.URLParam(r, "id")

	var req assignRequest
	if formutil.IsForm(r) {
		if err := formutil.Parse(w, r); err != nil {
			respond.Error(w, r, h.Log, err, assignMessages)
			return
		}
		req.OfficerID = formutil.Trimmed(r, "officerId")
	} else if err := respond.Decode(w, r, &req); err != nil {
		respond.Error(w, r, h.Log, err, assignMessages)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	c, previous, err := h.Complaints.Assign(ctx, acct, id, req.OfficerID)
	if err != nil {
		respond.Error(w, r, h.Log, err, assignMessages)
		return
	}
	h.AuditLog.ComplaintAssigned(ctx, r, acct.ID, c.ID, c.AssignedOfficerID, previous)
	h.Log.Info("complaint assigned",
		zap.String("complaint", c.ID), zap.String("officer", c.AssignedOfficerID), zap.String("previous", previous))
	respond.OK(w, c)
}
