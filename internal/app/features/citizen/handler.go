// internal/app/features/citizen/handler.go
package citizen

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/formutil"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the citizen area: the reporter's own complaints and new
// submissions.
type Handler struct {
	Complaints *complaint.Service
	Log        *zap.Logger
}

func NewHandler(svc *complaint.Service, logger *zap.Logger) *Handler {
	return &Handler{Complaints: svc, Log: logger}
}

var (
	listMessages   = errmsg.Options{Fallback: "Unable to load your complaints."}
	submitMessages = errmsg.Options{Fallback: "Unable to submit complaint."}
)

type dashboard struct {
	Account    models.Account     `json:"account"`
	Stats      report.Stats       `json:"stats"`
	Complaints []models.Complaint `json:"complaints"`
}

// ServeDashboard handles GET /citizen.
func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Complaints.ByReporter(ctx, acct, acct.ID)
	if err != nil {
		respond.Error(w, r, h.Log, err, listMessages)
		return
	}
	respond.OK(w, dashboard{Account: acct, Stats: report.Compute(list), Complaints: list})
}

// readSubmission accepts JSON or a (multipart) form. Only the form carries
// an evidence photo.
func readSubmission(w http.ResponseWriter, r *http.Request) (complaint.Submission, *blobstore.File, func(), error) {
	var sub complaint.Submission
	done := func() {}
	if !formutil.IsForm(r) {
		return sub, nil, done, respond.Decode(w, r, &sub)
	}
	if err := formutil.Parse(w, r); err != nil {
		return sub, nil, done, err
	}
	var err error
	sub.Category = formutil.Trimmed(r, "category")
	sub.Description = r.FormValue("description")
	sub.ZoneID = formutil.Trimmed(r, "zoneId")
	sub.Ward = formutil.Trimmed(r, "ward")
	if sub.Latitude, err = formutil.OptionalFloat(r, "latitude"); err != nil {
		return sub, nil, done, err
	}
	if sub.Longitude, err = formutil.OptionalFloat(r, "longitude"); err != nil {
		return sub, nil, done, err
	}
	ev, done, err := formutil.File(r, "image")
	return sub, ev, done, err
}

// HandleSubmit handles POST /citizen/complaints.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	sub, ev, done, err := readSubmission(w, r)
	defer done()
	if err != nil {
		respond.Error(w, r, h.Log, err, submitMessages)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	c, err := h.Complaints.Submit(ctx, acct, sub, ev)
	if err != nil {
		respond.Error(w, r, h.Log, err, submitMessages)
		return
	}
	respond.JSON(w, http.StatusCreated, c)
}
