// internal/app/features/officer/handler.go
package officer

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the officer's ward desk.
type Handler struct {
	Complaints *complaint.Service
	Log        *zap.Logger
}

func NewHandler(svc *complaint.Service, logger *zap.Logger) *Handler {
	return &Handler{Complaints: svc, Log: logger}
}

type desk struct {
	Account    models.Account     `json:"account"`
	Ward       string             `json:"ward"`
	Stats      report.Stats       `json:"stats"`
	Complaints []models.Complaint `json:"complaints"`
}

// ServeDesk handles GET /officer: the officer's ward plus anything assigned
// to them elsewhere.
func (h *Handler) ServeDesk(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Complaints.Desk(ctx, acct)
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load ward complaints."})
		return
	}
	respond.OK(w, desk{Account: acct, Ward: acct.Ward, Stats: report.Compute(list), Complaints: list})
}
