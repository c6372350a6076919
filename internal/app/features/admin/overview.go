package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
)

// ServeOverview handles GET /admin: stats, officer performance, the
// unassigned queue and the latest complaints.
func (h *Handler) ServeOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	snap, err := h.Loader.Load(ctx)
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to load the overview."})
		return
	}
	respond.OK(w, h.present(ctx, snap))
}
