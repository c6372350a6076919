package admin

import (
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeExport handles GET /admin/export: every complaint in the reporting
// row shape, newest first.
func (h *Handler) ServeExport(w http.ResponseWriter, r *http.Request) {
	acct, _ := auth.CurrentAccount(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "complaint export")
	defer cancel()

	list, err := h.Complaints.All(ctx, acct)
	if err != nil {
		respond.Error(w, r, h.Log, err, errmsg.Options{Fallback: "Unable to export complaints."})
		return
	}
	rows := report.ExportRows(list)

	h.Log.Info("complaints exported", zap.String("user", acct.ID), zap.Int("rows", len(rows)))
	respond.OK(w, map[string]any{
		"rows":        rows,
		"generatedAt": h.now().UTC(),
	})
}
