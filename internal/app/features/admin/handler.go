// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/core/admission"
	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler serves the administrator area: the overview, the complaint
// queue, officer admission, exports and the live overview feed.
type Handler struct {
	Complaints *complaint.Service
	Admission  *admission.Service
	Loader     *report.Loader
	Refresher  *report.Refresher
	AuditLog   *auditlog.Logger
	Log        *zap.Logger

	// Now stamps export filenames; defaults to time.Now.
	Now      func() time.Time
	upgrader websocket.Upgrader
}

func NewHandler(
	complaints *complaint.Service,
	adm *admission.Service,
	loader *report.Loader,
	refresher *report.Refresher,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Complaints: complaints,
		Admission:  adm,
		Loader:     loader,
		Refresher:  refresher,
		AuditLog:   audit,
		Log:        logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// present resolves the evidence links of the complaint lists in snap.
func (h *Handler) present(ctx context.Context, snap report.Snapshot) report.Snapshot {
	snap.Unassigned = h.Complaints.Present(ctx, snap.Unassigned)
	snap.Latest = h.Complaints.Present(ctx, snap.Latest)
	return snap
}
