// internal/app/features/zones/handler.go
package zones

import (
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/dalemusser/wardwatch/internal/app/system/errmsg"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the zone directory used by the login and registration forms.
type Handler struct {
	Zones *zones.Directory
	Log   *zap.Logger
}

func NewHandler(dir *zones.Directory, logger *zap.Logger) *Handler {
	return &Handler{Zones: dir, Log: logger}
}

// ServeZones handles GET /zones.
func (h *Handler) ServeZones(w http.ResponseWriter, r *http.Request) {
	respond.OK(w, map[string]any{"zones": h.Zones.Zones()})
}

// ServeWards handles GET /zones/{zoneID}/wards.
func (h *Handler) ServeWards(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "zoneID")
	z, ok := h.Zones.ZoneByID(id)
	if !ok {
		respond.Error(w, r, h.Log, apperr.NotFound("zone"), errmsg.Options{})
		return
	}
	respond.OK(w, map[string]any{"zoneId": z.ID, "wards": z.Wards})
}
