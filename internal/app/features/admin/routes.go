package admin

import (
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the administrator area. Every route requires the admin role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))

	r.Get("/", h.ServeOverview)
	r.Get("/live", h.ServeLive)
	r.Get("/export", h.ServeExport)

	r.Get("/complaints", h.ServeComplaints)
	r.Post("/complaints/{id}/assign", h.HandleAssign)

	r.Get("/officers", h.ServeOfficers)
	r.Get("/officers/eligible", h.ServeEligible)
	r.Post("/officers/{id}/approve", h.HandleApprove)
	r.Post("/officers/{id}/reject", h.HandleReject)
	return r
}
