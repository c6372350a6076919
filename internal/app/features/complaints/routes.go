// internal/app/features/complaints/routes.go
package complaints

import (
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleOfficer, models.RoleAdmin))
	r.Get("/{id}", h.ServeDetail)
	r.Post("/{id}/status", h.HandleStatus)
	return r
}
