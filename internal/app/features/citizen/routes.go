// internal/app/features/citizen/routes.go
package citizen

import (
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleCitizen))
	r.Get("/", h.ServeDashboard)
	r.Post("/complaints", h.HandleSubmit)
	return r
}
