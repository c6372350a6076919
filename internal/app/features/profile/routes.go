// internal/app/features/profile/routes.go
package profile

import (
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the profile page for any signed-in role.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireSignedIn)
	r.Get("/", h.ServeProfile)
	r.Post("/", h.HandleUpdate)
	return r
}
