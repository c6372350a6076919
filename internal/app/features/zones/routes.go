// internal/app/features/zones/routes.go
package zones

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeZones)
	r.Get("/{zoneID}/wards", h.ServeWards)
	return r
}
