// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit log (typically at "/admin/audit" from
// bootstrap). Access is restricted to admins.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireRole(models.RoleAdmin))
	r.Get("/", h.ServeList)
	return r
}
