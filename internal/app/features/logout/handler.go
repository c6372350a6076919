// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/respond"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Guard      *session.Guard
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(guard *session.Guard, sm *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Guard:      guard,
		SessionMgr: sm,
		AuditLog:   audit,
		Log:        logger,
	}
}

// ServeLogout handles POST /logout. Local logout always completes; store
// and revocation failures are only logged.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if s, ok := auth.CurrentSession(r); ok {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
		defer cancel()
		if acct, ok := s.Account(); ok {
			h.AuditLog.Logout(ctx, r, acct.ID)
		}
		h.Guard.Logout(ctx, s)
	}
	h.SessionMgr.Destroy(w, r)

	// HTMX handling: use HX-Redirect to force a client-side navigation to "/".
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", session.PublicPath)
		w.WriteHeader(http.StatusOK)
		return
	}
	respond.OK(w, map[string]string{"redirect": session.PublicPath})
}
