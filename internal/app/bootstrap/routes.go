// internal/app/bootstrap/routes.go
package bootstrap

import (
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	adminfeature "github.com/dalemusser/wardwatch/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/wardwatch/internal/app/features/auditlog"
	citizenfeature "github.com/dalemusser/wardwatch/internal/app/features/citizen"
	complaintsfeature "github.com/dalemusser/wardwatch/internal/app/features/complaints"
	healthfeature "github.com/dalemusser/wardwatch/internal/app/features/health"
	loginfeature "github.com/dalemusser/wardwatch/internal/app/features/login"
	logoutfeature "github.com/dalemusser/wardwatch/internal/app/features/logout"
	officerfeature "github.com/dalemusser/wardwatch/internal/app/features/officer"
	profilefeature "github.com/dalemusser/wardwatch/internal/app/features/profile"
	registerfeature "github.com/dalemusser/wardwatch/internal/app/features/register"
	zonesfeature "github.com/dalemusser/wardwatch/internal/app/features/zones"
	"github.com/dalemusser/wardwatch/internal/app/system/auth"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// the Startup hook have completed, so deps.Runtime carries every service.
//
// WardWatch applies session middleware and mounts the public, citizen,
// officer, staff, admin and profile areas.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.Guard == nil {
		return nil, errors.New("runtime not initialized; Startup must run before BuildHandler")
	}

	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, rt.Guard, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()

	// Unsafe methods must carry the token served at /csrf.
	r.Use(auth.CSRF(appCfg.SessionKey, secure, appCfg.CSRFTrustedOrigins, logger))

	// Global auth middleware: restores the session into context when the
	// cookie names a live one.
	r.Use(sessionMgr.LoadSession)

	backend := "mongo"
	if appCfg.InMemory() {
		backend = "memory"
	}
	healthHandler := healthfeature.NewHandler(deps.Docs, backend, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Get("/csrf", auth.ServeCSRFToken)

	// Locally stored photos and evidence.
	if local, ok := rt.Blobs.(*blobstore.Local); ok {
		prefix := local.URLPrefix()
		r.Handle(prefix+"/*", fileserver.Handler(prefix, local.Root()))
	}

	// Public
	zonesHandler := zonesfeature.NewHandler(rt.Zones, logger)
	r.Mount("/zones", zonesfeature.Routes(zonesHandler))

	loginHandler := loginfeature.NewHandler(rt.Guard, sessionMgr, rt.AuditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	registerHandler := registerfeature.NewHandler(rt.Registration, rt.AuditLog, logger)
	r.Mount("/register", registerfeature.Routes(registerHandler))

	logoutHandler := logoutfeature.NewHandler(rt.Guard, sessionMgr, rt.AuditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	// Role areas
	citizenHandler := citizenfeature.NewHandler(rt.Complaints, logger)
	r.Mount("/citizen", citizenfeature.Routes(citizenHandler, sessionMgr))

	officerHandler := officerfeature.NewHandler(rt.Complaints, logger)
	r.Mount("/officer", officerfeature.Routes(officerHandler, sessionMgr))

	complaintsHandler := complaintsfeature.NewHandler(rt.Complaints, rt.AuditLog, logger)
	r.Mount("/complaints", complaintsfeature.Routes(complaintsHandler, sessionMgr))

	adminHandler := adminfeature.NewHandler(rt.Complaints, rt.Admission, rt.Loader, rt.Refresher, rt.AuditLog, logger)
	adminRouter := adminfeature.Routes(adminHandler, sessionMgr)
	auditHandler := auditlogfeature.NewHandler(rt.Audit, rt.Accounts, logger)
	adminRouter.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))
	r.Mount("/admin", adminRouter)

	profileHandler := profilefeature.NewHandler(rt.Registration, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler, sessionMgr))

	return r, nil
}
