// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/wardwatch/internal/app/core/admission"
	"github.com/dalemusser/wardwatch/internal/app/core/complaint"
	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/dalemusser/wardwatch/internal/app/core/session"
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	complaintstore "github.com/dalemusser/wardwatch/internal/app/store/complaints"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/blobstore"
	"github.com/dalemusser/wardwatch/internal/app/system/ratelimit"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/app/system/workers"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// cleanupInterval is how often in-memory session tables are swept.
const cleanupInterval = time.Minute

// Runtime holds the services built at startup.
type Runtime struct {
	Zones    *zones.Directory
	Blobs    blobstore.Store
	Auth     *authprovider.Provider
	Accounts *accountstore.Store
	Audit    *audit.Store
	AuditLog *auditlog.Logger

	Sessions     session.Store
	Guard        *session.Guard
	Complaints   *complaint.Service
	Admission    *admission.Service
	Registration *registration.Service
	Loader       *report.Loader
	Refresher    *report.Refresher

	Cleanup *workers.SessionCleanup
}

// Startup builds the services, provisions the configured administrator and
// starts the session cleanup worker.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.ConfigureFromEnv()

	rt, err := buildRuntime(appCfg, deps, logger)
	if err != nil {
		return err
	}
	*deps.Runtime = *rt

	if appCfg.AdminEmail != "" {
		actx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		defer cancel()
		if err := ensureAdmin(actx, rt, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}

	deps.Runtime.Cleanup.Start()
	return nil
}

// buildRuntime wires every service over deps.
func buildRuntime(appCfg AppConfig, deps DBDeps, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{}

	if appCfg.ZonesFile != "" {
		dir, err := zones.LoadFile(appCfg.ZonesFile)
		if err != nil {
			return nil, fmt.Errorf("zones: %w", err)
		}
		rt.Zones = dir
	} else {
		rt.Zones = zones.Default()
	}

	blobs, err := buildBlobStore(appCfg)
	if err != nil {
		return nil, fmt.Errorf("blob store: %w", err)
	}
	rt.Blobs = blobs

	sweep := map[string]workers.Sweeper{}

	limiter := ratelimit.New(appCfg.LoginRateLimit, appCfg.LoginRateWindow)
	sweep["login_rate"] = limiter

	var revocations authprovider.Revocations
	if deps.Redis != nil {
		revocations = authprovider.NewRedisRevocations(deps.Redis)
	} else {
		mem := authprovider.NewMemoryRevocations()
		revocations = mem
		sweep["revocations"] = mem
	}

	rt.Auth, err = authprovider.New(deps.Docs, authprovider.Config{
		Secret:      []byte(appCfg.TokenSecret),
		TokenTTL:    appCfg.TokenTTL,
		BcryptCost:  bcrypt.DefaultCost,
		Limiter:     limiter,
		Revocations: revocations,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("auth provider: %w", err)
	}

	memSessions := session.NewMemory()
	sweep["sessions"] = memSessions
	rt.Sessions = memSessions
	if deps.Redis != nil {
		rt.Sessions = session.NewTiered(session.NewRedis(deps.Redis), memSessions, logger)
	}

	rt.Accounts = accountstore.New(deps.Docs)
	complaints := complaintstore.New(deps.Docs)
	rt.Audit = audit.New(deps.Docs)
	rt.AuditLog = auditlog.New(rt.Audit, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	rt.Guard = &session.Guard{
		Auth:     rt.Auth,
		Accounts: rt.Accounts,
		Zones:    rt.Zones,
		Store:    rt.Sessions,
		TTL:      appCfg.SessionMaxAge,
		Log:      logger,
	}
	rt.Complaints = &complaint.Service{
		Complaints: complaints,
		Accounts:   rt.Accounts,
		Zones:      rt.Zones,
		Blobs:      rt.Blobs,
		Log:        logger,
	}
	rt.Admission = admission.New(rt.Accounts, logger)
	rt.Registration = &registration.Service{
		Auth:     rt.Auth,
		Accounts: rt.Accounts,
		Zones:    rt.Zones,
		Blobs:    rt.Blobs,
		Log:      logger,
	}

	strategy, err := report.ParseStrategy(appCfg.RefreshStrategy)
	if err != nil {
		return nil, err
	}
	rt.Loader = &report.Loader{Complaints: complaints, Officers: rt.Accounts}
	rt.Refresher = &report.Refresher{
		Loader:      rt.Loader,
		Strategy:    strategy,
		Interval:    appCfg.RefreshInterval,
		Collections: []string{complaintstore.Collection, accountstore.Collection},
		Log:         logger,
	}
	if sub, ok := deps.Docs.(docstore.Subscriber); ok {
		rt.Refresher.Subscriber = sub
	}

	rt.Cleanup = workers.NewSessionCleanup(sweep, logger, cleanupInterval)
	return rt, nil
}

func buildBlobStore(appCfg AppConfig) (blobstore.Store, error) {
	if appCfg.BlobBackend == "s3" {
		return blobstore.NewS3(blobstore.S3Config{
			Endpoint:  appCfg.BlobS3Endpoint,
			AccessKey: appCfg.BlobS3AccessKey,
			SecretKey: appCfg.BlobS3SecretKey,
			Bucket:    appCfg.BlobS3Bucket,
			Secure:    appCfg.BlobS3Secure,
			URLExpiry: appCfg.BlobURLExpiry,
		})
	}
	return blobstore.NewLocal(appCfg.BlobLocalPath, appCfg.BlobLocalURL)
}

// ensureAdmin creates or promotes the configured administrator.
func ensureAdmin(ctx context.Context, rt *Runtime, email, password string, logger *zap.Logger) error {
	acct, promoted, err := rt.Registration.EnsureAdmin(ctx, email, password, "Administrator")
	if err != nil {
		logger.Error("admin bootstrap failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("admin bootstrap: %w", err)
	}
	rt.AuditLog.AdminProvisioned(ctx, acct.ID, acct.Email, promoted)
	logger.Info("administrator ready", zap.String("uid", acct.ID), zap.Bool("promoted", promoted))
	return nil
}
