// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/wardwatch/internal/app/core/report"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// memoryURI selects the in-process document store.
const memoryURI = "memory"

// minSecretLen is the shortest token secret accepted outside dev.
const minSecretLen = 32

// appConfigKeys defines the configuration keys for WardWatch.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: WARDWATCH_MONGO_URI, WARDWATCH_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI, or 'memory' for the in-process store"},
	{Name: "mongo_database", Default: "wardwatch", Desc: "MongoDB database name"},
	{Name: "session_key", Default: "", Desc: "Session signing key (generated per process in dev when blank)"},
	{Name: "session_name", Default: "wardwatch-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session lifetime"},
	{Name: "csrf_trusted_origins", Default: "", Desc: "Comma-separated hosts allowed to post across origins (e.g. app.example.org)"},

	{Name: "token_secret", Default: "", Desc: "HS256 secret for identity tokens (32+ bytes outside dev)"},
	{Name: "token_ttl", Default: "24h", Desc: "Identity token lifetime"},

	{Name: "redis_addr", Default: "", Desc: "Redis address for sessions and token revocations (blank keeps them in memory)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	// Blob storage
	{Name: "blob_backend", Default: "local", Desc: "Blob backend: 'local' or 's3'"},
	{Name: "blob_local_path", Default: "./uploads", Desc: "Local storage path for uploaded files"},
	{Name: "blob_local_url", Default: "/files", Desc: "URL prefix for serving local files"},
	{Name: "blob_s3_endpoint", Default: "", Desc: "S3-compatible endpoint (host:port)"},
	{Name: "blob_s3_access_key", Default: "", Desc: "S3 access key"},
	{Name: "blob_s3_secret_key", Default: "", Desc: "S3 secret key"},
	{Name: "blob_s3_bucket", Default: "", Desc: "S3 bucket name"},
	{Name: "blob_s3_secure", Default: true, Desc: "Use TLS for the S3 endpoint"},
	{Name: "blob_url_expiry", Default: "1h", Desc: "Presigned URL lifetime"},

	{Name: "zones_file", Default: "", Desc: "YAML zone/ward directory (blank uses the built-in directory)"},

	{Name: "refresh_strategy", Default: "poll", Desc: "Admin live overview refresh: 'poll' or 'subscribe'"},
	{Name: "refresh_interval", Default: "15s", Desc: "Poll interval for the admin live overview"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the administrator to create or promote on startup"},
	{Name: "admin_password", Default: "", Desc: "Password for admin_email"},

	{Name: "login_rate_limit", Default: 5, Desc: "Sign-in attempts allowed per email per window"},
	{Name: "login_rate_window", Default: "15m", Desc: "Sign-in throttling window"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// WARDWATCH_* environment variables and flags with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "WARDWATCH", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),
		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		CSRFTrustedOrigins: splitList(appValues.String("csrf_trusted_origins")),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", 24*time.Hour),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		BlobBackend:     appValues.String("blob_backend"),
		BlobLocalPath:   appValues.String("blob_local_path"),
		BlobLocalURL:    appValues.String("blob_local_url"),
		BlobS3Endpoint:  appValues.String("blob_s3_endpoint"),
		BlobS3AccessKey: appValues.String("blob_s3_access_key"),
		BlobS3SecretKey: appValues.String("blob_s3_secret_key"),
		BlobS3Bucket:    appValues.String("blob_s3_bucket"),
		BlobS3Secure:    appValues.Bool("blob_s3_secure"),
		BlobURLExpiry:   appValues.Duration("blob_url_expiry", time.Hour),

		ZonesFile: appValues.String("zones_file"),

		RefreshStrategy: appValues.String("refresh_strategy"),
		RefreshInterval: appValues.Duration("refresh_interval", report.DefaultInterval),

		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),

		LoginRateLimit:  appValues.Int("login_rate_limit"),
		LoginRateWindow: appValues.Duration("login_rate_window", 15*time.Minute),
	}

	// Dev runs without configured secrets get random per-process keys.
	// Sessions and tokens do not survive a restart in that case.
	if coreCfg.Env == "dev" {
		if appCfg.SessionKey == "" {
			appCfg.SessionKey = randomKey()
			logger.Warn("session_key not set; generated a per-process key")
		}
		if appCfg.TokenSecret == "" {
			appCfg.TokenSecret = randomKey()
			logger.Warn("token_secret not set; generated a per-process secret")
		}
	}

	return coreCfg, appCfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func randomKey() string {
	return base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(minSecretLen))
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if !appCfg.InMemory() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	switch appCfg.BlobBackend {
	case "local":
	case "s3":
		if appCfg.BlobS3Endpoint == "" || appCfg.BlobS3Bucket == "" {
			return fmt.Errorf("blob_backend s3 requires blob_s3_endpoint and blob_s3_bucket")
		}
	default:
		return fmt.Errorf("blob_backend %q: want local or s3", appCfg.BlobBackend)
	}

	if _, err := report.ParseStrategy(appCfg.RefreshStrategy); err != nil {
		return err
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if len(appCfg.TokenSecret) < minSecretLen {
		if coreCfg.Env != "dev" {
			return fmt.Errorf("token_secret must be at least %d bytes", minSecretLen)
		}
		logger.Warn("token_secret is short; 32+ bytes recommended", zap.Int("length", len(appCfg.TokenSecret)))
	}

	if (appCfg.AdminEmail == "") != (appCfg.AdminPassword == "") {
		return fmt.Errorf("admin_email and admin_password must be set together")
	}
	return nil
}
