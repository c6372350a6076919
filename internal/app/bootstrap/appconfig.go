// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig carries the
// framework-level settings (ports, TLS, log level, CORS); everything below
// is specific to WardWatch.
type AppConfig struct {
	// Document store. MongoURI "memory" runs on the in-process store.
	MongoURI      string
	MongoDatabase string

	// Session cookie and server-side session lifetime
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name (default: wardwatch-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Hosts allowed to submit state-changing requests from another origin
	CSRFTrustedOrigins []string

	// Identity tokens issued by the auth provider
	TokenSecret string
	TokenTTL    time.Duration

	// Optional Redis for sessions and token revocations. Blank RedisAddr
	// keeps both in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Blob storage: "local" or "s3"
	BlobBackend     string
	BlobLocalPath   string // Local storage path (e.g., "./uploads")
	BlobLocalURL    string // URL prefix for serving local files (e.g., "/files")
	BlobS3Endpoint  string
	BlobS3AccessKey string
	BlobS3SecretKey string
	BlobS3Bucket    string
	BlobS3Secure    bool
	BlobURLExpiry   time.Duration

	// Zone/ward directory file; blank uses the built-in Madurai directory
	ZonesFile string

	// Admin live overview
	RefreshStrategy string // "poll" or "subscribe"
	RefreshInterval time.Duration

	// Audit logging: "all", "db", "log" or "off"
	AuditLogAuth  string
	AuditLogAdmin string

	// Administrator provisioned on startup when both are set
	AdminEmail    string
	AdminPassword string

	// Sign-in throttling per email
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

// InMemory reports whether the app runs without MongoDB.
func (c AppConfig) InMemory() bool { return c.MongoURI == memoryURI }
