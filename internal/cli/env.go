package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/dalemusser/wardwatch/internal/app/core/admission"
	"github.com/dalemusser/wardwatch/internal/app/core/registration"
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	accountstore "github.com/dalemusser/wardwatch/internal/app/store/accounts"
	"github.com/dalemusser/wardwatch/internal/app/store/audit"
	"github.com/dalemusser/wardwatch/internal/app/system/auditlog"
	"github.com/dalemusser/wardwatch/internal/app/system/authprovider"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/app/system/zones"
	"github.com/dalemusser/wardwatch/internal/domain/models"
	"github.com/gorilla/securecookie"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MemoryURI selects the in-process document store.
const MemoryURI = "memory"

// operator is the actor recorded for changes made from the command line.
var operator = models.Account{ID: "wardctl", Name: "wardctl", Role: models.RoleAdmin}

// Options locate the deployment wardctl operates on.
type Options struct {
	MongoURI    string
	Database    string
	ZonesFile   string
	TokenSecret string
	AuditAdmin  string
}

// DefaultOptions reads WARDWATCH_* environment variables, the same ones the
// server uses.
func DefaultOptions() Options {
	return Options{
		MongoURI:    envOr("WARDWATCH_MONGO_URI", "mongodb://localhost:27017"),
		Database:    envOr("WARDWATCH_MONGO_DATABASE", "wardwatch"),
		ZonesFile:   os.Getenv("WARDWATCH_ZONES_FILE"),
		TokenSecret: os.Getenv("WARDWATCH_TOKEN_SECRET"),
		AuditAdmin:  envOr("WARDWATCH_AUDIT_LOG_ADMIN", "all"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Env holds the services a command needs.
type Env struct {
	Zones        *zones.Directory
	Accounts     *accountstore.Store
	Admission    *admission.Service
	Registration *registration.Service
	AuditLog     *auditlog.Logger
	Log          *zap.Logger

	close func(context.Context) error
}

// Close releases the database connection, if any.
func (e *Env) Close(ctx context.Context) error {
	if e == nil || e.close == nil {
		return nil
	}
	return e.close(ctx)
}

// Opener builds an Env. Tests substitute one backed by the memory store.
type Opener func(ctx context.Context, opts Options, logger *zap.Logger) (*Env, error)

// Open connects to MongoDB (or the memory store) and builds the services.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (*Env, error) {
	if opts.MongoURI == MemoryURI {
		return NewEnv(docstore.NewMemory(), opts, logger)
	}

	cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	client, err := mongo.Connect(cctx, options.Client().ApplyURI(opts.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pctx, pcancel := context.WithTimeout(ctx, timeouts.Ping())
	defer pcancel()
	if err := client.Ping(pctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	env, err := NewEnv(docstore.NewMongo(client.Database(opts.Database), logger), opts, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	env.close = client.Disconnect
	return env, nil
}

// NewEnv wires the services over docs.
func NewEnv(docs docstore.Store, opts Options, logger *zap.Logger) (*Env, error) {
	dir := zones.Default()
	if opts.ZonesFile != "" {
		d, err := zones.LoadFile(opts.ZonesFile)
		if err != nil {
			return nil, fmt.Errorf("zones: %w", err)
		}
		dir = d
	}

	// Provisioning tokens are revoked as soon as they are issued; without a
	// configured secret a random one is used.
	secret := []byte(opts.TokenSecret)
	if len(secret) == 0 {
		secret = []byte(base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)))
	}
	auth, err := authprovider.New(docs, authprovider.Config{Secret: secret}, logger)
	if err != nil {
		return nil, err
	}

	accounts := accountstore.New(docs)
	auditAdmin := opts.AuditAdmin
	if auditAdmin == "" {
		auditAdmin = "all"
	}
	return &Env{
		Zones:     dir,
		Accounts:  accounts,
		Admission: admission.New(accounts, logger),
		Registration: &registration.Service{
			Auth:     auth,
			Accounts: accounts,
			Zones:    dir,
			Log:      logger,
		},
		AuditLog: auditlog.New(audit.New(docs), logger, auditlog.Config{Auth: "off", Admin: auditAdmin}),
		Log:      logger,
	}, nil
}
