// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	// MongoClient is nil when running on the in-memory store.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Docs is the document store every component reads and writes through.
	Docs docstore.Store
	// Redis is nil unless redis_addr is set.
	Redis *redis.Client

	// Runtime is filled in by Startup and read by BuildHandler and Shutdown.
	Runtime *Runtime
}
