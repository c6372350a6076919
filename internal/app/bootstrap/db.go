// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/wardwatch/internal/app/docstore"
	"github.com/dalemusser/wardwatch/internal/app/system/indexes"
	"github.com/dalemusser/wardwatch/internal/app/system/timeouts"
	"github.com/dalemusser/wardwatch/internal/app/system/validators"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB opens MongoDB (or the in-memory store) and, when configured,
// Redis. A Redis that does not answer is logged and left out; sessions and
// revocations then stay in memory.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{Runtime: &Runtime{}}

	if appCfg.InMemory() {
		logger.Warn("running on the in-memory document store; data is lost on exit")
		deps.Docs = docstore.NewMemory()
	} else {
		cctx, cancel := context.WithTimeout(ctx, timeouts.Long())
		defer cancel()

		client, err := mongo.Connect(cctx, options.Client().ApplyURI(appCfg.MongoURI))
		if err != nil {
			return DBDeps{}, fmt.Errorf("connect mongo: %w", err)
		}
		pctx, pcancel := context.WithTimeout(ctx, timeouts.Ping())
		defer pcancel()
		if err := client.Ping(pctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return DBDeps{}, fmt.Errorf("ping mongo: %w", err)
		}
		deps.MongoClient = client
		deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
		deps.Docs = docstore.NewMongo(deps.MongoDatabase, logger)
		logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
		defer cancel()
		if err := rdb.Ping(pctx).Err(); err != nil {
			logger.Warn("redis unavailable; keeping sessions in memory", zap.String("addr", appCfg.RedisAddr), zap.Error(err))
			_ = rdb.Close()
		} else {
			deps.Redis = rdb
			logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
		}
	}
	return deps, nil
}

// EnsureSchema attaches collection validators and creates MongoDB indexes.
// The in-memory store needs neither.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	ictx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()
	if err := validators.EnsureAll(ictx, deps.MongoDatabase, logger); err != nil {
		logger.Error("collection validators failed", zap.Error(err))
		return err
	}
	return indexes.EnsureAll(ictx, deps.MongoDatabase, logger)
}
