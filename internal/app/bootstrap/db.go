// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"sync"

	"github.com/dalemusser/projectflow/internal/app/realtime"
	"github.com/dalemusser/projectflow/internal/app/store/memstore"
	"github.com/dalemusser/projectflow/internal/app/store/mongostore"
	"github.com/dalemusser/projectflow/internal/app/system/indexes"
	"github.com/dalemusser/projectflow/internal/app/system/timeouts"
	"github.com/dalemusser/projectflow/internal/app/system/validators"
	"github.com/dalemusser/projectflow/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// ConnectDB builds the store, the realtime hub and the store ping worker.
//
// With the Mongo backend the client is created and pinged once. A failed
// ping is logged, not fatal: the ping worker keeps checking and finishes
// schema setup when the server answers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	deps := DBDeps{Hub: realtime.NewHub(appCfg.WSSendBuffer, logger.Named("realtime"))}

	switch appCfg.StoreBackend {
	case BackendMemory:
		deps.Store = memstore.New()
	default:
		opts := options.Client().ApplyURI(appCfg.MongoURI)
		if appCfg.MongoMaxPoolSize > 0 {
			opts.SetMaxPoolSize(appCfg.MongoMaxPoolSize)
		}
		client, err := mongo.Connect(ctx, opts)
		if err != nil {
			// Only a malformed configuration fails here; reachability is checked below.
			logger.Error("mongo client init failed", zap.Error(err))
			return DBDeps{}, fmt.Errorf("mongo client: %w", err)
		}
		db := client.Database(appCfg.MongoDatabase)

		deps.MongoClient = client
		deps.MongoDatabase = db
		deps.Store = mongostore.New(db)
		deps.schemaOnce = &schemaSetup{db: db, log: logger}
	}

	deps.StorePing = workers.NewStorePinger(deps.Store, logger, appCfg.StorePingInterval)
	if deps.schemaOnce != nil {
		setup := deps.schemaOnce
		deps.StorePing.OnReachable = func(context.Context) {
			// The ping context is too short for index builds.
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
			defer cancel()
			if err := setup.ensure(ctx); err != nil {
				logger.Error("deferred schema setup failed", zap.Error(err))
			}
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := deps.Store.Pinger.Ping(pingCtx); err != nil {
		logger.Warn("store not reachable at startup; continuing and retrying in background",
			zap.String("backend", deps.Store.Backend), zap.Error(err))
	} else {
		logger.Info("store connected", zap.String("backend", deps.Store.Backend))
	}

	return deps, nil
}

// EnsureSchema sets up collections, validators and indexes when the Mongo
// backend is reachable. Problems found while the store is up abort startup;
// an unreachable store defers the work to the ping worker.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.schemaOnce == nil {
		return nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := deps.Store.Pinger.Ping(pingCtx); err != nil {
		logger.Warn("schema setup deferred until the store is reachable", zap.Error(err))
		return nil
	}
	return deps.schemaOnce.ensure(ctx)
}

// schemaSetup runs collection validators and indexes until one attempt
// succeeds.
type schemaSetup struct {
	db  *mongo.Database
	log *zap.Logger

	mu   sync.Mutex
	done bool
}

func (s *schemaSetup) ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return nil
	}

	if err := validators.EnsureAll(ctx, s.db, s.log); err != nil {
		s.log.Error("collection validators failed", zap.Error(err))
		return fmt.Errorf("validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, s.db, s.log); err != nil {
		s.log.Error("index setup failed", zap.Error(err))
		return fmt.Errorf("indexes: %w", err)
	}
	s.done = true
	s.log.Info("schema ready", zap.String("database", s.db.Name()))
	return nil
}
