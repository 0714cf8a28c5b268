package cmd

import (
	"context"
	"fmt"

	"inventory-ledger/core/cache"
	"inventory-ledger/core/config"
	"inventory-ledger/core/database"
	"inventory-ledger/core/ledger"
	"inventory-ledger/core/logger"
	"inventory-ledger/core/platform"
	"inventory-ledger/core/reconcile"
	"inventory-ledger/core/shop"
	"inventory-ledger/core/storage"
	"inventory-ledger/feature/webhooks"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds the components shared by the server and the maintenance commands.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	store  ledger.Store
	rdb    *redis.Client
	shops  *shop.Directory
	api    *platform.Client
	engine *reconcile.Engine

	// Set by withDeadLetters only.
	deadLetters *storage.DeadLetters
}

// bootstrap loads configuration and builds the reconciliation engine.
func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logg.Info("Connected to ledger database", zap.String("driver", cfg.Database.Driver))

	rt := &runtime{
		cfg:    cfg,
		logger: logg,
		db:     db,
		store:  ledger.NewGormStore(db),
		shops:  shop.NewDirectory(db, cfg.Reconcile.LocationCacheTTL),
	}
	rt.api = platform.NewClient(cfg.Platform, rt.shops)

	// Shared cache is optional; a broken Redis only costs extra API calls.
	if rdb, err := cache.New(ctx, cfg.Redis); err != nil {
		logg.Warn("Shared cache unavailable, using process cache only", zap.Error(err))
	} else if rdb != nil {
		rt.rdb = rdb
		logg.Info("Connected to shared cache", zap.String("addr", cfg.Redis.Addr))
	}

	names := reconcile.NewNameCache(rt.api, rt.rdb, cfg.Reconcile.LocationCacheTTL, logg)
	rt.engine = reconcile.NewEngine(rt.store, cfg.Reconcile, logg,
		reconcile.WithZones(rt.shops),
		reconcile.WithLocationNames(names),
	)

	return rt, nil
}

// withDeadLetters connects the dead-letter archive, creating its bucket when needed.
func (rt *runtime) withDeadLetters(ctx context.Context) error {
	bucket, err := storage.Open(rt.cfg.Storage)
	if err != nil {
		return err
	}
	if err := bucket.Ensure(ctx); err != nil {
		return err
	}
	rt.deadLetters = storage.NewDeadLetters(bucket, rt.cfg.Storage.DeadLetterPrefix)
	return nil
}

// webhookService wires the webhook adapters to the engine. The archive is nil
// unless withDeadLetters succeeded.
func (rt *runtime) webhookService() *webhooks.Service {
	var archive webhooks.Archiver
	if rt.deadLetters != nil {
		archive = rt.deadLetters
	}
	return webhooks.NewService(rt.engine, archive, rt.logger,
		webhooks.InventoryLevelAdapter{},
		webhooks.NewRefundAdapter(rt.api, rt.cfg.Reconcile.EnrichmentTimeout, rt.logger),
	)
}

func (rt *runtime) close() {
	if rt.rdb != nil {
		_ = rt.rdb.Close()
	}
	if sqlDB, err := rt.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rt.logger.Sync()
}
