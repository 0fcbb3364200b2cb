package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stevehedden/kgcatalog/internal/api"
	"github.com/stevehedden/kgcatalog/internal/app"
	"github.com/stevehedden/kgcatalog/internal/cache"
	"github.com/stevehedden/kgcatalog/internal/catalog"
	"github.com/stevehedden/kgcatalog/internal/database"
	"github.com/stevehedden/kgcatalog/internal/middleware"
	"github.com/stevehedden/kgcatalog/internal/sparql"
	"github.com/stevehedden/kgcatalog/pkg/logger"
)

// runtimeStack bundles long-lived components used by the HTTP server.
type runtimeStack struct {
	DB        *gorm.DB
	Store     cache.Store
	Client    *sparql.Client
	Service   *catalog.Service
	Refresher *catalog.Refresher
	RateStore middleware.RateStore
	Router    *gin.Engine
}

// bootstrapRuntime initialises the cache backend, SPARQL client, catalog
// pipeline, background refresher and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			stack.Shutdown(ctx, log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.Store, stack.DB, err = initialiseCache(cfg, log)
	if err != nil {
		return nil, err
	}

	stack.Client, err = sparql.NewClient(cfg.Endpoint.ClientConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise sparql client: %w", err)
	}

	stack.Service, err = catalog.NewService(stack.Client, stack.Store, cfg.Catalog.ServiceConfig())
	if err != nil {
		return nil, fmt.Errorf("initialise catalog service: %w", err)
	}

	if cfg.Catalog.Refresh.Enabled {
		stack.Refresher = catalog.NewRefresher(stack.Service, stack.Store,
			catalog.WithWarmSchedule(cfg.Catalog.Refresh.WarmSchedule),
			catalog.WithPurgeSchedule(cfg.Catalog.Refresh.PurgeSchedule),
		)
		if err := stack.Refresher.Start(); err != nil {
			return nil, fmt.Errorf("start refresh jobs: %w", err)
		}
	}

	stack.RateStore = rateStoreFor(cfg, stack.Store)

	stack.Router, err = api.NewRouter(stack.Service, stack.RateStore)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown gracefully stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) {
	if s == nil {
		return
	}

	if s.Refresher != nil {
		stopCtx := s.Refresher.Stop()
		if stopCtx != nil {
			<-stopCtx.Done()
		}
	}

	if rc, ok := s.Store.(*cache.RedisClient); ok && rc != nil {
		if err := rc.Close(); err != nil {
			log.Warn("redis shutdown", zap.Error(err))
		}
	}

	if s.DB != nil {
		closeDatabase(s.DB, log)
	}
}

// initialiseCache picks the cache backend from configuration. The database is
// opened only for the database driver; redis falls back to memory when the
// server is unreachable so the catalog still renders.
func initialiseCache(cfg *app.Config, log *zap.Logger) (cache.Store, *gorm.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Cache.Driver))

	switch driver {
	case "", "memory":
		return cache.NewMemoryStore(), nil, nil

	case "database":
		db, err := initialiseDatabase(cfg)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewDatabaseStore(db), db, nil

	case "redis":
		client, err := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable; falling back to in-memory cache", zap.Error(err))
			return cache.NewMemoryStore(), nil, nil
		}
		log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
		return client, nil, nil

	default:
		return nil, nil, fmt.Errorf("unsupported cache driver %q", cfg.Cache.Driver)
	}
}

func rateStoreFor(cfg *app.Config, store cache.Store) middleware.RateStore {
	switch strings.ToLower(strings.TrimSpace(cfg.Cache.Driver)) {
	case "redis":
		if _, ok := store.(*cache.RedisClient); ok {
			return middleware.NewRedisRateStore(store)
		}
	case "database":
		return middleware.NewDatabaseRateStore(store)
	}
	return middleware.NewMemoryRateStore()
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
