// Package bootstrap assembles the process-wide dependencies shared by the
// server and the maintenance commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"amateurs/internal/cache"
	"amateurs/internal/config"
	"amateurs/internal/database"
	"amateurs/internal/embedding"
	"amateurs/internal/events"
	"amateurs/internal/middleware"
	"amateurs/internal/repository"
	"amateurs/internal/seed"
	"amateurs/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData fills an empty database with fake users and posts.
	SeedDemoData bool
	// Connect overrides database.Connect, mainly for tests.
	Connect func(*config.Config) (*gorm.DB, error)
}

// Runtime holds the wired dependencies of a running process.
type Runtime struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Store      repository.Store
	Users      repository.UserRepository
	Bus        *events.Bus
	Dispatcher *embedding.Dispatcher
	Community  *service.CommunityService

	embeddingTimeout time.Duration
	cancel           context.CancelFunc
}

// InitRuntime connects to the database and Redis, starts the view event
// consumer and the embedding worker pool, and builds the community service.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	connect := opts.Connect
	if connect == nil {
		connect = database.Connect
	}
	db, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when unreachable; dedupe, user caching and rate limits degrade.
	rdb := cache.InitRedis(cfg.RedisURL)

	store := repository.NewStore(db)
	users := repository.NewUserRepository(db, rdb)

	window := time.Duration(cfg.ViewDedupeWindowMinutes) * time.Minute
	recorder := events.NewViewRecorder(store.Statistics(), rdb, window)
	bus, err := events.NewBus(cfg, rdb, recorder)
	if err != nil {
		return nil, fmt.Errorf("view event bus: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := bus.Start(ctx); err != nil {
		cancel()
		return nil, fmt.Errorf("start view event consumer: %w", err)
	}
	middleware.Logger.Info("view events wired", slog.String("broker", bus.Broker))

	timeout := time.Duration(cfg.EmbeddingTimeoutSeconds) * time.Second
	dispatcher, err := embedding.NewDispatcher(newIndexer(cfg, db, timeout), cfg.EmbeddingWorkers, timeout)
	if err != nil {
		cancel()
		_ = bus.Close()
		return nil, fmt.Errorf("embedding worker pool: %w", err)
	}

	rt := &Runtime{
		DB:               db,
		Redis:            rdb,
		Store:            store,
		Users:            users,
		Bus:              bus,
		Dispatcher:       dispatcher,
		Community:        service.NewCommunityService(store, users, dispatcher, bus.Publisher),
		embeddingTimeout: timeout,
		cancel:           cancel,
	}

	if opts.SeedDemoData {
		if err := seedIfEmpty(ctx, db); err != nil {
			_ = rt.Close(context.Background())
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

func newIndexer(cfg *config.Config, db *gorm.DB, timeout time.Duration) embedding.Indexer {
	if !cfg.EmbeddingEnabled {
		return embedding.NoopIndexer{}
	}
	if db.Dialector.Name() != config.DriverPostgres {
		middleware.Logger.Warn("embedding indexing needs postgres with pgvector, disabling",
			slog.String("driver", db.Dialector.Name()))
		return embedding.NoopIndexer{}
	}
	embedder := embedding.NewHTTPEmbedder(cfg.EmbeddingEndpoint, cfg.EmbeddingDimensions, timeout)
	return embedding.NewVectorIndexer(embedder, repository.NewEmbeddingRepository(db))
}

func seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var posts int64
	if err := db.WithContext(ctx).Table("posts").Count(&posts).Error; err != nil {
		return err
	}
	if posts > 0 {
		return nil
	}
	_, err := seed.NewSeeder(db, seed.Options{NumUsers: 10, NumPosts: 40, DemoAdmin: true}).Run(ctx)
	return err
}

// Close drains the embedding pool and the view event bus, then releases
// Redis and database connections.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error

	wait := r.embeddingTimeout
	if deadline, ok := ctx.Deadline(); ok {
		wait = time.Until(deadline)
	}
	if r.Dispatcher != nil {
		if err := r.Dispatcher.Close(wait); err != nil {
			errs = append(errs, fmt.Errorf("embedding pool: %w", err))
		}
	}

	if r.cancel != nil {
		r.cancel()
	}
	if r.Bus != nil {
		if err := r.Bus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("view event bus: %w", err))
		}
	}

	if r.Redis != nil {
		if err := r.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if r.DB != nil {
		if sqlDB, err := r.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database: %w", err))
			}
		}
	}

	return errors.Join(errs...)
}
