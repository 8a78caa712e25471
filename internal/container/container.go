package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/tinifier/tinifier/internal/analytics"
	"github.com/tinifier/tinifier/internal/config"
	"github.com/tinifier/tinifier/internal/shortener"
	"github.com/tinifier/tinifier/internal/store"
	"go.uber.org/zap"
)

// LoggerPackage provides the zap logger. Console output goes to stderr so
// stdout stays reserved for command results.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		cfg := do.MustInvoke[*config.Config](i)

		level, err := zap.ParseAtomicLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}

		zcfg := zap.NewDevelopmentConfig()
		zcfg.Level = level

		return zcfg.Build()
	})
}

// StorePackage provides the shortener.Store selected by the configured
// backend.
func StorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Store, error) {
		cfg := do.MustInvoke[*config.Config](i)

		switch cfg.Backend {
		case config.BackendMemory:
			return store.NewMemoryStore(), nil

		case config.BackendFile:
			logger := do.MustInvoke[*zap.Logger](i)

			return store.NewFileStore(cfg.StoragePath, logger)

		case config.BackendPostgres:
			pool, err := pgxpool.New(context.Background(), cfg.DatabaseDSN)
			if err != nil {
				return nil, fmt.Errorf("connect to postgres: %w", err)
			}

			return store.NewPostgresStore(context.Background(), pool)

		case config.BackendRedis:
			client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

			return store.NewRedisStore(client), nil

		default:
			return nil, fmt.Errorf("unknown backend: %q", cfg.Backend)
		}
	})
}

// AnalyticsPackage provides the in-process event pipeline: a gochannel
// pub/sub and a consumer that records events through the logger.
func AnalyticsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}), nil
	})

	do.Provide(injector, func(i *do.Injector) (*analytics.Consumer, error) {
		pubsub := do.MustInvoke[*gochannel.GoChannel](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return analytics.NewConsumer(pubsub, analytics.NewLogRecorder(logger), logger), nil
	})
}

// ShortenerPackage provides the operation layer wired to the configured
// code strategy and the analytics publishers.
func ShortenerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.CodeStrategy, error) {
		cfg := do.MustInvoke[*config.Config](i)

		if cfg.Strategy == config.StrategyToken {
			return shortener.NewTokenStrategy(cfg.CodeLength)
		}

		return shortener.NewHashStrategy(), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		cfg := do.MustInvoke[*config.Config](i)
		pubsub := do.MustInvoke[*gochannel.GoChannel](i)

		return shortener.NewService(
			do.MustInvoke[shortener.Store](i),
			do.MustInvoke[shortener.CodeStrategy](i),
			cfg.Strategy,
			cfg.Author,
			analytics.NewPublishFunc[analytics.EntryCreatedEvent](pubsub, analytics.TopicEntryCreated),
			analytics.NewPublishFunc[analytics.EntryViewedEvent](pubsub, analytics.TopicEntryViewed),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})
}
