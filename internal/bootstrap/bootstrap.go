// Package bootstrap wires configured stores into the quota pipeline for the
// API server and the admin CLI.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/marketdesk/server/internal/adapter/repo"
	"github.com/marketdesk/server/internal/domain"
	"github.com/marketdesk/server/internal/infra"
	"github.com/marketdesk/server/internal/quota"
	"github.com/marketdesk/server/internal/storage"
)

// CounterStore is a remote counter store that also accepts admin writes.
type CounterStore interface {
	domain.CounterStore
	domain.SubscriptionWriter
	domain.CounterResetter
}

// Stores holds the opened backends. Close releases every one of them.
type Stores struct {
	Counters CounterStore
	// SQL is set only for the postgres backend.
	SQL   *infra.SQLRunner
	Local domain.LocalStateStore

	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenCounterStore connects the remote counter store selected by COUNTER_STORE.
func OpenCounterStore(ctx context.Context, cfg *infra.Config, logger zerolog.Logger, stores *Stores) error {
	switch cfg.CounterStore {
	case infra.CounterStorePostgres:
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		stores.closers = append(stores.closers, pool.Close)
		stores.SQL = infra.NewSQLRunner(pool, logger)
		stores.Counters = repo.NewCounterRepository(stores.SQL)
	case infra.CounterStoreRedis:
		client, err := infra.NewRedisClient(ctx, cfg)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		stores.closers = append(stores.closers, func() { _ = client.Close() })
		stores.Counters = repo.NewRedisCounterRepository(client)
	default:
		return fmt.Errorf("unsupported counter store %q", cfg.CounterStore)
	}
	logger.Info().Str("store", cfg.CounterStore).Msg("counter store ready")
	return nil
}

// OpenLocalStore opens the demo-session store selected by DEMO_STORE.
func OpenLocalStore(cfg *infra.Config, logger zerolog.Logger, stores *Stores) error {
	switch cfg.DemoStore {
	case infra.DemoStoreSQLite:
		db, err := storage.NewSQLiteStore(cfg.DemoStoragePath)
		if err != nil {
			return err
		}
		stores.closers = append(stores.closers, func() { _ = db.Close() })
		stores.Local = db
	default:
		files, err := storage.NewFileStore(cfg.DemoStoragePath)
		if err != nil {
			return err
		}
		stores.Local = files
	}
	logger.Info().Str("store", cfg.DemoStore).Str("path", cfg.DemoStoragePath).Msg("demo store ready")
	return nil
}

// Open connects both stores. On error everything opened so far is closed.
func Open(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*Stores, error) {
	stores := &Stores{}
	if err := OpenCounterStore(ctx, cfg, logger, stores); err != nil {
		stores.Close()
		return nil, err
	}
	if err := OpenLocalStore(cfg, logger, stores); err != nil {
		stores.Close()
		return nil, err
	}
	return stores, nil
}

// QuotaOptions maps QUOTA_* settings onto quota.Options.
func QuotaOptions(cfg *infra.Config, logger zerolog.Logger, metrics *quota.Metrics) quota.Options {
	opts := quota.DefaultOptions()
	opts.FreeLimit = cfg.Quota.FreeLimit
	opts.MaxRetries = cfg.Quota.MaxRetries
	opts.AttemptTimeout = cfg.Quota.IncrementTimeout
	opts.Backoff = quota.Backoff{Base: cfg.Quota.BackoffBase, Max: cfg.Quota.BackoffMax}
	opts.Logger = &logger
	opts.Metrics = metrics
	return opts
}
