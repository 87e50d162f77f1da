package container

import (
	"context"
	"fmt"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
	"github.com/agentsystems/notary-arweave-bundler/internal/store"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// RateLimitPackage provides the counter store picked by Options.CounterBackend and the
// hourly limiter configured from RATE_LIMIT_PER_HOUR and RATE_LIMIT_TABLE.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.CounterStore, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.CounterBackend {
		case BackendMemory:
			return store.NewCounterMemoryStore(), nil
		case BackendRedis:
			return store.NewCounterRedisStore(do.MustInvoke[*Redis](i).Client), nil
		case BackendPostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return store.NewCounterPostgresStore(pg.Pool), nil
		default:
			return nil, fmt.Errorf("unknown counter backend %q", opts.CounterBackend)
		}
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.Limiter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*zap.Logger](i)

		settings := ratelimit.Settings{
			Limit: cfg.RateLimitPerHour(),
			Table: cfg.RateLimitTable(),
		}

		if !settings.Enabled() {
			logger.Info("rate limiting disabled")

			return ratelimit.NewLimiter(nil, settings), nil
		}

		counters, err := do.Invoke[ratelimit.CounterStore](i)
		if err != nil {
			return nil, err
		}

		if pg, ok := counters.(*store.CounterPostgresStore); ok {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := pg.EnsureTable(ctx, settings.Table); err != nil {
				return nil, err
			}
		}

		logger.Info("rate limiting enabled",
			zap.Int64("limit", settings.Limit),
			zap.String("table", settings.Table),
		)

		return ratelimit.NewLimiter(counters, settings), nil
	})
}
