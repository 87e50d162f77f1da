package container

import (
	"errors"

	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
	"github.com/agentsystems/notary-arweave-bundler/internal/store"
	"github.com/agentsystems/notary-arweave-bundler/internal/sweep"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// ErrSweepNotNeeded is returned when the counter store expires buckets on its own
// or rate limiting is disabled.
var ErrSweepNotNeeded = errors.New("expired counter sweep not needed")

// SweeperPackage provides the cron job purging expired PostgreSQL counter rows.
func SweeperPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*sweep.Sweeper, error) {
		opts := do.MustInvoke[*Options](i)
		cfg := do.MustInvoke[*config.Config](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.CounterBackend != BackendPostgres || cfg.RateLimitTable() == "" {
			return nil, ErrSweepNotNeeded
		}

		counters, err := do.Invoke[ratelimit.CounterStore](i)
		if err != nil {
			return nil, err
		}

		pg, ok := counters.(*store.CounterPostgresStore)
		if !ok {
			return nil, ErrSweepNotNeeded
		}

		return sweep.NewSweeper(pg, cfg.RateLimitTable(), opts.SweepSchedule, logger)
	})
}
