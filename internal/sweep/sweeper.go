// Package sweep periodically removes expired rate limit buckets from stores that have
// no native expiry.
package sweep

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSchedule runs the sweep every ten minutes.
const DefaultSchedule = "@every 10m"

// Purger deletes records of table whose expiry is at or before now.
type Purger interface {
	PurgeExpired(ctx context.Context, table string, now time.Time) (int64, error)
}

// Sweeper runs Purger on a cron schedule.
type Sweeper struct {
	purger  Purger
	table   string
	timeout time.Duration
	now     func() time.Time
	logger  *zap.Logger
	cron    *cron.Cron
}

// NewSweeper creates a sweeper for table. The schedule uses the robfig/cron syntax,
// including descriptors such as "@every 5m".
func NewSweeper(purger Purger, table, schedule string, logger *zap.Logger) (*Sweeper, error) {
	s := &Sweeper{
		purger:  purger,
		table:   table,
		timeout: time.Minute,
		now:     time.Now,
		logger:  logger.With(zap.String("table", table)),
		cron:    cron.New(),
	}

	if _, err := s.cron.AddFunc(schedule, func() { _, _ = s.RunOnce(context.Background()) }); err != nil {
		return nil, err
	}

	return s, nil
}

// RunOnce performs a single sweep and returns the number of removed buckets.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	removed, err := s.purger.PurgeExpired(ctx, s.table, s.now())
	if err != nil {
		s.logger.Error("expired bucket sweep failed", zap.Error(err))

		return 0, err
	}

	if removed > 0 {
		s.logger.Info("expired buckets removed", zap.Int64("removed", removed))
	}

	return removed, nil
}

// Start begins the schedule in the background.
func (s *Sweeper) Start() {
	s.cron.Start()
	s.logger.Info("sweeper started")
}

// Shutdown stops the schedule and waits for a running sweep to finish.
func (s *Sweeper) Shutdown() error {
	<-s.cron.Stop().Done()

	return nil
}
