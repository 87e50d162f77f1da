package submission

import (
	"context"

	"go.uber.org/zap"
)

// Processor handles queued submissions on the worker side.
type Processor struct {
	recorder Recorder
	dryRun   bool
	logger   *zap.Logger
}

// NewProcessor creates a new submission processor. In dry-run mode events are
// acknowledged and logged without being recorded.
func NewProcessor(recorder Recorder, dryRun bool, logger *zap.Logger) *Processor {
	return &Processor{
		recorder: recorder,
		dryRun:   dryRun,
		logger:   logger,
	}
}

// Handle processes a single queued submission.
func (p *Processor) Handle(ctx context.Context, event *Queued) error {
	if p.dryRun {
		p.logger.Info("dry run: skipping submission",
			zap.String("id", event.ID),
			zap.String("hash", event.Hash),
		)

		return nil
	}

	if err := p.recorder.Record(ctx, event); err != nil {
		return err
	}

	p.logger.Debug("submission recorded",
		zap.String("id", event.ID),
		zap.String("hash", event.Hash),
	)

	return nil
}
