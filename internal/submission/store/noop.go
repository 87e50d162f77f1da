package store

import (
	"context"

	"github.com/agentsystems/notary-arweave-bundler/internal/submission"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of submission.Recorder that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op submission recorder.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) Record(_ context.Context, event *submission.Queued) error {
	n.logger.Info("submission received",
		zap.String("id", event.ID),
		zap.String("hash", event.Hash),
		zap.String("kmsKeyArn", event.KMSKeyARN),
		zap.Time("queuedAt", event.QueuedAt),
	)

	return nil
}
