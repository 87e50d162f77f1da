package handlers

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/messaging"
	"github.com/agentsystems/notary-arweave-bundler/internal/metrics"
	"github.com/agentsystems/notary-arweave-bundler/internal/submission"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// IDGenerator generates unique submission identifiers.
type IDGenerator func() string

// SubmissionSettings are the configuration values the handler stamps on every submission.
type SubmissionSettings struct {
	KMSKeyARN  string
	GatewayURL string
	DryRun     bool
}

// SubmissionHandler accepts document hashes and queues them for notarization.
type SubmissionHandler struct {
	settings SubmissionSettings
	publish  messaging.Publish[submission.Queued]
	newID    IDGenerator
	logger   *zap.Logger
}

// NewSubmissionHandler creates a new submission handler.
func NewSubmissionHandler(
	settings SubmissionSettings,
	publish messaging.Publish[submission.Queued],
	newID IDGenerator,
	logger *zap.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		settings: settings,
		publish:  publish,
		newID:    newID,
		logger:   logger,
	}
}

func (h *SubmissionHandler) Submit(ctx context.Context, req *SubmitRequest) (*SubmitResponse, error) {
	hash := strings.ToLower(req.Body.Hash)
	if raw, err := hex.DecodeString(hash); err != nil || len(raw) != 32 {
		return nil, huma.Error400BadRequest("hash must be a hex encoded SHA-256 digest")
	}

	meta := RequestMetaFromContext(ctx)
	event := &submission.Queued{
		ID:         "sub_" + h.newID(),
		Hash:       hash,
		KMSKeyARN:  h.settings.KMSKeyARN,
		GatewayURL: h.settings.GatewayURL,
		QueuedAt:   time.Now().UTC(),
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	}

	status := StatusQueued

	if h.settings.DryRun {
		status = StatusDryRun

		h.logger.Info("dry run: submission not queued",
			zap.String("id", event.ID),
			zap.String("hash", event.Hash),
		)
	} else if err := h.publish(ctx, event); err != nil {
		h.logger.Error("failed to queue submission",
			zap.String("id", event.ID),
			zap.Error(err),
		)

		return nil, huma.Error503ServiceUnavailable("failed to queue submission")
	}

	metrics.RecordSubmission(status)

	resp := &SubmitResponse{}
	resp.Body.ID = event.ID
	resp.Body.Status = status
	resp.Body.Hash = event.Hash
	resp.Body.GatewayURL = event.GatewayURL
	resp.Body.KMSKeyARN = event.KMSKeyARN

	return resp, nil
}
