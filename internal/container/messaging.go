package container

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/agentsystems/notary-arweave-bundler/internal/messaging"
	"github.com/agentsystems/notary-arweave-bundler/internal/store"
	"github.com/agentsystems/notary-arweave-bundler/internal/submission"
	noopstore "github.com/agentsystems/notary-arweave-bundler/internal/submission/store"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// PublisherGroupPackage provides the Redis stream publisher and the typed publish
// function for queued submissions. SQS_QUEUE_URL names the stream.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     client.Client,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[submission.Queued], error) {
		cfg := do.MustInvoke[*config.Config](i)

		if cfg.DryRun() {
			return messaging.Discard[submission.Queued](), nil
		}

		group, err := do.Invoke[*messaging.PublisherGroup](i)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublishFunc[submission.Queued](
			group.Publisher(), cfg.QueueURL(), submission.EventTypeQueued,
		), nil
	})
}

// RecorderPackage provides where the worker records submissions: PostgreSQL when a
// database URL is configured, the logging no-op recorder otherwise.
func RecorderPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (submission.Recorder, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			logger.Info("no database configured, submissions are only logged")

			return noopstore.NewNoop(logger), nil
		}

		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		recorder := store.NewSubmissionPostgresStore(pg.Pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := recorder.EnsureTable(ctx); err != nil {
			return nil, err
		}

		return recorder, nil
	})
}

// ConsumerGroupPackage provides the worker's consumer group reading queued submissions.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[*Redis](i)
		logger := do.MustInvoke[*zap.Logger](i)

		recorder, err := do.Invoke[submission.Recorder](i)
		if err != nil {
			return nil, err
		}

		subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client.Client,
			Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
			ConsumerGroup: opts.ConsumerGroup,
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, err
		}

		processor := submission.NewProcessor(recorder, cfg.DryRun(), logger)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer[submission.Queued](
			subscriber, cfg.QueueURL(), submission.EventTypeQueued, processor.Handle, logger,
		))

		return group, nil
	})
}
