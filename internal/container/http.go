package container

import (
	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/agentsystems/notary-arweave-bundler/internal/handlers"
	"github.com/agentsystems/notary-arweave-bundler/internal/health"
	"github.com/agentsystems/notary-arweave-bundler/internal/messaging"
	"github.com/agentsystems/notary-arweave-bundler/internal/metrics"
	"github.com/agentsystems/notary-arweave-bundler/internal/middleware"
	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
	"github.com/agentsystems/notary-arweave-bundler/internal/secrets"
	"github.com/agentsystems/notary-arweave-bundler/internal/submission"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const submissionIDLength = 21

// HTTPPackage provides the router and the Huma API with every route registered.
// When the configuration fails to load the health check keeps answering and the
// gateway functions report the configuration error.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Handle("/metrics", metrics.Handler())

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("Notary Gateway", "1.0.0"))
		health.RegisterRoutes(api)

		cfg, err := do.Invoke[*config.Config](i)
		if err != nil {
			logger.Error("configuration invalid, gateway functions disabled", zap.Error(err))
			handlers.RegisterMisconfigured(api, err)

			return api, nil
		}

		limiter, err := do.Invoke[*ratelimit.Limiter](i)
		if err != nil {
			return nil, err
		}

		keys, err := do.Invoke[*secrets.Cache](i)
		if err != nil {
			return nil, err
		}

		publish, err := do.Invoke[messaging.Publish[submission.Queued]](i)
		if err != nil {
			return nil, err
		}

		newID, err := nanoid.Standard(submissionIDLength)
		if err != nil {
			return nil, err
		}

		submissions := handlers.NewSubmissionHandler(handlers.SubmissionSettings{
			KMSKeyARN:  cfg.KMSKeyARN(),
			GatewayURL: cfg.GatewayURL(),
			DryRun:     cfg.DryRun(),
		}, publish, newID, logger)

		handlers.RegisterRoutes(api, submissions, huma.Middlewares{
			middleware.RequestMeta(api),
			middleware.RateLimiter(api, limiter, logger),
			middleware.APIKey(api, keys, logger),
		})

		return api, nil
	})
}
