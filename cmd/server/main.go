package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/container"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.ConfigPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RateLimitPackage(injector)
	container.SecretsPackage(injector)
	container.PublisherGroupPackage(injector)
	container.HTTPPackage(injector)
}

// newServer builds the API, which registers every route on the router.
func newServer(injector *do.Injector, port int) (*http.Server, error) {
	if _, err := do.Invoke[huma.API](injector); err != nil {
		return nil, err
	}

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           do.MustInvoke[*chi.Mux](injector),
		ReadHeaderTimeout: readHeaderTimeout,
	}, nil
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			var err error

			server, err = newServer(injector, options.Port)
			if err != nil {
				logger.Fatal("failed to build server", zap.Error(err))
			}

			logger.Info("gateway listening",
				zap.Int("port", options.Port),
				zap.String("counterBackend", options.CounterBackend),
				zap.String("secretBackend", options.SecretBackend),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			_ = logger.Sync()
		})
	})

	cli.Run()
}
