package container

import (
	"fmt"

	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/agentsystems/notary-arweave-bundler/internal/secrets"
	"github.com/agentsystems/notary-arweave-bundler/internal/store"
	"github.com/samber/do"
)

// SecretsPackage provides the API key cache. The secret store is only contacted when
// API_KEY_SECRET_ARN is set.
func SecretsPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (secrets.Fetcher, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.SecretBackend {
		case BackendRedis:
			return store.NewSecretRedisStore(do.MustInvoke[*Redis](i).Client), nil
		case BackendPostgres:
			pg, err := do.Invoke[*Postgres](i)
			if err != nil {
				return nil, err
			}

			return store.NewSecretPostgresStore(pg.Pool, opts.SecretTable), nil
		default:
			return nil, fmt.Errorf("unknown secret backend %q", opts.SecretBackend)
		}
	})

	do.Provide(injector, func(i *do.Injector) (*secrets.Cache, error) {
		cfg := do.MustInvoke[*config.Config](i)

		if cfg.APIKeySecretRef() == "" {
			return secrets.NewCache(nil, ""), nil
		}

		fetcher, err := do.Invoke[secrets.Fetcher](i)
		if err != nil {
			return nil, err
		}

		return secrets.NewCache(fetcher, cfg.APIKeySecretRef()), nil
	})
}
