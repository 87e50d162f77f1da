package container_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/agentsystems/notary-arweave-bundler/internal/container"
	"github.com/agentsystems/notary-arweave-bundler/internal/sweep"
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testHash = "9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"

func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()

	env := map[string]string{
		config.EnvKMSKeyARN:        "arn:aws:kms:us-east-1:123456789012:key/test",
		config.EnvQueueURL:         "submissions",
		config.EnvGatewayURL:       "",
		config.EnvAPIKeySecretRef:  "",
		config.EnvDryRun:           "true",
		config.EnvRateLimitPerHour: "",
		config.EnvRateLimitTable:   "",
	}

	for k, v := range overrides {
		env[k] = v
	}

	for k, v := range env {
		t.Setenv(k, v)
	}
}

func newRouter(t *testing.T) *chi.Mux {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, &container.Options{
		CounterBackend: container.BackendMemory,
		SecretBackend:  container.BackendRedis,
		SweepSchedule:  sweep.DefaultSchedule,
	})
	do.ProvideValue(injector, zap.NewNop())
	container.ConfigPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RateLimitPackage(injector)
	container.SecretsPackage(injector)
	container.PublisherGroupPackage(injector)
	container.HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	_ = do.MustInvoke[huma.API](injector)

	return do.MustInvoke[*chi.Mux](injector)
}

func submit(router http.Handler) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/submissions", strings.NewReader(`{"hash":"`+testHash+`"}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	return w
}

func TestHTTPPackage(t *testing.T) {
	t.Run("serves health", func(t *testing.T) {
		setEnv(t, nil)
		router := newRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	})

	t.Run("serves metrics", func(t *testing.T) {
		setEnv(t, nil)
		router := newRouter(t)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("accepts dry run submission without limit", func(t *testing.T) {
		setEnv(t, nil)
		router := newRouter(t)

		for range 5 {
			w := submit(router)

			require.Equal(t, http.StatusAccepted, w.Code)
			assert.Contains(t, w.Body.String(), `"status":"dry_run"`)
		}
	})

	t.Run("enforces hourly limit", func(t *testing.T) {
		setEnv(t, map[string]string{
			config.EnvRateLimitPerHour: "2",
			config.EnvRateLimitTable:   "rate_limits",
		})
		router := newRouter(t)

		assert.Equal(t, http.StatusAccepted, submit(router).Code)
		assert.Equal(t, http.StatusAccepted, submit(router).Code)

		w := submit(router)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), "3/2")
	})

	t.Run("reports missing configuration but keeps health", func(t *testing.T) {
		setEnv(t, map[string]string{config.EnvKMSKeyARN: ""})
		router := newRouter(t)

		w := submit(router)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), config.EnvKMSKeyARN)

		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestSweeperPackage(t *testing.T) {
	setEnv(t, nil)

	injector := do.New()
	do.ProvideValue(injector, &container.Options{CounterBackend: container.BackendRedis})
	do.ProvideValue(injector, zap.NewNop())
	container.ConfigPackage(injector)
	container.SweeperPackage(injector)

	_, err := do.Invoke[*sweep.Sweeper](injector)

	assert.ErrorIs(t, err, container.ErrSweepNotNeeded)
}

func TestLoggerPackage(t *testing.T) {
	t.Run("rejects unknown format", func(t *testing.T) {
		injector := do.New()
		do.ProvideValue(injector, &container.Options{LogFormat: "xml"})
		container.LoggerPackage(injector)

		_, err := do.Invoke[*zap.Logger](injector)

		assert.Error(t, err)
	})

	t.Run("builds json logger", func(t *testing.T) {
		injector := do.New()
		do.ProvideValue(injector, &container.Options{LogFormat: "json"})
		container.LoggerPackage(injector)

		logger, err := do.Invoke[*zap.Logger](injector)

		require.NoError(t, err)
		assert.NotNil(t, logger)
	})
}
