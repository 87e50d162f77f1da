package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-Api-Key"

// KeySource provides the expected API key. ok is false when no key is configured.
type KeySource interface {
	APIKey(ctx context.Context) (key string, ok bool, err error)
}

// APIKey returns a Huma middleware that requires the configured API key.
// When no key is configured every request passes.
func APIKey(api huma.API, keys KeySource, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		expected, ok, err := keys.APIKey(ctx.Context())
		if err != nil {
			logger.Error("api key lookup failed", zap.String("path", operationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "api key unavailable")

			return
		}

		if !ok {
			next(ctx)

			return
		}

		got := ctx.Header(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			logger.Warn("invalid api key",
				zap.String("path", operationPath(ctx)),
				zap.String("client_ip", clientIP(ctx)),
			)
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid api key")

			return
		}

		next(ctx)
	}
}
