package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/agentsystems/notary-arweave-bundler/internal/metrics"
	"github.com/agentsystems/notary-arweave-bundler/internal/ratelimit"
	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"
)

// RateLimitChecker decides whether the current request fits in the hourly quota.
type RateLimitChecker interface {
	CheckRateLimit(ctx context.Context) (ratelimit.Decision, error)
}

// RateLimiter returns a Huma middleware that enforces the shared hourly limit.
// Denials answer 429 with a Retry-After pointing at the next hour; store failures
// answer 503 and never let the request through.
func RateLimiter(
	api huma.API,
	limiter RateLimitChecker,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		decision, err := limiter.CheckRateLimit(ctx.Context())
		if err != nil {
			metrics.RecordRateLimitDecision(metrics.OutcomeError)
			logger.Error("rate limit check failed",
				zap.String("path", operationPath(ctx)),
				zap.Error(err),
			)

			status := http.StatusInternalServerError
			if errors.Is(err, ratelimit.ErrStoreUnavailable) {
				status = http.StatusServiceUnavailable
			}

			_ = huma.WriteErr(api, ctx, status, "rate limit store unavailable")

			return
		}

		if !decision.Allowed {
			metrics.RecordRateLimitDecision(metrics.OutcomeDenied)
			logger.Warn("rate limit exceeded",
				zap.String("path", operationPath(ctx)),
				zap.Int64("count", decision.Count),
				zap.Int64("limit", decision.Limit),
				zap.String("client_ip", clientIP(ctx)),
			)

			ctx.SetHeader("Retry-After", strconv.Itoa(secondsUntilNextHour(time.Now())))

			msg := fmt.Sprintf("rate limit exceeded: %d/%d requests this hour", decision.Count, decision.Limit)
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)

			return
		}

		metrics.RecordRateLimitDecision(metrics.OutcomeAllowed)
		next(ctx)
	}
}

func secondsUntilNextHour(now time.Time) int {
	next := now.UTC().Truncate(time.Hour).Add(time.Hour)

	return int(next.Sub(now).Seconds()) + 1
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
