package handlers

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func submitOperation(middlewares huma.Middlewares) huma.Operation {
	return huma.Operation{
		OperationID:   "submit-hash",
		Method:        http.MethodPost,
		Path:          "/v1/submissions",
		Summary:       "Submit document hash",
		Description:   "Queues a document hash for notarization. Subject to the hourly rate limit and API key.",
		Tags:          []string{"Submissions"},
		DefaultStatus: http.StatusAccepted,
		Middlewares:   middlewares,
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusServiceUnavailable,
		},
	}
}

// RegisterRoutes registers the gateway functions. Middlewares (rate limit, API key)
// apply only to these operations, not to the health check.
func RegisterRoutes(api huma.API, submissions *SubmissionHandler, middlewares huma.Middlewares) {
	huma.Register(api, submitOperation(middlewares), submissions.Submit)
}

// RegisterMisconfigured registers the gateway functions for a process whose configuration
// could not be loaded. Every call fails with 500 carrying the configuration error.
func RegisterMisconfigured(api huma.API, cause error) {
	huma.Register(api, submitOperation(nil), func(_ context.Context, _ *SubmitRequest) (*SubmitResponse, error) {
		return nil, huma.Error500InternalServerError(cause.Error())
	})
}
