package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// StatusOK is the only status the health check reports.
const StatusOK = "ok"

// Response is the response for health check endpoint.
type Response struct {
	Body struct {
		Status string `example:"ok" json:"status"`
	}
}

// Check reports that the function is up. It has no dependencies so it stays cheap
// and never trips the rate limit.
func Check(_ context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{}
	resp.Body.Status = StatusOK

	return resp, nil
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, Check)
}
