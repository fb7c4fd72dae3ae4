package handlers

import (
	"context"

	"tracking/internal/config"

	"github.com/aws/aws-lambda-go/events"
)

type HealthResponse struct {
	OK         bool   `json:"ok"`
	Service    string `json:"service"`
	Configured bool   `json:"configured"`
	APIVersion string `json:"apiVersion"`
}

// Health reports liveness plus whether the tracking configuration is
// complete. Secrets held in Parameter Store are not fetched here.
type Health struct {
	env config.Lookup
}

func NewHealth(env config.Lookup) *Health {
	return &Health{env: env}
}

func (h *Health) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	cfg := config.FromLookup(h.env)
	configured := cfg.StoreDomain != "" && (cfg.StorefrontToken != "" || cfg.StorefrontTokenParam != "")

	return jsonResp(200, HealthResponse{
		OK:         true,
		Service:    "storefront-tracking",
		Configured: configured,
		APIVersion: cfg.APIVersion,
	})
}
