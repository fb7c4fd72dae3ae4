package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"tracking/internal/config"
	"tracking/internal/handlers"
	"tracking/internal/metrics"
	"tracking/internal/shopify"
	"tracking/internal/tracking"
)

func main() {
	ctx := context.Background()

	// CloudWatch wants one JSON object per line.
	logLevel := config.ServerFromLookup(os.LookupEnv).LogLevel
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	core := &tracking.Handler{
		Env:      os.LookupEnv,
		Upstream: shopify.NewStorefrontClient(&http.Client{Timeout: 10 * time.Second}),
		Metrics:  metrics.NewNoopSink(),
		Logger:   logger,
	}

	// Only build an AWS client when the token lives in Parameter Store.
	if strings.TrimSpace(os.Getenv("SHOPIFY_STOREFRONT_TOKEN_PARAM")) != "" {
		store, err := config.NewSSMStoreFromEnv(ctx, 5*time.Minute)
		if err != nil {
			log.Fatalf("init ssm: %v", err)
		}
		core.Secrets = store
	}

	h := handlers.NewTrackingInit(core)
	lambda.Start(h.Handle)
}

