// Command tracking-server runs the tracking-init endpoint as a long-lived
// HTTP service, for hosts that are not Lambda.
package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"tracking/internal/config"
	"tracking/internal/handlers"
	"tracking/internal/metrics"
	"tracking/internal/shopify"
	"tracking/internal/tracking"
)

func main() {
	// A missing .env is fine; the real environment wins either way.
	_ = godotenv.Load()

	srvCfg := config.ServerFromLookup(os.LookupEnv)
	logger := newLogger(srvCfg)
	slog.SetDefault(logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	upstreamClient := &http.Client{
		Timeout:   srvCfg.UpstreamTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	core := &tracking.Handler{
		Env:      os.LookupEnv,
		Upstream: shopify.NewStorefrontClient(upstreamClient),
		Metrics:  metrics.NewPrometheusSink(reg),
		Logger:   logger,
	}
	if strings.TrimSpace(os.Getenv("SHOPIFY_STOREFRONT_TOKEN_PARAM")) != "" {
		store, err := config.NewSSMStoreFromEnv(context.Background(), 5*time.Minute)
		if err != nil {
			logger.Error("Failed to initialize SSM client", "error", err)
			os.Exit(1)
		}
		core.Secrets = store
	}

	mux := http.NewServeMux()
	mux.Handle(handlers.TrackingInitPath, otelhttp.NewHandler(handlers.NewTrackingInitHTTP(core), "tracking-init"))
	mux.Handle(srvCfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: srvCfg.UpstreamTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	listener, err := net.Listen("tcp", srvCfg.HTTPAddr)
	if err != nil {
		logger.Error("Failed to bind listener", "addr", srvCfg.HTTPAddr, "error", err)
		os.Exit(1)
	}
	logger.Info("Server listening", "addr", listener.Addr().String(), "metrics_path", srvCfg.MetricsPath)

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(server, srvCfg.ShutdownTimeout, logger)
}

func newLogger(cfg config.Server) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func waitForShutdown(server *http.Server, timeout time.Duration, logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	sig := <-sigCh

	logger.Info("Shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
}
