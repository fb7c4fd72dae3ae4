package config

import (
	"log/slog"
	"strings"
	"time"
)

// Server holds the knobs of the standalone HTTP server. The tracking values
// themselves are still read per request through Lookup.
type Server struct {
	HTTPAddr        string
	UpstreamTimeout time.Duration
	ShutdownTimeout time.Duration
	MetricsPath     string
	LogFormat       string
	LogLevel        slog.Level
}

func ServerFromLookup(lookup Lookup) Server {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	s := Server{
		HTTPAddr:        get("HTTP_ADDR"),
		UpstreamTimeout: 10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     get("METRICS_PATH"),
		LogFormat:       strings.ToLower(get("LOG_FORMAT")),
		LogLevel:        slog.LevelInfo,
	}

	if s.HTTPAddr == "" {
		if port := get("PORT"); port != "" {
			s.HTTPAddr = ":" + port
		} else {
			s.HTTPAddr = ":8080"
		}
	}
	if d, err := time.ParseDuration(get("UPSTREAM_TIMEOUT")); err == nil && d > 0 {
		s.UpstreamTimeout = d
	}
	if d, err := time.ParseDuration(get("HTTP_SHUTDOWN_TIMEOUT")); err == nil && d > 0 {
		s.ShutdownTimeout = d
	}
	if s.MetricsPath == "" {
		s.MetricsPath = "/metrics"
	}
	if s.LogFormat != "json" {
		s.LogFormat = "text"
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(get("LOG_LEVEL"))); err == nil {
		s.LogLevel = lvl
	}
	return s
}
