package tracking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"tracking/internal/config"
	"tracking/internal/metrics"
	"tracking/internal/shopify"
)

const (
	msgMethodNotAllowed = "Method not allowed"
	msgMisconfigured    = "Server misconfigured"
	msgUpstreamFailed   = "Failed to initialize tracking"

	misconfiguredHint = "set SHOPIFY_STORE_DOMAIN and SHOPIFY_STOREFRONT_TOKEN (or SHOPIFY_STOREFRONT_TOKEN_PARAM)"
)

// Upstream exchanges the tracking tokens with the Storefront API.
type Upstream interface {
	InitTracking(ctx context.Context, in shopify.TrackingRequest) (*shopify.TrackingResult, error)
}

// Handler resolves the tracking token pair for one request. It holds no
// per-visitor state; configuration is read from Env on every call.
type Handler struct {
	Env      config.Lookup
	Secrets  config.SecretStore
	Upstream Upstream
	Metrics  metrics.Sink
	Logger   *slog.Logger
	NewToken func() string
}

func (h *Handler) Serve(ctx context.Context, req Request) Response {
	cfg := config.FromLookup(h.Env)
	header := req.Header
	if header == nil {
		header = http.Header{}
	}
	cors := NegotiateCORS(RequestOrigin(header), cfg.AllowedOrigins)

	switch req.Method {
	case http.MethodOptions:
		h.sink().RequestCompleted(metrics.OutcomePreflight)
		return Response{StatusCode: http.StatusNoContent, Header: cors}
	case http.MethodGet, http.MethodPost:
	default:
		h.sink().RequestCompleted(metrics.OutcomeMethodNotAllowed)
		return errResp(http.StatusMethodNotAllowed, cors, msgMethodNotAllowed, nil)
	}

	cfg, err := cfg.Resolve(ctx, h.Secrets)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if errors.Is(err, config.ErrMissingConfig) {
			h.logger().Error("tracking-init: missing configuration", "error", err)
		} else {
			h.logger().Error("tracking-init: failed to resolve configuration", "error", err)
		}
		h.sink().RequestCompleted(metrics.OutcomeMisconfigured)
		return errResp(http.StatusInternalServerError, cors, msgMisconfigured, map[string]any{"hint": misconfiguredHint})
	}

	cookieHeader := strings.Join(header.Values("Cookie"), "; ")
	tokens, sources := h.resolveTokens(cookieHeader)

	start := time.Now()
	res, err := h.Upstream.InitTracking(ctx, shopify.TrackingRequest{
		ShopDomain:  cfg.StoreDomain,
		APIVersion:  cfg.APIVersion,
		AccessToken: cfg.StorefrontToken,
		UniqueToken: tokens.UniqueToken,
		VisitToken:  tokens.VisitToken,
		Cookie:      cookieHeader,
	})
	status := 0
	if res != nil {
		status = res.StatusCode
	}
	h.sink().UpstreamCompleted(metrics.ClassifyStatus(status, err), time.Since(start))
	if err != nil {
		h.logger().Error("tracking-init: storefront request failed", "shop", cfg.StoreDomain, "error", err)
		h.sink().RequestCompleted(metrics.OutcomeUpstreamError)
		var extra map[string]any
		if cfg.ExposeErrorDetail {
			extra = map[string]any{"detail": err.Error()}
		}
		return errResp(http.StatusInternalServerError, cors, msgUpstreamFailed, extra)
	}

	timing := ParseServerTiming(res.ServerTiming)
	if v := timing[TimingUnique]; v != "" {
		tokens.UniqueToken = v
		sources[0] = metrics.SourceUpstream
	}
	if v := timing[TimingVisit]; v != "" {
		tokens.VisitToken = v
		sources[1] = metrics.SourceUpstream
	}
	h.sink().TokenResolved(metrics.TokenUnique, sources[0])
	h.sink().TokenResolved(metrics.TokenVisit, sources[1])
	h.logger().Debug("tracking-init: tokens resolved",
		"shop", res.ShopName,
		"upstream_status", res.StatusCode,
		"unique_source", sources[0],
		"visit_source", sources[1],
	)

	out := jsonResp(http.StatusOK, cors, tokens)
	for _, c := range TrackingCookies(tokens, IsSecure(req.URL, header), cfg.CookieDomain) {
		out.Header.Add("Set-Cookie", c.String())
	}
	out.Header.Set("Cache-Control", "no-store")
	h.sink().RequestCompleted(metrics.OutcomeSuccess)
	return out
}

// resolveTokens reads both cookies and generates whatever is missing.
// sources holds the origin of the unique and visit token, in that order.
func (h *Handler) resolveTokens(cookieHeader string) (Tokens, [2]string) {
	var (
		t       Tokens
		sources = [2]string{metrics.SourceCookie, metrics.SourceCookie}
		ok      bool
	)
	if t.UniqueToken, ok = CookieValue(cookieHeader, UniqueTokenCookie); !ok {
		t.UniqueToken = h.newToken()
		sources[0] = metrics.SourceGenerated
	}
	if t.VisitToken, ok = CookieValue(cookieHeader, VisitTokenCookie); !ok {
		t.VisitToken = h.newToken()
		sources[1] = metrics.SourceGenerated
	}
	return t, sources
}

func (h *Handler) newToken() string {
	if h.NewToken != nil {
		return h.NewToken()
	}
	return NewToken()
}

func (h *Handler) sink() metrics.Sink {
	if h.Metrics == nil {
		return metrics.NewNoopSink()
	}
	return h.Metrics
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}
