package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"tracking/internal/tracking"

	"github.com/aws/aws-lambda-go/events"
)

// TrackingInit serves /api/tracking-init behind an API Gateway HTTP API
// (payload format 2.0).
type TrackingInit struct {
	core *tracking.Handler
}

func NewTrackingInit(core *tracking.Handler) *TrackingInit {
	return &TrackingInit{core: core}
}

func (h *TrackingInit) Handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	// RawPath carries the stage prefix when the API uses named stages.
	if req.RawPath != "" && !strings.HasSuffix(strings.TrimRight(req.RawPath, "/"), TrackingInitPath) {
		return errResp(404, "not found")
	}
	res := h.core.Serve(ctx, requestFromAPIGateway(req))
	return responseToAPIGateway(res), nil
}

func requestFromAPIGateway(req events.APIGatewayV2HTTPRequest) tracking.Request {
	h := http.Header{}
	for k, v := range req.Headers {
		h.Set(k, v)
	}
	// Payload v2 moves the Cookie header into its own field.
	if len(req.Cookies) > 0 {
		h.Set("Cookie", strings.Join(req.Cookies, "; "))
	}

	host := req.RequestContext.DomainName
	if host == "" {
		host = h.Get("Host")
	}

	// HTTP APIs only terminate TLS.
	u := &url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     req.RawPath,
		RawQuery: req.RawQueryString,
	}

	return tracking.Request{
		Method: req.RequestContext.HTTP.Method,
		URL:    u,
		Header: h,
	}
}

func responseToAPIGateway(res tracking.Response) events.APIGatewayV2HTTPResponse {
	headers := map[string]string{}
	for k, vs := range res.Header {
		if http.CanonicalHeaderKey(k) == "Set-Cookie" {
			continue
		}
		headers[strings.ToLower(k)] = strings.Join(vs, ", ")
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: res.StatusCode,
		Headers:    headers,
		Cookies:    res.Header.Values("Set-Cookie"),
		Body:       string(res.Body),
	}
}
