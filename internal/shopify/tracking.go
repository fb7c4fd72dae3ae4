package shopify

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Correlation headers read by Shopify analytics.
const (
	UniqueTokenHeader = "Shopify-Unique-Token"
	VisitTokenHeader  = "Shopify-Visit-Token"
)

const trackingQuery = `{ shop { name } }`

type TrackingRequest struct {
	ShopDomain  string
	APIVersion  string
	AccessToken string
	UniqueToken string
	VisitToken  string
	Cookie      string // inbound Cookie header, forwarded verbatim
}

type TrackingResult struct {
	StatusCode   int
	ServerTiming string
	ShopName     string
}

type shopNameData struct {
	Shop struct {
		Name string `json:"name"`
	} `json:"shop"`
}

type StorefrontClient struct {
	HTTPClient *http.Client
}

func NewStorefrontClient(client *http.Client) *StorefrontClient {
	return &StorefrontClient{HTTPClient: client}
}

// InitTracking runs the minimal shop query so Shopify can mint or confirm the
// tracking tokens. Only transport errors are returned; the query result is
// informational.
func (c *StorefrontClient) InitTracking(ctx context.Context, in TrackingRequest) (*TrackingResult, error) {
	h := http.Header{}
	h.Set(UniqueTokenHeader, in.UniqueToken)
	h.Set(VisitTokenHeader, in.VisitToken)
	if strings.TrimSpace(in.Cookie) != "" {
		h.Set("Cookie", in.Cookie)
	}

	res, err := PostStorefrontGraphQL[shopNameData](ctx, c.HTTPClient, in.ShopDomain, in.APIVersion, in.AccessToken, trackingQuery, map[string]any{}, h)
	if err != nil && (res == nil || !errors.Is(err, ErrMalformedBody)) {
		return nil, err
	}

	out := &TrackingResult{
		StatusCode:   res.StatusCode,
		ServerTiming: strings.Join(res.Header.Values("Server-Timing"), ", "),
	}
	if res.Response != nil {
		out.ShopName = res.Response.Data.Shop.Name
	}
	return out, nil
}
