package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const StorefrontTokenHeader = "X-Shopify-Storefront-Access-Token"

// ErrMalformedBody is returned alongside a valid status and header set when
// the response body is not a GraphQL envelope.
var ErrMalformedBody = errors.New("malformed graphql response body")

type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

type GraphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

// GraphQLResult carries the HTTP surface next to the decoded body; some
// callers only care about response headers.
type GraphQLResult[T any] struct {
	Response   *GraphQLResponse[T]
	StatusCode int
	Header     http.Header
}

func StorefrontEndpoint(shopDomain, apiVersion string) string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", shopDomain, apiVersion)
}

// PostStorefrontGraphQL posts one query to the Storefront API. extra headers
// are added after the defaults. A transport failure returns a nil result; a
// body that cannot be decoded returns the result with ErrMalformedBody.
func PostStorefrontGraphQL[T any](ctx context.Context, client *http.Client, shopDomain, apiVersion, accessToken, query string, variables any, extra http.Header) (*GraphQLResult[T], error) {
	if client == nil {
		client = http.DefaultClient
	}
	if variables == nil {
		variables = map[string]any{}
	}

	b, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal graphql body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, StorefrontEndpoint(shopDomain, apiVersion), bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("build storefront request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(StorefrontTokenHeader, accessToken)
	for k, vs := range extra {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	result := &GraphQLResult[T]{
		StatusCode: res.StatusCode,
		Header:     res.Header,
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return result, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	var out GraphQLResponse[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return result, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	result.Response = &out

	return result, nil
}
