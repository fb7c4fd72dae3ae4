package config

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromLookup_Defaults(t *testing.T) {
	cfg := FromLookup(MapLookup(map[string]string{}))

	assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
	assert.Empty(t, cfg.StoreDomain)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.ExposeErrorDetail)
}

func TestFromLookup_ReadsAllKeys(t *testing.T) {
	cfg := FromLookup(MapLookup(map[string]string{
		"SHOPIFY_STORE_DOMAIN":           "https://shop.myshopify.com/",
		"SHOPIFY_STOREFRONT_TOKEN":       " tok ",
		"SHOPIFY_STOREFRONT_TOKEN_PARAM": "/shop/token",
		"SHOPIFY_API_VERSION":            "2025-10",
		"COOKIE_DOMAIN":                  ".example.com",
		"ALLOWED_ORIGINS":                "https://a.example, ,https://b.example",
		"TRACKING_EXPOSE_ERROR_DETAIL":   "TRUE",
	}))

	assert.Equal(t, "shop.myshopify.com", cfg.StoreDomain)
	assert.Equal(t, "tok", cfg.StorefrontToken)
	assert.Equal(t, "/shop/token", cfg.StorefrontTokenParam)
	assert.Equal(t, "2025-10", cfg.APIVersion)
	assert.Equal(t, ".example.com", cfg.CookieDomain)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.True(t, cfg.ExposeErrorDetail)
}

func TestFromLookup_NilLookup(t *testing.T) {
	cfg := FromLookup(nil)
	assert.Error(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"complete", Config{StoreDomain: "s", StorefrontToken: "t"}, ""},
		{"no domain", Config{StorefrontToken: "t"}, "SHOPIFY_STORE_DOMAIN"},
		{"no token", Config{StoreDomain: "s"}, "SHOPIFY_STOREFRONT_TOKEN"},
		{"nothing", Config{}, "SHOPIFY_STORE_DOMAIN, SHOPIFY_STOREFRONT_TOKEN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNormalizeDomain(t *testing.T) {
	cases := map[string]string{
		"shop.myshopify.com":          "shop.myshopify.com",
		"https://shop.myshopify.com":  "shop.myshopify.com",
		"http://shop.myshopify.com/":  "shop.myshopify.com",
		"HTTPS://shop.myshopify.com/": "shop.myshopify.com",
		"shop.myshopify.com/":         "shop.myshopify.com",
		"  ":                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDomain(in), in)
	}
}

type fakeSSM struct {
	calls int
	value string
	err   error
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Name: in.Name, Value: aws.String(f.value)},
	}, nil
}

func TestSSMStore_CachesWithinTTL(t *testing.T) {
	client := &fakeSSM{value: "secret-token"}
	store := NewSSMStore(client, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		v, err := store.Secret(context.Background(), "/shop/token")
		require.NoError(t, err)
		assert.Equal(t, "secret-token", v)
	}
	assert.Equal(t, 1, client.calls)

	now = now.Add(2 * time.Minute)
	_, err := store.Secret(context.Background(), "/shop/token")
	require.NoError(t, err)
	assert.Equal(t, 2, client.calls)
}

func TestSSMStore_Error(t *testing.T) {
	store := NewSSMStore(&fakeSSM{err: errors.New("access denied")}, time.Minute)

	_, err := store.Secret(context.Background(), "/shop/token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")

	_, err = store.Secret(context.Background(), " ")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	store := NewSSMStore(&fakeSSM{value: "from-ssm"}, time.Minute)

	cfg, err := Config{StorefrontTokenParam: "/p"}.Resolve(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "from-ssm", cfg.StorefrontToken)

	cfg, err = Config{StorefrontToken: "env", StorefrontTokenParam: "/p"}.Resolve(context.Background(), store)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.StorefrontToken)

	cfg, err = Config{StorefrontTokenParam: "/p"}.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.StorefrontToken)
}
