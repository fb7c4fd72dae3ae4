package config

import (
	"errors"
	"fmt"
	"strings"
)

const DefaultAPIVersion = "2026-01"

// ErrMissingConfig is wrapped by Validate when a required value is empty.
var ErrMissingConfig = errors.New("missing required configuration")

// Lookup reads one key from a key-value store such as the process environment.
type Lookup func(key string) (string, bool)

// MapLookup adapts a plain map, mostly for tests and local wiring.
func MapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

type Config struct {
	StoreDomain          string
	StorefrontToken      string
	StorefrontTokenParam string
	APIVersion           string
	CookieDomain         string
	AllowedOrigins       []string
	ExposeErrorDetail    bool
}

// FromLookup reads the tracking configuration. It never fails; missing values
// are reported by Validate so callers can decide when to check them.
func FromLookup(lookup Lookup) Config {
	get := func(key string) string {
		if lookup == nil {
			return ""
		}
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	apiVersion := get("SHOPIFY_API_VERSION")
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}

	return Config{
		StoreDomain:          NormalizeDomain(get("SHOPIFY_STORE_DOMAIN")),
		StorefrontToken:      get("SHOPIFY_STOREFRONT_TOKEN"),
		StorefrontTokenParam: get("SHOPIFY_STOREFRONT_TOKEN_PARAM"),
		APIVersion:           apiVersion,
		CookieDomain:         get("COOKIE_DOMAIN"),
		AllowedOrigins:       ParseOrigins(get("ALLOWED_ORIGINS")),
		ExposeErrorDetail:    strings.EqualFold(get("TRACKING_EXPOSE_ERROR_DETAIL"), "true"),
	}
}

// Validate reports every missing required value in one error.
func (c Config) Validate() error {
	var missing []string
	if c.StoreDomain == "" {
		missing = append(missing, "SHOPIFY_STORE_DOMAIN")
	}
	if c.StorefrontToken == "" {
		missing = append(missing, "SHOPIFY_STOREFRONT_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// NormalizeDomain strips a leading http(s) scheme and a trailing slash.
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	lower := strings.ToLower(d)
	switch {
	case strings.HasPrefix(lower, "https://"):
		d = d[len("https://"):]
	case strings.HasPrefix(lower, "http://"):
		d = d[len("http://"):]
	}
	return strings.TrimSuffix(d, "/")
}

// ParseOrigins splits a comma-separated allow-list, dropping blanks.
// Order is preserved: the first entry is the fallback origin.
func ParseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
