package tracking

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestNewToken_IsUUIDv4(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		tok := NewToken()
		assert.Regexp(t, uuidV4Pattern, tok)
		assert.False(t, seen[tok], "duplicate token %s", tok)
		seen[tok] = true
	}
}

func TestCookieValue(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
		found  bool
	}{
		{"empty header", "", UniqueTokenCookie, "", false},
		{"single", "_shopify_y=abc", UniqueTokenCookie, "abc", true},
		{"among others", "a=1; _shopify_s=visit; b=2", VisitTokenCookie, "visit", true},
		{"trimmed", "_shopify_y= abc ;x=1", UniqueTokenCookie, "abc", true},
		{"percent decoded", "_shopify_y=a%20b%2Fc", UniqueTokenCookie, "a b/c", true},
		{"first match wins", "_shopify_y=first; _shopify_y=second", UniqueTokenCookie, "first", true},
		{"prefixed name does not match", "x_shopify_y=abc", UniqueTokenCookie, "", false},
		{"empty value", "_shopify_y=; a=1", UniqueTokenCookie, "", false},
		{"blank value", "_shopify_y=   ; a=1", UniqueTokenCookie, "", false},
		{"bad escape", "_shopify_y=%zz", UniqueTokenCookie, "", false},
		{"other cookie only", "_shopify_s=v", UniqueTokenCookie, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CookieValue(tt.header, tt.cookie)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCookieValue_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		// blank values are treated as absent
		v := rapid.StringMatching(`[A-Za-z0-9 ._~/:-]{1,40}`).
			Filter(func(s string) bool { return strings.TrimSpace(s) != "" }).
			Draw(rt, "value")
		header := "other=1; " + UniqueTokenCookie + "=" + encodeComponent(v)

		got, ok := CookieValue(header, UniqueTokenCookie)
		if !ok || got != v {
			rt.Fatalf("CookieValue(%q) = %q, %v; want %q", header, got, ok, v)
		}
	})
}

func TestParseServerTiming(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{"absent", "", map[string]string{}},
		{"quoted", `_y;desc="u1", _s;desc="v1"`, map[string]string{"_y": "u1", "_s": "v1"}},
		{"unquoted", `_y;desc=u1,_s;desc=v1`, map[string]string{"_y": "u1", "_s": "v1"}},
		{"consent kept", `processing;dur=12, _cmp;desc="1", _y;desc="u"`, map[string]string{"_cmp": "1", "_y": "u"}},
		{"unrelated only", `cfRequestDuration;dur=42.1, db;desc="x"`, map[string]string{}},
		{"last wins", `_y;desc="a", _y;desc="b"`, map[string]string{"_y": "b"}},
		{"no boundary", `x_y;desc="a"`, map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseServerTiming(tt.header))
		})
	}
}

func TestNegotiateCORS(t *testing.T) {
	allowed := []string{"https://allowed.example", "https://second.example"}

	h := NegotiateCORS("https://allowed.example", allowed)
	assert.Equal(t, "https://allowed.example", h.Get("Access-Control-Allow-Origin"))

	h = NegotiateCORS("https://second.example", allowed)
	assert.Equal(t, "https://second.example", h.Get("Access-Control-Allow-Origin"))

	h = NegotiateCORS("https://evil.example", allowed)
	assert.Equal(t, "https://allowed.example", h.Get("Access-Control-Allow-Origin"))

	h = NegotiateCORS("", allowed)
	assert.Equal(t, "https://allowed.example", h.Get("Access-Control-Allow-Origin"))

	h = NegotiateCORS("https://any.example", nil)
	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", h.Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "GET, POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type, Cookie", h.Get("Access-Control-Allow-Headers"))
	assert.Len(t, h, 4)
}

func TestRequestOrigin(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, "", RequestOrigin(h))

	h.Set("Referer", "https://shop.example/products/tee?x=1")
	assert.Equal(t, "https://shop.example", RequestOrigin(h))

	h.Set("Origin", "https://origin.example")
	assert.Equal(t, "https://origin.example", RequestOrigin(h))

	assert.Equal(t, "", RequestOrigin(http.Header{"Referer": {"not a url"}}))
}

func TestIsSecure(t *testing.T) {
	httpsURL, _ := url.Parse("https://shop.example/api/tracking-init")
	httpURL, _ := url.Parse("http://shop.example/api/tracking-init")

	assert.True(t, IsSecure(httpsURL, http.Header{}))
	assert.False(t, IsSecure(httpURL, http.Header{}))
	assert.False(t, IsSecure(nil, http.Header{}))
	assert.True(t, IsSecure(httpURL, http.Header{"X-Forwarded-Proto": {"https"}}))
	assert.True(t, IsSecure(httpURL, http.Header{"X-Forwarded-Proto": {"https, http"}}))
	assert.False(t, IsSecure(httpURL, http.Header{"X-Forwarded-Proto": {"http"}}))
}

func TestTrackingCookies(t *testing.T) {
	cookies := TrackingCookies(Tokens{UniqueToken: "u 1", VisitToken: "v1"}, true, "example.com")

	unique := cookies[0].String()
	assert.True(t, strings.HasPrefix(unique, "_shopify_y=u%201;"), unique)
	assert.Contains(t, unique, "Max-Age=31536000")
	assert.Contains(t, unique, "Path=/")
	assert.Contains(t, unique, "SameSite=Lax")
	assert.Contains(t, unique, "Secure")
	assert.Contains(t, unique, "Domain=example.com")

	visit := cookies[1].String()
	assert.True(t, strings.HasPrefix(visit, "_shopify_s=v1;"), visit)
	assert.Contains(t, visit, "Max-Age=1800")

	plain := TrackingCookies(Tokens{UniqueToken: "u", VisitToken: "v"}, false, "")
	assert.NotContains(t, plain[0].String(), "Secure")
	assert.NotContains(t, plain[0].String(), "Domain=")
}
