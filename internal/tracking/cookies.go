package tracking

import (
	"net/http"
	"net/url"
	"strings"
)

const (
	uniqueTokenMaxAge = 365 * 24 * 60 * 60
	visitTokenMaxAge  = 30 * 60
)

// IsSecure reports whether the browser reached us over HTTPS, either directly
// or through a proxy that set X-Forwarded-Proto.
func IsSecure(u *url.URL, h http.Header) bool {
	if u != nil && strings.EqualFold(u.Scheme, "https") {
		return true
	}
	proto := h.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(proto, ','); i >= 0 {
		proto = proto[:i]
	}
	return strings.EqualFold(strings.TrimSpace(proto), "https")
}

// TrackingCookies builds the _shopify_y and _shopify_s cookies.
func TrackingCookies(t Tokens, secure bool, domain string) []*http.Cookie {
	mk := func(name, value string, maxAge int) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    encodeComponent(value),
			MaxAge:   maxAge,
			Path:     "/",
			Domain:   domain,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		}
	}
	return []*http.Cookie{
		mk(UniqueTokenCookie, t.UniqueToken, uniqueTokenMaxAge),
		mk(VisitTokenCookie, t.VisitToken, visitTokenMaxAge),
	}
}

// encodeComponent percent-encodes a cookie value; spaces become %20, not +.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
