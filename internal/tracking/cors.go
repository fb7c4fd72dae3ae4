package tracking

import (
	"net/http"
	"net/url"
	"slices"
	"strings"
)

const (
	corsAllowMethods = "GET, POST, OPTIONS"
	corsAllowHeaders = "Content-Type, Cookie"
)

// RequestOrigin returns the Origin header, falling back to the origin part
// (scheme://host) of the Referer.
func RequestOrigin(h http.Header) string {
	if o := strings.TrimSpace(h.Get("Origin")); o != "" {
		return o
	}
	ref := strings.TrimSpace(h.Get("Referer"))
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// NegotiateCORS echoes origin when it is allow-listed, otherwise answers with
// the first allowed origin, or "*" when nothing is configured.
func NegotiateCORS(origin string, allowed []string) http.Header {
	allowOrigin := "*"
	if len(allowed) > 0 {
		allowOrigin = allowed[0]
		if origin != "" && slices.Contains(allowed, origin) {
			allowOrigin = origin
		}
	}

	h := http.Header{}
	h.Set("Access-Control-Allow-Origin", allowOrigin)
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Allow-Credentials", "true")
	return h
}
