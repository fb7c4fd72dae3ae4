package tracking

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	UniqueTokenCookie = "_shopify_y"
	VisitTokenCookie  = "_shopify_s"
)

// Tokens is the tracking identifier pair returned to the browser.
type Tokens struct {
	UniqueToken string `json:"uniqueToken"`
	VisitToken  string `json:"visitToken"`
}

var cookiePatterns = map[string]*regexp.Regexp{
	UniqueTokenCookie: compileCookiePattern(UniqueTokenCookie),
	VisitTokenCookie:  compileCookiePattern(VisitTokenCookie),
}

func compileCookiePattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(name) + `=([^;]+)`)
}

func cookiePattern(name string) *regexp.Regexp {
	if re, ok := cookiePatterns[name]; ok {
		return re
	}
	return compileCookiePattern(name)
}

// CookieValue finds name in a Cookie header. The first match wins; the value
// is trimmed and percent-decoded. A value that does not decode is treated as
// absent.
func CookieValue(header, name string) (string, bool) {
	if header == "" {
		return "", false
	}
	m := cookiePattern(name).FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	v, err := url.PathUnescape(strings.TrimSpace(m[1]))
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

// NewToken returns a random RFC 4122 version 4 UUID.
func NewToken() string {
	return uuid.NewString()
}
