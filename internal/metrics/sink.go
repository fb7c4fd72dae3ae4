package metrics

import (
	"errors"
	"net"
	"time"
)

// Sink records tracking-init metrics. Methods are fire-and-forget and must
// not block the request path.
type Sink interface {
	RequestCompleted(outcome string)
	TokenResolved(kind, source string)
	UpstreamCompleted(statusClass string, duration time.Duration)
}

// Request outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomePreflight        = "preflight"
	OutcomeMethodNotAllowed = "method_not_allowed"
	OutcomeMisconfigured    = "misconfigured"
	OutcomeUpstreamError    = "upstream_error"
)

// Token kinds and where the final value came from.
const (
	TokenUnique = "unique"
	TokenVisit  = "visit"

	SourceCookie    = "cookie"
	SourceGenerated = "generated"
	SourceUpstream  = "upstream"
)

const (
	StatusClass2xx             = "2xx"
	StatusClass4xx             = "4xx"
	StatusClass5xx             = "5xx"
	StatusClassTimeout         = "timeout"
	StatusClassConnectionError = "connection_error"
	StatusClassOtherError      = "other_error"
)

// ClassifyStatus maps an upstream status code and transport error to a class.
func ClassifyStatus(statusCode int, err error) string {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return StatusClassTimeout
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return StatusClassConnectionError
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return StatusClassConnectionError
		}
		return StatusClassOtherError
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		return StatusClass2xx
	case statusCode >= 400 && statusCode < 500:
		return StatusClass4xx
	case statusCode >= 500:
		return StatusClass5xx
	default:
		return StatusClassOtherError
	}
}
