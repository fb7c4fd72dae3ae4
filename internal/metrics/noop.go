package metrics

import "time"

// NoopSink is used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) RequestCompleted(outcome string)                       {}
func (n *NoopSink) TokenResolved(kind, source string)                     {}
func (n *NoopSink) UpstreamCompleted(statusClass string, d time.Duration) {}
