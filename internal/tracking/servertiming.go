package tracking

import "regexp"

// Server-Timing tags Shopify uses to hand back tracking values. _cmp
// (consent) is parsed but not consumed.
const (
	TimingUnique  = "_y"
	TimingVisit   = "_s"
	TimingConsent = "_cmp"
)

var serverTimingPattern = regexp.MustCompile(`\b(_y|_s|_cmp);desc="?([^",]+)"?`)

// ParseServerTiming extracts tag;desc=value pairs for the tracking tags.
// Later entries for the same tag replace earlier ones.
func ParseServerTiming(v string) map[string]string {
	out := map[string]string{}
	if v == "" {
		return out
	}
	for _, m := range serverTimingPattern.FindAllStringSubmatch(v, -1) {
		out[m[1]] = m[2]
	}
	return out
}
