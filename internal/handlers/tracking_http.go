package handlers

import (
	"net/http"

	"tracking/internal/tracking"
)

// TrackingInitHTTP serves /api/tracking-init from a plain net/http server.
type TrackingInitHTTP struct {
	core *tracking.Handler
}

func NewTrackingInitHTTP(core *tracking.Handler) *TrackingInitHTTP {
	return &TrackingInitHTTP{core: core}
}

func (h *TrackingInitHTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u := *r.URL
	if u.Scheme == "" {
		u.Scheme = "http"
		if r.TLS != nil {
			u.Scheme = "https"
		}
	}
	if u.Host == "" {
		u.Host = r.Host
	}

	res := h.core.Serve(r.Context(), tracking.Request{
		Method: r.Method,
		URL:    &u,
		Header: r.Header,
	})

	for k, vs := range res.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(res.StatusCode)
	if len(res.Body) > 0 {
		_, _ = w.Write(res.Body)
	}
}
