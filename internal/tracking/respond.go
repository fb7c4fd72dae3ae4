package tracking

import (
	"encoding/json"
	"net/http"
	"net/url"
)

// Request is the platform-neutral view of an inbound call.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
}

// Response is written back by the platform adapter as-is. Set-Cookie values
// are kept in Header.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func jsonResp(status int, base http.Header, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		b = []byte(`{"error":"internal error"}`)
		status = http.StatusInternalServerError
	}
	h := base.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return Response{StatusCode: status, Header: h, Body: b}
}

func errResp(status int, base http.Header, msg string, extra map[string]any) Response {
	body := map[string]any{"error": msg}
	for k, v := range extra {
		body[k] = v
	}
	return jsonResp(status, base, body)
}
