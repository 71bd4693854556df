package client

import "net/http"

// Transport is an http.RoundTripper that attaches the session token as a
// bearer credential. Requests are forwarded unmodified when no token is held.
type Transport struct {
	Session *Session
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	token := ""
	if t.Session != nil {
		token = t.Session.Token()
	}
	if token == "" {
		return base.RoundTrip(req)
	}

	// RoundTrippers must not mutate the caller's request.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return base.RoundTrip(clone)
}
