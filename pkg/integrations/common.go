package integrations

import (
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// DefaultUserAgent identifies this tool to remote APIs.
const DefaultUserAgent = "release-stats-csv"

// NewHTTPClient creates an HTTP client. A zero timeout means requests may
// block until the server responds or the context is cancelled.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// NewAuthHTTPClient creates an HTTP client that sends
// "Authorization: Bearer <token>" on every request.
func NewAuthHTTPClient(token string, timeout time.Duration) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   http.DefaultTransport,
		},
	}
}
