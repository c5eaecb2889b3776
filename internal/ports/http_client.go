package ports

import "net/http"

// HTTPClient is what the http sink needs from a client. *http.Client
// satisfies it; tests pass an httptest-backed client or a stub.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
