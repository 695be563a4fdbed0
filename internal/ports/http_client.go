package ports

import "net/http"

// HTTPClient abstracts HTTP operations so the meeting gateway adapter can be
// tested against httptest servers or wrapped with instrumentation.
// The standard *http.Client satisfies this interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// IdleCloser is implemented by HTTP clients that pool connections.
type IdleCloser interface {
	CloseIdleConnections()
}
