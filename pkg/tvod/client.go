package tvod

import (
	"net/http"
	"time"
)

// NewClient builds the HTTP client shared by every request of a run. Its idle
// pool is sized for the probe concurrency so bursts against the same CDN reuse
// connections.
func NewClient(timeout time.Duration, concurrency int) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if concurrency > 0 {
		transport.MaxIdleConns = concurrency
		transport.MaxIdleConnsPerHost = concurrency
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
