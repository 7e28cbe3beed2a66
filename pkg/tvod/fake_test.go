package tvod

import (
	"io"
	"net/http"
	"strings"
	"sync"
)

// fakeTwitch answers requests from tables instead of the network.
type fakeTwitch struct {
	mu       sync.Mutex
	status   map[string][]int
	bodies   map[string][]string
	errs     map[string]error
	fallback int
	requests int
}

func newFakeTwitch(fallback int) *fakeTwitch {
	return &fakeTwitch{
		status:   make(map[string][]int),
		bodies:   make(map[string][]string),
		errs:     make(map[string]error),
		fallback: fallback,
	}
}

// reply queues responses for url; the last one repeats.
func (f *fakeTwitch) reply(url string, status int, body string) *fakeTwitch {
	f.status[url] = append(f.status[url], status)
	f.bodies[url] = append(f.bodies[url], body)
	return f
}

func (f *fakeTwitch) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeTwitch) client() *http.Client {
	return &http.Client{Transport: f}
}

func (f *fakeTwitch) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	url := req.URL.String()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	status, body := f.fallback, ""
	if queue := f.status[url]; len(queue) > 0 {
		status, body = queue[0], f.bodies[url][0]
		if len(queue) > 1 {
			f.status[url] = queue[1:]
			f.bodies[url] = f.bodies[url][1:]
		}
	}
	return &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}
