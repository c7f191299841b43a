package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/rss-press/app/fetcher"
)

// fakeFetcher serves pages from memory keyed by absolute URL. Unknown URLs answer
// with a 404 StatusError.
type fakeFetcher struct {
	pages    map[string]string
	failures map[string]error
	panicOn  string
	delay    time.Duration

	mu          sync.Mutex
	requests    []string
	inFlight    int
	maxInFlight int
}

func newFakeFetcher(pages map[string]string) *fakeFetcher {
	return &fakeFetcher{
		pages:    pages,
		failures: make(map[string]error),
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, req fetcher.Request) ([]byte, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req.URL)
	f.inFlight++
	f.maxInFlight = max(f.maxInFlight, f.inFlight)
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if req.URL == f.panicOn {
		panic("unexpected markup")
	}
	if err, ok := f.failures[req.URL]; ok {
		return nil, err
	}
	if body, ok := f.pages[req.URL]; ok {
		return []byte(body), nil
	}

	return nil, &fetcher.StatusError{URL: req.URL, StatusCode: http.StatusNotFound, Status: "Not Found"}
}

func (f *fakeFetcher) requested(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.requests {
		if u == url {
			return true
		}
	}
	return false
}

func (f *fakeFetcher) peak() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

// serveSite starts an HTTP server whose pages are built from its own base URL.
// Paths not in the map answer 404.
func serveSite(t *testing.T, build func(base string) map[string]string) string {
	t.Helper()

	var pages map[string]string
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[server.URL+r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	pages = build(server.URL)
	return server.URL
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
