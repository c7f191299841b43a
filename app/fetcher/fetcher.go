package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	DefaultTimeout = 10 * time.Second

	// MaxBodySize caps a decoded response body.
	MaxBodySize = 10 << 20
)

var ErrBodyTooLarge = errors.New("response body too large")

// Fetcher retrieves one document. Implementations must report non-200 responses
// as *StatusError so callers can tell "not published yet" apart from other failures.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

type Request struct {
	URL     string
	Header  http.Header
	Timeout time.Duration // zero means DefaultTimeout
}

type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s (%s)", e.StatusCode, e.Status, e.URL)
}

// IsNotFound reports whether err carries an HTTP 404 anywhere in its chain.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

type HTTPFetcher struct {
	httpClient  *http.Client
	userAgent   string
	maxBodySize int64
}

var _ Fetcher = (*HTTPFetcher)(nil)

func NewHTTPFetcher(httpClient *http.Client, userAgent string) *HTTPFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPFetcher{
		httpClient:  httpClient,
		userAgent:   userAgent,
		maxBodySize: MaxBodySize,
	}
}

// Fetch performs a single GET without retries. The body is decoded to UTF-8 using
// the declared or sniffed charset.
func (f *HTTPFetcher) Fetch(ctx context.Context, r Request) ([]byte, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range r.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if req.Header.Get("User-Agent") == "" && f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: r.URL, StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode response charset: %w", err)
	}

	data, err := io.ReadAll(io.LimitReader(body, f.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(data)) > f.maxBodySize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, r.URL, f.maxBodySize)
	}

	return data, nil
}
