package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	var gotUA, gotReferer string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, "<html><body>人民日报</body></html>")
	}))
	defer server.Close()

	f := NewHTTPFetcher(server.Client(), "RSS Press/test")
	data, err := f.Fetch(context.Background(), Request{
		URL:    server.URL,
		Header: http.Header{"Referer": []string{"https://example.com/"}},
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(string(data), "人民日报") {
		t.Errorf("Expected body to contain page text, got '%s'", string(data))
	}
	if gotUA != "RSS Press/test" {
		t.Errorf("Expected user agent 'RSS Press/test', got '%s'", gotUA)
	}
	if gotReferer != "https://example.com/" {
		t.Errorf("Expected referer header to be forwarded, got '%s'", gotReferer)
	}
}

func TestHTTPFetcher_Fetch_DecodesGBK(t *testing.T) {
	encoded, err := simplifiedchinese.GBK.NewEncoder().String("<html><body>新闻联播</body></html>")
	if err != nil {
		t.Fatalf("Failed to encode fixture: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=gbk")
		fmt.Fprint(w, encoded)
	}))
	defer server.Close()

	data, err := NewHTTPFetcher(server.Client(), "").Fetch(context.Background(), Request{URL: server.URL})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(string(data), "新闻联播") {
		t.Errorf("Expected GBK body to be decoded to UTF-8, got '%s'", string(data))
	}
}

func TestHTTPFetcher_Fetch_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		isNotFound bool
	}{
		{"not found", http.StatusNotFound, true},
		{"server error", http.StatusInternalServerError, false},
		{"forbidden", http.StatusForbidden, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewHTTPFetcher(server.Client(), "").Fetch(context.Background(), Request{URL: server.URL})
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			if StatusCode(err) != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, StatusCode(err))
			}
			if IsNotFound(err) != tt.isNotFound {
				t.Errorf("Expected IsNotFound=%v, got %v", tt.isNotFound, IsNotFound(err))
			}

			wrapped := fmt.Errorf("discover: %w", err)
			if IsNotFound(wrapped) != tt.isNotFound {
				t.Error("Expected status to survive wrapping")
			}
		})
	}
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	_, err := NewHTTPFetcher(server.Client(), "").Fetch(context.Background(), Request{
		URL:     server.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("Expected timeout error, got nil")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got: %v", err)
	}
	if StatusCode(err) != 0 {
		t.Errorf("Expected no status code on timeout, got %d", StatusCode(err))
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Expected fetch to give up after its timeout")
	}
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	_, err := NewHTTPFetcher(nil, "").Fetch(context.Background(), Request{URL: "://bad"})
	if err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestHTTPFetcher_Fetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, strings.Repeat("新闻", 64))
	}))
	defer server.Close()

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"within limit", 1024, false},
		{"exact size", int64(len(strings.Repeat("新闻", 64))), false},
		{"over limit", 100, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewHTTPFetcher(server.Client(), "")
			f.maxBodySize = tt.limit

			data, err := f.Fetch(context.Background(), Request{URL: server.URL})
			if tt.wantErr {
				if !errors.Is(err, ErrBodyTooLarge) {
					t.Errorf("Expected ErrBodyTooLarge, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error, got: %v", err)
			}
			if string(data) != strings.Repeat("新闻", 64) {
				t.Errorf("Expected full body, got %d bytes", len(data))
			}
		})
	}

	if NewHTTPFetcher(nil, "").maxBodySize != MaxBodySize {
		t.Error("Expected default body limit")
	}
}
