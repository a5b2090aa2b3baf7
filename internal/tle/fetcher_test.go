package tle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestFetcherSuccess verifies normal fetch operation.
func TestFetcherSuccess(t *testing.T) {
	body := "STARLINK-1007\n" + starlinkLine1 + "\n" + starlinkLine2 + "\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL)
	data, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != body {
		t.Errorf("body mismatch: got %d bytes, want %d", len(data), len(body))
	}
}

// TestFetcherHTTPError verifies error handling for non-200 responses.
func TestFetcherHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(server.URL)
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for 500 response, got nil")
	}
}

func TestFetcherDefaultURL(t *testing.T) {
	f := NewFetcher("")
	if f.SourceURL() != defaultSourceURL {
		t.Errorf("SourceURL = %q, want the default", f.SourceURL())
	}
}

func TestFetcherCancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFetcher(server.URL).Fetch(ctx); err == nil {
		t.Fatal("expected error for cancelled context, got nil")
	}
}
