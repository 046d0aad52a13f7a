package toolchain

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPArchiveSourceFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1.7.4/deno-x86_64-unknown-linux-gnu.zip" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	src := NewHTTPArchiveSource(srv.URL)
	rc, err := src.Fetch(context.Background(), "v1.7.4/deno-x86_64-unknown-linux-gnu.zip")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(body) != "archive-bytes" {
		t.Errorf("body = %q, want archive-bytes", body)
	}
}

func TestHTTPArchiveSourceFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewHTTPArchiveSource(srv.URL)
	if _, err := src.Fetch(context.Background(), "missing.zip"); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
}
