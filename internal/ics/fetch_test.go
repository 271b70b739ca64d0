package ics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchOneCachesWithETag(t *testing.T) {
	const etag = `"v1"`
	var hits int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "test", URL: srv.URL}

	first, err := f.FetchOne(context.Background(), src)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if first.FromCache {
		t.Error("first fetch should not be from cache")
	}
	if len(first.Body) == 0 {
		t.Fatal("first fetch returned empty body")
	}

	second, err := f.FetchOne(context.Background(), src)
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if !second.FromCache {
		t.Error("second fetch should reuse the cached body on 304")
	}
	if string(second.Body) != string(first.Body) {
		t.Error("cached body differs from original")
	}
	if hits != 2 {
		t.Errorf("server hits = %d, want 2", hits)
	}
}

func TestFetchOneFallsBackToCacheOnServerError(t *testing.T) {
	var failing bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(sampleICS))
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir())
	src := Source{ID: "test", URL: srv.URL}

	if _, err := f.FetchOne(context.Background(), src); err != nil {
		t.Fatalf("priming fetch: %v", err)
	}

	failing = true
	res, err := f.FetchOne(context.Background(), src)
	if err != nil {
		t.Fatalf("fetch with failing server: %v", err)
	}
	if !res.FromCache {
		t.Error("failing server should fall back to the cached body")
	}
}

func TestFetchOneEmptyURL(t *testing.T) {
	f := NewFetcher(t.TempDir())
	if _, err := f.FetchOne(context.Background(), Source{ID: "x"}); err == nil {
		t.Error("empty URL should fail")
	}
}
