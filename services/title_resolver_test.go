package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolvePrimaryEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed/medias/abc123.json" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "Mozilla/5.0") {
			t.Errorf("expected browser user agent, got %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"media":{"name":"Intro to Arrays"}}`))
	}))
	t.Cleanup(server.Close)

	resolver := NewTitleResolver(server.URL, "apnacollege")
	if got := resolver.Resolve(context.Background(), "abc123"); got != "Intro to Arrays" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveFallsBackToOEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/embed/medias/abc123.json":
			w.WriteHeader(http.StatusNotFound)
		case "/oembed":
			if got := r.URL.Query().Get("url"); got != "https://acct.wistia.com/medias/abc123" {
				t.Errorf("oembed url param = %q", got)
			}
			_, _ = w.Write([]byte(`{"title":"Linked Lists"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)

	resolver := NewTitleResolver(server.URL, "acct")
	if got := resolver.Resolve(context.Background(), "abc123"); got != "Linked Lists" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolveEmptyNameFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oembed" {
			_, _ = w.Write([]byte(`{"title":"From oEmbed"}`))
			return
		}
		_, _ = w.Write([]byte(`{"media":{"name":"  "}}`))
	}))
	t.Cleanup(server.Close)

	resolver := NewTitleResolver(server.URL, "acct")
	if got := resolver.Resolve(context.Background(), "m1"); got != "From oEmbed" {
		t.Fatalf("Resolve = %q", got)
	}
}

func TestResolvePlaceholderWhenBothFail(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/oembed" {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	resolver := NewTitleResolver(server.URL, "acct")
	if got := resolver.Resolve(context.Background(), "zz9"); got != "Video zz9" {
		t.Fatalf("Resolve = %q, want placeholder", got)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected exactly two attempts, got %d", calls.Load())
	}
}

func TestResolveTimeoutYieldsPlaceholder(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	resolver := NewTitleResolver(server.URL, "acct", WithTimeout(50*time.Millisecond))
	if got := resolver.Resolve(context.Background(), "slow"); got != "Video slow" {
		t.Fatalf("Resolve = %q, want placeholder", got)
	}
}

func TestResolveTransportErrorYieldsPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	resolver := NewTitleResolver(base, "acct")
	if got := resolver.Resolve(context.Background(), "gone"); got != "Video gone" {
		t.Fatalf("Resolve = %q, want placeholder", got)
	}
}
