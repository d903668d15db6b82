package translator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-news-digest/pkg/httpclient"
)

func TestGoogleClientTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("client") != "gtx" || q.Get("sl") != "en" || q.Get("tl") != "ja" || q.Get("dt") != "t" {
			t.Errorf("unexpected query %v", q)
		}
		if q.Get("q") != "Hello & world. Second sentence." {
			t.Errorf("unexpected text %q", q.Get("q"))
		}
		_, _ = w.Write([]byte(`[[["こんにちは、世界。","Hello & world.",null,null,10],["二文目。","Second sentence.",null,null,10]],null,"en"]`))
	}))
	defer srv.Close()

	client := NewGoogleClient(nil, Options{Endpoint: srv.URL, Timeout: time.Second})
	got, err := client.Translate(context.Background(), "Hello & world. Second sentence.")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "こんにちは、世界。二文目。" {
		t.Fatalf("unexpected translation %q", got)
	}
}

func TestGoogleClientFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
	}{
		{name: "status", status: http.StatusTooManyRequests, body: "slow down"},
		{name: "not json", status: http.StatusOK, body: "<html>"},
		{name: "empty array", status: http.StatusOK, body: "[]"},
		{name: "no text", status: http.StatusOK, body: `[[[null,"x"]]]`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewGoogleClient(nil, Options{Endpoint: srv.URL, Timeout: time.Second}).Translate(context.Background(), "text")
			if !errors.Is(err, ErrTranslation) {
				t.Fatalf("expected ErrTranslation, got %v", err)
			}
		})
	}
}

func TestGoogleClientSkipsBlankText(t *testing.T) {
	client := NewGoogleClient(nil, Options{Endpoint: "http://127.0.0.1:1"})
	got, err := client.Translate(context.Background(), "  ")
	if err != nil || got != "  " {
		t.Fatalf("expected blank passthrough, got %q err=%v", got, err)
	}
}

func TestGoogleClientRateLimitHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[[["ok","x"]]]`))
	}))
	defer srv.Close()

	client := NewGoogleClient(nil, Options{Endpoint: srv.URL, RequestsPerSecond: 0.001})
	if _, err := client.Translate(context.Background(), "first"); err != nil {
		t.Fatalf("first call should use the burst token: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.Translate(ctx, "second"); !errors.Is(err, ErrTranslation) {
		t.Fatalf("expected ErrTranslation from limiter, got %v", err)
	}
}

func TestGoogleClientUserAgent(t *testing.T) {
	agents := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`[[["訳","x",null,null]],null,"en"]`))
	}))
	defer srv.Close()

	for _, tc := range []struct {
		ua   string
		want string
	}{
		{"", DefaultUserAgent},
		{"digest-test/1.0", "digest-test/1.0"},
	} {
		client := NewGoogleClient(nil, Options{Endpoint: srv.URL, Timeout: time.Second, UserAgent: tc.ua})
		if _, err := client.Translate(context.Background(), "x"); err != nil {
			t.Fatalf("Translate: %v", err)
		}
		if got := <-agents; got != tc.want {
			t.Fatalf("User-Agent = %q, want %q", got, tc.want)
		}
	}
}

func TestGoogleClientSendsUserAgentThroughInjectedClient(t *testing.T) {
	var got map[string]string
	client := httpclient.ClientFunc(func(_ context.Context, _ string, headers map[string]string) (httpclient.Response, error) {
		got = headers
		return nil, errors.New("offline")
	})
	_, _ = NewGoogleClient(client, Options{UserAgent: "custom"}).Translate(context.Background(), "x")
	if got["User-Agent"] != "custom" {
		t.Fatalf("headers = %v", got)
	}
}
