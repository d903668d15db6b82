package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientReturnsRedirectWhenDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("new"))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, WithoutRedirects())
	resp, err := client.Get(context.Background(), srv.URL+"/old", nil)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode())
	}
	if got := resp.Header("Location"); got != "/new" {
		t.Fatalf("Location = %q", got)
	}
}

func TestRestyClientSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "override" {
			t.Errorf("User-Agent = %q", got)
		}
		if got := r.Header.Get("Accept"); got != "text/xml" {
			t.Errorf("Accept = %q", got)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	client := NewRestyClient(2*time.Second, WithUserAgent("default"))
	resp, err := client.Get(context.Background(), srv.URL, map[string]string{
		"User-Agent": "override",
		"Accept":     "text/xml",
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(resp.Body()) != "ok" {
		t.Fatalf("unexpected body %q", resp.Body())
	}
}
