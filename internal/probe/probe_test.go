package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchReturnsStatusBodyHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Powered-By", "PHP/8.2")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Telescope"))
	}))
	defer srv.Close()

	c := NewClient(2 * time.Second)
	resp, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != http.StatusOK || resp.Body != "Telescope" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Header.Get("X-Powered-By") != "PHP/8.2" {
		t.Errorf("headers not propagated: %v", resp.Header)
	}
}

func TestFetchTransportErrorReturnsNil(t *testing.T) {
	c := NewClient(300 * time.Millisecond)
	// closed port: connection refused, not a finding
	resp, err := c.Fetch(context.Background(), "http://127.0.0.1:1/")
	if err == nil || resp != nil {
		t.Errorf("expected nil response with error, got %+v %v", resp, err)
	}
}

func TestUnavailableIntrospection(t *testing.T) {
	var p LiveIntrospectionProbe = Unavailable{}
	if _, err := p.Middleware(context.Background()); err != ErrUnavailable {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}
