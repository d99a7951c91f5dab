package whttp

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestSendHTTPRequestSendsJSONBody(t *testing.T) {
	var gotBody, gotType, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		gotID = r.Header.Get("X-Request-ID")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client, err := NewClient(Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{
		Method: http.MethodPost,
		URL:    srv.URL,
		Body:   []byte(`{"a":1}`),
	}, client)
	if err != nil {
		t.Fatalf("SendHTTPRequest: %v", err)
	}

	if res.StatusCode != http.StatusOK || res.BodyString != `{"ok":true}` {
		t.Fatalf("unexpected response: %+v", res)
	}
	if gotBody != `{"a":1}` || gotType != "application/json" {
		t.Fatalf("unexpected request body %q / content type %q", gotBody, gotType)
	}
	if gotID == "" || gotID != res.RequestID {
		t.Fatalf("request id mismatch: server saw %q, response carries %q", gotID, res.RequestID)
	}
	if res.HTTPTitle != "" {
		t.Fatalf("JSON response should not yield a title, got %q", res.HTTPTitle)
	}
}

func TestSendHTTPRequestReturnsServerErrorsWithoutRetrying(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html><head><title>502 Bad\nGateway</title></head><body></body></html>"))
	}))
	defer srv.Close()

	client, _ := NewClient(Options{})
	res, err := SendHTTPRequest(context.Background(), &WHTTPReq{Method: http.MethodGet, URL: srv.URL}, client)
	if err != nil {
		t.Fatalf("expected the 502 to be passed through, got error %v", err)
	}
	if res.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", res.StatusCode)
	}
	if res.HTTPTitle != "502 BadGateway" {
		t.Fatalf("unexpected title %q", res.HTTPTitle)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected exactly one attempt, got %d", n)
	}
}

func TestNewClientRejectsBadProxy(t *testing.T) {
	if _, err := NewClient(Options{Proxy: "://nope"}); err == nil {
		t.Fatal("expected an error for a malformed proxy URL")
	}
}
