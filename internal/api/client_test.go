// internal/api/client_test.go
package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	c := New("http://localhost:5000", "secret123", 0)

	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected baseURL=http://localhost:5000, got %s", c.baseURL)
	}
	if c.apiKey != "secret123" {
		t.Errorf("expected apiKey=secret123, got %s", c.apiKey)
	}
	if c.httpClient.Timeout != 30*time.Second {
		t.Errorf("expected default timeout, got %s", c.httpClient.Timeout)
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	c := New("http://localhost:5000/", "", time.Second)
	if c.baseURL != "http://localhost:5000" {
		t.Errorf("expected trailing slash trimmed, got %s", c.baseURL)
	}
}

func TestLookup_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/json/" {
			t.Errorf("expected path /json/, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fields"); got != lookupFields {
			t.Errorf("expected fields=%s, got %s", lookupFields, got)
		}
		if got := r.URL.Query().Get("key"); got != "k" {
			t.Errorf("expected key=k, got %s", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","lat":42.2406,"lon":-8.7207,"city":"Vigo","country":"Spain","query":"203.0.113.7"}`))
	}))
	defer server.Close()

	loc, err := New(server.URL, "k", time.Second).Lookup(context.Background())
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if loc.Lat != 42.2406 || loc.Lon != -8.7207 {
		t.Errorf("unexpected coordinates %f,%f", loc.Lat, loc.Lon)
	}
	if loc.City != "Vigo" {
		t.Errorf("expected city Vigo, got %s", loc.City)
	}
}

func TestLookup_Fail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"fail","message":"private range","query":"10.0.0.1"}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "", time.Second).Lookup(context.Background())
	if !errors.Is(err, ErrLookupFailed) {
		t.Errorf("expected ErrLookupFailed, got %v", err)
	}
}

func TestLookup_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := New(server.URL, "", time.Second).Lookup(context.Background())
	if err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestLookup_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := New(server.URL, "", time.Second).Lookup(context.Background())
	if err == nil {
		t.Error("expected decode error")
	}
}

func TestLookup_ServerDown(t *testing.T) {
	_, err := New("http://localhost:59999", "", time.Second).Lookup(context.Background()) // unlikely to be listening
	if err == nil {
		t.Error("expected error for unreachable server")
	}
}

func TestLookup_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(server.URL, "", time.Second).Lookup(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
}
