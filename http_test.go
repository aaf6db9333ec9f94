package sessionkit

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFlexibleID(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{`"42"`, "42"},
		{`42`, "42"},
		{`"user-abc"`, "user-abc"},
		{`9007199254740993`, "9007199254740993"},
		{``, ""},
	}
	for _, tc := range cases {
		if got := flexibleID(json.RawMessage(tc.raw)); got != tc.want {
			t.Errorf("flexibleID(%s) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSecondsToDuration(t *testing.T) {
	if got := secondsToDuration(3600); got != time.Hour {
		t.Fatalf("expected 1h, got %v", got)
	}
	if got := secondsToDuration(0); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := secondsToDuration(-5); got != 0 {
		t.Fatalf("expected 0 for negative, got %v", got)
	}
}

func TestJoinURL(t *testing.T) {
	cases := []struct {
		base, path, want string
	}{
		{"https://api.example.com", "/auth/login", "https://api.example.com/auth/login"},
		{"https://api.example.com/", "/auth/login", "https://api.example.com/auth/login"},
		{"https://api.example.com/v2", "/auth/login", "https://api.example.com/v2/auth/login"},
	}
	for _, tc := range cases {
		if got := joinURL(tc.base, tc.path); got != tc.want {
			t.Errorf("joinURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestPostJSONDecodesErrorBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]interface{}{
			"success": false,
			"error":   "Invalid credentials",
		})
	}))
	t.Cleanup(srv.Close)

	var out loginWireResponse
	err := postJSON(context.Background(), srv.Client(), srv.URL, map[string]string{}, &out)
	if err != nil {
		t.Fatalf("a decodable error body is not a transport failure: %v", err)
	}
	if out.Success || out.Error != "Invalid credentials" {
		t.Fatalf("unexpected decode: %+v", out)
	}
}

func TestPostJSONReportsUndecodableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	var out loginWireResponse
	err := postJSON(context.Background(), srv.Client(), srv.URL, map[string]string{}, &out)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status-bearing error for plain-text 502, got %v", err)
	}
}

func TestPostJSONTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	var out loginWireResponse
	err := postJSON(context.Background(), http.DefaultClient, srv.URL, map[string]string{}, &out)

	var nerr *NetworkError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected *NetworkError, got %v", err)
	}
}
