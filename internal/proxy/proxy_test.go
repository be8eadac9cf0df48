package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProxyForwardsToClient(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar" {
			t.Errorf("path = %q, want /calendar", r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("client page"))
	}))
	defer backend.Close()

	handler, err := New(backend.URL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/calendar", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.String() != "client page" {
		t.Fatalf("body = %q", rr.Body.String())
	}
}

func TestProxyReportsBadGatewayWhenClientDown(t *testing.T) {
	// A port nothing listens on.
	handler, err := New("http://127.0.0.1:1")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestNewRejectsBadOrigin(t *testing.T) {
	if _, err := New("://not-a-url"); err == nil {
		t.Fatal("New() accepted an invalid origin")
	}
}
