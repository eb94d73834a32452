package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func requestIDHandler(t *testing.T) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return RequestID(nil)(next)
}

func TestRequestIDMintsWhenAbsent(t *testing.T) {
	t.Parallel()

	resp := httptest.NewRecorder()
	requestIDHandler(t).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))

	echoed := resp.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(echoed); err != nil {
		t.Fatalf("expected a minted uuid, got %q", echoed)
	}
}

func TestRequestIDEchoesInbound(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "edge-7f3a")

	resp := httptest.NewRecorder()
	requestIDHandler(t).ServeHTTP(resp, req)

	if got := resp.Header().Get("X-Request-Id"); got != "edge-7f3a" {
		t.Fatalf("inbound id should be echoed, got %q", got)
	}
}

func TestRequestIDReplacesOversizedInbound(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", strings.Repeat("x", 200))

	resp := httptest.NewRecorder()
	requestIDHandler(t).ServeHTTP(resp, req)

	echoed := resp.Header().Get("X-Request-Id")
	if _, err := uuid.Parse(echoed); err != nil {
		t.Fatalf("oversized inbound id should be replaced, got %q", echoed)
	}
}
