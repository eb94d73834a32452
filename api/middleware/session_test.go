package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/pkg/config"
)

func sessionConfig() config.CartConfig {
	return config.CartConfig{
		SessionCookie: "mtuk_session",
		SessionMaxAge: 720 * time.Hour,
	}
}

func runSession(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var captured string
	handler := Session(sessionConfig(), false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, captured
}

func TestSessionMintsCookieWhenAbsent(t *testing.T) {
	w, sessionID := runSession(t, httptest.NewRequest("GET", "/", nil))

	if sessionID == "" {
		t.Fatal("expected a session id in context")
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		t.Fatalf("session id is not a uuid: %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "mtuk_session" {
		t.Fatalf("expected a session cookie, got %+v", cookies)
	}
	if cookies[0].Value != sessionID {
		t.Fatal("cookie and context must agree")
	}
	if !cookies[0].HttpOnly {
		t.Fatal("session cookie must be http-only")
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	existing := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "mtuk_session", Value: existing})

	_, sessionID := runSession(t, req)
	if sessionID != existing {
		t.Fatalf("expected %s, got %s", existing, sessionID)
	}
}

func TestSessionReplacesMalformedCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "mtuk_session", Value: "not-a-uuid"})

	_, sessionID := runSession(t, req)
	if sessionID == "" || sessionID == "not-a-uuid" {
		t.Fatalf("expected a fresh session id, got %q", sessionID)
	}
}
