package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSessionManager_CreateAndGet(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session := sm.CreateSession()
	if session.ID == "" {
		t.Fatal("expected a session id")
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Error("expected a future expiry")
	}

	if got := sm.GetSession(session.ID); got != session {
		t.Error("expected to retrieve the same session")
	}
}

func TestSessionManager_GetSession_Expired(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session := sm.CreateSession()
	session.ExpiresAt = time.Now().Add(-time.Minute)

	if sm.GetSession(session.ID) != nil {
		t.Error("expected an expired session to be rejected")
	}
}

func TestSessionManager_DeleteSession(t *testing.T) {
	sm := NewSessionManager("test-secret")

	session := sm.CreateSession()
	sm.DeleteSession(session.ID)

	if sm.GetSession(session.ID) != nil {
		t.Error("expected the session to be gone")
	}
}

func TestSessionManager_CookieRoundTrip(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession()

	recorder := httptest.NewRecorder()
	sm.SetSessionCookie(recorder, session)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header["Cookie"] = recorder.Header()["Set-Cookie"]

	if got := sm.GetSessionFromRequest(req); got != session {
		t.Error("expected the cookie to resolve to the session")
	}
}

func TestSessionManager_TamperedCookieRejected(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession()

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  CookieName(),
		Value: session.ID + ".bogus-signature",
	})

	if sm.GetSessionFromRequest(req) != nil {
		t.Error("expected a tampered cookie to be rejected")
	}
}

func TestSessionManager_DifferentSecretRejected(t *testing.T) {
	sm := NewSessionManager("test-secret")
	other := NewSessionManager("other-secret")
	session := sm.CreateSession()

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{
		Name:  CookieName(),
		Value: other.CookieValue(session),
	})

	if sm.GetSessionFromRequest(req) != nil {
		t.Error("expected a cookie signed with another secret to be rejected")
	}
}

func TestSessionManager_BearerToken(t *testing.T) {
	sm := NewSessionManager("test-secret")
	session := sm.CreateSession()

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+session.ID)

	if got := sm.GetSessionFromRequest(req); got != session {
		t.Error("expected the bearer token to resolve to the session")
	}
}

func TestSessionManager_ClearSessionCookie(t *testing.T) {
	sm := NewSessionManager("test-secret")

	recorder := httptest.NewRecorder()
	sm.ClearSessionCookie(recorder)

	cookies := recorder.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("expected MaxAge -1, got %d", cookies[0].MaxAge)
	}
}
