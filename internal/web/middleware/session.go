package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/annolab/facepair/internal/annotation"
	"github.com/annolab/facepair/internal/review"
)

const (
	sessionCookieName = "facepair_session"
	sessionDuration   = 24 * time.Hour
)

// Session is one browser's server-side state: the annotation session for
// regular annotators, or the review browser for super users. Handlers
// serialize access through Lock, matching the one-action-at-a-time model
// of the UI.
type Session struct {
	ID        string
	SuperUser bool

	Annotation *annotation.Session
	Review     *review.Browser

	CreatedAt time.Time
	ExpiresAt time.Time

	mu sync.Mutex
}

// Lock serializes handler access to the session state.
func (s *Session) Lock() {
	s.mu.Lock()
}

func (s *Session) Unlock() {
	s.mu.Unlock()
}

// SessionManager handles session creation and validation
type SessionManager struct {
	secret   []byte
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(secret string) *SessionManager {
	// Use a default secret if none provided (for development)
	if secret == "" {
		secret = "facepair-dev-secret-change-in-production"
	}
	return &SessionManager{
		secret:   []byte(secret),
		sessions: make(map[string]*Session),
	}
}

// CreateSession creates a new empty session.
func (sm *SessionManager) CreateSession() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(sessionDuration),
	}

	sm.mu.Lock()
	sm.sessions[session.ID] = session
	sm.mu.Unlock()

	return session
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[sessionID]
	if !ok {
		return nil
	}

	// Check if session has expired
	if time.Now().After(session.ExpiresAt) {
		go sm.DeleteSession(sessionID)
		return nil
	}

	return session
}

// DeleteSession removes a session
func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()
}

// SetSessionCookie sets the session cookie on the response
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, session *Session) {
	// Sign the session ID
	signature := sm.signData(session.ID)
	cookieValue := session.ID + "." + signature

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    cookieValue,
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production with HTTPS
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(sessionDuration.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// GetSessionFromRequest extracts the session from a request
func (sm *SessionManager) GetSessionFromRequest(r *http.Request) *Session {
	// Try cookie first
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil {
		parts := strings.SplitN(cookie.Value, ".", 2)
		if len(parts) == 2 {
			sessionID := parts[0]
			signature := parts[1]
			if sm.verifySignature(sessionID, signature) {
				if session := sm.GetSession(sessionID); session != nil {
					return session
				}
			}
		}
	}

	// Try Authorization header
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		sessionID := strings.TrimPrefix(authHeader, "Bearer ")
		if session := sm.GetSession(sessionID); session != nil {
			return session
		}
	}

	return nil
}

// signData creates an HMAC signature for data
func (sm *SessionManager) signData(data string) string {
	h := hmac.New(sha256.New, sm.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// verifySignature verifies an HMAC signature
func (sm *SessionManager) verifySignature(data, signature string) bool {
	expected := sm.signData(data)
	return hmac.Equal([]byte(signature), []byte(expected))
}

// CookieValue returns the signed cookie value for a session. Exposed for
// handler tests that need to present a valid cookie.
func (sm *SessionManager) CookieValue(session *Session) string {
	return session.ID + "." + sm.signData(session.ID)
}

// CookieName returns the session cookie name.
func CookieName() string {
	return sessionCookieName
}
