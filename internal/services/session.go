package services

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
)

// State is the authorization tier a session is in.
type State string

const (
	StateAnonymous       State = "anonymous"
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
	StateAdmin           State = "admin"
)

// Session is the ephemeral per-client state: who is logged in and what
// they may see. It is never persisted.
type Session struct {
	Username   string
	IsAdmin    bool
	IsApproved bool
}

// State derives the authorization tier from the session flags. Admin
// bypasses the approval check.
func (s Session) State() State {
	switch {
	case s.Username == "":
		return StateAnonymous
	case s.IsAdmin:
		return StateAdmin
	case s.IsApproved:
		return StateApproved
	default:
		return StatePendingApproval
	}
}

// CanViewCode reports whether the session may read the current box code.
func (s Session) CanViewCode() bool {
	return s.IsAdmin || (s.Username != "" && s.IsApproved)
}

// SessionManager keeps sessions in process memory, keyed by an opaque
// token handed to the client as a cookie. Sessions vanish on restart;
// that is intentional.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]Session)}
}

// Create registers a new session and returns its token.
func (m *SessionManager) Create(username string, isAdmin, isApproved bool) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := base64.URLEncoding.EncodeToString(tokenBytes)

	m.mu.Lock()
	m.sessions[token] = Session{Username: username, IsAdmin: isAdmin, IsApproved: isApproved}
	m.mu.Unlock()
	return token, nil
}

// Get returns the session for a token, if any.
func (m *SessionManager) Get(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	m.mu.RLock()
	sess, ok := m.sessions[token]
	m.mu.RUnlock()
	return sess, ok
}

// Destroy removes a session. Logging out resets the whole session, not
// just the identity.
func (m *SessionManager) Destroy(token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
