// Package session keeps the dashboard login flags for each browser session.
package session

import (
	"crypto/subtle"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the cookie carrying the session id.
const CookieName = "prdash_session"

// Session holds the three login flags.
type Session struct {
	LoggedIn  bool   `json:"loggedIn"`
	Username  string `json:"username"`
	LoginTime string `json:"loginTime"`
}

// Store is an in-memory session table. Sessions die with the process.
type Store struct {
	username string
	password string
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

func NewStore(username, password string) *Store {
	return &Store{
		username: username,
		password: password,
		now:      time.Now,
		sessions: map[string]Session{},
	}
}

// Check compares credentials in constant time.
func (s *Store) Check(username, password string) bool {
	u := subtle.ConstantTimeCompare([]byte(username), []byte(s.username))
	p := subtle.ConstantTimeCompare([]byte(password), []byte(s.password))
	return u&p == 1
}

// Login opens a session when the credentials match and returns its id.
func (s *Store) Login(username, password string) (string, bool) {
	if !s.Check(username, password) {
		return "", false
	}
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = Session{
		LoggedIn:  true,
		Username:  username,
		LoginTime: s.now().Format("15:04:05"),
	}
	s.mu.Unlock()
	return id, true
}

// Get returns the session for id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok && sess.LoggedIn
}

// Logout clears the session.
func (s *Store) Logout(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
