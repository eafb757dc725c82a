package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codeready-toolchain/scout/pkg/metrics"
)

// ErrNotFound is returned for unknown session IDs.
var ErrNotFound = errors.New("session not found")

// Manager manages sessions in memory
type Manager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	// Sessions idle for longer than ttl are evicted by Prune; 0 keeps them.
	ttl time.Duration
	now func() time.Time

	onEvict func(*Session)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithEvictHook registers fn to run for every session removed by Prune,
// after it is no longer reachable.
func WithEvictHook(fn func(*Session)) ManagerOption {
	return func(m *Manager) {
		m.onEvict = fn
	}
}

// NewManager creates a new session manager
func NewManager(ttl time.Duration, opts ...ManagerOption) *Manager {
	m := &Manager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create creates an idle session. Expired sessions are pruned first.
func (m *Manager) Create() *Session {
	m.Prune()

	sess := newSession(uuid.NewString(), m.now())

	m.mu.Lock()
	m.sessions[sess.ID] = sess
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(n)
	slog.Info("Session created", "session_id", sess.ID)
	return sess
}

// Get retrieves a session by ID
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	return sess, nil
}

// Delete removes a session
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	if _, ok := m.sessions[sessionID]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	delete(m.sessions, sessionID)
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.SetActiveSessions(n)
	return nil
}

// Prune evicts sessions not updated within the TTL and returns how many
// were removed.
func (m *Manager) Prune() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var evicted []*Session
	for id, s := range m.sessions {
		if s.UpdatedAt().Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, s)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	if len(evicted) == 0 {
		return 0
	}
	metrics.SetActiveSessions(n)
	slog.Info("Pruned expired sessions", "count", len(evicted), "ttl", m.ttl)
	if m.onEvict != nil {
		for _, s := range evicted {
			m.onEvict(s)
		}
	}
	return len(evicted)
}

// Len returns the number of sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
