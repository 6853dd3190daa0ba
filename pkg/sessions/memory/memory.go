// Package memory provides an in-memory sessions.Store for single-node
// deployments and tests.
package memory

import (
	"context"
	"sync"

	"github.com/sellerdesk/sellerdesk/pkg/sessions"
)

// Store is a map-backed sessions.Store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessions.Session
}

var _ sessions.Store = (*Store)(nil)

// New creates an empty in-memory session store.
func New() *Store {
	return &Store{sessions: make(map[string]*sessions.Session)}
}

// Get returns a copy of the session for key.
func (s *Store) Get(_ context.Context, key string) (*sessions.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[key]
	if !ok {
		return nil, sessions.ErrNotFound
	}
	return sess.Clone(), nil
}

// Put stores a copy of the session.
func (s *Store) Put(_ context.Context, sess *sessions.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.Key] = sess.Clone()
	return nil
}

// Delete removes the session for key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}
