package sessions

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates that no session exists for the given key.
var ErrNotFound = errors.New("session not found")

// Session is the serializable conversation state for one operator in
// one chat. State names the current dialog node; Bag carries the values
// collected along the way, keyed by field name.
type Session struct {
	Key       string            `json:"key"`
	State     string            `json:"state"`
	Bag       map[string]string `json:"bag,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a deep copy so callers can mutate freely.
func (s *Session) Clone() *Session {
	c := *s
	if s.Bag != nil {
		c.Bag = make(map[string]string, len(s.Bag))
		for k, v := range s.Bag {
			c.Bag[k] = v
		}
	}
	return &c
}

// Store persists sessions. Implementations must be safe for concurrent
// use and must not return aliased Session values.
type Store interface {
	// Get returns the session for key, or ErrNotFound.
	Get(ctx context.Context, key string) (*Session, error)

	// Put stores the session, replacing any previous value.
	Put(ctx context.Context, s *Session) error

	// Delete removes the session for key. Deleting a missing key is not
	// an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
