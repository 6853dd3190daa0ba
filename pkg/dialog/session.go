package dialog

import (
	"sync"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/sessions"
)

// session is the engine's working view of one conversation. It wraps the
// serializable record with typed accessors for the data bag.
type session struct {
	Key   string
	State State
	Bag   map[string]string
}

// fromStored converts a persisted record into a working session.
func fromStored(s *sessions.Session) *session {
	bag := s.Bag
	if bag == nil {
		bag = make(map[string]string)
	}
	return &session{Key: s.Key, State: State(s.State), Bag: bag}
}

// newSession starts a fresh conversation at the main menu.
func newSession(key string) *session {
	return &session{Key: key, State: StateMain, Bag: make(map[string]string)}
}

// toStored converts the working session back to its persisted form.
func (s *session) toStored() *sessions.Session {
	return &sessions.Session{
		Key:       s.Key,
		State:     string(s.State),
		Bag:       s.Bag,
		UpdatedAt: time.Now(),
	}
}

// reset returns the session to the main menu and drops everything
// collected so far.
func (s *session) reset() {
	s.State = StateMain
	s.Bag = make(map[string]string)
}

// customer returns the currently selected customer title, if any.
func (s *session) customer() string {
	return s.Bag[bagCustomer]
}

// keyedMutex serializes work per string key while leaving distinct keys
// fully independent. Entries are reference-counted so the map does not
// grow with the number of sessions ever seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock acquires the mutex for key, creating it on first use.
func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyedLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
}

// Unlock releases the mutex for key and discards it when no one waits.
func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	l := k.locks[key]
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	l.mu.Unlock()
}
