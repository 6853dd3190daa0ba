// Package memory provides an in-memory implementation of storage.Store
// for testing and lightweight deployments. Records are lost when the
// process restarts.
package memory

import (
	"context"
	"sync"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
)

// Store is an in-memory storage.Store. All methods are safe for
// concurrent use; the mutex is held only for map access.
type Store struct {
	mu         sync.RWMutex
	customers  map[string]*api.Customer // keyed by title
	titleOrder []string
	admins     map[int64]*api.Admin
	adminOrder []int64
	tokens     map[int64]string
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		customers: make(map[string]*api.Customer),
		admins:    make(map[int64]*api.Admin),
		tokens:    make(map[int64]string),
	}
}

// GetToken returns the cached token for an account.
func (s *Store) GetToken(_ context.Context, accountID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.tokens[accountID]
	if !ok {
		return "", storage.ErrNotFound
	}
	return tok, nil
}

// PutToken stores or replaces the token for an account.
func (s *Store) PutToken(_ context.Context, accountID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[accountID] = token
	return nil
}

// GetCredentials returns the OAuth credentials of a customer.
func (s *Store) GetCredentials(_ context.Context, title string) (api.Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[title]
	if !ok {
		return api.Credentials{}, storage.ErrNotFound
	}
	return api.Credentials{
		AccountID:    c.AccountID,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
	}, nil
}

// GetCustomer returns a copy of the record with the given title.
func (s *Store) GetCustomer(_ context.Context, title string) (*api.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[title]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// ListCustomerTitles returns all titles in insertion order.
func (s *Store) ListCustomerTitles(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make([]string, len(s.titleOrder))
	copy(titles, s.titleOrder)
	return titles, nil
}

// InsertCustomer adds a record, rejecting duplicate titles and account ids.
func (s *Store) InsertCustomer(_ context.Context, c *api.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.customers[c.Title]; exists {
		return storage.ErrConflict
	}
	for _, existing := range s.customers {
		if existing.AccountID == c.AccountID {
			return storage.ErrConflict
		}
	}

	cp := *c
	s.customers[c.Title] = &cp
	s.titleOrder = append(s.titleOrder, c.Title)
	return nil
}

// DeleteCustomer removes the record with the given title.
func (s *Store) DeleteCustomer(_ context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.customers[title]; !ok {
		return storage.ErrNotFound
	}
	s.removeLocked(title)
	return nil
}

// DeleteCustomerIf removes the record matching all three keys.
func (s *Store) DeleteCustomerIf(_ context.Context, title string, accountID int64, clientID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[title]
	if !ok || c.AccountID != accountID || c.ClientID != clientID {
		return false, nil
	}
	s.removeLocked(title)
	return true, nil
}

// ListAdminIDs returns all admin ids.
func (s *Store) ListAdminIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, len(s.adminOrder))
	copy(ids, s.adminOrder)
	return ids, nil
}

// ListInChargeAdminIDs returns the ids of in-charge admins.
func (s *Store) ListInChargeAdminIDs(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []int64
	for _, id := range s.adminOrder {
		if s.admins[id].InCharge {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListAdminNames returns all admin names.
func (s *Store) ListAdminNames(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.adminOrder))
	for _, id := range s.adminOrder {
		names = append(names, s.admins[id].Name)
	}
	return names, nil
}

// InsertAdmin adds an admin record.
func (s *Store) InsertAdmin(_ context.Context, a *api.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.admins[a.ID]; exists {
		return storage.ErrConflict
	}
	cp := *a
	s.admins[a.ID] = &cp
	s.adminOrder = append(s.adminOrder, a.ID)
	return nil
}

// DeleteAdminByName removes the named admin unless they are in charge.
func (s *Store) DeleteAdminByName(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.adminOrder {
		a := s.admins[id]
		if a.Name != name {
			continue
		}
		if a.InCharge {
			return false, nil
		}
		delete(s.admins, id)
		s.adminOrder = append(s.adminOrder[:i], s.adminOrder[i+1:]...)
		return true, nil
	}
	return false, nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// removeLocked drops a customer, its title-order entry, and its cached
// token. Must be called with s.mu held.
func (s *Store) removeLocked(title string) {
	c := s.customers[title]
	delete(s.customers, title)
	delete(s.tokens, c.AccountID)
	for i, t := range s.titleOrder {
		if t == title {
			s.titleOrder = append(s.titleOrder[:i], s.titleOrder[i+1:]...)
			break
		}
	}
}
