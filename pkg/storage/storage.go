package storage

import (
	"context"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

// TokenStore caches one bearer token per upstream account. PutToken
// overwrites any previous token; tokens are never expired proactively.
type TokenStore interface {
	// GetToken returns the cached token for an account, or ErrNotFound.
	GetToken(ctx context.Context, accountID int64) (string, error)

	// PutToken stores or replaces the token for an account.
	PutToken(ctx context.Context, accountID int64, token string) error
}

// CustomerStore persists customer records keyed by their unique title.
type CustomerStore interface {
	// GetCredentials returns the OAuth credentials of the customer with
	// the given title, or ErrNotFound.
	GetCredentials(ctx context.Context, title string) (api.Credentials, error)

	// GetCustomer returns the full record, or ErrNotFound.
	GetCustomer(ctx context.Context, title string) (*api.Customer, error)

	// ListCustomerTitles returns all customer titles in insertion order.
	ListCustomerTitles(ctx context.Context) ([]string, error)

	// InsertCustomer adds a record. Returns ErrConflict when the title or
	// account id is already taken.
	InsertCustomer(ctx context.Context, c *api.Customer) error

	// DeleteCustomer removes the record with the given title. Returns
	// ErrNotFound when no such record exists.
	DeleteCustomer(ctx context.Context, title string) error

	// DeleteCustomerIf removes the record matching title, account id, and
	// client id, reporting whether a record was found and removed. The
	// edit flow relies on this to avoid leaving duplicates behind.
	DeleteCustomerIf(ctx context.Context, title string, accountID int64, clientID string) (bool, error)
}

// AdminStore persists the operator lists that gate the menus.
type AdminStore interface {
	// ListAdminIDs returns the chat ids of every admin (the employee set).
	ListAdminIDs(ctx context.Context) ([]int64, error)

	// ListInChargeAdminIDs returns the ids of in-charge admins only.
	ListInChargeAdminIDs(ctx context.Context) ([]int64, error)

	// ListAdminNames returns all admin names.
	ListAdminNames(ctx context.Context) ([]string, error)

	// InsertAdmin adds an admin. Returns ErrConflict on a duplicate id.
	InsertAdmin(ctx context.Context, a *api.Admin) error

	// DeleteAdminByName removes the named admin, reporting whether a
	// record was removed. In-charge admins are never removed.
	DeleteAdminByName(ctx context.Context, name string) (bool, error)
}

// Store is the full persistence collaborator contract.
type Store interface {
	TokenStore
	CustomerStore
	AdminStore

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
