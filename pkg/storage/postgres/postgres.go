// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and is intended for deployments
// where several bot instances share one account registry.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// GetToken retrieves the cached token for an account.
func (s *Store) GetToken(ctx context.Context, accountID int64) (string, error) {
	var token string
	err := s.pool.QueryRow(ctx,
		"SELECT token FROM tokens WHERE account_id = $1", accountID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying token: %w", err)
	}
	return token, nil
}

// PutToken stores or replaces the token for an account.
func (s *Store) PutToken(ctx context.Context, accountID int64, token string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tokens (account_id, token, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (account_id) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`,
		accountID, token)
	if err != nil {
		return fmt.Errorf("upserting token: %w", err)
	}
	return nil
}

// GetCredentials retrieves the OAuth credentials of a customer.
func (s *Store) GetCredentials(ctx context.Context, title string) (api.Credentials, error) {
	var creds api.Credentials
	err := s.pool.QueryRow(ctx,
		"SELECT account_id, client_id, client_secret FROM customers WHERE title = $1", title).
		Scan(&creds.AccountID, &creds.ClientID, &creds.ClientSecret)
	if errors.Is(err, pgx.ErrNoRows) {
		return api.Credentials{}, storage.ErrNotFound
	}
	if err != nil {
		return api.Credentials{}, fmt.Errorf("querying credentials: %w", err)
	}
	return creds, nil
}

// GetCustomer retrieves the full record with the given title.
func (s *Store) GetCustomer(ctx context.Context, title string) (*api.Customer, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT title, account_id, client_id, client_secret,
		       COALESCE(chat_with_link, ''), COALESCE(chat_about_link, ''), COALESCE(doc_link, '')
		FROM customers WHERE title = $1`, title)

	var c api.Customer
	err := row.Scan(&c.Title, &c.AccountID, &c.ClientID, &c.ClientSecret,
		&c.ChatWithLink, &c.ChatAboutLink, &c.DocLink)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	return &c, nil
}

// ListCustomerTitles returns all titles in insertion order.
func (s *Store) ListCustomerTitles(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT title FROM customers ORDER BY created_at, account_id")
	if err != nil {
		return nil, fmt.Errorf("querying titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scanning title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// InsertCustomer adds a record, rejecting duplicate titles and account ids.
func (s *Store) InsertCustomer(ctx context.Context, c *api.Customer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO customers (
			account_id, title, client_id, client_secret,
			chat_with_link, chat_about_link, doc_link
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.AccountID, c.Title, c.ClientID, c.ClientSecret,
		c.ChatWithLink, c.ChatAboutLink, c.DocLink)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

// DeleteCustomer removes the record with the given title along with any
// cached token for its account.
func (s *Store) DeleteCustomer(ctx context.Context, title string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var accountID int64
	err = tx.QueryRow(ctx,
		"SELECT account_id FROM customers WHERE title = $1", title).Scan(&accountID)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("looking up account id: %w", err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM tokens WHERE account_id = $1", accountID); err != nil {
		return fmt.Errorf("deleting token: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM customers WHERE account_id = $1", accountID); err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteCustomerIf removes the record matching all three keys.
func (s *Store) DeleteCustomerIf(ctx context.Context, title string, accountID int64, clientID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		"DELETE FROM customers WHERE title = $1 AND account_id = $2 AND client_id = $3",
		title, accountID, clientID)
	if err != nil {
		return false, fmt.Errorf("conditional delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	if _, err := tx.Exec(ctx, "DELETE FROM tokens WHERE account_id = $1", accountID); err != nil {
		return false, fmt.Errorf("deleting token: %w", err)
	}
	return true, tx.Commit(ctx)
}

// ListAdminIDs returns all admin ids.
func (s *Store) ListAdminIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, "SELECT admin_id FROM admins ORDER BY admin_id")
}

// ListInChargeAdminIDs returns the ids of in-charge admins.
func (s *Store) ListInChargeAdminIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, "SELECT admin_id FROM admins WHERE in_charge ORDER BY admin_id")
}

// ListAdminNames returns all admin names.
func (s *Store) ListAdminNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT admin_name FROM admins ORDER BY admin_id")
	if err != nil {
		return nil, fmt.Errorf("querying admin names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning admin name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// InsertAdmin adds an admin record.
func (s *Store) InsertAdmin(ctx context.Context, a *api.Admin) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO admins (admin_id, admin_name, in_charge) VALUES ($1, $2, $3)",
		a.ID, a.Name, a.InCharge)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

// DeleteAdminByName removes the named admin unless they are in charge.
func (s *Store) DeleteAdminByName(ctx context.Context, name string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		"DELETE FROM admins WHERE admin_name = $1 AND NOT in_charge", name)
	if err != nil {
		return false, fmt.Errorf("deleting admin: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) queryIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying admin ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning admin id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// isDuplicateKey checks if the error is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	return err != nil && contains(err.Error(), "23505")
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
