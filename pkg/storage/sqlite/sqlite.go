// Package sqlite provides a SQLite-backed implementation of storage.Store
// using the pure-Go modernc.org/sqlite driver. It is the default backend
// for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/storage"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed storage.Store.
type Store struct {
	db *sql.DB
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New opens (creating if necessary) the database at dbPath and applies
// the schema. WAL mode is enabled for concurrent readers.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;

	CREATE TABLE IF NOT EXISTS customers (
		account_id      INTEGER PRIMARY KEY,
		title           TEXT NOT NULL UNIQUE,
		client_id       TEXT NOT NULL,
		client_secret   TEXT NOT NULL,
		chat_with_link  TEXT,
		chat_about_link TEXT,
		doc_link        TEXT,
		created_at      INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tokens (
		account_id INTEGER PRIMARY KEY,
		token      TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS admins (
		admin_id   INTEGER PRIMARY KEY,
		admin_name TEXT NOT NULL,
		in_charge  INTEGER NOT NULL DEFAULT 0
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// GetToken returns the cached token for an account.
func (s *Store) GetToken(ctx context.Context, accountID int64) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx,
		"SELECT token FROM tokens WHERE account_id = ?", accountID).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query token: %w", err)
	}
	return token, nil
}

// PutToken stores or replaces the token for an account.
func (s *Store) PutToken(ctx context.Context, accountID int64, token string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tokens (account_id, token, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(account_id) DO UPDATE SET token = excluded.token, updated_at = excluded.updated_at`,
		accountID, token, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// GetCredentials returns the OAuth credentials of a customer.
func (s *Store) GetCredentials(ctx context.Context, title string) (api.Credentials, error) {
	var creds api.Credentials
	err := s.db.QueryRowContext(ctx,
		"SELECT account_id, client_id, client_secret FROM customers WHERE title = ?", title).
		Scan(&creds.AccountID, &creds.ClientID, &creds.ClientSecret)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Credentials{}, storage.ErrNotFound
	}
	if err != nil {
		return api.Credentials{}, fmt.Errorf("query credentials: %w", err)
	}
	return creds, nil
}

// GetCustomer returns the full record with the given title.
func (s *Store) GetCustomer(ctx context.Context, title string) (*api.Customer, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT title, account_id, client_id, client_secret,
		       chat_with_link, chat_about_link, doc_link
		FROM customers WHERE title = ?`, title)

	var c api.Customer
	var chatWith, chatAbout, doc sql.NullString
	err := row.Scan(&c.Title, &c.AccountID, &c.ClientID, &c.ClientSecret,
		&chatWith, &chatAbout, &doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan customer row: %w", err)
	}

	c.ChatWithLink = chatWith.String
	c.ChatAboutLink = chatAbout.String
	c.DocLink = doc.String
	return &c, nil
}

// ListCustomerTitles returns all titles in insertion order.
func (s *Store) ListCustomerTitles(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT title FROM customers ORDER BY created_at, account_id")
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// InsertCustomer adds a record, rejecting duplicate titles and account ids.
func (s *Store) InsertCustomer(ctx context.Context, c *api.Customer) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (
			account_id, title, client_id, client_secret,
			chat_with_link, chat_about_link, doc_link, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.AccountID, c.Title, c.ClientID, c.ClientSecret,
		c.ChatWithLink, c.ChatAboutLink, c.DocLink, time.Now().Unix())
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

// DeleteCustomer removes the record with the given title along with any
// cached token for its account.
func (s *Store) DeleteCustomer(ctx context.Context, title string) error {
	return s.deleteInTx(ctx, func(tx *sql.Tx) (int64, error) {
		var accountID int64
		err := tx.QueryRowContext(ctx,
			"SELECT account_id FROM customers WHERE title = ?", title).Scan(&accountID)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("lookup account id: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM tokens WHERE account_id = ?", accountID); err != nil {
			return 0, fmt.Errorf("delete token: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE account_id = ?", accountID)
		if err != nil {
			return 0, fmt.Errorf("delete customer: %w", err)
		}
		return res.RowsAffected()
	}, true)
}

// DeleteCustomerIf removes the record matching all three keys.
func (s *Store) DeleteCustomerIf(ctx context.Context, title string, accountID int64, clientID string) (bool, error) {
	var deleted bool
	err := s.deleteInTx(ctx, func(tx *sql.Tx) (int64, error) {
		res, err := tx.ExecContext(ctx,
			"DELETE FROM customers WHERE title = ? AND account_id = ? AND client_id = ?",
			title, accountID, clientID)
		if err != nil {
			return 0, fmt.Errorf("conditional delete: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		if n > 0 {
			deleted = true
			if _, err := tx.ExecContext(ctx, "DELETE FROM tokens WHERE account_id = ?", accountID); err != nil {
				return 0, fmt.Errorf("delete token: %w", err)
			}
		}
		return n, nil
	}, false)
	return deleted, err
}

// deleteInTx runs fn in a transaction. When requireRows is set, zero
// affected rows is reported as storage.ErrNotFound.
func (s *Store) deleteInTx(ctx context.Context, fn func(*sql.Tx) (int64, error), requireRows bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := fn(tx)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	if requireRows && n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListAdminIDs returns all admin ids.
func (s *Store) ListAdminIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, "SELECT admin_id FROM admins ORDER BY admin_id")
}

// ListInChargeAdminIDs returns the ids of in-charge admins.
func (s *Store) ListInChargeAdminIDs(ctx context.Context) ([]int64, error) {
	return s.queryIDs(ctx, "SELECT admin_id FROM admins WHERE in_charge = 1 ORDER BY admin_id")
}

// ListAdminNames returns all admin names.
func (s *Store) ListAdminNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT admin_name FROM admins ORDER BY admin_id")
	if err != nil {
		return nil, fmt.Errorf("query admin names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan admin name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// InsertAdmin adds an admin record.
func (s *Store) InsertAdmin(ctx context.Context, a *api.Admin) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO admins (admin_id, admin_name, in_charge) VALUES (?, ?, ?)",
		a.ID, a.Name, boolToInt(a.InCharge))
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// DeleteAdminByName removes the named admin unless they are in charge.
func (s *Store) DeleteAdminByName(ctx context.Context, name string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM admins WHERE admin_name = ? AND in_charge = 0", name)
	if err != nil {
		return false, fmt.Errorf("delete admin: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// HealthCheck verifies database connectivity.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) queryIDs(ctx context.Context, query string) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query admin ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan admin id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure. modernc.org/sqlite surfaces these as formatted strings.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
