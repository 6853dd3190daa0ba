// Package avito implements an authenticated client for the Avito
// marketplace API. Tokens are cached per account in a storage.TokenStore
// and refreshed through the OAuth client-credentials flow when the
// upstream rejects a request with 403. A rejected retry after a fresh
// token means the stored credentials are bad, which is surfaced as an
// auth-exhausted error rather than retried again.
package avito
