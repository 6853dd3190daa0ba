package http

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Authenticator validates bearer tokens against a static key set using
// SHA-256 hashing and constant-time comparison. Keys are hashed at
// construction; plaintext keys are not stored.
type Authenticator struct {
	hashes [][32]byte
}

// NewAuthenticator creates an authenticator from raw API keys.
func NewAuthenticator(keys []string) *Authenticator {
	a := &Authenticator{}
	for _, k := range keys {
		a.hashes = append(a.hashes, sha256.Sum256([]byte(k)))
	}
	return a
}

// Allow reports whether the presented token matches a configured key.
func (a *Authenticator) Allow(token string) bool {
	if token == "" {
		return false
	}
	hash := sha256.Sum256([]byte(token))
	for _, known := range a.hashes {
		if subtle.ConstantTimeCompare(hash[:], known[:]) == 1 {
			return true
		}
	}
	return false
}

// Middleware rejects requests without a valid bearer token.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || !a.Allow(token) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"type":"unauthorized","message":"missing or invalid API key"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
