// Package storage defines the persistence collaborator contract the
// dialog engine and the upstream client depend on, plus sentinel errors
// shared by the adapter implementations (memory, sqlite, postgres).
//
// The contract is deliberately narrow: the core reads and writes customer
// records, admin lists, and cached tokens. Schema design beyond those
// fields belongs to the adapters.
package storage
