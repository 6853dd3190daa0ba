// Package transport defines the handler contract and middleware chain
// between chat surfaces and the dialog engine.
//
// A chat surface (the HTTP adapter in pkg/transport/http, or any other
// frontend) turns an incoming update into an Event, runs it through the
// middleware chain, and renders the returned Reply back to the operator.
// The dialog engine implements EventHandler and knows nothing about the
// wire protocol.
//
// Built-in middleware provides panic recovery, event ID assignment, and
// structured logging via log/slog.
package transport
