package transport

import "context"

// Middleware wraps an EventHandler to add cross-cutting behavior.
// Middleware is applied in order: the first middleware in the chain is
// the outermost wrapper (executes first on the way in, last on the way out).
type Middleware func(EventHandler) EventHandler

// Chain composes multiple middleware into a single middleware.
// Middleware are applied in order: Chain(a, b, c) produces a(b(c(handler))).
func Chain(middlewares ...Middleware) Middleware {
	return func(next EventHandler) EventHandler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// eventIDKeyType is the context key type for event IDs.
type eventIDKeyType struct{}

// eventIDKey is the context key for storing and retrieving event IDs.
var eventIDKey = eventIDKeyType{}

// EventIDFromContext extracts the event ID from the context.
// Returns an empty string if no event ID is set.
func EventIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(eventIDKey).(string); ok {
		return id
	}
	return ""
}

// ContextWithEventID returns a new context with the given event ID.
func ContextWithEventID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, eventIDKey, id)
}
