package transport

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// EventID returns middleware that assigns a unique event ID to each
// event. If the incoming context already carries an event ID (set by the
// HTTP adapter from the X-Request-ID header), that value is used.
// Otherwise, a new unique ID is generated.
//
// The event ID is stored in the context and can be retrieved with
// EventIDFromContext.
func EventID() Middleware {
	return func(next EventHandler) EventHandler {
		return EventHandlerFunc(func(ctx context.Context, ev *Event) (*Reply, error) {
			id := EventIDFromContext(ctx)
			if id == "" {
				id = generateEventID()
				ctx = ContextWithEventID(ctx, id)
			}
			return next.HandleEvent(ctx, ev)
		})
	}
}

// generateEventID creates a new unique event ID as a hex string.
func generateEventID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
