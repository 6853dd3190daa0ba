package transport

import (
	"context"
	"fmt"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to errors. The server continues to accept new events
// after a panic is recovered.
func Recovery() Middleware {
	return func(next EventHandler) EventHandler {
		return EventHandlerFunc(func(ctx context.Context, ev *Event) (reply *Reply, retErr error) {
			defer func() {
				if r := recover(); r != nil {
					reply = nil
					retErr = api.NewPersistenceError(fmt.Sprintf("panic while handling event: %v", r))
				}
			}()
			return next.HandleEvent(ctx, ev)
		})
	}
}
