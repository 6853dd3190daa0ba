package transport

import (
	"context"
	"log/slog"
	"time"
)

// Logging returns middleware that emits structured log entries for each
// handled event. The log entry includes the session key, event kind,
// duration, event ID (from context), and whether handling succeeded or
// failed. The raw payload is not logged since it can carry credentials
// during customer registration.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next EventHandler) EventHandler {
		return EventHandlerFunc(func(ctx context.Context, ev *Event) (*Reply, error) {
			start := time.Now()
			eventID := EventIDFromContext(ctx)

			reply, err := next.HandleEvent(ctx, ev)

			attrs := []slog.Attr{
				slog.String("event_id", eventID),
				slog.String("session", ev.SessionKey),
				slog.String("kind", string(ev.Kind)),
				slog.Duration("duration", time.Since(start)),
			}

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				logger.LogAttrs(ctx, slog.LevelError, "event failed", attrs...)
			} else {
				logger.LogAttrs(ctx, slog.LevelInfo, "event handled", attrs...)
			}

			return reply, err
		})
	}
}
