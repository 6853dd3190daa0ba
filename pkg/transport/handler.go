package transport

import "context"

// EventKind distinguishes how the operator produced an event.
type EventKind string

const (
	// KindMessage is free text typed into the chat.
	KindMessage EventKind = "message"

	// KindCallback is a button press carrying the button's data value.
	KindCallback EventKind = "callback"
)

// Event is one operator action delivered by a chat surface.
type Event struct {
	// SessionKey identifies the conversation, typically "<chat>:<user>".
	SessionKey string `json:"session_key"`

	// CallerID is the operator's numeric id, used for access checks.
	CallerID int64 `json:"caller_id"`

	Kind    EventKind `json:"kind"`
	Payload string    `json:"payload"`
}

// Button is one inline keyboard button. Exactly one of Data and URL is
// set: Data buttons produce callback events, URL buttons open a link.
type Button struct {
	Label string `json:"label"`
	Data  string `json:"data,omitempty"`
	URL   string `json:"url,omitempty"`
}

// FileAttachment is a document sent along with a reply.
type FileAttachment struct {
	Name    string `json:"name"`
	Content []byte `json:"content"`
}

// Reply is what the operator sees after an event is handled.
type Reply struct {
	Text    string          `json:"text"`
	Buttons [][]Button      `json:"buttons,omitempty"`
	File    *FileAttachment `json:"file,omitempty"`
}

// EventHandler processes one event and produces the reply to render.
// It is the contract between chat surfaces and the dialog engine.
type EventHandler interface {
	HandleEvent(ctx context.Context, ev *Event) (*Reply, error)
}

// EventHandlerFunc is an adapter that allows using an ordinary function
// as an EventHandler.
type EventHandlerFunc func(ctx context.Context, ev *Event) (*Reply, error)

// HandleEvent calls f(ctx, ev).
func (f EventHandlerFunc) HandleEvent(ctx context.Context, ev *Event) (*Reply, error) {
	return f(ctx, ev)
}
