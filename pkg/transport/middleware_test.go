package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

func testEvent() *Event {
	return &Event{SessionKey: "1:1", CallerID: 1, Kind: KindMessage, Payload: "hello"}
}

func TestChainOrder(t *testing.T) {
	var order []string
	mk := func(name string) Middleware {
		return func(next EventHandler) EventHandler {
			return EventHandlerFunc(func(ctx context.Context, ev *Event) (*Reply, error) {
				order = append(order, name)
				return next.HandleEvent(ctx, ev)
			})
		}
	}

	handler := Chain(mk("a"), mk("b"), mk("c"))(EventHandlerFunc(
		func(ctx context.Context, ev *Event) (*Reply, error) {
			order = append(order, "handler")
			return &Reply{Text: "done"}, nil
		}))

	reply, err := handler.HandleEvent(context.Background(), testEvent())
	if err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}
	if reply.Text != "done" {
		t.Errorf("reply = %+v", reply)
	}

	want := []string{"a", "b", "c", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestRecoveryCatchesPanic(t *testing.T) {
	handler := Recovery()(EventHandlerFunc(
		func(ctx context.Context, ev *Event) (*Reply, error) {
			panic("boom")
		}))

	reply, err := handler.HandleEvent(context.Background(), testEvent())
	if reply != nil {
		t.Errorf("reply = %+v, want nil", reply)
	}
	if !api.IsType(err, api.ErrorTypePersistence) {
		t.Errorf("error = %v, want persistence_error", err)
	}
}

func TestRecoveryPassesThrough(t *testing.T) {
	wantErr := errors.New("ordinary failure")
	handler := Recovery()(EventHandlerFunc(
		func(ctx context.Context, ev *Event) (*Reply, error) {
			return nil, wantErr
		}))

	_, err := handler.HandleEvent(context.Background(), testEvent())
	if !errors.Is(err, wantErr) {
		t.Errorf("error = %v, want %v", err, wantErr)
	}
}

func TestEventIDAssigned(t *testing.T) {
	var seen string
	handler := EventID()(EventHandlerFunc(
		func(ctx context.Context, ev *Event) (*Reply, error) {
			seen = EventIDFromContext(ctx)
			return &Reply{}, nil
		}))

	if _, err := handler.HandleEvent(context.Background(), testEvent()); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}
	if seen == "" {
		t.Error("no event id assigned")
	}
}

func TestEventIDPreserved(t *testing.T) {
	var seen string
	handler := EventID()(EventHandlerFunc(
		func(ctx context.Context, ev *Event) (*Reply, error) {
			seen = EventIDFromContext(ctx)
			return &Reply{}, nil
		}))

	ctx := ContextWithEventID(context.Background(), "fixed-id")
	if _, err := handler.HandleEvent(ctx, testEvent()); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}
	if seen != "fixed-id" {
		t.Errorf("event id = %q, want fixed-id", seen)
	}
}
