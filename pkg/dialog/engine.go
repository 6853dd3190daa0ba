package dialog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/avito"
	"github.com/sellerdesk/sellerdesk/pkg/drive"
	"github.com/sellerdesk/sellerdesk/pkg/feed"
	"github.com/sellerdesk/sellerdesk/pkg/observability"
	"github.com/sellerdesk/sellerdesk/pkg/sessions"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
	"github.com/sellerdesk/sellerdesk/pkg/transport"
)

// UpstreamClient is the slice of the marketplace client the dialog needs.
type UpstreamClient interface {
	ListItemIDs(ctx context.Context, title string) ([]int64, error)
	FetchStats(ctx context.Context, title, dateFrom, dateTo string, itemIDs []int64, grouping avito.Grouping) ([]avito.ItemStats, error)
	FetchLastReport(ctx context.Context, title string) (*avito.Report, error)
}

// FeedService manages per-customer autoload feed files on the feed host.
type FeedService interface {
	FeedURL(ctx context.Context, title string) (string, error)
	UpdateFeed(ctx context.Context, title string, data []byte) error
	DeleteFeed(ctx context.Context, title string) (string, error)
}

// DriveService fetches feed sources from the shared drive folder.
type DriveService interface {
	Download(ctx context.Context, name string) ([]byte, error)
}

var (
	_ UpstreamClient = (*avito.Client)(nil)
	_ FeedService    = (*feed.Client)(nil)
	_ DriveService   = (*drive.Client)(nil)
)

// Engine drives the operator dialog. Events for the same session key are
// processed strictly one at a time, in arrival order; events for
// different sessions run concurrently.
type Engine struct {
	sessions sessions.Store
	store    storage.Store
	upstream UpstreamClient
	feed     FeedService
	drive    DriveService
	logger   *slog.Logger

	locks *keyedMutex
}

var _ transport.EventHandler = (*Engine)(nil)

func NewEngine(sess sessions.Store, store storage.Store, upstream UpstreamClient, feedSvc FeedService, driveSvc DriveService, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		sessions: sess,
		store:    store,
		upstream: upstream,
		feed:     feedSvc,
		drive:    driveSvc,
		logger:   logger,
		locks:    newKeyedMutex(),
	}
}

// HandleEvent looks up the transition for the session's current state and
// the event kind, runs it, and persists the resulting session. Events
// with no registered transition re-render the current menu unchanged.
//
// The per-session lock is held for the whole event, including upstream
// calls made by confirm steps, so a session never observes interleaved
// state changes.
func (e *Engine) HandleEvent(ctx context.Context, ev *transport.Event) (*transport.Reply, error) {
	if ev.SessionKey == "" {
		return nil, api.NewValidationError("session_key", "must not be empty")
	}

	e.locks.Lock(ev.SessionKey)
	defer e.locks.Unlock(ev.SessionKey)

	s, err := e.loadSession(ctx, ev.SessionKey)
	if err != nil {
		return nil, err
	}
	from := s.State

	var reply *transport.Reply
	outcome := "ok"
	h, ok := transitions[transitionKey{state: from, kind: ev.Kind}]
	if !ok {
		outcome = "ignored"
		reply, err = e.render(ctx, s)
	} else {
		reply, err = h(e, ctx, s, ev)
	}

	if err != nil {
		if msg, handled := userMessage(err); handled {
			// The session is not persisted, so a failed step leaves the
			// dialog exactly where it was.
			observability.DialogEventsTotal.WithLabelValues(string(from), "rejected").Inc()
			e.logger.InfoContext(ctx, "dialog event rejected",
				slog.String("session", ev.SessionKey),
				slog.String("state", string(from)),
				slog.String("reason", msg))
			return textReply("%s", msg), nil
		}
		observability.DialogEventsTotal.WithLabelValues(string(from), "error").Inc()
		return nil, err
	}

	if err := e.sessions.Put(ctx, s.toStored()); err != nil {
		observability.DialogEventsTotal.WithLabelValues(string(from), "error").Inc()
		return nil, api.NewPersistenceError(fmt.Sprintf("saving session: %v", err))
	}

	observability.DialogEventsTotal.WithLabelValues(string(from), outcome).Inc()
	e.logger.DebugContext(ctx, "dialog event handled",
		slog.String("session", ev.SessionKey),
		slog.String("from", string(from)),
		slog.String("to", string(s.State)))
	return reply, nil
}

func (e *Engine) loadSession(ctx context.Context, key string) (*session, error) {
	stored, err := e.sessions.Get(ctx, key)
	if errors.Is(err, sessions.ErrNotFound) {
		return newSession(key), nil
	}
	if err != nil {
		return nil, api.NewPersistenceError(fmt.Sprintf("loading session: %v", err))
	}
	return fromStored(stored), nil
}

// userMessage converts recoverable errors into operator-facing text.
// Anything else propagates to the transport as a server error.
func userMessage(err error) (string, bool) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) {
		return "", false
	}
	switch apiErr.Type {
	case api.ErrorTypeValidation, api.ErrorTypeNotFound:
		return apiErr.Message, true
	case api.ErrorTypeAuthExhausted:
		return "Authorization with the stored credentials failed. Check the client id and secret.", true
	case api.ErrorTypeUpstream:
		return "The marketplace API returned an error. Try again later.", true
	case api.ErrorTypeMalformedResponse:
		return "The marketplace API returned an unexpected response.", true
	}
	return "", false
}

// render produces the menu for the session's current state. Pure in the
// sense that it never mutates the session; collaborator data (titles,
// admin names, customer records) is read fresh on every call.
func (e *Engine) render(ctx context.Context, s *session) (*transport.Reply, error) {
	switch s.State {
	case StateMain:
		return renderMain(), nil
	case StateEmployee:
		return renderEmployee(), nil

	case StateCustomerPick:
		titles, err := e.store.ListCustomerTitles(ctx)
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("listing customers: %v", err))
		}
		return renderCustomerPick(titles), nil
	case StateCustomerMenu:
		c, err := e.lookupCustomer(ctx, s.customer())
		if err != nil {
			return nil, err
		}
		return renderCustomerMenu(c), nil
	case StateAutoload:
		return renderAutoload(s.customer()), nil

	case StateStatsPeriod:
		return renderStatsPeriod(), nil
	case StateStatsDateFrom:
		return renderDatePrompt("start"), nil
	case StateStatsDateTo:
		return renderDatePrompt("end"), nil
	case StateStatsConfirm:
		return renderStatsConfirm(s.Bag), nil

	case StateAddTitle, StateAddAccountID, StateAddClientID, StateAddClientSecret,
		StateAddChatWith, StateAddChatAbout, StateAddDocLink:
		return renderAddPrompt(s.State), nil
	case StateAddConfirm:
		return renderAddConfirm(s.Bag), nil

	case StateDeletePick:
		titles, err := e.store.ListCustomerTitles(ctx)
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("listing customers: %v", err))
		}
		return renderDeletePick(titles), nil
	case StateDeleteConfirm:
		return renderDeleteConfirm(s.customer()), nil
	case StateEditPick:
		titles, err := e.store.ListCustomerTitles(ctx)
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("listing customers: %v", err))
		}
		return renderEditPick(titles), nil
	case StateEditField:
		c, err := e.lookupCustomer(ctx, s.customer())
		if err != nil {
			return nil, err
		}
		return renderEditField(c), nil
	case StateEditValue:
		return renderEditValue(api.CustomerField(s.Bag[bagEditField])), nil

	case StateAdminMenu:
		return renderAdminMenu(), nil
	case StateAdminAddName:
		return renderAdminAddName(), nil
	case StateAdminAddID:
		return renderAdminAddID(), nil
	case StateAdminDeletePick:
		names, err := e.store.ListAdminNames(ctx)
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("listing admins: %v", err))
		}
		return renderAdminDeletePick(names), nil
	}
	return renderMain(), nil
}

func (e *Engine) lookupCustomer(ctx context.Context, title string) (*api.Customer, error) {
	c, err := e.store.GetCustomer(ctx, title)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, api.NewNotFoundError("customer " + title + " no longer exists")
	}
	if err != nil {
		return nil, api.NewPersistenceError(fmt.Sprintf("loading customer: %v", err))
	}
	return c, nil
}

func (e *Engine) isAdmin(ctx context.Context, callerID int64) (bool, error) {
	ids, err := e.store.ListAdminIDs(ctx)
	if err != nil {
		return false, api.NewPersistenceError(fmt.Sprintf("listing admin ids: %v", err))
	}
	return containsID(ids, callerID), nil
}

func (e *Engine) isInCharge(ctx context.Context, callerID int64) (bool, error) {
	ids, err := e.store.ListInChargeAdminIDs(ctx)
	if err != nil {
		return false, api.NewPersistenceError(fmt.Sprintf("listing admin ids: %v", err))
	}
	return containsID(ids, callerID), nil
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
