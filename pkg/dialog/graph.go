package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/avito"
	"github.com/sellerdesk/sellerdesk/pkg/export"
	"github.com/sellerdesk/sellerdesk/pkg/feed"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
	"github.com/sellerdesk/sellerdesk/pkg/transport"
)

type transitionKey struct {
	state State
	kind  transport.EventKind
}

type handlerFunc func(e *Engine, ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error)

// transitions is the whole dialog graph. A (state, event kind) pair with
// no entry means the event is ignored and the current menu is re-sent.
var transitions = map[transitionKey]handlerFunc{
	{StateMain, transport.KindMessage}:  (*Engine).showCurrent,
	{StateMain, transport.KindCallback}: (*Engine).mainCallback,

	{StateEmployee, transport.KindCallback}: (*Engine).employeeCallback,

	{StateCustomerPick, transport.KindCallback}: (*Engine).customerPickCallback,
	{StateCustomerMenu, transport.KindCallback}: (*Engine).customerMenuCallback,
	{StateAutoload, transport.KindCallback}:     (*Engine).autoloadCallback,

	{StateStatsPeriod, transport.KindCallback}:   (*Engine).statsPeriodCallback,
	{StateStatsDateFrom, transport.KindMessage}:  (*Engine).statsDateFrom,
	{StateStatsDateFrom, transport.KindCallback}: (*Engine).statsDateFrom,
	{StateStatsDateTo, transport.KindMessage}:    (*Engine).statsDateTo,
	{StateStatsDateTo, transport.KindCallback}:   (*Engine).statsDateTo,
	{StateStatsConfirm, transport.KindCallback}:  (*Engine).statsConfirmCallback,

	{StateAddTitle, transport.KindMessage}:         (*Engine).addStep,
	{StateAddTitle, transport.KindCallback}:        (*Engine).backOnly,
	{StateAddAccountID, transport.KindMessage}:     (*Engine).addStep,
	{StateAddAccountID, transport.KindCallback}:    (*Engine).backOnly,
	{StateAddClientID, transport.KindMessage}:      (*Engine).addStep,
	{StateAddClientID, transport.KindCallback}:     (*Engine).backOnly,
	{StateAddClientSecret, transport.KindMessage}:  (*Engine).addStep,
	{StateAddClientSecret, transport.KindCallback}: (*Engine).backOnly,
	{StateAddChatWith, transport.KindMessage}:      (*Engine).addStep,
	{StateAddChatWith, transport.KindCallback}:     (*Engine).backOnly,
	{StateAddChatAbout, transport.KindMessage}:     (*Engine).addStep,
	{StateAddChatAbout, transport.KindCallback}:    (*Engine).backOnly,
	{StateAddDocLink, transport.KindMessage}:       (*Engine).addStep,
	{StateAddDocLink, transport.KindCallback}:      (*Engine).backOnly,
	{StateAddConfirm, transport.KindCallback}:      (*Engine).addConfirmCallback,

	{StateDeletePick, transport.KindCallback}:    (*Engine).deletePickCallback,
	{StateDeleteConfirm, transport.KindCallback}: (*Engine).deleteConfirmCallback,

	{StateEditPick, transport.KindCallback}:  (*Engine).editPickCallback,
	{StateEditField, transport.KindCallback}: (*Engine).editFieldCallback,
	{StateEditValue, transport.KindMessage}:  (*Engine).editValueMessage,
	{StateEditValue, transport.KindCallback}: (*Engine).backOnly,

	{StateAdminMenu, transport.KindCallback}:       (*Engine).adminMenuCallback,
	{StateAdminAddName, transport.KindMessage}:     (*Engine).adminAddName,
	{StateAdminAddName, transport.KindCallback}:    (*Engine).backOnly,
	{StateAdminAddID, transport.KindMessage}:       (*Engine).adminAddID,
	{StateAdminAddID, transport.KindCallback}:      (*Engine).backOnly,
	{StateAdminDeletePick, transport.KindCallback}: (*Engine).adminDeletePickCallback,
}

// showCurrent re-sends the menu for the current state without moving.
func (e *Engine) showCurrent(ctx context.Context, s *session, _ *transport.Event) (*transport.Reply, error) {
	return e.render(ctx, s)
}

// backOnly handles callbacks in text-entry states, where the only button
// is Back. Any other callback payload re-renders the prompt.
func (e *Engine) backOnly(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
	}
	return e.render(ctx, s)
}

func (e *Engine) mainCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbEmployee:
		ok, err := e.isAdmin(ctx, ev.CallerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return textReply("You do not have access to the employee menu."), nil
		}
		s.State = StateEmployee
	case cbClose:
		s.reset()
		return textReply("Menu closed. Send any message to open it again."), nil
	}
	return e.render(ctx, s)
}

func (e *Engine) employeeCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbBack:
		goBack(s)
	case cbCustomers:
		s.State = StateCustomerPick
	case cbAddCustomer:
		clearDraft(s.Bag)
		s.State = StateAddTitle
	case cbEditCustomer:
		s.State = StateEditPick
	case cbDeleteCustomer:
		s.State = StateDeletePick
	case cbAdmin:
		ok, err := e.isInCharge(ctx, ev.CallerID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return textReply("Only an admin in charge can open the admin menu."), nil
		}
		s.State = StateAdminMenu
	}
	return e.render(ctx, s)
}

func (e *Engine) customerPickCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	c, err := e.lookupCustomer(ctx, ev.Payload)
	if err != nil {
		return nil, err
	}
	s.Bag[bagCustomer] = c.Title
	s.State = StateCustomerMenu
	return renderCustomerMenu(c), nil
}

func (e *Engine) customerMenuCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbBack:
		goBack(s)
	case cbStats:
		s.State = StateStatsPeriod
	case cbAutoload:
		s.State = StateAutoload
	}
	return e.render(ctx, s)
}

// Statistics wizard.

func (e *Engine) statsPeriodCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbBack:
		goBack(s)
	case string(avito.GroupByDay), string(avito.GroupByWeek), string(avito.GroupByMonth):
		s.Bag[bagStatsPeriod] = ev.Payload
		s.State = StateStatsDateFrom
	}
	return e.render(ctx, s)
}

// parseDate accepts ISO dates only; anything else re-prompts.
func parseDate(raw string) (string, *api.Error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return "", api.NewValidationError("date", "enter the date as YYYY-MM-DD")
	}
	return t.Format("2006-01-02"), nil
}

func (e *Engine) statsDateFrom(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	date, verr := parseDate(ev.Payload)
	if verr != nil {
		return nil, verr
	}
	s.Bag[bagStatsDateFrom] = date
	s.State = StateStatsDateTo
	return e.render(ctx, s)
}

func (e *Engine) statsDateTo(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	date, verr := parseDate(ev.Payload)
	if verr != nil {
		return nil, verr
	}
	if date < s.Bag[bagStatsDateFrom] {
		return nil, api.NewValidationError("date", "the end date must not be before the start date")
	}
	s.Bag[bagStatsDateTo] = date
	s.State = StateStatsConfirm
	return e.render(ctx, s)
}

func (e *Engine) statsConfirmCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbNo, cbBack:
		goBack(s)
		return e.render(ctx, s)
	case cbYes:
		reply, err := e.runStats(ctx, s)
		if err != nil {
			return nil, err
		}
		goBack(s)
		return reply, nil
	}
	return e.render(ctx, s)
}

// runStats fetches listing statistics for the picked customer and turns
// them into either a workbook attachment or a plain message when there is
// nothing to export.
func (e *Engine) runStats(ctx context.Context, s *session) (*transport.Reply, error) {
	title := s.customer()
	ids, err := e.upstream.ListItemIDs(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return textReply("Customer %s has no listings.", title), nil
	}

	items, err := e.upstream.FetchStats(ctx, title,
		s.Bag[bagStatsDateFrom], s.Bag[bagStatsDateTo], ids, avito.Grouping(s.Bag[bagStatsPeriod]))
	if err != nil {
		return nil, err
	}

	book, err := export.Workbook(items)
	if errors.Is(err, export.ErrNoData) {
		return textReply("No statistics for %s between %s and %s.",
			title, s.Bag[bagStatsDateFrom], s.Bag[bagStatsDateTo]), nil
	}
	if err != nil {
		return nil, api.NewPersistenceError(fmt.Sprintf("building workbook: %v", err))
	}

	return &transport.Reply{
		Text: fmt.Sprintf("Statistics for %s, %s to %s.", title, s.Bag[bagStatsDateFrom], s.Bag[bagStatsDateTo]),
		File: &transport.FileAttachment{
			Name:    title + ".xlsx",
			Content: book,
		},
	}, nil
}

// Add-customer wizard.

var addSteps = map[State]struct {
	field api.CustomerField
	next  State
}{
	StateAddTitle:        {api.FieldTitle, StateAddAccountID},
	StateAddAccountID:    {api.FieldAccountID, StateAddClientID},
	StateAddClientID:     {api.FieldClientID, StateAddClientSecret},
	StateAddClientSecret: {api.FieldClientSecret, StateAddChatWith},
	StateAddChatWith:     {api.FieldChatWith, StateAddChatAbout},
	StateAddChatAbout:    {api.FieldChatAbout, StateAddDocLink},
	StateAddDocLink:      {api.FieldDocLink, StateAddConfirm},
}

func (e *Engine) addStep(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	step := addSteps[s.State]

	var existing []string
	if step.field == api.FieldTitle {
		titles, err := e.store.ListCustomerTitles(ctx)
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("listing customers: %v", err))
		}
		existing = titles
	}
	if verr := api.ValidateCustomerField(step.field, ev.Payload, existing); verr != nil {
		return nil, verr
	}

	setDraft(s.Bag, step.field, ev.Payload)
	s.State = step.next
	return e.render(ctx, s)
}

func (e *Engine) addConfirmCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbBack:
		goBack(s)
		return e.render(ctx, s)
	case cbNo:
		// Start over with a clean draft.
		clearDraft(s.Bag)
		s.State = StateAddTitle
		return e.render(ctx, s)
	case cbYes:
		c, verr := buildDraft(s.Bag)
		if verr != nil {
			return nil, verr
		}
		err := e.store.InsertCustomer(ctx, c)
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewValidationError(string(api.FieldTitle), "a customer with this title or account id already exists")
		}
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("inserting customer: %v", err))
		}
		goBack(s)
		return textReply("Customer %s added.", c.Title), nil
	}
	return e.render(ctx, s)
}

func (e *Engine) deletePickCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	c, err := e.lookupCustomer(ctx, ev.Payload)
	if err != nil {
		return nil, err
	}
	s.Bag[bagCustomer] = c.Title
	s.State = StateDeleteConfirm
	return renderDeleteConfirm(c.Title), nil
}

func (e *Engine) deleteConfirmCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbNo, cbBack:
		goBack(s)
		return e.render(ctx, s)
	case cbYes:
		title := s.customer()
		err := e.store.DeleteCustomer(ctx, title)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, api.NewNotFoundError("customer " + title + " no longer exists")
		}
		if err != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("deleting customer: %v", err))
		}
		delete(s.Bag, bagCustomer)
		s.State = StateEmployee
		return textReply("Customer %s deleted.", title), nil
	}
	return e.render(ctx, s)
}

// Edit wizard.

func (e *Engine) editPickCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	c, err := e.lookupCustomer(ctx, ev.Payload)
	if err != nil {
		return nil, err
	}
	s.Bag[bagCustomer] = c.Title
	s.State = StateEditField
	return renderEditField(c), nil
}

func (e *Engine) editFieldCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	f := api.CustomerField(ev.Payload)
	if !knownField(f) {
		return e.render(ctx, s)
	}
	s.Bag[bagEditField] = string(f)
	s.State = StateEditValue
	return renderEditValue(f), nil
}

// editValueMessage validates the new value, then replaces the record with
// a delete-then-insert keyed on the old title, account id, and client id.
// When the old record is gone (edited concurrently or deleted) nothing is
// written and the operator is told to retry.
func (e *Engine) editValueMessage(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	f := api.CustomerField(s.Bag[bagEditField])
	old, err := e.lookupCustomer(ctx, s.customer())
	if err != nil {
		return nil, err
	}

	var existing []string
	if f == api.FieldTitle {
		titles, lerr := e.store.ListCustomerTitles(ctx)
		if lerr != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("listing customers: %v", lerr))
		}
		for _, t := range titles {
			if t != old.Title {
				existing = append(existing, t)
			}
		}
	}
	if verr := api.ValidateCustomerField(f, ev.Payload, existing); verr != nil {
		return nil, verr
	}

	updated := applyField(old, f, ev.Payload)

	removed, err := e.store.DeleteCustomerIf(ctx, old.Title, old.AccountID, old.ClientID)
	if err != nil {
		return nil, api.NewPersistenceError(fmt.Sprintf("replacing customer: %v", err))
	}
	if !removed {
		return nil, api.NewNotFoundError("the customer record changed while editing; pick it again")
	}
	if err := e.store.InsertCustomer(ctx, updated); err != nil {
		// Put the old record back so a failed insert never loses data.
		if rerr := e.store.InsertCustomer(ctx, old); rerr != nil {
			return nil, api.NewPersistenceError(fmt.Sprintf("restoring customer after failed update: %v", rerr))
		}
		if errors.Is(err, storage.ErrConflict) {
			return nil, api.NewValidationError(string(f), "the new value conflicts with another customer")
		}
		return nil, api.NewPersistenceError(fmt.Sprintf("updating customer: %v", err))
	}

	s.Bag[bagCustomer] = updated.Title
	delete(s.Bag, bagEditField)
	s.State = StateEditPick
	return textReply("Updated %s for %s.", f.Label(), updated.Title), nil
}

func knownField(f api.CustomerField) bool {
	for _, known := range api.CustomerFields {
		if known == f {
			return true
		}
	}
	return false
}

// Admin management.

func (e *Engine) adminMenuCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	switch ev.Payload {
	case cbBack:
		goBack(s)
	case cbAdminAdd:
		s.State = StateAdminAddName
	case cbAdminDelete:
		s.State = StateAdminDeletePick
	}
	return e.render(ctx, s)
}

func (e *Engine) adminAddName(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == "" {
		return nil, api.NewValidationError("admin_name", "must not be empty")
	}
	s.Bag[bagAdminName] = ev.Payload
	s.State = StateAdminAddID
	return e.render(ctx, s)
}

func (e *Engine) adminAddID(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	id, verr := api.ValidateNumericID("admin_id", ev.Payload)
	if verr != nil {
		return nil, verr
	}
	name := s.Bag[bagAdminName]
	err := e.store.InsertAdmin(ctx, &api.Admin{ID: id, Name: name})
	if errors.Is(err, storage.ErrConflict) {
		return nil, api.NewValidationError("admin_id", "an admin with this id or name already exists")
	}
	if err != nil {
		return nil, api.NewPersistenceError(fmt.Sprintf("inserting admin: %v", err))
	}
	delete(s.Bag, bagAdminName)
	s.State = StateAdminMenu
	return textReply("Admin %s added.", name), nil
}

func (e *Engine) adminDeletePickCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	if ev.Payload == cbBack {
		goBack(s)
		return e.render(ctx, s)
	}
	removed, err := e.store.DeleteAdminByName(ctx, ev.Payload)
	if err != nil {
		return nil, api.NewPersistenceError(fmt.Sprintf("deleting admin: %v", err))
	}
	if !removed {
		return nil, api.NewValidationError("admin_name", "this admin cannot be removed")
	}
	goBack(s)
	return textReply("Admin %s removed.", ev.Payload), nil
}

// Autoload menu.

func (e *Engine) autoloadCallback(ctx context.Context, s *session, ev *transport.Event) (*transport.Reply, error) {
	title := s.customer()
	switch ev.Payload {
	case cbBack:
		goBack(s)
		return e.render(ctx, s)
	case cbFeedLink:
		link, err := e.feed.FeedURL(ctx, title)
		if api.IsType(err, api.ErrorTypeNotFound) {
			return textReply("Customer %s has no feed on the feed host.", title), nil
		}
		if err != nil {
			return nil, err
		}
		return textReply("Feed link for %s: %s", title, link), nil
	case cbFeedUpdate:
		data, err := e.drive.Download(ctx, feed.FileName(title))
		if api.IsType(err, api.ErrorTypeNotFound) {
			return textReply("No file named %s in the drive folder.", feed.FileName(title)), nil
		}
		if err != nil {
			return nil, err
		}
		if err := e.feed.UpdateFeed(ctx, title, data); err != nil {
			return nil, err
		}
		return textReply("Feed for %s updated.", title), nil
	case cbFeedDelete:
		result, err := e.feed.DeleteFeed(ctx, title)
		if err != nil {
			return nil, err
		}
		return textReply("Feed for %s deleted: %s", title, result), nil
	case cbReport:
		report, err := e.upstream.FetchLastReport(ctx, title)
		if err != nil {
			return nil, err
		}
		return textReply("%s", avito.FormatReport(report)), nil
	}
	return e.render(ctx, s)
}
