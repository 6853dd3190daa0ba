package dialog

import (
	"fmt"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/transport"
)

// Callback data values carried by menu buttons.
const (
	cbEmployee       = "employee"
	cbCustomers      = "customers"
	cbAddCustomer    = "add_customer"
	cbDeleteCustomer = "delete_customer"
	cbEditCustomer   = "edit_customer"
	cbAdmin          = "admin"
	cbAdminAdd       = "admin_add"
	cbAdminDelete    = "admin_delete"
	cbStats          = "stats"
	cbAutoload       = "autoload"
	cbFeedLink       = "feed_link"
	cbFeedUpdate     = "feed_update"
	cbFeedDelete     = "feed_delete"
	cbReport         = "report"
	cbBack           = "back"
	cbClose          = "close"
	cbYes            = "yes"
	cbNo             = "no"
)

// Menus are rendered by pure functions of the current collaborator data.
// Nothing here caches button lists between calls, so a freshly added
// customer shows up the next time its menu renders.

func backRow() []transport.Button {
	return []transport.Button{{Label: "Back", Data: cbBack}}
}

func yesNoRows() [][]transport.Button {
	return [][]transport.Button{
		{{Label: "Yes", Data: cbYes}, {Label: "No", Data: cbNo}},
	}
}

// listRows renders one button per row, each carrying its label as data,
// followed by a back row.
func listRows(labels []string) [][]transport.Button {
	rows := make([][]transport.Button, 0, len(labels)+1)
	for _, l := range labels {
		rows = append(rows, []transport.Button{{Label: l, Data: l}})
	}
	return append(rows, backRow())
}

func renderMain() *transport.Reply {
	return &transport.Reply{
		Text: "Main menu.",
		Buttons: [][]transport.Button{
			{{Label: "Employee menu", Data: cbEmployee}},
			{{Label: "Close", Data: cbClose}},
		},
	}
}

func renderEmployee() *transport.Reply {
	return &transport.Reply{
		Text: "Employee menu. Choose an action:",
		Buttons: [][]transport.Button{
			{{Label: "Customers", Data: cbCustomers}},
			{{Label: "Add customer", Data: cbAddCustomer}},
			{{Label: "Edit customer", Data: cbEditCustomer}},
			{{Label: "Delete customer", Data: cbDeleteCustomer}},
			{{Label: "Admin menu", Data: cbAdmin}},
			backRow(),
		},
	}
}

func renderCustomerPick(titles []string) *transport.Reply {
	return &transport.Reply{
		Text:    "Choose a customer:",
		Buttons: listRows(titles),
	}
}

// renderCustomerMenu shows per-customer actions plus link buttons built
// from the stored record.
func renderCustomerMenu(c *api.Customer) *transport.Reply {
	rows := [][]transport.Button{
		{{Label: "Statistics", Data: cbStats}},
		{{Label: "Autoload", Data: cbAutoload}},
	}
	if c.ChatWithLink != "" {
		rows = append(rows, []transport.Button{{Label: "Chat with client", URL: c.ChatWithLink}})
	}
	if c.ChatAboutLink != "" {
		rows = append(rows, []transport.Button{{Label: "Chat about client", URL: c.ChatAboutLink}})
	}
	if c.DocLink != "" {
		rows = append(rows, []transport.Button{{Label: "Document", URL: c.DocLink}})
	}
	rows = append(rows, backRow())

	return &transport.Reply{
		Text:    fmt.Sprintf("Customer %s. Choose an action:", c.Title),
		Buttons: rows,
	}
}

func renderAutoload(title string) *transport.Reply {
	return &transport.Reply{
		Text: fmt.Sprintf("Autoload for %s. Choose an action:", title),
		Buttons: [][]transport.Button{
			{{Label: "Feed link", Data: cbFeedLink}},
			{{Label: "Update feed", Data: cbFeedUpdate}},
			{{Label: "Delete feed", Data: cbFeedDelete}},
			{{Label: "Last report", Data: cbReport}},
			backRow(),
		},
	}
}

func renderStatsPeriod() *transport.Reply {
	return &transport.Reply{
		Text: "Choose the aggregation period:",
		Buttons: [][]transport.Button{
			{{Label: "Day", Data: "day"}, {Label: "Week", Data: "week"}, {Label: "Month", Data: "month"}},
			backRow(),
		},
	}
}

func renderDatePrompt(which string) *transport.Reply {
	return &transport.Reply{
		Text:    fmt.Sprintf("Enter the %s date (YYYY-MM-DD):", which),
		Buttons: [][]transport.Button{backRow()},
	}
}

func renderStatsConfirm(bag map[string]string) *transport.Reply {
	return &transport.Reply{
		Text: fmt.Sprintf("Statistics from %s to %s grouped by %s. Fetch?",
			bag[bagStatsDateFrom], bag[bagStatsDateTo], bag[bagStatsPeriod]),
		Buttons: yesNoRows(),
	}
}

// addPrompts maps each add-wizard state to the prompt for its field.
var addPrompts = map[State]string{
	StateAddTitle:        "Enter the customer's title:",
	StateAddAccountID:    "Enter the Avito account id:",
	StateAddClientID:     "Enter the client id:",
	StateAddClientSecret: "Enter the client secret:",
	StateAddChatWith:     "Enter the link to the chat with the client:",
	StateAddChatAbout:    "Enter the link to the chat about the client:",
	StateAddDocLink:      "Enter the link to the customer's document:",
}

func renderAddPrompt(s State) *transport.Reply {
	return &transport.Reply{
		Text:    addPrompts[s],
		Buttons: [][]transport.Button{backRow()},
	}
}

func renderAddConfirm(bag map[string]string) *transport.Reply {
	return &transport.Reply{
		Text:    "Is the entered data correct?\n\n" + draftSummary(bag),
		Buttons: yesNoRows(),
	}
}

func renderDeletePick(titles []string) *transport.Reply {
	return &transport.Reply{
		Text:    "Choose the customer to delete:",
		Buttons: listRows(titles),
	}
}

func renderDeleteConfirm(title string) *transport.Reply {
	return &transport.Reply{
		Text:    fmt.Sprintf("Delete customer %s? The cached token is dropped with the record.", title),
		Buttons: yesNoRows(),
	}
}

func renderEditPick(titles []string) *transport.Reply {
	return &transport.Reply{
		Text:    "Choose the customer to edit:",
		Buttons: listRows(titles),
	}
}

func renderEditField(c *api.Customer) *transport.Reply {
	rows := make([][]transport.Button, 0, len(api.CustomerFields)+1)
	for _, f := range api.CustomerFields {
		label := fmt.Sprintf("%s: %s", f.Label(), c.Get(f))
		rows = append(rows, []transport.Button{{Label: label, Data: string(f)}})
	}
	rows = append(rows, backRow())

	return &transport.Reply{
		Text:    "Choose the field to edit:",
		Buttons: rows,
	}
}

func renderEditValue(f api.CustomerField) *transport.Reply {
	return &transport.Reply{
		Text:    fmt.Sprintf("Enter the new value for %s:", f.Label()),
		Buttons: [][]transport.Button{backRow()},
	}
}

func renderAdminMenu() *transport.Reply {
	return &transport.Reply{
		Text: "Admin menu. Choose an action:",
		Buttons: [][]transport.Button{
			{{Label: "Add admin", Data: cbAdminAdd}},
			{{Label: "Delete admin", Data: cbAdminDelete}},
			backRow(),
		},
	}
}

func renderAdminAddName() *transport.Reply {
	return &transport.Reply{
		Text:    "Enter the new admin's name:",
		Buttons: [][]transport.Button{backRow()},
	}
}

func renderAdminAddID() *transport.Reply {
	return &transport.Reply{
		Text:    "Enter the new admin's chat id:",
		Buttons: [][]transport.Button{backRow()},
	}
}

func renderAdminDeletePick(names []string) *transport.Reply {
	return &transport.Reply{
		Text:    "Choose the admin to delete:",
		Buttons: listRows(names),
	}
}

func textReply(format string, args ...any) *transport.Reply {
	return &transport.Reply{Text: fmt.Sprintf(format, args...)}
}
