package dialog

// State names a node in the menu graph.
type State string

const (
	// Top-level menus.
	StateMain         State = "main_menu"
	StateEmployee     State = "employee_menu"
	StateCustomerPick State = "customer_pick"
	StateCustomerMenu State = "customer_menu"
	StateAutoload     State = "autoload_menu"

	// Statistics wizard.
	StateStatsPeriod   State = "stats_period"
	StateStatsDateFrom State = "stats_date_from"
	StateStatsDateTo   State = "stats_date_to"
	StateStatsConfirm  State = "stats_confirm"

	// Add-customer wizard, one state per collected field.
	StateAddTitle        State = "add_title"
	StateAddAccountID    State = "add_account_id"
	StateAddClientID     State = "add_client_id"
	StateAddClientSecret State = "add_client_secret"
	StateAddChatWith     State = "add_chat_with"
	StateAddChatAbout    State = "add_chat_about"
	StateAddDocLink      State = "add_doc_link"
	StateAddConfirm      State = "add_confirm"

	// Delete and edit flows.
	StateDeletePick    State = "delete_pick"
	StateDeleteConfirm State = "delete_confirm"
	StateEditPick      State = "edit_pick"
	StateEditField     State = "edit_field"
	StateEditValue     State = "edit_value"

	// Admin management.
	StateAdminMenu       State = "admin_menu"
	StateAdminAddName    State = "admin_add_name"
	StateAdminAddID      State = "admin_add_id"
	StateAdminDeletePick State = "admin_delete_pick"
)

// Data-bag keys. Wizard keys are grouped so back-navigation can prune a
// whole subtree at once.
const (
	bagCustomer = "customer"

	bagStatsPeriod   = "stats_period"
	bagStatsDateFrom = "stats_date_from"
	bagStatsDateTo   = "stats_date_to"

	bagEditField = "edit_field"

	bagAdminName = "admin_name"

	// draftPrefix namespaces the add-customer draft inside the bag.
	draftPrefix = "draft_"
)

// parents declares the single back edge of every node.
var parents = map[State]State{
	StateMain:         StateMain,
	StateEmployee:     StateMain,
	StateCustomerPick: StateEmployee,
	StateCustomerMenu: StateCustomerPick,
	StateAutoload:     StateCustomerMenu,

	StateStatsPeriod:   StateCustomerMenu,
	StateStatsDateFrom: StateCustomerMenu,
	StateStatsDateTo:   StateCustomerMenu,
	StateStatsConfirm:  StateCustomerMenu,

	StateAddTitle:        StateEmployee,
	StateAddAccountID:    StateEmployee,
	StateAddClientID:     StateEmployee,
	StateAddClientSecret: StateEmployee,
	StateAddChatWith:     StateEmployee,
	StateAddChatAbout:    StateEmployee,
	StateAddDocLink:      StateEmployee,
	StateAddConfirm:      StateEmployee,

	StateDeletePick:    StateEmployee,
	StateDeleteConfirm: StateDeletePick,
	StateEditPick:      StateEmployee,
	StateEditField:     StateEditPick,
	StateEditValue:     StateEditPick,

	StateAdminMenu:       StateEmployee,
	StateAdminAddName:    StateAdminMenu,
	StateAdminAddID:      StateAdminMenu,
	StateAdminDeletePick: StateAdminMenu,
}

// parent returns the declared back target of a state.
func parent(s State) State {
	if p, ok := parents[s]; ok {
		return p
	}
	return StateMain
}

// prunedKeys lists the bag keys owned by the subtree below each state.
// Going back from a state drops exactly these keys, so a parent menu
// never sees values collected by an abandoned child flow.
var prunedKeys = map[State][]string{
	StateCustomerMenu: {bagCustomer, bagStatsPeriod, bagStatsDateFrom, bagStatsDateTo},

	StateStatsPeriod:   {bagStatsPeriod, bagStatsDateFrom, bagStatsDateTo},
	StateStatsDateFrom: {bagStatsPeriod, bagStatsDateFrom, bagStatsDateTo},
	StateStatsDateTo:   {bagStatsPeriod, bagStatsDateFrom, bagStatsDateTo},
	StateStatsConfirm:  {bagStatsPeriod, bagStatsDateFrom, bagStatsDateTo},

	StateDeletePick:    {bagCustomer},
	StateDeleteConfirm: {bagCustomer},

	StateEditPick:  {bagCustomer, bagEditField},
	StateEditField: {bagCustomer, bagEditField},
	StateEditValue: {bagEditField},

	StateAdminMenu:       {bagAdminName},
	StateAdminAddName:    {bagAdminName},
	StateAdminAddID:      {bagAdminName},
	StateAdminDeletePick: {bagAdminName},
}

// goBack moves the session to the declared parent of its current state
// and prunes the child subtree's bag keys. Add-wizard states always drop
// the whole draft.
func goBack(s *session) {
	for _, key := range prunedKeys[s.State] {
		delete(s.Bag, key)
	}
	if isAddState(s.State) {
		clearDraft(s.Bag)
	}
	s.State = parent(s.State)
}

// isAddState reports whether s belongs to the add-customer wizard.
func isAddState(s State) bool {
	switch s {
	case StateAddTitle, StateAddAccountID, StateAddClientID, StateAddClientSecret,
		StateAddChatWith, StateAddChatAbout, StateAddDocLink, StateAddConfirm:
		return true
	}
	return false
}
