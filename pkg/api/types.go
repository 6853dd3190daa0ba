package api

// Customer is a managed seller account on the upstream marketplace.
// Title is the unique display name operators pick records by; AccountID
// is the upstream account identifier and the key cached tokens hang off.
type Customer struct {
	Title         string
	AccountID     int64
	ClientID      string
	ClientSecret  string
	ChatWithLink  string
	ChatAboutLink string
	DocLink       string
}

// Admin is an operator allowed to use the employee menu. InCharge admins
// additionally gate the admin-management menu and cannot be deleted.
type Admin struct {
	ID       int64
	Name     string
	InCharge bool
}

// Credentials are the OAuth client-credentials of one upstream account.
type Credentials struct {
	AccountID    int64
	ClientID     string
	ClientSecret string
}

// CustomerField names one editable field of a Customer record. The values
// double as data-bag keys in the edit wizard.
type CustomerField string

const (
	FieldTitle        CustomerField = "title"
	FieldAccountID    CustomerField = "account_id"
	FieldClientID     CustomerField = "client_id"
	FieldClientSecret CustomerField = "client_secret"
	FieldChatWith     CustomerField = "chat_with_link"
	FieldChatAbout    CustomerField = "chat_about_link"
	FieldDocLink      CustomerField = "doc_link"
)

// CustomerFields lists the editable fields in menu order.
var CustomerFields = []CustomerField{
	FieldTitle,
	FieldAccountID,
	FieldClientID,
	FieldClientSecret,
	FieldChatWith,
	FieldChatAbout,
	FieldDocLink,
}

// Label returns the operator-facing name of a field.
func (f CustomerField) Label() string {
	switch f {
	case FieldTitle:
		return "Title"
	case FieldAccountID:
		return "Avito ID"
	case FieldClientID:
		return "Client ID"
	case FieldClientSecret:
		return "Client Secret"
	case FieldChatWith:
		return "Chat with client"
	case FieldChatAbout:
		return "Chat about client"
	case FieldDocLink:
		return "Document link"
	}
	return string(f)
}

// Get returns the value of field f on c.
func (c *Customer) Get(f CustomerField) string {
	switch f {
	case FieldTitle:
		return c.Title
	case FieldAccountID:
		return formatInt(c.AccountID)
	case FieldClientID:
		return c.ClientID
	case FieldClientSecret:
		return c.ClientSecret
	case FieldChatWith:
		return c.ChatWithLink
	case FieldChatAbout:
		return c.ChatAboutLink
	case FieldDocLink:
		return c.DocLink
	}
	return ""
}
