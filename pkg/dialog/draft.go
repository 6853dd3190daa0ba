package dialog

import (
	"strconv"
	"strings"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

// The add-customer draft lives in the data bag under draft-prefixed keys.
// Values only enter the draft after passing their field predicate, and
// nothing is persisted until the confirm gate commits the whole record,
// so cancelling a wizard never leaves partial state visible elsewhere.

// setDraft stores a validated field value in the draft.
func setDraft(bag map[string]string, f api.CustomerField, value string) {
	bag[draftPrefix+string(f)] = value
}

// getDraft reads a field value from the draft.
func getDraft(bag map[string]string, f api.CustomerField) string {
	return bag[draftPrefix+string(f)]
}

// clearDraft removes every draft key from the bag.
func clearDraft(bag map[string]string) {
	for key := range bag {
		if strings.HasPrefix(key, draftPrefix) {
			delete(bag, key)
		}
	}
}

// buildDraft assembles the pending customer record from the draft keys.
// It assumes each value already passed its predicate when collected.
func buildDraft(bag map[string]string) (*api.Customer, *api.Error) {
	accountID, err := strconv.ParseInt(getDraft(bag, api.FieldAccountID), 10, 64)
	if err != nil {
		return nil, api.NewValidationError(string(api.FieldAccountID), "draft is incomplete")
	}

	c := &api.Customer{
		Title:         getDraft(bag, api.FieldTitle),
		AccountID:     accountID,
		ClientID:      getDraft(bag, api.FieldClientID),
		ClientSecret:  getDraft(bag, api.FieldClientSecret),
		ChatWithLink:  getDraft(bag, api.FieldChatWith),
		ChatAboutLink: getDraft(bag, api.FieldChatAbout),
		DocLink:       getDraft(bag, api.FieldDocLink),
	}
	if c.Title == "" || c.ClientID == "" || c.ClientSecret == "" {
		return nil, api.NewValidationError(string(api.FieldTitle), "draft is incomplete")
	}
	return c, nil
}

// draftSummary renders the collected draft for the confirm prompt.
func draftSummary(bag map[string]string) string {
	var b strings.Builder
	for _, f := range api.CustomerFields {
		b.WriteString(f.Label())
		b.WriteString(": ")
		b.WriteString(getDraft(bag, f))
		b.WriteString("\n")
	}
	return b.String()
}

// applyField returns a copy of c with field f replaced by value. The
// original record is left untouched so a failed persist cannot corrupt
// the loaded state.
func applyField(c *api.Customer, f api.CustomerField, value string) *api.Customer {
	next := *c
	switch f {
	case api.FieldTitle:
		next.Title = value
	case api.FieldAccountID:
		// Validated upstream; a parse failure here would be a programming error.
		id, _ := strconv.ParseInt(value, 10, 64)
		next.AccountID = id
	case api.FieldClientID:
		next.ClientID = value
	case api.FieldClientSecret:
		next.ClientSecret = value
	case api.FieldChatWith:
		next.ChatWithLink = value
	case api.FieldChatAbout:
		next.ChatAboutLink = value
	case api.FieldDocLink:
		next.DocLink = value
	}
	return &next
}
