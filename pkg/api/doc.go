// Package api defines the domain types shared across sellerdesk: customer
// and admin records, the error taxonomy, and the field validation
// predicates used by the dialog wizards.
package api
