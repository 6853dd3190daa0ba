package api

import (
	"net/url"
	"strconv"
)

// ValidateNumericID checks that raw is a base-10 integer and returns it.
// Used for upstream account ids and admin chat ids.
func ValidateNumericID(field, raw string) (int64, *Error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, NewValidationError(field, "must be a number")
	}
	return id, nil
}

// ValidateLink checks that raw parses as a URL with both a scheme and a
// host. Bare words and scheme-less strings are rejected.
func ValidateLink(field, raw string) *Error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewValidationError(field, "must be a link")
	}
	return nil
}

// ValidateTitle checks that raw is non-empty and not already taken.
func ValidateTitle(raw string, existing []string) *Error {
	if raw == "" {
		return NewValidationError(string(FieldTitle), "must not be empty")
	}
	for _, t := range existing {
		if t == raw {
			return NewValidationError(string(FieldTitle), "title is already taken")
		}
	}
	return nil
}

// ValidateCustomerField applies the per-field predicate used both when a
// record is created and when a single field is edited. existingTitles is
// consulted only for the title field.
func ValidateCustomerField(f CustomerField, value string, existingTitles []string) *Error {
	switch f {
	case FieldTitle:
		return ValidateTitle(value, existingTitles)
	case FieldAccountID:
		_, err := ValidateNumericID(string(f), value)
		return err
	case FieldChatWith, FieldChatAbout, FieldDocLink:
		return ValidateLink(string(f), value)
	case FieldClientID, FieldClientSecret:
		if value == "" {
			return NewValidationError(string(f), "must not be empty")
		}
		return nil
	}
	return NewValidationError(string(f), "unknown field")
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
