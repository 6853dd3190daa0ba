package api

import "testing"

func TestValidateNumericID(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "plain number", raw: "4821", want: 4821},
		{name: "letters mixed in", raw: "abc123", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "negative", raw: "-5", wantErr: true},
		{name: "large id", raw: "123456789012", want: 123456789012},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateNumericID("account_id", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ValidateNumericID(%q) = nil error, want error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateNumericID(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ValidateNumericID(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestValidateLink(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "https link", raw: "https://t.me/some_chat"},
		{name: "http link", raw: "http://example.com/doc"},
		{name: "bare word", raw: "hello", wantErr: true},
		{name: "missing scheme", raw: "t.me/some_chat", wantErr: true},
		{name: "scheme only", raw: "https://", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLink("chat_with_link", tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLink(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	existing := []string{"Acme", "Globex"}

	if err := ValidateTitle("Initech", existing); err != nil {
		t.Errorf("fresh title rejected: %v", err)
	}
	if err := ValidateTitle("Acme", existing); err == nil {
		t.Error("duplicate title accepted")
	}
	if err := ValidateTitle("", existing); err == nil {
		t.Error("empty title accepted")
	}
}

func TestValidateCustomerField(t *testing.T) {
	titles := []string{"Acme"}

	tests := []struct {
		name    string
		field   CustomerField
		value   string
		wantErr bool
	}{
		{name: "numeric account id", field: FieldAccountID, value: "99", wantErr: false},
		{name: "non numeric account id", field: FieldAccountID, value: "abc123", wantErr: true},
		{name: "link field rejects word", field: FieldChatWith, value: "nope", wantErr: true},
		{name: "link field accepts url", field: FieldDocLink, value: "https://docs.example.com/x", wantErr: false},
		{name: "duplicate title", field: FieldTitle, value: "Acme", wantErr: true},
		{name: "client id non empty", field: FieldClientID, value: "cid", wantErr: false},
		{name: "client secret empty", field: FieldClientSecret, value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCustomerField(tt.field, tt.value, titles)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCustomerField(%s, %q) error = %v, wantErr %v",
					tt.field, tt.value, err, tt.wantErr)
			}
		})
	}
}
