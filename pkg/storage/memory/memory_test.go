package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
)

func testCustomer(title string, accountID int64) *api.Customer {
	return &api.Customer{
		Title:         title,
		AccountID:     accountID,
		ClientID:      "cid-" + title,
		ClientSecret:  "secret",
		ChatWithLink:  "https://t.me/with_" + title,
		ChatAboutLink: "https://t.me/about_" + title,
		DocLink:       "https://docs.example.com/" + title,
	}
}

func TestCustomerLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.InsertCustomer(ctx, testCustomer("Acme", 100)); err != nil {
		t.Fatalf("InsertCustomer: %v", err)
	}
	if err := s.InsertCustomer(ctx, testCustomer("Globex", 200)); err != nil {
		t.Fatalf("InsertCustomer: %v", err)
	}

	// Duplicate title and duplicate account id are both conflicts.
	if err := s.InsertCustomer(ctx, testCustomer("Acme", 300)); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate title: err = %v, want ErrConflict", err)
	}
	if err := s.InsertCustomer(ctx, testCustomer("Initech", 100)); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate account id: err = %v, want ErrConflict", err)
	}

	titles, err := s.ListCustomerTitles(ctx)
	if err != nil {
		t.Fatalf("ListCustomerTitles: %v", err)
	}
	if len(titles) != 2 || titles[0] != "Acme" || titles[1] != "Globex" {
		t.Errorf("titles = %v, want [Acme Globex]", titles)
	}

	creds, err := s.GetCredentials(ctx, "Acme")
	if err != nil {
		t.Fatalf("GetCredentials: %v", err)
	}
	if creds.AccountID != 100 || creds.ClientID != "cid-Acme" {
		t.Errorf("creds = %+v", creds)
	}

	if err := s.DeleteCustomer(ctx, "Acme"); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	if _, err := s.GetCustomer(ctx, "Acme"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetCustomer after delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteCustomer(ctx, "Acme"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

func TestGetCustomerReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertCustomer(ctx, testCustomer("Acme", 100)); err != nil {
		t.Fatalf("InsertCustomer: %v", err)
	}

	c, err := s.GetCustomer(ctx, "Acme")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	c.ClientID = "mutated"

	again, err := s.GetCustomer(ctx, "Acme")
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if again.ClientID != "cid-Acme" {
		t.Errorf("stored record mutated through returned copy: %q", again.ClientID)
	}
}

func TestDeleteCustomerIf(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertCustomer(ctx, testCustomer("Acme", 100)); err != nil {
		t.Fatalf("InsertCustomer: %v", err)
	}

	// Wrong account id: nothing removed.
	ok, err := s.DeleteCustomerIf(ctx, "Acme", 999, "cid-Acme")
	if err != nil || ok {
		t.Errorf("DeleteCustomerIf(wrong id) = %v, %v; want false, nil", ok, err)
	}

	ok, err = s.DeleteCustomerIf(ctx, "Acme", 100, "cid-Acme")
	if err != nil || !ok {
		t.Errorf("DeleteCustomerIf(match) = %v, %v; want true, nil", ok, err)
	}
	if _, err := s.GetCustomer(ctx, "Acme"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("record still present after conditional delete")
	}
}

func TestDeleteCustomerDropsToken(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.InsertCustomer(ctx, testCustomer("Acme", 100)); err != nil {
		t.Fatalf("InsertCustomer: %v", err)
	}
	if err := s.PutToken(ctx, 100, "tok"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	if err := s.DeleteCustomer(ctx, "Acme"); err != nil {
		t.Fatalf("DeleteCustomer: %v", err)
	}
	if _, err := s.GetToken(ctx, 100); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("token survived customer deletion: err = %v", err)
	}
}

func TestTokenOverwrite(t *testing.T) {
	ctx := context.Background()
	s := New()

	if _, err := s.GetToken(ctx, 7); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetToken(miss): err = %v, want ErrNotFound", err)
	}
	if err := s.PutToken(ctx, 7, "old"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	if err := s.PutToken(ctx, 7, "new"); err != nil {
		t.Fatalf("PutToken: %v", err)
	}
	tok, err := s.GetToken(ctx, 7)
	if err != nil {
		t.Fatalf("GetToken: %v", err)
	}
	if tok != "new" {
		t.Errorf("token = %q, want %q (refresh overwrites)", tok, "new")
	}
}

func TestAdmins(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.InsertAdmin(ctx, &api.Admin{ID: 1, Name: "boss", InCharge: true}); err != nil {
		t.Fatalf("InsertAdmin: %v", err)
	}
	if err := s.InsertAdmin(ctx, &api.Admin{ID: 2, Name: "helper"}); err != nil {
		t.Fatalf("InsertAdmin: %v", err)
	}
	if err := s.InsertAdmin(ctx, &api.Admin{ID: 1, Name: "dup"}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("duplicate admin id: err = %v, want ErrConflict", err)
	}

	ids, _ := s.ListAdminIDs(ctx)
	if len(ids) != 2 {
		t.Errorf("ListAdminIDs = %v, want 2 entries", ids)
	}
	inCharge, _ := s.ListInChargeAdminIDs(ctx)
	if len(inCharge) != 1 || inCharge[0] != 1 {
		t.Errorf("ListInChargeAdminIDs = %v, want [1]", inCharge)
	}

	// In-charge admins are never deleted.
	ok, err := s.DeleteAdminByName(ctx, "boss")
	if err != nil || ok {
		t.Errorf("DeleteAdminByName(in charge) = %v, %v; want false, nil", ok, err)
	}
	ok, err = s.DeleteAdminByName(ctx, "helper")
	if err != nil || !ok {
		t.Errorf("DeleteAdminByName(helper) = %v, %v; want true, nil", ok, err)
	}
	ok, err = s.DeleteAdminByName(ctx, "ghost")
	if err != nil || ok {
		t.Errorf("DeleteAdminByName(missing) = %v, %v; want false, nil", ok, err)
	}
}
