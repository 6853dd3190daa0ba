package avito

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/storage/memory"
)

const testTitle = "Acme Trading"

func seedStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	err := store.InsertCustomer(context.Background(), &api.Customer{
		Title:        testTitle,
		AccountID:    42,
		ClientID:     "client-abc",
		ClientSecret: "secret-xyz",
	})
	if err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	return store
}

// newTestClient wires a Client against a test server with a pre-cached
// token so requests skip the initial refresh.
func newTestClient(t *testing.T, srv *httptest.Server, token string) (*Client, *memory.Store) {
	t.Helper()
	store := seedStore(t)
	if token != "" {
		if err := store.PutToken(context.Background(), 42, token); err != nil {
			t.Fatalf("seeding token: %v", err)
		}
	}
	return NewClient(srv.URL, store, store, 5*time.Second), store
}

func TestListItemIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/core/v1/items" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-valid" {
			t.Errorf("Authorization = %q", got)
		}
		fmt.Fprint(w, `{"resources":[{"id":101},{"id":102},{"id":103}]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	ids, err := client.ListItemIDs(context.Background(), testTitle)
	if err != nil {
		t.Fatalf("ListItemIDs() error: %v", err)
	}
	if len(ids) != 3 || ids[0] != 101 || ids[2] != 103 {
		t.Errorf("ListItemIDs() = %v", ids)
	}
}

func TestGetItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/core/v1/accounts/42/items/101/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":101}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	item, err := client.GetItem(context.Background(), testTitle, 101)
	if err != nil {
		t.Fatalf("GetItem() error: %v", err)
	}
	if item.ID != 101 {
		t.Errorf("item.ID = %d, want 101", item.ID)
	}
}

func TestListItemIDsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"unexpected":"shape"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	_, err := client.ListItemIDs(context.Background(), testTitle)
	if !api.IsType(err, api.ErrorTypeMalformedResponse) {
		t.Errorf("error = %v, want malformed_response", err)
	}
}

func TestListItemIDsEmptyListing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resources":[]}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	ids, err := client.ListItemIDs(context.Background(), testTitle)
	if err != nil {
		t.Fatalf("ListItemIDs() error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ListItemIDs() = %v, want empty", ids)
	}
}

func TestUnknownCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for unknown customer")
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	_, err := client.ListItemIDs(context.Background(), "Nobody")
	if !api.IsType(err, api.ErrorTypeNotFound) {
		t.Errorf("error = %v, want not_found", err)
	}
}

// TestRefreshOn403 verifies the stale-token path: the first request is
// rejected, one refresh happens, and the retry succeeds with the new token.
func TestRefreshOn403(t *testing.T) {
	var tokenPosts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			tokenPosts.Add(1)
			if err := r.ParseForm(); err != nil {
				t.Errorf("parsing token form: %v", err)
			}
			if r.PostForm.Get("grant_type") != "client_credentials" ||
				r.PostForm.Get("client_id") != "client-abc" ||
				r.PostForm.Get("client_secret") != "secret-xyz" {
				t.Errorf("unexpected token form: %v", r.PostForm)
			}
			fmt.Fprint(w, `{"access_token":"tok-fresh"}`)
		case "/core/v1/items":
			if r.Header.Get("Authorization") == "Bearer tok-fresh" {
				fmt.Fprint(w, `{"resources":[{"id":7}]}`)
				return
			}
			w.WriteHeader(http.StatusForbidden)
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	client, store := newTestClient(t, srv, "tok-stale")

	ids, err := client.ListItemIDs(context.Background(), testTitle)
	if err != nil {
		t.Fatalf("ListItemIDs() error: %v", err)
	}
	if len(ids) != 1 || ids[0] != 7 {
		t.Errorf("ListItemIDs() = %v", ids)
	}
	if n := tokenPosts.Load(); n != 1 {
		t.Errorf("token exchanges = %d, want 1", n)
	}

	// The fresh token must be persisted for later calls.
	tok, err := store.GetToken(context.Background(), 42)
	if err != nil {
		t.Fatalf("GetToken() error: %v", err)
	}
	if tok != "tok-fresh" {
		t.Errorf("stored token = %q, want tok-fresh", tok)
	}
}

// TestAuthExhaustedAfterSecond403 verifies that a 403 following a fresh
// token is not retried again.
func TestAuthExhaustedAfterSecond403(t *testing.T) {
	var itemRequests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			fmt.Fprint(w, `{"access_token":"tok-fresh"}`)
		case "/core/v1/items":
			itemRequests.Add(1)
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-stale")

	_, err := client.ListItemIDs(context.Background(), testTitle)
	if !api.IsType(err, api.ErrorTypeAuthExhausted) {
		t.Fatalf("error = %v, want auth_exhausted", err)
	}
	if n := itemRequests.Load(); n != 2 {
		t.Errorf("item requests = %d, want exactly 2", n)
	}
}

// TestMissingTokenTriggersRefresh verifies that an account with no cached
// token refreshes before the first request instead of failing.
func TestMissingTokenTriggersRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token/":
			fmt.Fprint(w, `{"access_token":"tok-first"}`)
		case "/core/v1/items":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-first" {
				t.Errorf("Authorization = %q", got)
			}
			fmt.Fprint(w, `{"resources":[]}`)
		}
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "")

	if _, err := client.ListItemIDs(context.Background(), testTitle); err != nil {
		t.Fatalf("ListItemIDs() error: %v", err)
	}
}

// TestConcurrentRefreshCollapses verifies that simultaneous refreshes for
// one account produce a single upstream token exchange.
func TestConcurrentRefreshCollapses(t *testing.T) {
	var tokenPosts atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/token/" {
			t.Errorf("unexpected path %q", r.URL.Path)
			return
		}
		tokenPosts.Add(1)
		<-release
		fmt.Fprint(w, `{"access_token":"tok-shared"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "")
	creds := api.Credentials{AccountID: 42, ClientID: "client-abc", ClientSecret: "secret-xyz"}

	const callers = 8
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = client.RefreshToken(context.Background(), creds)
		}(i)
	}

	// Give the goroutines time to pile onto the in-flight exchange.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("RefreshToken()[%d] error: %v", i, errs[i])
		}
		if tokens[i] != "tok-shared" {
			t.Errorf("RefreshToken()[%d] = %q", i, tokens[i])
		}
	}
	if n := tokenPosts.Load(); n != 1 {
		t.Errorf("token exchanges = %d, want 1", n)
	}
}

func TestFetchStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stats/v1/accounts/42/items" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req statsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding stats request: %v", err)
		}
		if req.DateFrom != "2026-08-01" || req.DateTo != "2026-08-28" {
			t.Errorf("dates = %q..%q", req.DateFrom, req.DateTo)
		}
		if len(req.Fields) != 3 || req.PeriodGrouping != GroupByDay {
			t.Errorf("fields = %v, grouping = %q", req.Fields, req.PeriodGrouping)
		}
		fmt.Fprint(w, `{"result":{"items":[
			{"itemId":101,"stats":[{"date":"2026-08-01","uniqViews":10,"uniqContacts":2,"uniqFavorites":1}]}
		]}}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	stats, err := client.FetchStats(context.Background(), testTitle,
		"2026-08-01", "2026-08-28", []int64{101}, GroupByDay)
	if err != nil {
		t.Fatalf("FetchStats() error: %v", err)
	}
	if len(stats) != 1 || stats[0].ItemID != 101 || stats[0].Stats[0].UniqViews != 10 {
		t.Errorf("FetchStats() = %+v", stats)
	}
}

func TestFetchLastReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/autoload/v2/reports/last_completed_report" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `{
			"status":"success",
			"started_at":"2026-08-28T10:00:00Z",
			"finished_at":"2026-08-28T10:05:00Z",
			"events":[{"description":"2 listings rejected"}],
			"section_stats":{"count":50,"sections":[{"title":"published","count":48},{"title":"rejected","count":2}]}
		}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	report, err := client.FetchLastReport(context.Background(), testTitle)
	if err != nil {
		t.Fatalf("FetchLastReport() error: %v", err)
	}
	if report.Status != "success" || report.SectionStats.Count != 50 {
		t.Errorf("FetchLastReport() = %+v", report)
	}
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"boom"}`)
	}))
	defer srv.Close()

	client, _ := newTestClient(t, srv, "tok-valid")

	_, err := client.ListItemIDs(context.Background(), testTitle)
	if !api.IsType(err, api.ErrorTypeUpstream) {
		t.Fatalf("error = %v, want upstream_error", err)
	}
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Errorf("error status = %+v", err)
	}
}

func TestFormatReport(t *testing.T) {
	report := &Report{
		Status:     "success",
		StartedAt:  "2026-08-28T10:00:00Z",
		FinishedAt: "2026-08-28T10:05:00Z",
		Events:     []ReportEvent{{Description: "2 listings rejected"}},
		SectionStats: SectionStats{
			Count: 50,
			Sections: []Section{
				{Title: "published", Count: 48},
				{Title: "rejected", Count: 2},
			},
		},
	}

	got := FormatReport(report)
	want := "Status: success\n" +
		"Errors and warnings: 2 listings rejected\n" +
		"Upload started: 2026-08-28 13:00\n" +
		"Upload finished: 2026-08-28 13:05\n" +
		"Total listings: 50\n" +
		"published: 48\n" +
		"rejected: 2\n"
	if got != want {
		t.Errorf("FormatReport() = %q, want %q", got, want)
	}
}

func TestFormatReportTimeFallback(t *testing.T) {
	if got := formatReportTime("not a timestamp"); got != "-" {
		t.Errorf("formatReportTime() = %q, want -", got)
	}
}
