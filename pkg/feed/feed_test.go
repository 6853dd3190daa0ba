package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"acme", "acme.xml"},
		{"acme.xml", "acme.xml"},
	}
	for _, tt := range tests {
		if got := FileName(tt.in); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestListFiles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/all_files" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, `["acme.xml","globex.xml"]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	files, err := client.ListFiles(context.Background())
	if err != nil {
		t.Fatalf("ListFiles() error: %v", err)
	}
	if len(files) != 2 || files[0] != "acme.xml" {
		t.Errorf("ListFiles() = %v", files)
	}
}

func TestFeedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/acme.xml":
			fmt.Fprint(w, "<feed/>")
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)

	url, err := client.FeedURL(context.Background(), "acme")
	if err != nil {
		t.Fatalf("FeedURL() error: %v", err)
	}
	if url != srv.URL+"/acme.xml" {
		t.Errorf("FeedURL() = %q", url)
	}

	_, err = client.FeedURL(context.Background(), "missing")
	if !api.IsType(err, api.ErrorTypeNotFound) {
		t.Errorf("FeedURL(missing) error = %v, want not_found", err)
	}
}

func TestUpdateFeed(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/acme.xml" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if err := client.UpdateFeed(context.Background(), "acme.xml", []byte("<feed/>")); err != nil {
		t.Fatalf("UpdateFeed() error: %v", err)
	}
	if string(gotBody) != "<feed/>" {
		t.Errorf("uploaded body = %q", gotBody)
	}
}

func TestUpdateFeedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	err := client.UpdateFeed(context.Background(), "acme", []byte("<feed/>"))
	if !api.IsType(err, api.ErrorTypeUpstream) {
		t.Errorf("UpdateFeed() error = %v, want upstream_error", err)
	}
}

func TestDeleteFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method %s", r.Method)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decoding delete payload: %v", err)
		}
		if payload["company_name"] != "acme.xml" {
			t.Errorf("payload = %v", payload)
		}
		fmt.Fprint(w, "file acme.xml deleted")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	msg, err := client.DeleteFeed(context.Background(), "acme")
	if err != nil {
		t.Fatalf("DeleteFeed() error: %v", err)
	}
	if msg != "file acme.xml deleted" {
		t.Errorf("DeleteFeed() = %q", msg)
	}
}
