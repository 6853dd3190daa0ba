// Package feed talks to the host that serves customer autoload feeds.
// Feeds are xml files named after the customer; the host exposes a file
// listing, per-file GET and POST, and a DELETE endpoint taking the file
// name in a JSON body.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

// Client performs requests against the feed host.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client for the feed host at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// ListFiles returns the names of all feed files on the host.
func (c *Client) ListFiles(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/all_files", nil)
	if err != nil {
		return nil, api.NewUpstreamError(0, fmt.Sprintf("creating listing request: %s", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, api.NewUpstreamError(0, fmt.Sprintf("listing feed files: %s", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return nil, api.NewUpstreamError(resp.StatusCode, string(body))
	}

	var files []string
	if err := json.Unmarshal(body, &files); err != nil {
		return nil, api.NewMalformedResponseError(fmt.Sprintf("parsing file listing: %s", err))
	}
	return files, nil
}

// FeedURL returns the public URL of the customer's feed after verifying
// it exists on the host. A missing feed is a not-found error.
func (c *Client) FeedURL(ctx context.Context, title string) (string, error) {
	name := FileName(title)
	url := c.baseURL + "/" + name

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("creating feed request: %s", err))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("checking feed: %s", err))
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return url, nil
	case http.StatusNotFound:
		return "", api.NewNotFoundError(fmt.Sprintf("feed %s not found", name))
	default:
		return "", api.NewUpstreamError(resp.StatusCode, "unexpected status checking feed")
	}
}

// UpdateFeed uploads new feed content for the customer, replacing the
// file on the host.
func (c *Client) UpdateFeed(ctx context.Context, title string, data []byte) error {
	name := FileName(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+name,
		bytes.NewReader(data))
	if err != nil {
		return api.NewUpstreamError(0, fmt.Sprintf("creating upload request: %s", err))
	}
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewUpstreamError(0, fmt.Sprintf("uploading feed: %s", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		return api.NewUpstreamError(resp.StatusCode, string(body))
	}
	return nil
}

// DeleteFeed removes the customer's feed file from the host and returns
// the host's confirmation message.
func (c *Client) DeleteFeed(ctx context.Context, title string) (string, error) {
	payload, err := json.Marshal(map[string]string{"company_name": FileName(title)})
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("marshaling delete request: %s", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/",
		bytes.NewReader(payload))
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("creating delete request: %s", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("deleting feed: %s", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode != http.StatusOK {
		return "", api.NewUpstreamError(resp.StatusCode, string(body))
	}
	return string(body), nil
}

// FileName derives the xml file name of a customer's feed.
func FileName(title string) string {
	if strings.HasSuffix(title, ".xml") {
		return title
	}
	return title + ".xml"
}
