// Package drive downloads customer feed sources from Google Drive. The
// bot keeps each customer's feed as a file in one shared folder; native
// Google spreadsheets are exported to xlsx, everything else is fetched
// as-is.
package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sellerdesk/sellerdesk/pkg/api"
)

const defaultBaseURL = "https://www.googleapis.com/drive/v3"

const spreadsheetExportMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Client is a Google Drive API client scoped to one folder.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	accessToken string
	folderID    string
}

// NewClient creates a Client reading files from the given folder.
func NewClient(accessToken, folderID string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		baseURL:     defaultBaseURL,
		accessToken: accessToken,
		folderID:    folderID,
	}
}

// WithBaseURL points the client at an alternate API endpoint. Used in tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// File is the subset of Drive file metadata the bot needs.
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
}

// FindFile locates a file by name inside the client's folder.
func (c *Client) FindFile(ctx context.Context, name string) (*File, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false",
		escapeQuery(name), escapeQuery(c.folderID)))
	params.Set("fields", "files(id,name,mimeType)")
	params.Set("pageSize", "1")

	var resp struct {
		Files []File `json:"files"`
	}
	if err := c.get(ctx, "files", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Files) == 0 {
		return nil, api.NewNotFoundError(fmt.Sprintf("file %q not found in drive folder", name))
	}
	return &resp.Files[0], nil
}

// Download fetches the named file's content. Google-native spreadsheets
// are exported to xlsx since they have no binary representation of
// their own.
func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	file, err := c.FindFile(ctx, name)
	if err != nil {
		return nil, err
	}

	if strings.HasPrefix(file.MimeType, "application/vnd.google-apps.") {
		return c.export(ctx, file.ID)
	}
	return c.downloadBinary(ctx, file.ID)
}

// export converts a Google-native file and downloads the result.
func (c *Client) export(ctx context.Context, fileID string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/files/%s/export?mimeType=%s",
		c.baseURL, fileID, url.QueryEscape(spreadsheetExportMime))
	return c.fetch(ctx, reqURL)
}

// downloadBinary downloads a regular file.
func (c *Client) downloadBinary(ctx context.Context, fileID string) ([]byte, error) {
	return c.fetch(ctx, fmt.Sprintf("%s/files/%s?alt=media", c.baseURL, fileID))
}

// fetch performs an authenticated GET returning the raw body.
func (c *Client) fetch(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, api.NewUpstreamError(0, fmt.Sprintf("creating request: %s", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, api.NewUpstreamError(0, fmt.Sprintf("request failed: %s", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, api.NewUpstreamError(0, fmt.Sprintf("reading response: %s", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, api.NewUpstreamError(resp.StatusCode, string(body))
	}
	return body, nil
}

// get performs a GET request against the Drive API and decodes JSON.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, result any) error {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return api.NewUpstreamError(0, fmt.Sprintf("creating request: %s", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return api.NewUpstreamError(0, fmt.Sprintf("request failed: %s", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return api.NewUpstreamError(resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return api.NewMalformedResponseError(fmt.Sprintf("decoding response: %s", err))
	}
	return nil
}

// escapeQuery escapes single quotes inside Drive query string literals.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", `\'`)
}
