package avito

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sellerdesk/sellerdesk/pkg/api"
	"github.com/sellerdesk/sellerdesk/pkg/observability"
	"github.com/sellerdesk/sellerdesk/pkg/storage"
)

// maxResponseBody caps how much of an upstream error body is kept for
// diagnostics.
const maxResponseBody = 4 << 10

// Client performs authenticated requests against the Avito API on behalf
// of registered customer accounts. Credentials are resolved from the
// customer store by title; access tokens are cached in the token store
// and refreshed on demand.
type Client struct {
	httpClient *http.Client
	baseURL    string
	customers  storage.CustomerStore
	tokens     storage.TokenStore

	// refresh collapses concurrent token refreshes for the same account
	// into a single upstream exchange.
	refresh singleflight.Group
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL string, customers storage.CustomerStore, tokens storage.TokenStore, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		customers:  customers,
		tokens:     tokens,
	}
}

// ListItems returns all active listings of the customer.
func (c *Client) ListItems(ctx context.Context, title string) ([]Item, error) {
	body, err := c.do(ctx, title, http.MethodGet, "/core/v1/items", nil)
	if err != nil {
		return nil, err
	}

	var items itemsResponse
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, api.NewMalformedResponseError(fmt.Sprintf("parsing items response: %s", err))
	}
	if items.Resources == nil {
		return nil, api.NewMalformedResponseError("items response has no resources field")
	}
	return *items.Resources, nil
}

// GetItem fetches a single listing of the customer.
func (c *Client) GetItem(ctx context.Context, title string, itemID int64) (*Item, error) {
	creds, err := c.credentials(ctx, title)
	if err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/core/v1/accounts/%d/items/%d/", creds.AccountID, itemID)
	body, err := c.doWithCreds(ctx, creds, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var item Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, api.NewMalformedResponseError(fmt.Sprintf("parsing item response: %s", err))
	}
	return &item, nil
}

// ListItemIDs returns just the listing ids, in upstream order.
func (c *Client) ListItemIDs(ctx context.Context, title string) ([]int64, error) {
	items, err := c.ListItems(ctx, title)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}

// FetchStats returns per-listing metrics for the given period. Dates use
// the YYYY-MM-DD format the upstream expects.
func (c *Client) FetchStats(ctx context.Context, title, dateFrom, dateTo string, itemIDs []int64, grouping Grouping) ([]ItemStats, error) {
	creds, err := c.credentials(ctx, title)
	if err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(statsRequest{
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		Fields:         []StatsField{FieldUniqViews, FieldUniqContacts, FieldUniqFavorites},
		ItemIDs:        itemIDs,
		PeriodGrouping: grouping,
	})
	if err != nil {
		return nil, api.NewUpstreamError(0, fmt.Sprintf("marshaling stats request: %s", err))
	}

	path := fmt.Sprintf("/stats/v1/accounts/%d/items", creds.AccountID)
	body, err := c.doWithCreds(ctx, creds, http.MethodPost, path, reqBody)
	if err != nil {
		return nil, err
	}

	var stats statsResponse
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, api.NewMalformedResponseError(fmt.Sprintf("parsing stats response: %s", err))
	}
	return stats.Result.Items, nil
}

// FetchLastReport returns the customer's last completed autoload run.
func (c *Client) FetchLastReport(ctx context.Context, title string) (*Report, error) {
	body, err := c.do(ctx, title, http.MethodGet, "/autoload/v2/reports/last_completed_report", nil)
	if err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, api.NewMalformedResponseError(fmt.Sprintf("parsing report response: %s", err))
	}
	return &report, nil
}

// RefreshToken exchanges the account's client credentials for a fresh
// access token, stores it, and returns it. Concurrent calls for the same
// account share a single exchange.
func (c *Client) RefreshToken(ctx context.Context, creds api.Credentials) (string, error) {
	key := strconv.FormatInt(creds.AccountID, 10)
	v, err, _ := c.refresh.Do(key, func() (any, error) {
		token, err := c.exchangeToken(ctx, creds)
		if err != nil {
			return "", err
		}
		if err := c.tokens.PutToken(ctx, creds.AccountID, token); err != nil {
			return "", api.NewPersistenceError(fmt.Sprintf("storing token: %s", err))
		}
		observability.TokenRefreshesTotal.Inc()
		return token, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// exchangeToken performs the client-credentials POST.
func (c *Client) exchangeToken(ctx context.Context, creds api.Credentials) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/token/",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("creating token request: %s", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", api.NewUpstreamError(0, fmt.Sprintf("token exchange: %s", err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if resp.StatusCode != http.StatusOK {
		return "", api.NewUpstreamError(resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return "", api.NewMalformedResponseError(fmt.Sprintf("parsing token response: %s", err))
	}
	if tok.AccessToken == "" {
		return "", api.NewMalformedResponseError("token response has no access_token")
	}
	return tok.AccessToken, nil
}

// credentials resolves the account credentials by customer title.
func (c *Client) credentials(ctx context.Context, title string) (api.Credentials, error) {
	creds, err := c.customers.GetCredentials(ctx, title)
	if errors.Is(err, storage.ErrNotFound) {
		return api.Credentials{}, api.NewNotFoundError(fmt.Sprintf("customer %q is not registered", title))
	}
	if err != nil {
		return api.Credentials{}, api.NewPersistenceError(fmt.Sprintf("loading credentials: %s", err))
	}
	return creds, nil
}

// do resolves credentials by title and issues an authenticated request.
func (c *Client) do(ctx context.Context, title, method, path string, body []byte) ([]byte, error) {
	creds, err := c.credentials(ctx, title)
	if err != nil {
		return nil, err
	}
	return c.doWithCreds(ctx, creds, method, path, body)
}

// doWithCreds issues an authenticated request with a one-shot token
// refresh: a 403 triggers exactly one refresh and one retry, and a second
// 403 is reported as auth exhaustion instead of looping.
func (c *Client) doWithCreds(ctx context.Context, creds api.Credentials, method, path string, body []byte) ([]byte, error) {
	token, err := c.tokens.GetToken(ctx, creds.AccountID)
	if errors.Is(err, storage.ErrNotFound) {
		token, err = c.RefreshToken(ctx, creds)
	}
	if err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return nil, err
		}
		return nil, api.NewPersistenceError(fmt.Sprintf("loading token: %s", err))
	}

	respBody, status, err := c.roundTrip(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusForbidden {
		return checkStatus(respBody, status)
	}

	token, err = c.RefreshToken(ctx, creds)
	if err != nil {
		return nil, err
	}

	respBody, status, err = c.roundTrip(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	if status == http.StatusForbidden {
		return nil, api.NewAuthExhaustedError(creds.AccountID)
	}
	return checkStatus(respBody, status)
}

// roundTrip performs a single HTTP exchange and returns the body and
// status without interpreting them.
func (c *Client) roundTrip(ctx context.Context, method, path, token string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, api.NewUpstreamError(0, fmt.Sprintf("creating request: %s", err))
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	observability.UpstreamRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(path, "error").Inc()
		return nil, 0, api.NewUpstreamError(0, fmt.Sprintf("request failed: %s", err))
	}
	defer resp.Body.Close()

	observability.UpstreamRequestsTotal.WithLabelValues(path, strconv.Itoa(resp.StatusCode)).Inc()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, api.NewUpstreamError(0, fmt.Sprintf("reading response: %s", err))
	}
	return respBody, resp.StatusCode, nil
}

// checkStatus converts non-2xx responses into upstream errors.
func checkStatus(body []byte, status int) ([]byte, error) {
	if status < 200 || status >= 300 {
		if len(body) > maxResponseBody {
			body = body[:maxResponseBody]
		}
		return nil, api.NewUpstreamError(status, string(body))
	}
	return body, nil
}
