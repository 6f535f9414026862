package searchconsole

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"seodash/domain/core"
	"seodash/domain/searchdata"
	"seodash/internal"
	"seodash/internal/config"
	"seodash/internal/errors"
	"seodash/ports"
)

const (
	// DefaultBaseURL is the Search Console (webmasters v3) API root
	DefaultBaseURL = "https://www.googleapis.com/webmasters/v3"
	// Scope grants read-only access to Search Console data
	Scope = "https://www.googleapis.com/auth/webmasters.readonly"

	maxRowLimit = 25000
	stateTTL    = 10 * time.Minute
	dateLayout  = "2006-01-02"
)

// Client talks to the Search Console API on behalf of the signed-in user.
// It is built once from configuration and holds the session's OAuth token.
type Client struct {
	oauth    *oauth2.Config
	baseURL  string
	rowLimit int
	logger   *internal.Logger

	mu     sync.RWMutex
	token  *oauth2.Token
	states map[string]time.Time
	now    func() time.Time
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithEndpoint replaces the Google OAuth endpoint
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(c *Client) { c.oauth.Endpoint = endpoint }
}

// NewClient creates a client from the Search Console settings
func NewClient(cfg config.SearchConsoleConfig, logger *internal.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	rowLimit := cfg.RowLimit
	if rowLimit <= 0 {
		rowLimit = 1000
	}

	c := &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{Scope},
			Endpoint:     google.Endpoint,
		},
		baseURL:  DefaultBaseURL,
		rowLimit: rowLimit,
		logger:   logger.WithComponent("SearchConsole"),
		states:   make(map[string]time.Time),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an OAuth client ID is available
func (c *Client) Configured() bool {
	return c.oauth.ClientID != ""
}

// AuthCodeURL starts the consent flow and returns the redirect target
func (c *Client) AuthCodeURL() string {
	state := uuid.NewString()

	c.mu.Lock()
	now := c.now()
	for s, expires := range c.states {
		if now.After(expires) {
			delete(c.states, s)
		}
	}
	c.states[state] = now.Add(stateTTL)
	c.mu.Unlock()

	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange completes the consent flow for a state issued by AuthCodeURL
func (c *Client) Exchange(ctx context.Context, state, code string) error {
	c.mu.Lock()
	expires, ok := c.states[state]
	delete(c.states, state)
	c.mu.Unlock()

	if !ok || c.now().After(expires) {
		return errors.InvalidInput("unknown or expired OAuth state")
	}
	if code == "" {
		return errors.InvalidInput("missing authorization code")
	}

	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return errors.ExternalServiceError("google oauth", err)
	}

	c.SetToken(token)
	c.logger.Info("Signed in to Search Console")
	return nil
}

// SetToken installs a token for the session
func (c *Client) SetToken(token *oauth2.Token) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Authenticated reports whether the session holds a token
func (c *Client) Authenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != nil
}

// SignOut drops the session token
func (c *Client) SignOut() {
	c.SetToken(nil)
	c.logger.Info("Signed out from Search Console")
}

// ListSites returns the properties the user can read
func (c *Client) ListSites(ctx context.Context) ([]ports.Site, error) {
	body, err := c.do(ctx, http.MethodGet, c.baseURL+"/sites", nil)
	if err != nil {
		return nil, err
	}

	sites := []ports.Site{}
	gjson.GetBytes(body, "siteEntry").ForEach(func(_, entry gjson.Result) bool {
		sites = append(sites, ports.Site{
			SiteURL:         entry.Get("siteUrl").String(),
			PermissionLevel: entry.Get("permissionLevel").String(),
		})
		return true
	})
	return sites, nil
}

// FetchReport queries search analytics for one site, date range and category
// dimension and returns normalized records
func (c *Client) FetchReport(ctx context.Context, req ports.ReportRequest) ([]searchdata.Record, error) {
	req, err := c.normalizeRequest(req)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"startDate":  req.StartDate,
		"endDate":    req.EndDate,
		"dimensions": []string{req.Category.IdentityField()},
		"rowLimit":   req.RowLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode report request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/searchAnalytics/query", c.baseURL, url.PathEscape(req.SiteURL))
	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	dateRange := fmt.Sprintf("%s to %s", req.StartDate, req.EndDate)
	records := []searchdata.Record{}
	gjson.GetBytes(body, "rows").ForEach(func(_, row gjson.Result) bool {
		rec := searchdata.NewRecord(req.Category, row.Get("keys.0").String())
		rec.Clicks = row.Get("clicks").Float()
		rec.Impressions = row.Get("impressions").Float()
		rec.CTR = row.Get("ctr").Float()
		rec.Position = row.Get("position").Float()
		rec.Date = dateRange
		if req.Category == searchdata.CategoryDate {
			rec.Date = rec.Key
		}
		records = append(records, rec)
		return true
	})

	c.logger.Info("Fetched %d %s rows for %s (%s)", len(records), req.Category, req.SiteURL, dateRange)
	return records, nil
}

func (c *Client) normalizeRequest(req ports.ReportRequest) (ports.ReportRequest, error) {
	if req.SiteURL == "" {
		return req, errors.InvalidInput("site_url is required")
	}
	if req.Category == "" {
		req.Category = searchdata.CategoryQuery
	}
	if !req.Category.Valid() {
		return req, errors.InvalidInput(fmt.Sprintf("unknown category %q", req.Category))
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return req, errors.InvalidInput("start_date must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return req, errors.InvalidInput("end_date must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return req, errors.InvalidInput("end_date is before start_date")
	}

	if req.RowLimit <= 0 {
		req.RowLimit = c.rowLimit
	}
	if req.RowLimit > maxRowLimit {
		req.RowLimit = maxRowLimit
	}
	return req, nil
}

// do sends an authorized request and returns the body of a 200 response
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token == nil {
		return nil, core.ErrNotAuthenticated
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("search console", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError("search console", fmt.Errorf("failed to read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.SetToken(nil)
		return nil, fmt.Errorf("%w: %s", core.ErrNotAuthenticated, apiMessage(body))
	case resp.StatusCode != http.StatusOK:
		return nil, errors.ExternalServiceError("search console", fmt.Errorf("status %d: %s", resp.StatusCode, apiMessage(body)))
	}
	return body, nil
}

// apiMessage extracts the Google API error message from a response body
func apiMessage(body []byte) string {
	if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
		return msg.String()
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
