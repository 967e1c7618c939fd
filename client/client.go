// Package client is the Go embedding API a viewer frontend uses to talk to a
// model-hub server and the marketplace: login-URL construction, cached
// authentication checks, accumulating search sessions, and gated downloads.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"model-hub/internal/adapter/gateway"
	"model-hub/internal/domain"
)

// DefaultCacheTTL bounds how long a status-check outcome is reused.
const DefaultCacheTTL = 1 * time.Minute

// Options configures a Client.
type Options struct {
	// ServerURL is the base URL of the model-hub server.
	ServerURL string
	// MarketplaceURL is the marketplace REST API base, queried directly for
	// search and listings (no credential is needed there).
	MarketplaceURL string

	// Public OAuth settings for constructing the login URL.
	AuthorizeURL string
	ClientID     string
	RedirectURI  string

	// CacheTTL bounds the authentication-status cache (DefaultCacheTTL if zero).
	CacheTTL time.Duration
	// Timeout bounds every request (15s if zero).
	Timeout time.Duration

	// Catalog overrides the marketplace catalog, for tests.
	Catalog domain.AssetCatalog
	Logger  *slog.Logger
}

// Client talks to the model-hub server with a cookie jar standing in for the
// browser's session cookies. Token material never reaches this side; the
// server only reports an authenticated flag and an expiry.
type Client struct {
	serverURL  string
	httpClient *http.Client
	catalog    domain.AssetCatalog
	cache      *StatusCache
	logger     *slog.Logger

	authorizeURL string
	clientID     string
	redirectURI  string
}

// New creates a viewer client.
func New(opts Options) (*Client, error) {
	if opts.ServerURL == "" {
		return nil, fmt.Errorf("%w: server URL is required", domain.ErrConfiguration)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	catalog := opts.Catalog
	if catalog == nil {
		catalog = gateway.NewMarketplaceGateway(opts.MarketplaceURL, timeout, logger)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	return &Client{
		serverURL:    strings.TrimRight(opts.ServerURL, "/"),
		httpClient:   &http.Client{Timeout: timeout, Jar: jar},
		catalog:      catalog,
		cache:        NewStatusCache(ttl),
		logger:       logger,
		authorizeURL: opts.AuthorizeURL,
		clientID:     opts.ClientID,
		redirectURI:  opts.RedirectURI,
	}, nil
}

// statusResponse mirrors the server's /auth/status payload.
type statusResponse struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     int64  `json:"expiresAt"`
	Refreshed     bool   `json:"refreshed"`
	Error         string `json:"error"`
}

// LoginURL returns the marketplace authorization URL the user must visit to
// start the login flow.
func (c *Client) LoginURL() (string, error) {
	if c.authorizeURL == "" || c.clientID == "" || c.redirectURI == "" {
		return "", domain.ErrConfiguration
	}
	return gateway.AuthorizeURL(c.authorizeURL, c.clientID, c.redirectURI), nil
}

// IsAuthenticated reports whether the session is authenticated, reusing the
// cached outcome inside its validity window. A status call may silently renew
// the session server-side; the renewed expiry is cached here.
func (c *Client) IsAuthenticated(ctx context.Context) (bool, error) {
	if authenticated, _, ok := c.cache.Get(); ok {
		return authenticated, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/auth/status", nil)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status endpoint returned %d", domain.ErrMarketplaceUnavailable, resp.StatusCode)
	}

	var status statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}

	c.cache.Set(status.Authenticated, time.UnixMilli(status.ExpiresAt))
	if status.Refreshed {
		c.logger.DebugContext(ctx, "session silently renewed", "expires_at", status.ExpiresAt)
	}
	return status.Authenticated, nil
}

// SearchOptions are the optional filters of a search.
type SearchOptions struct {
	Categories       []string
	Count            int
	DownloadableOnly bool
	SortBy           string
}

// Search starts a new search session. A blank or whitespace-only query is
// rejected locally without a network call, leaving any prior session intact.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*SearchSession, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	base := domain.SearchQuery{
		Query:            query,
		Categories:       opts.Categories,
		Count:            opts.Count,
		DownloadableOnly: opts.DownloadableOnly,
		SortBy:           opts.SortBy,
	}

	page, err := c.catalog.Search(ctx, base)
	if err != nil {
		return nil, err
	}

	return &SearchSession{
		client:     c,
		base:       base,
		results:    page.Results,
		cursor:     page.Next,
		totalCount: page.TotalCount,
	}, nil
}

// Featured returns the default listing shown before any query is entered:
// most recent downloadable models. Its pagination state is independent of any
// search session.
func (c *Client) Featured(ctx context.Context, count int) (*domain.SearchPage, error) {
	return c.catalog.Featured(ctx, count)
}

// GetModel fetches one listing's details.
func (c *Client) GetModel(ctx context.Context, uid string) (*domain.ModelSummary, error) {
	return c.catalog.GetModel(ctx, uid)
}

// downloadResponse mirrors the server's /api/download payload.
type downloadResponse struct {
	DownloadURL string                           `json:"downloadUrl"`
	Formats     map[string]domain.DownloadFormat `json:"formats"`
}

// Download resolves a model identifier to a short-lived signed download URL
// via the server. The cached authentication state only short-circuits the
// obviously-unauthenticated case; the server performs the live check.
func (c *Client) Download(ctx context.Context, modelUID string) (string, map[string]domain.DownloadFormat, error) {
	authenticated, err := c.IsAuthenticated(ctx)
	if err != nil {
		return "", nil, err
	}
	if !authenticated {
		return "", nil, domain.ErrUnauthorized
	}

	u := c.serverURL + "/api/download?modelId=" + url.QueryEscape(modelUID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.cache.Invalidate()
		return "", nil, domain.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", nil, fmt.Errorf("%w: %w", domain.ErrDownloadUnavailable, &domain.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		})
	}

	var payload downloadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", nil, fmt.Errorf("%w: %w", domain.ErrDownloadUnavailable, err)
	}
	return payload.DownloadURL, payload.Formats, nil
}
