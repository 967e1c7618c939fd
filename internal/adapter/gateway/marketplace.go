package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"model-hub/internal/domain"
)

// MarketplaceGateway implements domain.AssetCatalog against the marketplace
// REST API. All provider and transport failures are converted to typed domain
// errors at this boundary.
type MarketplaceGateway struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewMarketplaceGateway creates a marketplace gateway with tuned HTTP transport.
func NewMarketplaceGateway(baseURL string, timeout time.Duration, logger *slog.Logger) *MarketplaceGateway {
	if logger == nil {
		logger = slog.Default()
	}

	return &MarketplaceGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

// searchResponse mirrors the provider's listing payload.
type searchResponse struct {
	Results    []domain.ModelSummary `json:"results"`
	Next       string                `json:"next"`
	Previous   string                `json:"previous"`
	TotalCount int                   `json:"totalCount"`
}

// Search queries the marketplace with a free-text query. A blank query is a
// local validation failure and performs no network call.
func (g *MarketplaceGateway) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchPage, error) {
	if strings.TrimSpace(q.Query) == "" {
		return nil, domain.ErrEmptyQuery
	}

	count := q.Count
	if count <= 0 {
		count = domain.DefaultSearchCount
	}

	params := url.Values{}
	params.Set("type", "models")
	params.Set("q", q.Query)
	params.Set("count", strconv.Itoa(count))
	params.Set("archives_flavours", "false")
	if q.DownloadableOnly {
		params.Set("downloadable", "true")
	}
	if q.Cursor != "" {
		params.Set("cursor", q.Cursor)
	}
	if len(q.Categories) > 0 {
		params.Set("categories", strings.Join(q.Categories, ","))
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}

	page, err := g.fetchPage(ctx, g.baseURL+"/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}
	return page, nil
}

// Featured returns the default listing shown before any query is entered:
// most recently published, downloadable models.
func (g *MarketplaceGateway) Featured(ctx context.Context, count int) (*domain.SearchPage, error) {
	if count <= 0 {
		count = domain.DefaultSearchCount
	}

	params := url.Values{}
	params.Set("type", "models")
	params.Set("sort_by", "-publishedAt")
	params.Set("downloadable", "true")
	params.Set("count", strconv.Itoa(count))

	page, err := g.fetchPage(ctx, g.baseURL+"/models?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearchFailed, err)
	}
	return page, nil
}

// GetModel fetches a single listing's details.
func (g *MarketplaceGateway) GetModel(ctx context.Context, uid string) (*domain.ModelSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models/"+url.PathEscape(uid), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMarketplaceUnavailable, resp.StatusCode)
	}

	var model domain.ModelSummary
	if err := json.NewDecoder(resp.Body).Decode(&model); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	return &model, nil
}

// RequestDownload obtains a short-lived download grant using the access token
// as bearer credential. The grant is returned as-is and never cached.
func (g *MarketplaceGateway) RequestDownload(ctx context.Context, modelUID, accessToken string) (map[string]domain.DownloadFormat, error) {
	grantURL := g.baseURL + "/models/" + url.PathEscape(modelUID) + "/download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, grantURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.ErrorContext(ctx, "download grant rejected",
			"model_uid", modelUID,
			"status_code", resp.StatusCode,
			"response_body", string(body))
		return nil, fmt.Errorf("%w: %w", domain.ErrDownloadUnavailable, &domain.ProviderError{
			StatusCode: resp.StatusCode,
			Message:    resp.Status,
		})
	}

	var formats map[string]domain.DownloadFormat
	if err := json.NewDecoder(resp.Body).Decode(&formats); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDownloadUnavailable, err)
	}
	return formats, nil
}

// fetchPage issues a listing request and normalizes the page shape.
func (g *MarketplaceGateway) fetchPage(ctx context.Context, pageURL string) (*domain.SearchPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMarketplaceUnavailable, resp.StatusCode)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
	}

	totalCount := payload.TotalCount
	if totalCount == 0 {
		totalCount = len(payload.Results)
	}

	return &domain.SearchPage{
		Results:    payload.Results,
		Next:       cursorFromLink(payload.Next),
		Previous:   cursorFromLink(payload.Previous),
		TotalCount: totalCount,
	}, nil
}

// cursorFromLink extracts the opaque cursor from the provider's next/previous
// link when it returns a full URL rather than a bare cursor.
func cursorFromLink(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if c := u.Query().Get("cursor"); c != "" {
		return c
	}
	return link
}
