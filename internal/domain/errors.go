package domain

import (
	"errors"
	"fmt"
)

// Session errors.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrUnauthorized    = errors.New("authentication required")
)

// Token exchange errors.
var (
	ErrConfiguration  = errors.New("server configuration incomplete")
	ErrExchangeFailed = errors.New("authorization code exchange failed")
	ErrRefreshFailed  = errors.New("token refresh failed")
)

// Marketplace errors.
var (
	ErrEmptyQuery             = errors.New("search query is empty")
	ErrSearchFailed           = errors.New("marketplace search failed")
	ErrModelNotFound          = errors.New("model not found")
	ErrDownloadUnavailable    = errors.New("model download unavailable")
	ErrMarketplaceUnavailable = errors.New("marketplace unavailable")
)

// Pagination errors.
var (
	ErrNoMorePages      = errors.New("no further result pages")
	ErrSearchSuperseded = errors.New("search session superseded")
)

// Rate limiting errors.
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ProviderError carries the marketplace's HTTP status and message so callers
// can forward them for diagnostics.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Message)
}
