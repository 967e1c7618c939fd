package handler

import (
	"errors"
	"net/http"

	"model-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

// mapDomainError converts a domain error into an appropriate echo.HTTPError.
// Provider bodies stay in the logs; clients get generic messages.
func mapDomainError(err error) *echo.HTTPError {
	var perr *domain.ProviderError
	if errors.As(err, &perr) {
		// Provider-reported download failures forward the provider's status.
		return echo.NewHTTPError(perr.StatusCode, "failed to download model: "+perr.Message)
	}

	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrUnauthorized):
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")

	case errors.Is(err, domain.ErrConfiguration):
		return echo.NewHTTPError(http.StatusInternalServerError, "server configuration error")

	case errors.Is(err, domain.ErrExchangeFailed),
		errors.Is(err, domain.ErrRefreshFailed):
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to exchange code for token")

	case errors.Is(err, domain.ErrEmptyQuery):
		return echo.NewHTTPError(http.StatusBadRequest, "search query is required")

	case errors.Is(err, domain.ErrModelNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "model not found")

	case errors.Is(err, domain.ErrDownloadUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "model download unavailable")

	case errors.Is(err, domain.ErrSearchFailed),
		errors.Is(err, domain.ErrMarketplaceUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "marketplace unavailable")

	case errors.Is(err, domain.ErrRateLimited):
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded")

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
