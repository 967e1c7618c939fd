package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"model-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"session not found", domain.ErrSessionNotFound, http.StatusUnauthorized},
		{"unauthorized", domain.ErrUnauthorized, http.StatusUnauthorized},
		{"configuration", domain.ErrConfiguration, http.StatusInternalServerError},
		{"exchange failed", domain.ErrExchangeFailed, http.StatusInternalServerError},
		{"refresh failed", domain.ErrRefreshFailed, http.StatusInternalServerError},
		{"empty query", domain.ErrEmptyQuery, http.StatusBadRequest},
		{"model not found", domain.ErrModelNotFound, http.StatusNotFound},
		{"download unavailable", domain.ErrDownloadUnavailable, http.StatusBadGateway},
		{"search failed", domain.ErrSearchFailed, http.StatusBadGateway},
		{"marketplace unavailable", domain.ErrMarketplaceUnavailable, http.StatusBadGateway},
		{"rate limited", domain.ErrRateLimited, http.StatusTooManyRequests},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := mapDomainError(tt.err)
			assert.Equal(t, tt.wantCode, httpErr.Code)
		})
	}
}

func TestMapDomainError_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("search models: %w", domain.ErrSearchFailed)
	assert.Equal(t, http.StatusBadGateway, mapDomainError(err).Code)
}

func TestMapDomainError_ProviderStatusWins(t *testing.T) {
	err := fmt.Errorf("%w: %w", domain.ErrDownloadUnavailable,
		&domain.ProviderError{StatusCode: http.StatusForbidden, Message: "403 Forbidden"})

	httpErr := mapDomainError(err)
	require.Equal(t, http.StatusForbidden, httpErr.Code,
		"a provider-reported status takes precedence over the sentinel mapping")
	assert.Contains(t, httpErr.Message, "failed to download model")
}
