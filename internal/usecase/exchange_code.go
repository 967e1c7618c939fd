package usecase

import (
	"context"
	"log/slog"

	"model-hub/internal/domain"
)

// ExchangeCode orchestrates the authorization-code-for-token exchange that
// completes the login redirect.
type ExchangeCode struct {
	exchanger domain.TokenExchanger
	logger    *slog.Logger
}

// NewExchangeCode creates a new ExchangeCode usecase.
func NewExchangeCode(exchanger domain.TokenExchanger, logger *slog.Logger) *ExchangeCode {
	return &ExchangeCode{exchanger: exchanger, logger: logger}
}

// Execute trades the authorization code for a session token. The caller
// persists the result; a provider rejection surfaces as ErrExchangeFailed and
// must be shown as a failure, never silently proceeded past.
func (uc *ExchangeCode) Execute(ctx context.Context, code string) (*domain.SessionToken, error) {
	if code == "" {
		return nil, domain.ErrUnauthorized
	}

	token, err := uc.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "authorization code exchanged",
		"expires_at", token.ExpiresAt,
		"refresh_token_issued", token.RefreshToken != "")
	return token, nil
}
