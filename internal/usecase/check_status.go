package usecase

import (
	"context"
	"log/slog"
	"time"

	"model-hub/internal/domain"

	"golang.org/x/sync/singleflight"
)

// StatusResult is the outcome of a session status check. When Refreshed is
// set, Token carries the renewed token so the caller can re-persist it.
type StatusResult struct {
	Authenticated bool
	ExpiresAt     time.Time
	Refreshed     bool
	Reason        string
	Token         *domain.SessionToken
}

// CheckStatus answers "is this session authenticated," transparently renewing
// an expired token with the refresh token before answering. The check and the
// refresh are atomic from the caller's perspective: a caller never observes
// an intermediate expired state requiring a second round trip.
type CheckStatus struct {
	exchanger domain.TokenExchanger
	logger    *slog.Logger
	now       func() time.Time

	// Concurrent checks that both observe an expired token must not each
	// trigger a refresh; the group collapses them onto a single exchange.
	refreshGroup singleflight.Group
}

// NewCheckStatus creates a new CheckStatus usecase.
func NewCheckStatus(exchanger domain.TokenExchanger, logger *slog.Logger) *CheckStatus {
	return &CheckStatus{exchanger: exchanger, logger: logger, now: time.Now}
}

// Execute evaluates the stored token. A nil token means no session is stored.
// An unexpired token is reported as-is with zero network calls.
func (uc *CheckStatus) Execute(ctx context.Context, token *domain.SessionToken) *StatusResult {
	if token == nil {
		return &StatusResult{Authenticated: false}
	}

	now := uc.now()
	if !token.IsExpired(now) {
		return &StatusResult{
			Authenticated: true,
			ExpiresAt:     token.ExpiresAt,
			Token:         token,
		}
	}

	if token.RefreshToken == "" {
		return &StatusResult{
			Authenticated: false,
			Reason:        "token expired and no refresh token available",
		}
	}

	renewed, err := uc.refresh(ctx, token.RefreshToken)
	if err != nil {
		uc.logger.WarnContext(ctx, "silent token refresh failed", "error", err)
		return &StatusResult{
			Authenticated: false,
			Reason:        "token refresh failed",
		}
	}

	return &StatusResult{
		Authenticated: true,
		ExpiresAt:     renewed.ExpiresAt,
		Refreshed:     true,
		Token:         renewed,
	}
}

// refresh executes the refresh grant, keyed by the refresh token so that
// concurrent expired checks share one provider call and its single outcome.
func (uc *CheckStatus) refresh(ctx context.Context, refreshToken string) (*domain.SessionToken, error) {
	v, err, shared := uc.refreshGroup.Do(refreshToken, func() (interface{}, error) {
		// The exchange outlives the initiating request: other callers may be
		// waiting on it, so one abandoned check must not fail it for everyone.
		return uc.exchanger.Refresh(context.WithoutCancel(ctx), refreshToken)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		uc.logger.DebugContext(ctx, "concurrent refresh collapsed onto in-flight exchange")
	}
	return v.(*domain.SessionToken), nil
}
