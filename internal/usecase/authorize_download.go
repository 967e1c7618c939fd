package usecase

import (
	"context"
	"log/slog"
	"time"

	"model-hub/internal/domain"
)

// DownloadResult carries the resolved download URL plus every format variant
// the provider offered, for informational display.
type DownloadResult struct {
	DownloadURL string
	Formats     map[string]domain.DownloadFormat
}

// AuthorizeDownload resolves a model identifier to a short-lived signed
// download URL. Download URLs expire on the provider's schedule; the result
// is used once and discarded, never cached.
type AuthorizeDownload struct {
	catalog  domain.AssetCatalog
	priority []string
	logger   *slog.Logger
	now      func() time.Time
}

// NewAuthorizeDownload creates a new AuthorizeDownload usecase with the given
// format priority order (domain.FormatPriority when nil).
func NewAuthorizeDownload(catalog domain.AssetCatalog, priority []string, logger *slog.Logger) *AuthorizeDownload {
	if priority == nil {
		priority = domain.FormatPriority
	}
	return &AuthorizeDownload{catalog: catalog, priority: priority, logger: logger, now: time.Now}
}

// Execute requests a download grant for the model. The session must hold a
// currently valid token; otherwise ErrUnauthorized is returned without
// contacting the provider. Provider failures are surfaced, not retried.
func (uc *AuthorizeDownload) Execute(ctx context.Context, token *domain.SessionToken, modelUID string) (*DownloadResult, error) {
	if token == nil || !token.Valid(uc.now()) {
		return nil, domain.ErrUnauthorized
	}

	formats, err := uc.catalog.RequestDownload(ctx, modelUID, token.AccessToken)
	if err != nil {
		return nil, err
	}

	downloadURL, err := domain.SelectDownloadURL(formats, uc.priority)
	if err != nil {
		uc.logger.WarnContext(ctx, "grant carried no supported format",
			"model_uid", modelUID,
			"format_count", len(formats))
		return nil, err
	}

	return &DownloadResult{DownloadURL: downloadURL, Formats: formats}, nil
}
