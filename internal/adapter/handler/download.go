package handler

import (
	"net/http"

	"model-hub/internal/domain"
	"model-hub/internal/infrastructure/session"
	"model-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// DownloadHandler handles /api/download: it gates the request on an
// authenticated session (renewing it silently if possible) and resolves the
// model identifier to a short-lived signed download URL.
type DownloadHandler struct {
	status   *usecase.CheckStatus
	download *usecase.AuthorizeDownload
	store    *session.CookieStore
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(status *usecase.CheckStatus, download *usecase.AuthorizeDownload, store *session.CookieStore) *DownloadHandler {
	return &DownloadHandler{status: status, download: download, store: store}
}

// downloadResponse carries the resolved URL plus all format variants keyed by
// format name.
type downloadResponse struct {
	DownloadURL string                           `json:"downloadUrl"`
	Formats     map[string]domain.DownloadFormat `json:"formats"`
}

// Handle processes GET /api/download?modelId=...
func (h *DownloadHandler) Handle(c echo.Context) error {
	modelID := c.QueryParam("modelId")
	if modelID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "model ID is required")
	}

	token, err := h.store.Load(c)
	if err != nil {
		return mapDomainError(domain.ErrUnauthorized)
	}

	// Full status semantics, including silent renewal, before any provider
	// contact on the download path.
	status := h.status.Execute(c.Request().Context(), token)
	if !status.Authenticated {
		return mapDomainError(domain.ErrUnauthorized)
	}
	if status.Refreshed {
		h.store.Save(c, status.Token)
	}

	result, err := h.download.Execute(c.Request().Context(), status.Token, modelID)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, downloadResponse{
		DownloadURL: result.DownloadURL,
		Formats:     result.Formats,
	})
}
