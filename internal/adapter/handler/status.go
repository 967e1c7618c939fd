package handler

import (
	"net/http"

	"model-hub/internal/infrastructure/session"
	"model-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// StatusHandler handles /auth/status, the session authentication probe. An
// expired token with a stored refresh token is renewed silently during the
// call, so clients never need a second round trip.
type StatusHandler struct {
	uc    *usecase.CheckStatus
	store *session.CookieStore
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(uc *usecase.CheckStatus, store *session.CookieStore) *StatusHandler {
	return &StatusHandler{uc: uc, store: store}
}

// statusResponse is the JSON shape consumed by the viewer client. ExpiresAt
// is unix milliseconds, used only for client-side scheduling; token material
// is never included.
type statusResponse struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     int64  `json:"expiresAt,omitempty"`
	Refreshed     bool   `json:"refreshed,omitempty"`
	Error         string `json:"error,omitempty"`
}

// Handle processes GET /auth/status. Always 200; the outcome is in the body.
func (h *StatusHandler) Handle(c echo.Context) error {
	token, err := h.store.Load(c)
	if err != nil {
		token = nil
	}

	result := h.uc.Execute(c.Request().Context(), token)

	if result.Refreshed {
		h.store.Save(c, result.Token)
	}

	resp := statusResponse{
		Authenticated: result.Authenticated,
		Refreshed:     result.Refreshed,
		Error:         result.Reason,
	}
	if result.Authenticated {
		resp.ExpiresAt = result.ExpiresAt.UnixMilli()
	}

	return c.JSON(http.StatusOK, resp)
}
