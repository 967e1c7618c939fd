package handler

import (
	"net/http"

	"model-hub/internal/infrastructure/session"
	"model-hub/internal/usecase"

	"github.com/labstack/echo/v4"
)

// CallbackHandler handles the OAuth redirect callback: it exchanges the
// authorization code for tokens, persists them as session cookies, and sends
// the browser back to the application.
type CallbackHandler struct {
	uc      *usecase.ExchangeCode
	store   *session.CookieStore
	appRoot string
}

// NewCallbackHandler creates a new callback handler. appRoot is where the
// browser lands after a successful login.
func NewCallbackHandler(uc *usecase.ExchangeCode, store *session.CookieStore, appRoot string) *CallbackHandler {
	if appRoot == "" {
		appRoot = "/"
	}
	return &CallbackHandler{uc: uc, store: store, appRoot: appRoot}
}

// Handle processes GET /auth/callback?code=...
func (h *CallbackHandler) Handle(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "no authorization code provided")
	}

	token, err := h.uc.Execute(c.Request().Context(), code)
	if err != nil {
		return mapDomainError(err)
	}

	h.store.Save(c, token)
	return c.Redirect(http.StatusFound, h.appRoot)
}
