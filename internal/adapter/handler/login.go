package handler

import (
	"net/http"

	"model-hub/internal/adapter/gateway"
	"model-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

// LoginHandler redirects the browser to the marketplace's authorization page.
// It uses the public client identifier; no secret is involved on this leg.
type LoginHandler struct {
	authorizeURL string
	clientID     string
	redirectURI  string
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(authorizeURL, clientID, redirectURI string) *LoginHandler {
	return &LoginHandler{authorizeURL: authorizeURL, clientID: clientID, redirectURI: redirectURI}
}

// Handle processes GET /auth/login.
func (h *LoginHandler) Handle(c echo.Context) error {
	if h.authorizeURL == "" || h.clientID == "" || h.redirectURI == "" {
		return mapDomainError(domain.ErrConfiguration)
	}
	return c.Redirect(http.StatusFound, gateway.AuthorizeURL(h.authorizeURL, h.clientID, h.redirectURI))
}
