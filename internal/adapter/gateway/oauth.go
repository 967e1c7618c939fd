package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"model-hub/internal/domain"

	"golang.org/x/oauth2"
)

// OAuthConfig holds the provider OAuth2 settings. The client secret and token
// URL are server-side only and never reach the browser.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	TokenURL     string
	AuthorizeURL string
}

// OAuthGateway implements domain.TokenExchanger against the marketplace's
// OAuth2 token endpoint.
type OAuthGateway struct {
	cfg        OAuthConfig
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewOAuthGateway creates an OAuth gateway with a bounded request timeout.
func NewOAuthGateway(cfg OAuthConfig, timeout time.Duration, logger *slog.Logger) *OAuthGateway {
	if logger == nil {
		logger = slog.Default()
	}

	return &OAuthGateway{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
		now:    time.Now,
	}
}

// AuthorizeURL builds the provider login URL for the authorization-code flow.
// Used with the public client identifier; no secret material is involved.
func AuthorizeURL(base, clientID, redirectURI string) string {
	v := url.Values{}
	v.Set("response_type", "code")
	v.Set("client_id", clientID)
	v.Set("redirect_uri", redirectURI)
	return base + "?" + v.Encode()
}

// ExchangeCode trades an authorization code for tokens. The configuration is
// verified before any network call.
func (g *OAuthGateway) ExchangeCode(ctx context.Context, code string) (*domain.SessionToken, error) {
	if err := g.configured(true); err != nil {
		return nil, err
	}

	tok, err := g.oauthConfig().Exchange(g.clientContext(ctx), code)
	if err != nil {
		return nil, g.mapExchangeError(ctx, "code exchange", domain.ErrExchangeFailed, err)
	}

	return g.toSessionToken(tok, ""), nil
}

// Refresh trades a refresh token for a renewed access token. A failed refresh
// must not be blindly retried with the same refresh token: providers may
// rotate refresh tokens, so callers re-read stored state first.
func (g *OAuthGateway) Refresh(ctx context.Context, refreshToken string) (*domain.SessionToken, error) {
	if err := g.configured(false); err != nil {
		return nil, err
	}

	src := g.oauthConfig().TokenSource(g.clientContext(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, g.mapExchangeError(ctx, "token refresh", domain.ErrRefreshFailed, err)
	}

	return g.toSessionToken(tok, refreshToken), nil
}

func (g *OAuthGateway) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     g.cfg.ClientID,
		ClientSecret: g.cfg.ClientSecret,
		RedirectURL:  g.cfg.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   g.cfg.AuthorizeURL,
			TokenURL:  g.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// clientContext routes the oauth2 package's HTTP traffic through the tuned client.
func (g *OAuthGateway) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// configured checks the required settings without revealing which one is
// missing to callers; the gap is only logged.
func (g *OAuthGateway) configured(forExchange bool) error {
	missing := g.cfg.ClientID == "" || g.cfg.ClientSecret == "" || g.cfg.TokenURL == ""
	if forExchange {
		missing = missing || g.cfg.RedirectURI == ""
	}
	if missing {
		g.logger.Error("OAuth configuration incomplete",
			"client_id_set", g.cfg.ClientID != "",
			"client_secret_set", g.cfg.ClientSecret != "",
			"redirect_uri_set", g.cfg.RedirectURI != "",
			"token_url_set", g.cfg.TokenURL != "")
		return domain.ErrConfiguration
	}
	return nil
}

func (g *OAuthGateway) mapExchangeError(ctx context.Context, op string, sentinel error, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := 0
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		body := strings.TrimSpace(string(rerr.Body))
		g.logger.ErrorContext(ctx, "provider rejected "+op,
			"status_code", status,
			"response_body", body)
		return fmt.Errorf("%w: provider status %d: %s", sentinel, status, body)
	}

	g.logger.ErrorContext(ctx, op+" transport failure", "error", err)
	return fmt.Errorf("%w: %w", domain.ErrMarketplaceUnavailable, err)
}

// toSessionToken maps the oauth2 token onto the domain constructor, which
// owns the expiry defaulting and refresh-token retention rules.
func (g *OAuthGateway) toSessionToken(tok *oauth2.Token, existingRefreshToken string) *domain.SessionToken {
	return domain.NewSessionToken(tok.AccessToken, tok.RefreshToken, tok.TokenType, tok.Expiry,
		existingRefreshToken, g.now())
}
