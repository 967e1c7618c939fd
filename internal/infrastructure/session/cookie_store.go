package session

import (
	"net/http"
	"strconv"
	"time"

	"model-hub/internal/domain"

	"github.com/labstack/echo/v4"
)

// Cookie names carrying the session token state. This is the only persistent
// store: token state lives in the browser's cookies, scoped to the session.
const (
	AccessCookie  = "marketplace_token"
	RefreshCookie = "marketplace_refresh_token"
	ExpiryCookie  = "marketplace_token_expiry"
)

// RefreshTokenMaxAge is the refresh cookie lifetime. Refresh tokens outlive
// access tokens so an expired session can still be renewed silently.
const RefreshTokenMaxAge = 30 * 24 * time.Hour

// CookieStore persists the SessionToken across requests via http-only cookies.
// Raw token values are never readable by browser scripts.
type CookieStore struct {
	secure bool
	now    func() time.Time
}

// NewCookieStore creates a cookie store. secure marks cookies Secure, which
// production deployments require.
func NewCookieStore(secure bool) *CookieStore {
	return &CookieStore{secure: secure, now: time.Now}
}

// Load reads the session token from the request cookies. An access token
// without a recorded expiry is never usable, so both cookies are required;
// otherwise ErrSessionNotFound is returned.
func (s *CookieStore) Load(c echo.Context) (*domain.SessionToken, error) {
	access, err := c.Cookie(AccessCookie)
	if err != nil || access.Value == "" {
		return nil, domain.ErrSessionNotFound
	}

	expiry, err := c.Cookie(ExpiryCookie)
	if err != nil || expiry.Value == "" {
		return nil, domain.ErrSessionNotFound
	}

	expiryMillis, err := strconv.ParseInt(expiry.Value, 10, 64)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	token := &domain.SessionToken{
		AccessToken: access.Value,
		TokenType:   "bearer",
		ExpiresAt:   time.UnixMilli(expiryMillis),
	}

	if refresh, err := c.Cookie(RefreshCookie); err == nil {
		token.RefreshToken = refresh.Value
	}

	return token, nil
}

// Save writes the token into the three session cookies. The access and expiry
// cookies live exactly as long as the token itself; the refresh cookie is
// only written when a refresh token was issued.
func (s *CookieStore) Save(c echo.Context, token *domain.SessionToken) {
	now := s.now()
	maxAge := int(token.Lifetime(now).Seconds())

	s.setCookie(c, AccessCookie, token.AccessToken, maxAge)
	s.setCookie(c, ExpiryCookie, strconv.FormatInt(token.ExpiresAt.UnixMilli(), 10), maxAge)

	if token.RefreshToken != "" {
		s.setCookie(c, RefreshCookie, token.RefreshToken, int(RefreshTokenMaxAge.Seconds()))
	}
}

// Clear expires all session cookies.
func (s *CookieStore) Clear(c echo.Context) {
	s.setCookie(c, AccessCookie, "", -1)
	s.setCookie(c, ExpiryCookie, "", -1)
	s.setCookie(c, RefreshCookie, "", -1)
}

func (s *CookieStore) setCookie(c echo.Context, name, value string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
