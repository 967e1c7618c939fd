package session

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"model-hub/internal/domain"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(cookies ...*http.Cookie) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCookieStore_SaveSetsThreeCookies(t *testing.T) {
	store := NewCookieStore(true)
	c, rec := newContext()

	expiresAt := time.Now().Add(time.Hour)
	store.Save(c, &domain.SessionToken{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)

	access := cookieByName(cookies, AccessCookie)
	require.NotNil(t, access)
	assert.Equal(t, "access-1", access.Value)
	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.Equal(t, "/", access.Path)
	assert.InDelta(t, 3600, access.MaxAge, 5)

	refresh := cookieByName(cookies, RefreshCookie)
	require.NotNil(t, refresh)
	assert.Equal(t, "refresh-1", refresh.Value)
	assert.Equal(t, int(RefreshTokenMaxAge.Seconds()), refresh.MaxAge)

	expiry := cookieByName(cookies, ExpiryCookie)
	require.NotNil(t, expiry)
	assert.Equal(t, strconv.FormatInt(expiresAt.UnixMilli(), 10), expiry.Value)
	assert.InDelta(t, 3600, expiry.MaxAge, 5)
}

func TestCookieStore_SaveWithoutRefreshToken(t *testing.T) {
	store := NewCookieStore(false)
	c, rec := newContext()

	store.Save(c, &domain.SessionToken{
		AccessToken: "access-1",
		ExpiresAt:   time.Now().Add(time.Hour),
	})

	cookies := rec.Result().Cookies()
	assert.Len(t, cookies, 2)
	assert.Nil(t, cookieByName(cookies, RefreshCookie))
}

func TestCookieStore_LoadRoundTrip(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	c, _ := newContext(
		&http.Cookie{Name: AccessCookie, Value: "access-1"},
		&http.Cookie{Name: RefreshCookie, Value: "refresh-1"},
		&http.Cookie{Name: ExpiryCookie, Value: strconv.FormatInt(expiresAt.UnixMilli(), 10)},
	)

	store := NewCookieStore(false)
	token, err := store.Load(c)

	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)
	assert.Equal(t, "refresh-1", token.RefreshToken)
	assert.Equal(t, expiresAt.UnixMilli(), token.ExpiresAt.UnixMilli())
}

func TestCookieStore_LoadMissingAccessToken(t *testing.T) {
	c, _ := newContext(&http.Cookie{Name: ExpiryCookie, Value: "123456789"})

	store := NewCookieStore(false)
	_, err := store.Load(c)

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCookieStore_LoadMissingExpiryNeverValid(t *testing.T) {
	// An access token without a recorded expiry must not be usable.
	c, _ := newContext(&http.Cookie{Name: AccessCookie, Value: "access-1"})

	store := NewCookieStore(false)
	_, err := store.Load(c)

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCookieStore_LoadMalformedExpiry(t *testing.T) {
	c, _ := newContext(
		&http.Cookie{Name: AccessCookie, Value: "access-1"},
		&http.Cookie{Name: ExpiryCookie, Value: "not-a-number"},
	)

	store := NewCookieStore(false)
	_, err := store.Load(c)

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestCookieStore_LoadWithoutRefreshCookie(t *testing.T) {
	c, _ := newContext(
		&http.Cookie{Name: AccessCookie, Value: "access-1"},
		&http.Cookie{Name: ExpiryCookie, Value: strconv.FormatInt(time.Now().Add(time.Hour).UnixMilli(), 10)},
	)

	store := NewCookieStore(false)
	token, err := store.Load(c)

	require.NoError(t, err)
	assert.Empty(t, token.RefreshToken)
}

func TestCookieStore_Clear(t *testing.T) {
	store := NewCookieStore(false)
	c, rec := newContext()

	store.Clear(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 3)
	for _, cookie := range cookies {
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	}
}
