package domain

import "time"

// DefaultExpiresIn is assumed when the provider omits expires_in.
const DefaultExpiresIn = 3600 * time.Second

// SessionToken represents the marketplace access grant for one browser session.
// Raw token values never leave the server; clients only see an authenticated
// flag and the expiry timestamp.
type SessionToken struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
}

// NewSessionToken builds a SessionToken from the provider's token endpoint
// fields at issuance time. A zero expiresAt means the provider omitted
// expires_in; the default lifetime then applies from now. When the provider
// does not rotate the refresh token, the previously stored one is retained.
func NewSessionToken(accessToken, refreshToken, tokenType string, expiresAt time.Time, existingRefreshToken string, now time.Time) *SessionToken {
	if expiresAt.IsZero() {
		expiresAt = now.Add(DefaultExpiresIn)
	}

	if refreshToken == "" {
		refreshToken = existingRefreshToken
	}

	if tokenType == "" {
		tokenType = "bearer"
	}

	return &SessionToken{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiresAt:    expiresAt,
	}
}

// IsExpired reports whether the token's validity window has passed.
func (t *SessionToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Valid reports whether the token can be used as a bearer credential.
// A token without a recorded expiry is never valid.
func (t *SessionToken) Valid(now time.Time) bool {
	return t.AccessToken != "" && !t.ExpiresAt.IsZero() && !t.IsExpired(now)
}

// Lifetime returns the remaining validity, floored at zero.
func (t *SessionToken) Lifetime(now time.Time) time.Duration {
	if t.IsExpired(now) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}
