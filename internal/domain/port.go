package domain

import "context"

// TokenExchanger performs the OAuth2 grant exchanges against the marketplace.
type TokenExchanger interface {
	// ExchangeCode trades an authorization code for a fresh session token.
	ExchangeCode(ctx context.Context, code string) (*SessionToken, error)
	// Refresh trades a refresh token for a renewed session token.
	Refresh(ctx context.Context, refreshToken string) (*SessionToken, error)
}

// AssetCatalog queries the marketplace's model listings and download grants.
type AssetCatalog interface {
	Search(ctx context.Context, q SearchQuery) (*SearchPage, error)
	Featured(ctx context.Context, count int) (*SearchPage, error)
	GetModel(ctx context.Context, uid string) (*ModelSummary, error)
	// RequestDownload obtains a short-lived download grant for a model using
	// the access token as bearer credential.
	RequestDownload(ctx context.Context, modelUID, accessToken string) (map[string]DownloadFormat, error)
}
