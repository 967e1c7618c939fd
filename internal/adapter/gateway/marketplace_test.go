package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"model-hub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchBody = `{
	"results": [
		{"uid": "m1", "name": "Old Terminal", "viewCount": 120, "likeCount": 7, "isDownloadable": true,
		 "user": {"username": "artist42", "displayName": "Artist"},
		 "thumbnails": {"images": [{"url": "https://img.example.com/m1.png", "width": 256, "height": 256}]}},
		{"uid": "m2", "name": "CRT Monitor", "isDownloadable": false, "user": {"displayName": "Someone"}}
	],
	"next": "cursor-2",
	"previous": "",
	"totalCount": 42
}`

func TestMarketplaceGateway_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "retro terminal", q.Get("q"))
		assert.Equal(t, "models", q.Get("type"))
		assert.Equal(t, "24", q.Get("count"))
		assert.Equal(t, "false", q.Get("archives_flavours"))
		assert.Equal(t, "true", q.Get("downloadable"))
		assert.Equal(t, "electronics,furniture", q.Get("categories"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	page, err := g.Search(context.Background(), domain.SearchQuery{
		Query:            "retro terminal",
		Categories:       []string{"electronics", "furniture"},
		DownloadableOnly: true,
	})

	require.NoError(t, err)
	require.Len(t, page.Results, 2)
	assert.Equal(t, "m1", page.Results[0].UID)
	assert.Equal(t, "Old Terminal", page.Results[0].Name)
	assert.Equal(t, "artist42", page.Results[0].User.Name())
	assert.Equal(t, 120, page.Results[0].ViewCount)
	assert.True(t, page.Results[0].IsDownloadable)
	assert.Equal(t, "https://img.example.com/m1.png", page.Results[0].Thumbnails.Images[0].URL)
	assert.Equal(t, "cursor-2", page.Next)
	assert.Empty(t, page.Previous)
	assert.Equal(t, 42, page.TotalCount)
}

func TestMarketplaceGateway_SearchBlankQueryShortCircuits(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	for _, query := range []string{"", "   ", "\t\n"} {
		_, err := g.Search(context.Background(), domain.SearchQuery{Query: query})
		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	}
	assert.Zero(t, calls.Load(), "blank queries must not reach the network")
}

func TestMarketplaceGateway_SearchCursorForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cursor-2", r.URL.Query().Get("cursor"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": [], "next": "", "previous": "cursor-1", "totalCount": 42}`))
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	page, err := g.Search(context.Background(), domain.SearchQuery{Query: "terminal", Cursor: "cursor-2"})

	require.NoError(t, err)
	assert.False(t, page.HasMore())
}

func TestMarketplaceGateway_SearchProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	_, err := g.Search(context.Background(), domain.SearchQuery{Query: "terminal"})

	assert.ErrorIs(t, err, domain.ErrSearchFailed)
}

func TestMarketplaceGateway_Featured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "-publishedAt", q.Get("sort_by"))
		assert.Equal(t, "true", q.Get("downloadable"))
		assert.Equal(t, "12", q.Get("count"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	page, err := g.Featured(context.Background(), 12)

	require.NoError(t, err)
	assert.Len(t, page.Results, 2)
}

func TestMarketplaceGateway_GetModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/m1", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"uid": "m1", "name": "Old Terminal", "description": "dusty", "likeCount": 7}`))
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	model, err := g.GetModel(context.Background(), "m1")

	require.NoError(t, err)
	assert.Equal(t, "Old Terminal", model.Name)
	assert.Equal(t, "dusty", model.Description)
}

func TestMarketplaceGateway_GetModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	_, err := g.GetModel(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrModelNotFound)
}

func TestMarketplaceGateway_RequestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/m1/download", r.URL.Path)
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"glb": {"url": "https://cdn.example.com/m1.glb", "size": 2048, "expires": 60},
			"gltf": {"url": "https://cdn.example.com/m1.zip"}}`))
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	formats, err := g.RequestDownload(context.Background(), "m1", "access-1")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/m1.glb", formats["glb"].URL)
	assert.Equal(t, int64(2048), formats["glb"].Size)
	assert.Contains(t, formats, "gltf")
}

func TestMarketplaceGateway_RequestDownloadProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"detail": "model is not downloadable"}`))
	}))
	defer srv.Close()

	g := NewMarketplaceGateway(srv.URL, 5*time.Second, slog.Default())

	_, err := g.RequestDownload(context.Background(), "m1", "access-1")

	assert.ErrorIs(t, err, domain.ErrDownloadUnavailable)

	var perr *domain.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, http.StatusForbidden, perr.StatusCode)
}

func TestCursorFromLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"empty", "", ""},
		{"bare cursor", "cursor-2", "cursor-2"},
		{"full url", "https://api.example.com/v3/search?q=x&cursor=abc24", "abc24"},
		{"url without cursor", "https://api.example.com/v3/search?q=x", "https://api.example.com/v3/search?q=x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cursorFromLink(tt.link))
		})
	}
}
