package domain

// ModelOwner identifies the listing's owning user.
type ModelOwner struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// Name returns the username, falling back to the display name.
func (o ModelOwner) Name() string {
	if o.Username != "" {
		return o.Username
	}
	return o.DisplayName
}

// ThumbnailImage is one rendition of a listing thumbnail.
type ThumbnailImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Thumbnails groups the available thumbnail renditions.
type Thumbnails struct {
	Images []ThumbnailImage `json:"images"`
}

// ModelSummary is one marketplace listing.
type ModelSummary struct {
	UID            string     `json:"uid"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Thumbnails     Thumbnails `json:"thumbnails"`
	User           ModelOwner `json:"user"`
	ViewCount      int        `json:"viewCount"`
	LikeCount      int        `json:"likeCount"`
	IsDownloadable bool       `json:"isDownloadable"`
}

// SearchPage is one page of marketplace query results. Result order is the
// provider's and must be preserved. The cursors are opaque and only valid for
// continuing the same query with the same filters.
type SearchPage struct {
	Results    []ModelSummary
	Next       string
	Previous   string
	TotalCount int
}

// HasMore reports whether a further page can be requested.
func (p *SearchPage) HasMore() bool {
	return p.Next != ""
}

// DefaultSearchCount is the page size used when none is requested.
const DefaultSearchCount = 24

// SearchQuery holds the parameters of one marketplace search.
type SearchQuery struct {
	Query            string
	Cursor           string
	Categories       []string
	Count            int
	DownloadableOnly bool
	SortBy           string
}

// DownloadFormat is one format variant of a download grant: a short-lived
// signed URL, never persisted or cached beyond the triggering download.
type DownloadFormat struct {
	URL       string `json:"url"`
	Size      int64  `json:"size,omitempty"`
	ExpiresIn int    `json:"expires,omitempty"`
}

// FormatPriority is the ordered list of acceptable download formats; the
// first one present in a grant wins. The packaged single-file binary is
// preferred over the text scene format, which may be multi-file.
var FormatPriority = []string{"glb", "gltf"}

// SelectDownloadURL picks the download URL from a grant following the given
// priority order. Returns ErrDownloadUnavailable when no listed format is
// present.
func SelectDownloadURL(formats map[string]DownloadFormat, priority []string) (string, error) {
	for _, name := range priority {
		if f, ok := formats[name]; ok && f.URL != "" {
			return f.URL, nil
		}
	}
	return "", ErrDownloadUnavailable
}
