package client

import (
	"context"

	"model-hub/internal/domain"
)

// SearchSession accumulates result pages of one marketplace query. A page
// cursor is only valid for continuing the same query with the same filters,
// so the session owns both the accumulated results and the cursor.
type SearchSession struct {
	client *Client
	base   domain.SearchQuery

	results    []domain.ModelSummary
	cursor     string
	totalCount int
}

// Results returns the accumulated results in provider order.
func (s *SearchSession) Results() []domain.ModelSummary {
	out := make([]domain.ModelSummary, len(s.results))
	copy(out, s.results)
	return out
}

// TotalCount returns the provider's approximate total for the query.
func (s *SearchSession) TotalCount() int {
	return s.totalCount
}

// HasMore reports whether a further page can be loaded.
func (s *SearchSession) HasMore() bool {
	return s.cursor != ""
}

// LoadMore fetches the next page of the same query and appends it to the
// accumulated results, preserving order, then adopts the new page's cursor.
// Exhausted pagination returns ErrNoMorePages without a network call. A page
// that arrives after the session's cursor has moved on is discarded rather
// than applied.
func (s *SearchSession) LoadMore(ctx context.Context) error {
	cursor := s.cursor
	if cursor == "" {
		return domain.ErrNoMorePages
	}

	q := s.base
	q.Cursor = cursor

	page, err := s.client.catalog.Search(ctx, q)
	if err != nil {
		return err
	}

	if s.cursor != cursor {
		return domain.ErrSearchSuperseded
	}

	s.results = append(s.results, page.Results...)
	s.cursor = page.Next
	if page.TotalCount > 0 {
		s.totalCount = page.TotalCount
	}
	return nil
}
