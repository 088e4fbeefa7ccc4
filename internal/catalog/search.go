package catalog

import (
	"context"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
)

// Search returns a network-only pager over remote search results.
// Results are never written to the cache.
func (s *Service) Search(mt domain.MediaType, query string) *paging.Pager[domain.Content] {
	source := &pageSource{fetch: func(ctx context.Context, page int) (*domain.Page[domain.Content], error) {
		return s.client.Search(ctx, mt, query, page)
	}}
	return paging.NewRemotePager[domain.Content](source, s.opts.PageSize, s.logger.With("search", query))
}

// ByGenre returns a network-only pager over one genre, most popular first
func (s *Service) ByGenre(mt domain.MediaType, genreID int) *paging.Pager[domain.Content] {
	source := &pageSource{fetch: func(ctx context.Context, page int) (*domain.Page[domain.Content], error) {
		return s.client.Discover(ctx, mt, genreID, page)
	}}
	return paging.NewRemotePager[domain.Content](source, s.opts.PageSize, s.logger.With("genre", genreID))
}

// contentIndex implements sahilm/fuzzy.Source over cached titles
type contentIndex struct {
	items       []domain.Content
	lowerTitles []string
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *contentIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *contentIndex) Len() int { return len(idx.items) }

// SearchOffline fuzzy-matches query against every cached title of a media type.
// Items cached under several categories are returned once, best match first.
func (s *Service) SearchOffline(ctx context.Context, mt domain.MediaType, query string) ([]domain.Content, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	all, err := s.store.AllContents(ctx, mt)
	if err != nil {
		return nil, err
	}

	idx := &contentIndex{}
	seen := make(map[string]bool, len(all))
	for _, c := range all {
		if seen[c.Key()] {
			continue
		}
		seen[c.Key()] = true
		idx.items = append(idx.items, c)
		idx.lowerTitles = append(idx.lowerTitles, strings.ToLower(c.Title))
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), idx)
	results := make([]domain.Content, 0, len(matches))
	for _, m := range matches {
		results = append(results, idx.items[m.Index])
	}

	s.logger.Debug("offline search", "query", query, "indexed", idx.Len(), "results", len(results))
	return results, nil
}
