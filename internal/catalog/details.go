package catalog

import (
	"context"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/resource"
)

func detailsKey(mt domain.MediaType, id int) string {
	return domain.Content{ID: id, MediaType: mt}.Key()
}

// Details streams the full record of one movie or show. The record is served
// from memory, then the cache table, and refetched once older than StaleAfter.
func (s *Service) Details(ctx context.Context, mt domain.MediaType, id int) <-chan resource.Result[*domain.Details] {
	key := detailsKey(mt, id)

	r := &resource.Resource[*domain.Details, *domain.Details]{
		Query: func(ctx context.Context) (*domain.Details, error) {
			if d, ok := s.details.Get(key); ok {
				return d, nil
			}
			d, err := s.store.Details(ctx, mt, id)
			if err != nil || d == nil {
				return nil, err
			}
			s.details.Add(key, d)
			return d, nil
		},
		Watch: func(ctx context.Context) <-chan struct{} {
			return s.store.Watch(ctx, domain.TableDetails)
		},
		Fetch: func(ctx context.Context) (*domain.Details, error) {
			return s.client.GetDetails(ctx, mt, id)
		},
		Save: func(ctx context.Context, d *domain.Details) error {
			// Drop the memory copy first so the post-save query reads the committed row
			s.details.Remove(key)
			return s.store.SaveDetails(ctx, d)
		},
		ShouldFetch: func(cached *domain.Details) bool {
			if cached == nil || s.opts.StaleAfter <= 0 {
				return true
			}
			return s.now().Sub(cached.FetchedAt) >= s.opts.StaleAfter
		},
		Logger: s.logger.With("details", key),
	}
	return r.Stream(ctx)
}
