package catalog

import (
	"context"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
)

// bucketStore binds one (media type, category) list of the cache to the pager
// and mediator interfaces
type bucketStore struct {
	store domain.CatalogStore
	mt    domain.MediaType
	cat   domain.Category

	// onRefresh runs after a refresh page is committed
	onRefresh func()
}

var (
	_ paging.KeyStore[domain.Content]    = (*bucketStore)(nil)
	_ paging.LocalSource[domain.Content] = (*bucketStore)(nil)
)

func (b *bucketStore) Items(ctx context.Context, offset, limit int) ([]domain.Content, error) {
	return b.store.Contents(ctx, b.mt, b.cat, offset, limit)
}

func (b *bucketStore) RemoteKey(ctx context.Context, id int) (*paging.Key, error) {
	key, err := b.store.RemoteKey(ctx, b.mt, b.cat, id)
	if err != nil || key == nil {
		return nil, err
	}
	return &paging.Key{ID: key.ID, PrevPage: key.PrevPage, NextPage: key.NextPage}, nil
}

func (b *bucketStore) SavePage(ctx context.Context, page int, refresh bool, keys []paging.Key, items []domain.Content) error {
	remoteKeys := make([]domain.RemoteKey, len(keys))
	for i, k := range keys {
		remoteKeys[i] = domain.RemoteKey{
			ID:        k.ID,
			MediaType: b.mt,
			Category:  b.cat,
			PrevPage:  k.PrevPage,
			NextPage:  k.NextPage,
		}
	}
	if err := b.store.SavePage(ctx, b.mt, b.cat, page, refresh, remoteKeys, items); err != nil {
		return err
	}
	if refresh && b.onRefresh != nil {
		b.onRefresh()
	}
	return nil
}

// maxRemotePage is the last page the catalog API serves, whatever total_pages says
const maxRemotePage = 500

// pageSource adapts a page fetcher to paging.Source. Pages past the total page
// count, or past maxRemotePage, come back empty without a request.
type pageSource struct {
	fetch func(ctx context.Context, page int) (*domain.Page[domain.Content], error)

	totalPages int // Zero until the first response
}

func (s *pageSource) FetchPage(ctx context.Context, page int) ([]domain.Content, error) {
	if page > maxRemotePage || (s.totalPages > 0 && page > s.totalPages) {
		return nil, nil
	}
	resp, err := s.fetch(ctx, page)
	if err != nil {
		return nil, err
	}
	if resp.TotalPages > 0 {
		s.totalPages = resp.TotalPages
	}
	return resp.Results, nil
}
