package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
	"github.com/mmcdole/reel/internal/resource"
)

// Options tunes a Service
type Options struct {
	// StaleAfter is how long a fetched list or details record is served without refetching.
	// Zero always refetches.
	StaleAfter time.Duration

	PageSize         int
	DetailsCacheSize int
	SyncWorkers      int
}

// Service reads the catalog through the local cache
type Service struct {
	client  domain.CatalogRepository
	store   domain.CatalogStore
	prefs   domain.Preferences
	details *lru.Cache[string, *domain.Details]
	opts    Options
	logger  *slog.Logger

	now func() time.Time
}

// NewService creates a new catalog service
func NewService(client domain.CatalogRepository, store domain.CatalogStore, prefs domain.Preferences, opts Options, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DetailsCacheSize <= 0 {
		opts.DetailsCacheSize = 256
	}
	if opts.SyncWorkers <= 0 {
		opts.SyncWorkers = 4
	}

	cache, err := lru.New[string, *domain.Details](opts.DetailsCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create details cache: %w", err)
	}

	return &Service{
		client:  client,
		store:   store,
		prefs:   prefs,
		details: cache,
		opts:    opts,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// refreshKey names the refresh stamp of a list
func refreshKey(mt domain.MediaType, cat domain.Category) string {
	return string(mt) + ":" + string(cat)
}

// isFresh reports whether the list was fetched within the staleness window
func (s *Service) isFresh(mt domain.MediaType, cat domain.Category) bool {
	if s.opts.StaleAfter <= 0 || s.prefs == nil {
		return false
	}
	at, ok := s.prefs.LastRefreshed(refreshKey(mt, cat))
	return ok && s.now().Sub(at) < s.opts.StaleAfter
}

func (s *Service) stampRefreshed(mt domain.MediaType, cat domain.Category) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.SetLastRefreshed(refreshKey(mt, cat), s.now()); err != nil {
		s.logger.Warn("failed to record refresh time", "error", err, "mediaType", mt, "category", cat)
	}
}

// Feed streams the first page of a list. Cached items are emitted while the
// fetch runs; a fresh list younger than StaleAfter is served without fetching.
func (s *Service) Feed(ctx context.Context, mt domain.MediaType, cat domain.Category) <-chan resource.Result[[]domain.Content] {
	return s.feed(mt, cat, false).Stream(ctx)
}

// ReloadFeed is Feed that always fetches
func (s *Service) ReloadFeed(ctx context.Context, mt domain.MediaType, cat domain.Category) <-chan resource.Result[[]domain.Content] {
	return s.feed(mt, cat, true).Stream(ctx)
}

func (s *Service) feed(mt domain.MediaType, cat domain.Category, force bool) *resource.Resource[[]domain.Content, []domain.Content] {
	return &resource.Resource[[]domain.Content, []domain.Content]{
		Query: func(ctx context.Context) ([]domain.Content, error) {
			return s.store.Contents(ctx, mt, cat, 0, 0)
		},
		Watch: func(ctx context.Context) <-chan struct{} {
			return s.store.Watch(ctx, domain.TableContent)
		},
		Fetch: func(ctx context.Context) ([]domain.Content, error) {
			page, err := s.client.GetList(ctx, mt, cat, paging.StartPage)
			if err != nil {
				return nil, err
			}
			return page.Results, nil
		},
		Save: func(ctx context.Context, items []domain.Content) error {
			if err := s.store.ReplaceContents(ctx, mt, cat, items); err != nil {
				return err
			}
			s.stampRefreshed(mt, cat)
			return nil
		},
		ShouldFetch: func(cached []domain.Content) bool {
			return force || len(cached) == 0 || !s.isFresh(mt, cat)
		},
		Logger: s.logger.With("mediaType", mt, "category", cat),
	}
}

// Pager returns an incremental cached list backed by the paging mediator
func (s *Service) Pager(mt domain.MediaType, cat domain.Category) *paging.Pager[domain.Content] {
	bucket := &bucketStore{
		store:     s.store,
		mt:        mt,
		cat:       cat,
		onRefresh: func() { s.stampRefreshed(mt, cat) },
	}
	source := &pageSource{fetch: func(ctx context.Context, page int) (*domain.Page[domain.Content], error) {
		return s.client.GetList(ctx, mt, cat, page)
	}}
	logger := s.logger.With("mediaType", mt, "category", cat)
	mediator := paging.NewMediator[domain.Content](source, bucket, contentID, logger)
	return paging.NewPager[domain.Content](bucket, mediator, s.opts.PageSize, logger)
}

// Genres returns the genre list of a media type, fetching it once when the cache is empty
func (s *Service) Genres(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error) {
	r := &resource.Resource[[]domain.Genre, []domain.Genre]{
		Query: func(ctx context.Context) ([]domain.Genre, error) {
			return s.store.Genres(ctx, mt)
		},
		Fetch: func(ctx context.Context) ([]domain.Genre, error) {
			return s.client.GetGenres(ctx, mt)
		},
		Save: func(ctx context.Context, genres []domain.Genre) error {
			return s.store.SaveGenres(ctx, mt, genres)
		},
		ShouldFetch: func(cached []domain.Genre) bool {
			return len(cached) == 0
		},
		Logger: s.logger,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	res := resource.Await(ctx, r.Stream(ctx))
	return res.Data, res.Err
}

// GenreNames resolves genre IDs to names, skipping unknown IDs
func GenreNames(genres []domain.Genre, ids []int) []string {
	byID := make(map[int]string, len(genres))
	for _, g := range genres {
		byID[g.ID] = g.Name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// ClearList wipes one cached list and its refresh stamp, so the next read fetches it
func (s *Service) ClearList(ctx context.Context, mt domain.MediaType, cat domain.Category) error {
	if err := s.store.ClearCategory(ctx, mt, cat); err != nil {
		return fmt.Errorf("failed to clear %s/%s: %w", mt, cat, err)
	}
	if s.prefs != nil {
		if err := s.prefs.ClearRefreshStamp(refreshKey(mt, cat)); err != nil {
			return fmt.Errorf("failed to clear refresh stamp: %w", err)
		}
	}
	s.logger.Info("list cleared", "mediaType", mt, "category", cat)
	return nil
}

// ClearCache wipes every cached list, details record and refresh stamp.
// The wishlist is kept.
func (s *Service) ClearCache(ctx context.Context) error {
	// Purge memory first; open details streams re-query as soon as the tables commit
	s.details.Purge()
	if err := s.store.ClearCache(ctx); err != nil {
		s.logger.Error("failed to clear cache", "error", err)
		return err
	}
	if s.prefs != nil {
		if err := s.prefs.ClearRefreshStamps(); err != nil {
			return fmt.Errorf("failed to clear refresh stamps: %w", err)
		}
	}
	s.logger.Info("cache cleared")
	return nil
}

func contentID(c domain.Content) int {
	return c.ID
}
