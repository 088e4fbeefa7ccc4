package wishlist

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
)

// Service manages the local wishlist
type Service struct {
	store  domain.WishlistStore
	logger *slog.Logger
}

// NewService creates a new wishlist service
func NewService(store domain.WishlistStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// Add saves an item. Adding an item twice keeps the first added-at time.
func (s *Service) Add(ctx context.Context, c domain.Content) error {
	if err := s.store.AddWishlist(ctx, domain.WishlistEntryFor(c)); err != nil {
		s.logger.Error("failed to add to wishlist", "error", err, "key", c.Key())
		return err
	}
	s.logger.Debug("added to wishlist", "key", c.Key())
	return nil
}

func (s *Service) Remove(ctx context.Context, mt domain.MediaType, id int) error {
	if err := s.store.RemoveWishlist(ctx, mt, id); err != nil {
		s.logger.Error("failed to remove from wishlist", "error", err, "mediaType", mt, "id", id)
		return err
	}
	return nil
}

// Toggle adds the item if absent and removes it otherwise.
// It returns whether the item is wishlisted afterwards.
func (s *Service) Toggle(ctx context.Context, c domain.Content) (bool, error) {
	wished, err := s.store.IsWishlisted(ctx, c.MediaType, c.ID)
	if err != nil {
		return false, err
	}
	if wished {
		return false, s.Remove(ctx, c.MediaType, c.ID)
	}
	return true, s.Add(ctx, c)
}

func (s *Service) Contains(ctx context.Context, mt domain.MediaType, id int) (bool, error) {
	return s.store.IsWishlisted(ctx, mt, id)
}

// List returns entries newest first. An empty media type lists everything.
func (s *Service) List(ctx context.Context, mt domain.MediaType) ([]domain.WishlistEntry, error) {
	return s.store.Wishlist(ctx, mt)
}

// Watch fires after every wishlist change until ctx is done
func (s *Service) Watch(ctx context.Context) <-chan struct{} {
	return s.store.Watch(ctx, domain.TableWishlist)
}

// Filter returns the entries whose titles fuzzy-match query, best match first.
// An empty query returns every entry.
func (s *Service) Filter(ctx context.Context, mt domain.MediaType, query string) ([]domain.WishlistEntry, error) {
	entries, err := s.List(ctx, mt)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return entries, nil
	}

	titles := make([]string, len(entries))
	for i, e := range entries {
		titles[i] = e.Title
	}

	matches := fuzzy.RankFindFold(query, titles)
	// Sort by distance (lower is better), keeping list order for ties
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]domain.WishlistEntry, 0, len(matches))
	for _, m := range matches {
		results = append(results, entries[m.OriginalIndex])
	}
	return results, nil
}
