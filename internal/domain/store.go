package domain

import (
	"context"
	"time"
)

// Table names a cache table for change notifications
type Table string

const (
	TableContent    Table = "content"
	TableRemoteKeys Table = "remote_keys"
	TableDetails    Table = "details"
	TableWishlist   Table = "wishlist"
	TableGenres     Table = "genres"
)

// CatalogStore is the local relational cache of catalog lists.
// Every write is one transaction; readers only observe committed state.
type CatalogStore interface {
	// === Lists ===
	Contents(ctx context.Context, mt MediaType, cat Category, offset, limit int) ([]Content, error)
	CountContents(ctx context.Context, mt MediaType, cat Category) (int, error)
	AllContents(ctx context.Context, mt MediaType) ([]Content, error)

	// ReplaceContents stores a first page without remote keys (non-paging path)
	ReplaceContents(ctx context.Context, mt MediaType, cat Category, items []Content) error

	// === Paging ===
	RemoteKey(ctx context.Context, mt MediaType, cat Category, id int) (*RemoteKey, error)
	SavePage(ctx context.Context, mt MediaType, cat Category, page int, refresh bool, keys []RemoteKey, items []Content) error

	// === Details / Genres ===
	Details(ctx context.Context, mt MediaType, id int) (*Details, error)
	SaveDetails(ctx context.Context, d *Details) error
	Genres(ctx context.Context, mt MediaType) ([]Genre, error)
	SaveGenres(ctx context.Context, mt MediaType, genres []Genre) error

	// === Invalidation ===
	ClearCategory(ctx context.Context, mt MediaType, cat Category) error
	ClearCache(ctx context.Context) error // Never touches the wishlist

	// Watch fires after every committed write to any of the given tables
	Watch(ctx context.Context, tables ...Table) <-chan struct{}

	Close() error
}

// WishlistStore persists wishlist entries, independent of the cache tables
type WishlistStore interface {
	AddWishlist(ctx context.Context, entry WishlistEntry) error
	RemoveWishlist(ctx context.Context, mt MediaType, id int) error
	IsWishlisted(ctx context.Context, mt MediaType, id int) (bool, error)
	Wishlist(ctx context.Context, mt MediaType) ([]WishlistEntry, error)
	Watch(ctx context.Context, tables ...Table) <-chan struct{}
}

// Preferences is the key-value application preference store
type Preferences interface {
	GetString(key string) (string, bool)
	SetString(key, value string) error
	GetBool(key string) (bool, bool)
	SetBool(key string, value bool) error

	// Refresh stamps record when a list was last fetched successfully
	LastRefreshed(key string) (time.Time, bool)
	SetLastRefreshed(key string, at time.Time) error
	ClearRefreshStamp(key string) error
	ClearRefreshStamps() error

	Close() error
}
