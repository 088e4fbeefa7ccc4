package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
	"github.com/mmcdole/reel/internal/resource"
)

const requestTimeout = 30 * time.Second

// CatalogService is the catalog surface the TUI needs
type CatalogService interface {
	Pager(mt domain.MediaType, cat domain.Category) *paging.Pager[domain.Content]
	Search(mt domain.MediaType, query string) *paging.Pager[domain.Content]
	SearchOffline(ctx context.Context, mt domain.MediaType, query string) ([]domain.Content, error)
	Details(ctx context.Context, mt domain.MediaType, id int) <-chan resource.Result[*domain.Details]
	Genres(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error)
}

// WishlistService is the wishlist surface the TUI needs
type WishlistService interface {
	Toggle(ctx context.Context, c domain.Content) (bool, error)
	List(ctx context.Context, mt domain.MediaType) ([]domain.WishlistEntry, error)
	Watch(ctx context.Context) <-chan struct{}
}

// Command factories for async operations

// LoadPageCmd runs one pager load
func LoadPageCmd(p *paging.Pager[domain.Content], loadType paging.LoadType) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		var err error
		switch loadType {
		case paging.Refresh:
			err = p.Refresh(ctx)
		case paging.Prepend:
			err = p.LoadPrevious(ctx)
		case paging.Append:
			err = p.LoadMore(ctx)
		}
		return PageLoadedMsg{Pager: p, LoadType: loadType, Err: err}
	}
}

// SearchOfflineCmd matches query against cached titles
func SearchOfflineCmd(svc CatalogService, mt domain.MediaType, query string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		items, err := svc.SearchOffline(ctx, mt, query)
		return OfflineResultsMsg{Query: query, Items: items, Err: err}
	}
}

// WaitDetailsCmd delivers the next envelope of a details stream
func WaitDetailsCmd(stream <-chan resource.Result[*domain.Details]) tea.Cmd {
	return func() tea.Msg {
		res, ok := <-stream
		if !ok {
			return DetailsClosedMsg{stream: stream}
		}
		return DetailsMsg{Result: res, stream: stream}
	}
}

// LoadWishlistCmd loads every wishlist entry
func LoadWishlistCmd(svc WishlistService) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		entries, err := svc.List(ctx, "")
		if err != nil {
			return ErrMsg{Err: err, Context: "loading wishlist"}
		}
		return WishlistLoadedMsg{Entries: entries}
	}
}

// WatchWishlistCmd waits for the next wishlist change
func WatchWishlistCmd(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return WishlistChangedMsg{}
	}
}

// ToggleWishlistCmd adds or removes an item
func ToggleWishlistCmd(svc WishlistService, item domain.Content) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		on, err := svc.Toggle(ctx, item)
		if err != nil {
			return ErrMsg{Err: err, Context: "updating wishlist"}
		}
		return WishlistToggledMsg{Item: item, On: on}
	}
}

// LoadGenresCmd loads genre names for a media type
func LoadGenresCmd(svc CatalogService, mt domain.MediaType) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		genres, err := svc.Genres(ctx, mt)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading genres"}
		}
		return GenresLoadedMsg{MediaType: mt, Genres: genres}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
