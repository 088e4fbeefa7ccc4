package tui

import (
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
	"github.com/mmcdole/reel/internal/resource"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// PageLoadedMsg signals that a pager finished a load
type PageLoadedMsg struct {
	Pager    *paging.Pager[domain.Content]
	LoadType paging.LoadType
	Err      error
}

// OfflineResultsMsg carries cached matches when remote search is unreachable
type OfflineResultsMsg struct {
	Query string
	Items []domain.Content
	Err   error
}

// DetailsMsg carries one envelope of a details stream
type DetailsMsg struct {
	Result resource.Result[*domain.Details]
	stream <-chan resource.Result[*domain.Details]
}

// DetailsClosedMsg signals that a details stream ended
type DetailsClosedMsg struct {
	stream <-chan resource.Result[*domain.Details]
}

// WishlistLoadedMsg carries the full wishlist
type WishlistLoadedMsg struct {
	Entries []domain.WishlistEntry
}

// WishlistChangedMsg signals that the stored wishlist changed
type WishlistChangedMsg struct{}

// WishlistToggledMsg signals that an item was added to or removed from the wishlist
type WishlistToggledMsg struct {
	Item domain.Content
	On   bool
}

// GenresLoadedMsg carries the genre list of a media type
type GenresLoadedMsg struct {
	MediaType domain.MediaType
	Genres    []domain.Genre
}

// TickMsg is sent periodically for spinner animation
type TickMsg struct{}

// ClearStatusMsg clears the status line
type ClearStatusMsg struct{}
