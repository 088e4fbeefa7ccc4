package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/paging"
	"github.com/mmcdole/reel/internal/resource"
)

// ViewMode is the screen currently shown
type ViewMode int

const (
	ViewBrowse ViewMode = iota
	ViewSearch
	ViewWishlist
	ViewDetails
	ViewHelp
)

const (
	// Rows from the end of the list at which the next page is requested
	prefetchDistance = 3

	statusTimeout = 4 * time.Second
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	Catalog  CatalogService
	Wishlist WishlistService

	// Browsing position
	mediaType  domain.MediaType
	categories []domain.Category
	catIdx     int
	mode       ViewMode
	returnMode ViewMode // Mode restored when leaving details or help

	// Lists
	browse  *paging.Pager[domain.Content] // Category pager, kept while searching
	pager   *paging.Pager[domain.Content] // Pager backing items; nil for offline search results
	items   []domain.Content
	cursor  int
	loading bool
	offline bool

	// Search
	searching   bool
	searchInput textinput.Model
	query       string

	// Wishlist and genres
	wishlist    []domain.WishlistEntry
	wished      map[string]bool
	wishChanges <-chan struct{}
	genres      map[domain.MediaType][]domain.Genre

	// Details
	details       *domain.Details
	detailsStatus resource.Status
	detailsErr    error
	detailsStream <-chan resource.Result[*domain.Details]
	detailsCancel context.CancelFunc

	cancel context.CancelFunc // Stops background watches on quit

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
}

// NewModel creates a new application model opened on the given list
func NewModel(catalog CatalogService, wishlist WishlistService, mt domain.MediaType, cat domain.Category) Model {
	input := textinput.New()
	input.Placeholder = "Search titles"
	input.Prompt = "/ "
	input.CharLimit = 100

	categories := domain.Categories(mt)
	catIdx := 0
	for i, c := range categories {
		if c == cat {
			catIdx = i
		}
	}

	m := Model{
		Catalog:     catalog,
		Wishlist:    wishlist,
		mediaType:   mt,
		categories:  categories,
		catIdx:      catIdx,
		searchInput: input,
		wished:      make(map[string]bool),
		genres:      make(map[domain.MediaType][]domain.Genre),
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wishChanges = wishlist.Watch(ctx)

	m.browse = catalog.Pager(mt, m.category())
	m.pager = m.browse
	m.loading = true
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		LoadPageCmd(m.pager, paging.Refresh),
		LoadWishlistCmd(m.Wishlist),
		WatchWishlistCmd(m.wishChanges),
		LoadGenresCmd(m.Catalog, m.mediaType),
		TickCmd(100*time.Millisecond),
	)
}

func (m Model) category() domain.Category {
	return m.categories[m.catIdx]
}

// Selection returns the media type and category last browsed
func (m Model) Selection() (domain.MediaType, domain.Category) {
	return m.mediaType, m.category()
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.searchInput.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchInput(msg)
		}
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(100 * time.Millisecond)

	case PageLoadedMsg:
		return m.handlePageLoaded(msg)

	case OfflineResultsMsg:
		if m.mode != ViewSearch || msg.Query != m.query {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			return m, m.setStatus(ErrMsg{Err: msg.Err, Context: "searching cache"}.Error(), true)
		}
		m.pager = nil
		m.items = msg.Items
		m.cursor = 0
		return m, m.setStatus(fmt.Sprintf("Offline · %d cached matches", len(msg.Items)), true)

	case DetailsMsg:
		if msg.stream != m.detailsStream {
			return m, nil
		}
		m.detailsStatus = msg.Result.Status
		m.detailsErr = msg.Result.Err
		if msg.Result.Data != nil {
			m.details = msg.Result.Data
		}
		return m, WaitDetailsCmd(msg.stream)

	case DetailsClosedMsg:
		if msg.stream == m.detailsStream {
			m.detailsStream = nil
		}
		return m, nil

	case WishlistLoadedMsg:
		m.wishlist = msg.Entries
		m.wished = make(map[string]bool, len(msg.Entries))
		for _, e := range msg.Entries {
			m.wished[e.Key()] = true
		}
		if m.mode == ViewWishlist {
			m.items = wishlistItems(m.wishlist)
			m.clampCursor()
		}
		return m, nil

	case WishlistToggledMsg:
		m.wished[msg.Item.Key()] = msg.On
		text := "Removed from wishlist"
		if msg.On {
			text = "Added to wishlist"
		}
		return m, m.setStatus(text, false)

	case WishlistChangedMsg:
		return m, tea.Batch(LoadWishlistCmd(m.Wishlist), WatchWishlistCmd(m.wishChanges))

	case GenresLoadedMsg:
		m.genres[msg.MediaType] = msg.Genres
		return m, nil

	case ErrMsg:
		return m, m.setStatus(msg.Error(), true)

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handlePageLoaded(msg PageLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.Pager != m.pager {
		return m, nil // Stale load from a list no longer shown
	}
	m.loading = false

	if m.mode == ViewSearch || (m.mode == ViewBrowse && msg.Pager == m.browse) {
		before := len(m.items)
		m.items = msg.Pager.Items()
		if msg.LoadType == paging.Prepend && msg.Err == nil {
			m.cursor += len(m.items) - before
		}
		if msg.LoadType == paging.Refresh && msg.Err == nil {
			m.cursor = 0
		}
		m.clampCursor()
	}

	if msg.Err == nil {
		m.offline = false
		return m, nil
	}

	m.offline = domain.Classify(msg.Err) == domain.KindTransport
	if m.mode == ViewSearch && m.offline && len(m.items) == 0 {
		m.loading = true
		return m, SearchOfflineCmd(m.Catalog, m.mediaType, m.query)
	}
	return m, m.setStatus(errorText(msg.Err), true)
}

func (m Model) handleSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.searching = false
		m.searchInput.Blur()
		query := m.searchInput.Value()
		if query == "" {
			return m, nil
		}
		return m, m.startSearch(query)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *Model) startSearch(query string) tea.Cmd {
	m.query = query
	m.mode = ViewSearch
	m.pager = m.Catalog.Search(m.mediaType, query)
	m.items = nil
	m.cursor = 0
	m.loading = true
	return LoadPageCmd(m.pager, paging.Refresh)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Quit):
		m.closeDetails()
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		if m.mode == ViewHelp {
			m.mode = m.returnMode
		} else {
			m.returnMode = m.mode
			m.mode = ViewHelp
		}
		return m, nil
	}

	if m.mode == ViewHelp {
		if key.Matches(msg, Keys.Back) {
			m.mode = m.returnMode
		}
		return m, nil
	}

	if m.mode == ViewDetails {
		switch {
		case key.Matches(msg, Keys.Back):
			m.closeDetails()
			m.mode = m.returnMode
		case key.Matches(msg, Keys.ToggleWish) && m.details != nil:
			return m, ToggleWishlistCmd(m.Wishlist, m.details.Content)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, Keys.Up):
		return m, m.moveCursor(-1)
	case key.Matches(msg, Keys.Down):
		return m, m.moveCursor(1)
	case key.Matches(msg, Keys.PageUp):
		return m, m.moveCursor(-m.listHeight())
	case key.Matches(msg, Keys.PageDown):
		return m, m.moveCursor(m.listHeight())
	case key.Matches(msg, Keys.Home):
		return m, m.moveCursor(-m.cursor)
	case key.Matches(msg, Keys.End):
		return m, m.moveCursor(len(m.items))

	case key.Matches(msg, Keys.NextTab):
		if m.mode == ViewBrowse {
			return m, m.switchCategory((m.catIdx + 1) % len(m.categories))
		}
	case key.Matches(msg, Keys.PrevTab):
		if m.mode == ViewBrowse {
			return m, m.switchCategory((m.catIdx + len(m.categories) - 1) % len(m.categories))
		}

	case key.Matches(msg, Keys.ToggleType):
		return m, m.toggleMediaType()

	case key.Matches(msg, Keys.Refresh):
		if m.mode == ViewWishlist {
			return m, LoadWishlistCmd(m.Wishlist)
		}
		if m.mode == ViewSearch && m.pager == nil {
			return m, m.startSearch(m.query)
		}
		m.loading = true
		return m, LoadPageCmd(m.pager, paging.Refresh)

	case key.Matches(msg, Keys.LoadPrevious):
		if m.mode == ViewBrowse && !m.loading {
			m.loading = true
			return m, LoadPageCmd(m.pager, paging.Prepend)
		}

	case key.Matches(msg, Keys.Search):
		m.searching = true
		m.searchInput.SetValue("")
		return m, m.searchInput.Focus()

	case key.Matches(msg, Keys.ToggleWish):
		if item, ok := m.selected(); ok {
			return m, ToggleWishlistCmd(m.Wishlist, item)
		}

	case key.Matches(msg, Keys.WishlistView):
		if m.mode == ViewWishlist {
			m.backToBrowse()
			return m, nil
		}
		m.mode = ViewWishlist
		m.items = wishlistItems(m.wishlist)
		m.cursor = 0
		return m, LoadWishlistCmd(m.Wishlist)

	case key.Matches(msg, Keys.Enter):
		if item, ok := m.selected(); ok {
			return m, m.openDetails(item)
		}

	case key.Matches(msg, Keys.Back):
		if m.mode != ViewBrowse {
			m.backToBrowse()
		}
	}

	return m, nil
}

func (m *Model) backToBrowse() {
	m.mode = ViewBrowse
	m.pager = m.browse
	m.items = m.browse.Items()
	m.loading = false
	m.clampCursor()
}

func (m *Model) switchCategory(idx int) tea.Cmd {
	m.catIdx = idx
	m.browse = m.Catalog.Pager(m.mediaType, m.category())
	m.pager = m.browse
	m.items = nil
	m.cursor = 0
	m.loading = true
	m.offline = false
	return LoadPageCmd(m.pager, paging.Refresh)
}

func (m *Model) toggleMediaType() tea.Cmd {
	current := m.category()
	if m.mediaType == domain.MediaTypeMovie {
		m.mediaType = domain.MediaTypeTV
	} else {
		m.mediaType = domain.MediaTypeMovie
	}
	m.categories = domain.Categories(m.mediaType)

	idx := 0
	for i, c := range m.categories {
		if c == current {
			idx = i
		}
	}

	var cmds []tea.Cmd
	if _, ok := m.genres[m.mediaType]; !ok {
		cmds = append(cmds, LoadGenresCmd(m.Catalog, m.mediaType))
	}

	mode := m.mode
	cmds = append(cmds, m.switchCategory(idx))
	switch mode {
	case ViewSearch:
		cmds = append(cmds, m.startSearch(m.query))
	case ViewWishlist:
		// The category pager loads in the background; the wishlist stays visible
		m.mode = ViewWishlist
		m.items = wishlistItems(m.wishlist)
		m.loading = false
	}
	return tea.Batch(cmds...)
}

// moveCursor moves the selection and requests the next page near the end
func (m *Model) moveCursor(delta int) tea.Cmd {
	m.cursor += delta
	m.clampCursor()

	if m.pager == nil || m.mode == ViewWishlist {
		return nil
	}
	m.pager.SetAnchor(m.cursor)

	if m.loading || m.pager.Status().Append.EndReached {
		return nil
	}
	if m.cursor >= len(m.items)-prefetchDistance {
		m.loading = true
		return LoadPageCmd(m.pager, paging.Append)
	}
	return nil
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.items) {
		m.cursor = len(m.items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) selected() (domain.Content, bool) {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return domain.Content{}, false
	}
	return m.items[m.cursor], true
}

func (m *Model) openDetails(item domain.Content) tea.Cmd {
	m.closeDetails()

	ctx, cancel := context.WithCancel(context.Background())
	m.detailsCancel = cancel
	m.detailsStream = m.Catalog.Details(ctx, item.MediaType, item.ID)
	m.details = &domain.Details{Content: item}
	m.detailsStatus = resource.StatusLoading
	m.detailsErr = nil
	m.returnMode = m.mode
	m.mode = ViewDetails
	return WaitDetailsCmd(m.detailsStream)
}

func (m *Model) closeDetails() {
	if m.detailsCancel != nil {
		m.detailsCancel()
		m.detailsCancel = nil
	}
	m.detailsStream = nil
}

func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMsg = text
	m.StatusIsErr = isErr
	return ClearStatusCmd(statusTimeout)
}

// errorText turns a load error into a status line
func errorText(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return "API key rejected · check tmdb.api_key"
	case errors.Is(err, domain.ErrRateLimited):
		return "Rate limited · try again shortly"
	case errors.Is(err, domain.ErrNotFound):
		return "Not found"
	case domain.Classify(err) == domain.KindTransport:
		return "Offline · showing cached results"
	default:
		return err.Error()
	}
}

func wishlistItems(entries []domain.WishlistEntry) []domain.Content {
	items := make([]domain.Content, 0, len(entries))
	for _, e := range entries {
		items = append(items, domain.Content{
			ID:          e.ID,
			MediaType:   e.MediaType,
			Title:       e.Title,
			PosterPath:  e.PosterPath,
			VoteAverage: e.VoteAverage,
		})
	}
	return items
}
