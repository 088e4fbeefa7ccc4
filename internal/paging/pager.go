package paging

import (
	"context"
	"log/slog"
	"sync"
)

const defaultPageSize = 20

// LocalSource reads a window of the locally stored list
type LocalSource[T any] interface {
	Items(ctx context.Context, offset, limit int) ([]T, error)
}

// LoadState is the state of one load direction
type LoadState struct {
	Loading    bool
	EndReached bool
	Err        error
}

// Status is the load state of every direction
type Status struct {
	Refresh LoadState
	Prepend LoadState
	Append  LoadState
}

// Pager is an incrementally loaded list.
//
// In cached mode it serves pages from a LocalSource and asks the Mediator for
// more remote pages only when the local list is exhausted in that direction.
// In network-only mode it pages a Source directly and keeps results in memory.
// Loads are serialised; Items and Status may be read concurrently.
type Pager[T any] struct {
	local    LocalSource[T]
	mediator *Mediator[T]
	remote   Source[T]
	pageSize int
	logger   *slog.Logger

	loadMu sync.Mutex // Serialises loads

	mu          sync.RWMutex
	items       []T
	status      Status
	anchor      int
	initialized bool
	nextPage    int // Network-only mode
}

// NewPager creates a cache-backed pager
func NewPager[T any](local LocalSource[T], mediator *Mediator[T], pageSize int, logger *slog.Logger) *Pager[T] {
	return newPager(local, mediator, nil, pageSize, logger)
}

// NewRemotePager creates a network-only pager
func NewRemotePager[T any](remote Source[T], pageSize int, logger *slog.Logger) *Pager[T] {
	return newPager[T](nil, nil, remote, pageSize, logger)
}

func newPager[T any](local LocalSource[T], mediator *Mediator[T], remote Source[T], pageSize int, logger *slog.Logger) *Pager[T] {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pager[T]{
		local:    local,
		mediator: mediator,
		remote:   remote,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Items returns a copy of the loaded items
func (p *Pager[T]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]T(nil), p.items...)
}

// Len returns the number of loaded items
func (p *Pager[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

// Status returns the current load states
func (p *Pager[T]) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// SetAnchor records the most recently viewed position; Refresh resumes from its page
func (p *Pager[T]) SetAnchor(pos int) {
	p.mu.Lock()
	p.anchor = pos
	p.mu.Unlock()
}

// Refresh reloads the list from its first page, or from the anchor's page
// when items are loaded. On failure the previously loaded items stay visible.
func (p *Pager[T]) Refresh(ctx context.Context) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	p.setState(Refresh, LoadState{Loading: true})

	if p.remote != nil {
		return p.refreshRemote(ctx)
	}

	var endReached bool
	var loadErr error
	if p.mediator != nil {
		res, err := p.mediator.Load(ctx, Refresh, p.snapshot())
		if err != nil {
			loadErr = err
		}
		endReached = res.EndOfPaginationReached
	}

	items, err := p.local.Items(ctx, 0, p.pageSize)
	if err != nil {
		p.setState(Refresh, LoadState{Err: err})
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = true
	if loadErr != nil {
		// Keep whatever is visible; fall back to the cache on a cold start.
		if len(p.items) == 0 {
			p.items = items
		}
		p.status.Refresh = LoadState{Err: loadErr}
		return loadErr
	}
	p.items = items
	p.anchor = 0
	p.status = Status{Append: LoadState{EndReached: endReached}}
	return nil
}

// LoadMore appends the next page
func (p *Pager[T]) LoadMore(ctx context.Context) error {
	if !p.isInitialized() {
		return p.Refresh(ctx)
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	if p.Status().Append.EndReached {
		return nil
	}
	p.setState(Append, LoadState{Loading: true})

	if p.remote != nil {
		return p.appendRemote(ctx)
	}

	// Serve from the cache first.
	more, err := p.local.Items(ctx, p.Len(), p.pageSize)
	if err != nil {
		p.setState(Append, LoadState{Err: err})
		return err
	}
	if len(more) > 0 {
		p.appendItems(more)
		p.setState(Append, LoadState{})
		return nil
	}

	if p.mediator == nil {
		p.setState(Append, LoadState{EndReached: true})
		return nil
	}

	res, err := p.mediator.Load(ctx, Append, p.snapshot())
	if err != nil {
		p.setState(Append, LoadState{Err: err})
		return err
	}
	if res.EndOfPaginationReached {
		p.setState(Append, LoadState{EndReached: true})
		return nil
	}

	more, err = p.local.Items(ctx, p.Len(), p.pageSize)
	if err != nil {
		p.setState(Append, LoadState{Err: err})
		return err
	}
	p.appendItems(more)
	p.setState(Append, LoadState{})
	return nil
}

// LoadPrevious loads the page before the first loaded item
func (p *Pager[T]) LoadPrevious(ctx context.Context) error {
	if !p.isInitialized() {
		return p.Refresh(ctx)
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	if p.Status().Prepend.EndReached {
		return nil
	}
	if p.mediator == nil {
		p.setState(Prepend, LoadState{EndReached: true})
		return nil
	}

	p.setState(Prepend, LoadState{Loading: true})

	before := p.Len()
	res, err := p.mediator.Load(ctx, Prepend, p.snapshot())
	if err != nil {
		p.setState(Prepend, LoadState{Err: err})
		return err
	}
	if res.EndOfPaginationReached {
		p.setState(Prepend, LoadState{EndReached: true})
		return nil
	}

	// Prepended rows sort ahead of the current window, so reload it whole.
	items, err := p.local.Items(ctx, 0, before+p.pageSize)
	if err != nil {
		p.setState(Prepend, LoadState{Err: err})
		return err
	}

	p.mu.Lock()
	p.anchor += len(items) - before
	p.items = items
	p.status.Prepend = LoadState{}
	p.mu.Unlock()
	return nil
}

func (p *Pager[T]) refreshRemote(ctx context.Context) error {
	items, err := p.remote.FetchPage(ctx, StartPage)
	if err != nil {
		p.setState(Refresh, LoadState{Err: err})
		p.mu.Lock()
		p.initialized = true
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.initialized = true
	p.items = items
	p.anchor = 0
	p.nextPage = StartPage + 1
	p.status = Status{
		Prepend: LoadState{EndReached: true},
		Append:  LoadState{EndReached: len(items) == 0},
	}
	return nil
}

func (p *Pager[T]) appendRemote(ctx context.Context) error {
	p.mu.RLock()
	page := p.nextPage
	p.mu.RUnlock()

	items, err := p.remote.FetchPage(ctx, page)
	if err != nil {
		p.setState(Append, LoadState{Err: err})
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, items...)
	p.nextPage = page + 1
	p.status.Append = LoadState{EndReached: len(items) == 0}
	return nil
}

func (p *Pager[T]) snapshot() State[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()

	state := State[T]{Pages: [][]T{append([]T(nil), p.items...)}}
	if len(p.items) > 0 {
		anchor := p.anchor
		state.AnchorPosition = &anchor
	}
	return state
}

func (p *Pager[T]) appendItems(items []T) {
	p.mu.Lock()
	p.items = append(p.items, items...)
	p.mu.Unlock()
}

func (p *Pager[T]) setState(loadType LoadType, state LoadState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch loadType {
	case Refresh:
		p.status.Refresh = state
	case Prepend:
		p.status.Prepend = state
	case Append:
		p.status.Append = state
	}
}

func (p *Pager[T]) isInitialized() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.initialized
}
