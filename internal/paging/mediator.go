package paging

import (
	"context"
	"fmt"
	"log/slog"
)

// StartPage is the first page of every remote list
const StartPage = 1

// Key records the page neighbours of one item fetched through the mediator.
// Nil cursors mark the ends of the remote list.
type Key struct {
	ID       int
	PrevPage *int
	NextPage *int
}

// Source fetches one remote page
type Source[T any] interface {
	FetchPage(ctx context.Context, page int) ([]T, error)
}

// SourceFunc adapts a function to Source
type SourceFunc[T any] func(ctx context.Context, page int) ([]T, error)

// FetchPage calls f
func (f SourceFunc[T]) FetchPage(ctx context.Context, page int) ([]T, error) {
	return f(ctx, page)
}

// KeyStore is the local side of one list bucket
type KeyStore[T any] interface {
	// RemoteKey returns the key of an item, or nil when none is recorded
	RemoteKey(ctx context.Context, id int) (*Key, error)

	// SavePage persists a fetched page in one transaction. On refresh the
	// bucket's items and keys are wiped first; keys are written before items.
	SavePage(ctx context.Context, page int, refresh bool, keys []Key, items []T) error
}

// Result reports a completed load
type Result struct {
	EndOfPaginationReached bool
}

// Mediator loads remote pages into a KeyStore on behalf of a Pager
type Mediator[T any] struct {
	source Source[T]
	store  KeyStore[T]
	id     func(T) int
	logger *slog.Logger
}

// NewMediator creates a mediator; id extracts the remote identifier of an item
func NewMediator[T any](source Source[T], store KeyStore[T], id func(T) int, logger *slog.Logger) *Mediator[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mediator[T]{source: source, store: store, id: id, logger: logger}
}

// Load performs one load request. Prepend and Append return without a network
// call when the adjacent cursor is unknown or already nil. Fetch and storage
// errors are returned unchanged; nothing is retried.
func (m *Mediator[T]) Load(ctx context.Context, loadType LoadType, state State[T]) (Result, error) {
	page, done, end, err := m.targetPage(ctx, loadType, state)
	if err != nil {
		return Result{}, err
	}
	if done {
		m.logger.Debug("mediator short-circuit", "load", loadType, "end", end)
		return Result{EndOfPaginationReached: end}, nil
	}

	items, err := m.source.FetchPage(ctx, page)
	if err != nil {
		m.logger.Warn("mediator fetch failed", "load", loadType, "page", page, "error", err)
		return Result{}, err
	}

	endOfPagination := len(items) == 0
	prev, next := Cursors(page, endOfPagination)

	keys := make([]Key, len(items))
	for i, item := range items {
		keys[i] = Key{ID: m.id(item), PrevPage: prev, NextPage: next}
	}

	if err := m.store.SavePage(ctx, page, loadType == Refresh, keys, items); err != nil {
		return Result{}, fmt.Errorf("failed to save page %d: %w", page, err)
	}

	m.logger.Debug("mediator loaded page", "load", loadType, "page", page, "count", len(items), "end", endOfPagination)
	return Result{EndOfPaginationReached: endOfPagination}, nil
}

// targetPage picks the page to fetch. done reports a short-circuit, in which
// case end is the result to hand back without fetching.
func (m *Mediator[T]) targetPage(ctx context.Context, loadType LoadType, state State[T]) (page int, done, end bool, err error) {
	switch loadType {
	case Refresh:
		key, err := m.keyClosestToAnchor(ctx, state)
		if err != nil {
			return 0, false, false, err
		}
		if key != nil && key.NextPage != nil {
			return *key.NextPage - 1, false, false, nil
		}
		return StartPage, false, false, nil

	case Prepend:
		item, ok := state.FirstItem()
		if !ok {
			return 0, true, false, nil
		}
		key, err := m.store.RemoteKey(ctx, m.id(item))
		if err != nil {
			return 0, false, false, err
		}
		if key == nil {
			return 0, true, false, nil
		}
		if key.PrevPage == nil {
			return 0, true, true, nil
		}
		return *key.PrevPage, false, false, nil

	case Append:
		item, ok := state.LastItem()
		if !ok {
			return 0, true, false, nil
		}
		key, err := m.store.RemoteKey(ctx, m.id(item))
		if err != nil {
			return 0, false, false, err
		}
		if key == nil {
			return 0, true, false, nil
		}
		if key.NextPage == nil {
			return 0, true, true, nil
		}
		return *key.NextPage, false, false, nil
	}

	return 0, false, false, fmt.Errorf("unknown load type: %d", loadType)
}

func (m *Mediator[T]) keyClosestToAnchor(ctx context.Context, state State[T]) (*Key, error) {
	if state.AnchorPosition == nil {
		return nil, nil
	}
	item, ok := state.ClosestItemToPosition(*state.AnchorPosition)
	if !ok {
		return nil, nil
	}
	return m.store.RemoteKey(ctx, m.id(item))
}

// Cursors computes the neighbours recorded for every item of a fetched page.
// The first page has no previous page; an empty page ends the list.
func Cursors(page int, endOfPagination bool) (prev, next *int) {
	if page != StartPage {
		p := page - 1
		prev = &p
	}
	if !endOfPagination {
		n := page + 1
		next = &n
	}
	return prev, next
}
