package store

import (
	"context"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// Tracker fans out table change signals to watchers.
// Signals coalesce: a slow watcher sees at most one pending signal.
type Tracker struct {
	mu       sync.Mutex
	next     int
	watchers map[int]*watcher
}

type watcher struct {
	tables map[domain.Table]struct{}
	ch     chan struct{}
}

func NewTracker() *Tracker {
	return &Tracker{watchers: make(map[int]*watcher)}
}

// Watch registers interest in tables until ctx is done. No tables means every table.
func (t *Tracker) Watch(ctx context.Context, tables ...domain.Table) <-chan struct{} {
	w := &watcher{ch: make(chan struct{}, 1)}
	if len(tables) > 0 {
		w.tables = make(map[domain.Table]struct{}, len(tables))
		for _, tbl := range tables {
			w.tables[tbl] = struct{}{}
		}
	}

	t.mu.Lock()
	id := t.next
	t.next++
	t.watchers[id] = w
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		delete(t.watchers, id)
		close(w.ch)
		t.mu.Unlock()
	}()

	return w.ch
}

// Notify signals every watcher interested in any of tables
func (t *Tracker) Notify(tables ...domain.Table) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, w := range t.watchers {
		if !w.matches(tables) {
			continue
		}
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

func (w *watcher) matches(tables []domain.Table) bool {
	if w.tables == nil {
		return true
	}
	for _, tbl := range tables {
		if _, ok := w.tables[tbl]; ok {
			return true
		}
	}
	return false
}
