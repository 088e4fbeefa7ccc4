package paging

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int
	Page int
}

func itemID(it item) int { return it.ID }

// fakeRemote serves pages of ids; page n holds ids n*10+1 .. n*10+size
type fakeRemote struct {
	mu     sync.Mutex
	pages  int
	size   int
	err    error
	called []int
}

func (f *fakeRemote) FetchPage(ctx context.Context, page int) ([]item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called = append(f.called, page)
	if f.err != nil {
		return nil, f.err
	}
	if page < 1 || page > f.pages {
		return nil, nil
	}
	items := make([]item, f.size)
	for i := range items {
		items[i] = item{ID: page*10 + i + 1, Page: page}
	}
	return items, nil
}

// memStore keeps keys and items of one bucket, ordered by page then position
type memStore struct {
	mu      sync.Mutex
	keys    map[int]Key
	items   []item
	saves   int
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{keys: make(map[int]Key)}
}

func (s *memStore) RemoteKey(ctx context.Context, id int) (*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (s *memStore) SavePage(ctx context.Context, page int, refresh bool, keys []Key, items []item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves++
	if refresh {
		s.keys = make(map[int]Key)
		s.items = nil
	}
	for _, k := range keys {
		s.keys[k.ID] = k
	}
	s.items = append(s.items, items...)
	sort.SliceStable(s.items, func(i, j int) bool { return s.items[i].Page < s.items[j].Page })
	return nil
}

func (s *memStore) Items(ctx context.Context, offset, limit int) ([]item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if offset >= len(s.items) {
		return nil, nil
	}
	end := min(offset+limit, len(s.items))
	return append([]item(nil), s.items[offset:end]...), nil
}

func ptr(v int) *int { return &v }

func stateOf(items ...item) State[item] {
	return State[item]{Pages: [][]item{items}}
}

func TestMediator_RefreshEmptyStateLoadsFirstPage(t *testing.T) {
	remote := &fakeRemote{pages: 3, size: 2}
	store := newMemStore()
	m := NewMediator[item](remote, store, itemID, nil)

	res, err := m.Load(context.Background(), Refresh, State[item]{})
	require.NoError(t, err)
	assert.False(t, res.EndOfPaginationReached)
	assert.Equal(t, []int{1}, remote.called)

	k := store.keys[11]
	assert.Nil(t, k.PrevPage)
	require.NotNil(t, k.NextPage)
	assert.Equal(t, 2, *k.NextPage)
}

func TestMediator_RefreshResumesFromAnchorPage(t *testing.T) {
	remote := &fakeRemote{pages: 5, size: 2}
	store := newMemStore()
	store.keys[31] = Key{ID: 31, PrevPage: ptr(2), NextPage: ptr(4)}
	m := NewMediator[item](remote, store, itemID, nil)

	state := stateOf(item{ID: 21}, item{ID: 31})
	state.AnchorPosition = ptr(5) // Clamped to the last item

	_, err := m.Load(context.Background(), Refresh, state)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, remote.called)

	// The bucket was wiped and rebuilt around page 3
	assert.Len(t, store.items, 2)
	k := store.keys[31]
	assert.Equal(t, 2, *k.PrevPage)
	assert.Equal(t, 4, *k.NextPage)
}

func TestMediator_RefreshWithNilNextFallsBackToFirstPage(t *testing.T) {
	remote := &fakeRemote{pages: 2, size: 1}
	store := newMemStore()
	store.keys[5] = Key{ID: 5, PrevPage: ptr(3), NextPage: nil}
	m := NewMediator[item](remote, store, itemID, nil)

	state := stateOf(item{ID: 5})
	state.AnchorPosition = ptr(0)
	_, err := m.Load(context.Background(), Refresh, state)
	require.NoError(t, err)
	assert.Equal(t, []int{StartPage}, remote.called)
}

func TestMediator_RefreshIsIdempotent(t *testing.T) {
	remote := &fakeRemote{pages: 2, size: 3}
	store := newMemStore()
	m := NewMediator[item](remote, store, itemID, nil)

	_, err := m.Load(context.Background(), Refresh, State[item]{})
	require.NoError(t, err)
	first := append([]item(nil), store.items...)

	_, err = m.Load(context.Background(), Refresh, State[item]{})
	require.NoError(t, err)
	assert.Equal(t, first, store.items)
	assert.Len(t, store.keys, 3)
}

func TestMediator_AppendFollowsNextCursor(t *testing.T) {
	remote := &fakeRemote{pages: 3, size: 2}
	store := newMemStore()
	m := NewMediator[item](remote, store, itemID, nil)
	ctx := context.Background()

	_, err := m.Load(ctx, Refresh, State[item]{})
	require.NoError(t, err)

	res, err := m.Load(ctx, Append, stateOf(store.items...))
	require.NoError(t, err)
	assert.False(t, res.EndOfPaginationReached)
	assert.Equal(t, []int{1, 2}, remote.called)

	k := store.keys[22]
	assert.Equal(t, 1, *k.PrevPage)
	assert.Equal(t, 3, *k.NextPage)
}

func TestMediator_EmptyRefreshWipesBucket(t *testing.T) {
	remote := &fakeRemote{pages: 1, size: 2}
	store := newMemStore()
	m := NewMediator[item](remote, store, itemID, nil)

	_, err := m.Load(context.Background(), Refresh, State[item]{})
	require.NoError(t, err)
	require.Len(t, store.items, 2)
	require.Len(t, store.keys, 2)

	// The remote list is now empty
	remote.pages = 0
	state := stateOf(store.items...)
	state.AnchorPosition = ptr(0)
	res, err := m.Load(context.Background(), Refresh, state)
	require.NoError(t, err)
	assert.True(t, res.EndOfPaginationReached)
	assert.Equal(t, []int{1, 1}, remote.called)
	assert.Equal(t, 2, store.saves)
	assert.Empty(t, store.items)
	assert.Empty(t, store.keys)
}

func TestMediator_EmptyPageEndsPagination(t *testing.T) {
	remote := &fakeRemote{pages: 1, size: 2}
	store := newMemStore()
	store.keys[12] = Key{ID: 12, PrevPage: nil, NextPage: ptr(2)}
	m := NewMediator[item](remote, store, itemID, nil)

	res, err := m.Load(context.Background(), Append, stateOf(item{ID: 12}))
	require.NoError(t, err)
	assert.True(t, res.EndOfPaginationReached)
	assert.Equal(t, []int{2}, remote.called)
	assert.Equal(t, 1, store.saves)
}

func TestMediator_ShortCircuits(t *testing.T) {
	tests := []struct {
		name     string
		loadType LoadType
		keys     map[int]Key
		state    State[item]
		end      bool
	}{
		{"append empty state", Append, nil, State[item]{}, false},
		{"prepend empty state", Prepend, nil, State[item]{}, false},
		{"append missing key", Append, nil, stateOf(item{ID: 1}), false},
		{"prepend missing key", Prepend, nil, stateOf(item{ID: 1}), false},
		{"append nil next", Append, map[int]Key{1: {ID: 1, PrevPage: ptr(1)}}, stateOf(item{ID: 1}), true},
		{"prepend nil prev", Prepend, map[int]Key{1: {ID: 1, NextPage: ptr(2)}}, stateOf(item{ID: 1}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &fakeRemote{pages: 5, size: 1}
			store := newMemStore()
			for id, k := range tt.keys {
				store.keys[id] = k
			}
			m := NewMediator[item](remote, store, itemID, nil)

			res, err := m.Load(context.Background(), tt.loadType, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.end, res.EndOfPaginationReached)
			assert.Empty(t, remote.called, "no network call")
			assert.Zero(t, store.saves)
		})
	}
}

func TestMediator_PrependFollowsPrevCursor(t *testing.T) {
	remote := &fakeRemote{pages: 5, size: 1}
	store := newMemStore()
	store.keys[31] = Key{ID: 31, PrevPage: ptr(2), NextPage: ptr(4)}
	m := NewMediator[item](remote, store, itemID, nil)

	res, err := m.Load(context.Background(), Prepend, stateOf(item{ID: 31}))
	require.NoError(t, err)
	assert.False(t, res.EndOfPaginationReached)
	assert.Equal(t, []int{2}, remote.called)

	k := store.keys[21]
	assert.Equal(t, 1, *k.PrevPage)
	assert.Equal(t, 3, *k.NextPage)
}

func TestMediator_FetchErrorLeavesStoreUntouched(t *testing.T) {
	boom := errors.New("offline")
	remote := &fakeRemote{pages: 1, size: 1, err: boom}
	store := newMemStore()
	store.items = []item{{ID: 99, Page: 1}}
	m := NewMediator[item](remote, store, itemID, nil)

	_, err := m.Load(context.Background(), Refresh, State[item]{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []item{{ID: 99, Page: 1}}, store.items)
	assert.Zero(t, store.saves)
}

func TestMediator_SaveErrorIsWrapped(t *testing.T) {
	saveErr := errors.New("locked")
	remote := &fakeRemote{pages: 1, size: 1}
	store := newMemStore()
	store.saveErr = saveErr
	m := NewMediator[item](remote, store, itemID, nil)

	_, err := m.Load(context.Background(), Refresh, State[item]{})
	assert.ErrorIs(t, err, saveErr)
	assert.Contains(t, err.Error(), "failed to save page 1")
}

func TestCursors(t *testing.T) {
	prev, next := Cursors(1, false)
	assert.Nil(t, prev)
	assert.Equal(t, 2, *next)

	prev, next = Cursors(4, false)
	assert.Equal(t, 3, *prev)
	assert.Equal(t, 5, *next)

	prev, next = Cursors(4, true)
	assert.Equal(t, 3, *prev)
	assert.Nil(t, next)
}

func TestState_Helpers(t *testing.T) {
	s := State[item]{Pages: [][]item{{{ID: 1}, {ID: 2}}, {}, {{ID: 3}}}}
	assert.Equal(t, 3, s.Len())

	first, ok := s.FirstItem()
	require.True(t, ok)
	assert.Equal(t, 1, first.ID)

	last, ok := s.LastItem()
	require.True(t, ok)
	assert.Equal(t, 3, last.ID)

	closest, ok := s.ClosestItemToPosition(2)
	require.True(t, ok)
	assert.Equal(t, 3, closest.ID)

	closest, ok = s.ClosestItemToPosition(-4)
	require.True(t, ok)
	assert.Equal(t, 1, closest.ID)

	_, ok = State[item]{}.FirstItem()
	assert.False(t, ok)
}

func TestLoadTypeString(t *testing.T) {
	assert.Equal(t, "refresh", Refresh.String())
	assert.Equal(t, "prepend", Prepend.String())
	assert.Equal(t, "append", Append.String())
}

func TestPager_AppendUntilEnd(t *testing.T) {
	remote := &fakeRemote{pages: 2, size: 2}
	store := newMemStore()
	m := NewMediator[item](remote, store, itemID, nil)
	p := NewPager[item](store, m, 2, nil)
	ctx := context.Background()

	require.NoError(t, p.LoadMore(ctx)) // First load refreshes
	assert.Equal(t, 2, p.Len())

	require.NoError(t, p.LoadMore(ctx))
	assert.Equal(t, 4, p.Len())
	assert.False(t, p.Status().Append.EndReached)

	require.NoError(t, p.LoadMore(ctx))
	assert.True(t, p.Status().Append.EndReached)
	assert.Equal(t, []int{1, 2, 3}, remote.called)

	// No further calls once the end is reached
	require.NoError(t, p.LoadMore(ctx))
	assert.Equal(t, []int{1, 2, 3}, remote.called)
}

func TestPager_LoadPrevious(t *testing.T) {
	remote := &fakeRemote{pages: 5, size: 2}
	store := newMemStore()
	// Seed page 3 as if the list was last refreshed there
	store.keys[31] = Key{ID: 31, PrevPage: ptr(2), NextPage: ptr(4)}
	store.keys[32] = Key{ID: 32, PrevPage: ptr(2), NextPage: ptr(4)}
	store.items = []item{{ID: 31, Page: 3}, {ID: 32, Page: 3}}

	m := NewMediator[item](remote, store, itemID, nil)
	p := NewPager[item](store, m, 2, nil)
	ctx := context.Background()

	// An offline refresh still shows the cached window
	remote.err = errors.New("offline")
	assert.Error(t, p.Refresh(ctx))
	assert.Equal(t, 2, p.Len())
	remote.err = nil

	require.NoError(t, p.LoadPrevious(ctx))
	items := p.Items()
	require.Len(t, items, 4)
	assert.Equal(t, 21, items[0].ID)
	assert.Equal(t, 31, items[2].ID)
}

func TestPager_RemoteMode(t *testing.T) {
	remote := &fakeRemote{pages: 2, size: 3}
	p := NewRemotePager[item](remote, 0, nil)
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	assert.Equal(t, 3, p.Len())
	assert.True(t, p.Status().Prepend.EndReached)

	require.NoError(t, p.LoadMore(ctx))
	require.NoError(t, p.LoadMore(ctx))
	assert.Equal(t, 6, p.Len())
	assert.True(t, p.Status().Append.EndReached)

	require.NoError(t, p.LoadPrevious(ctx))
	assert.Equal(t, 6, p.Len())
}

func TestPager_RemoteModeErrorKeepsItems(t *testing.T) {
	remote := &fakeRemote{pages: 3, size: 1}
	p := NewRemotePager[item](remote, 0, nil)
	ctx := context.Background()

	require.NoError(t, p.Refresh(ctx))
	remote.err = errors.New("offline")

	assert.Error(t, p.LoadMore(ctx))
	assert.Equal(t, 1, p.Len())
	assert.Error(t, p.Status().Append.Err)
}
