package wishlist

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "reel.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewService(st, nil)
}

func movie(id int, title string) domain.Content {
	return domain.Content{ID: id, MediaType: domain.MediaTypeMovie, Title: title}
}

func TestToggle(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	m := movie(603, "The Matrix")

	on, err := s.Toggle(ctx, m)
	require.NoError(t, err)
	assert.True(t, on)

	ok, err := s.Contains(ctx, domain.MediaTypeMovie, 603)
	require.NoError(t, err)
	assert.True(t, ok)

	// Same ID under another media type is a different entry
	ok, err = s.Contains(ctx, domain.MediaTypeTV, 603)
	require.NoError(t, err)
	assert.False(t, ok)

	on, err = s.Toggle(ctx, m)
	require.NoError(t, err)
	assert.False(t, on)

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAddTwiceIsNoop(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	require.NoError(t, s.Add(ctx, movie(1, "Alien")))
	first, err := s.List(ctx, domain.MediaTypeMovie)
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, s.Add(ctx, movie(1, "Alien")))
	second, err := s.List(ctx, domain.MediaTypeMovie)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, first[0].AddedAt.Equal(second[0].AddedAt))
}

func TestFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	require.NoError(t, s.Add(ctx, movie(1, "Alien")))
	require.NoError(t, s.Add(ctx, movie(2, "Aliens")))
	require.NoError(t, s.Add(ctx, movie(3, "The Matrix")))

	results, err := s.Filter(ctx, "", "ALIEN")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Alien", results[0].Title)

	results, err = s.Filter(ctx, domain.MediaTypeMovie, "mtx")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, results[0].ID)

	all, err := s.Filter(ctx, "", "  ")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWatchFiresOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := newTestService(t)

	ch := s.Watch(ctx)
	require.NoError(t, s.Add(ctx, movie(1, "Alien")))
	_, ok := <-ch
	assert.True(t, ok)
}
