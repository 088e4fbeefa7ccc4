package prefs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.SetString(KeyMediaType, "tv"))
	require.NoError(t, s.SetBool(KeyAdult, true))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	mt, ok := s.GetString(KeyMediaType)
	assert.True(t, ok)
	assert.Equal(t, "tv", mt)

	adult, ok := s.GetBool(KeyAdult)
	assert.True(t, ok)
	assert.True(t, adult)

	_, ok = s.GetString("missing")
	assert.False(t, ok)
}

func TestStore_RefreshStamps(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	at := time.Unix(1700000000, 0)
	require.NoError(t, s.SetLastRefreshed("movie:popular", at))
	require.NoError(t, s.SetLastRefreshed("tv:trending", at))
	require.NoError(t, s.SetString(KeyCategory, "popular"))

	got, ok := s.LastRefreshed("movie:popular")
	require.True(t, ok)
	assert.True(t, at.Equal(got))

	require.NoError(t, s.ClearRefreshStamps())

	_, ok = s.LastRefreshed("movie:popular")
	assert.False(t, ok)
	_, ok = s.LastRefreshed("tv:trending")
	assert.False(t, ok)

	// Preferences survive clearing stamps
	cat, ok := s.GetString(KeyCategory)
	assert.True(t, ok)
	assert.Equal(t, "popular", cat)
}

func TestStore_ClearRefreshStamp(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	at := time.Unix(1700000000, 0)
	require.NoError(t, s.SetLastRefreshed("movie:popular", at))
	require.NoError(t, s.SetLastRefreshed("movie:popular_extra", at))
	require.NoError(t, s.ClearRefreshStamp("movie:popular"))
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()

	_, ok := s.LastRefreshed("movie:popular")
	assert.False(t, ok)
	_, ok = s.LastRefreshed("movie:popular_extra")
	assert.True(t, ok)
}

func TestStore_MemoryOnly(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)

	require.NoError(t, s.SetString(KeyGenre, "28"))
	v, ok := s.GetString(KeyGenre)
	assert.True(t, ok)
	assert.Equal(t, "28", v)
	assert.NoError(t, s.Close())
}
