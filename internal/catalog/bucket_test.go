package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func TestPageSource_StopsAtRemotePageLimit(t *testing.T) {
	var requested []int
	src := &pageSource{fetch: func(ctx context.Context, page int) (*domain.Page[domain.Content], error) {
		requested = append(requested, page)
		return &domain.Page[domain.Content]{Page: page, TotalPages: 1000, Results: titled(page)}, nil
	}}
	ctx := context.Background()

	items, err := src.FetchPage(ctx, maxRemotePage)
	require.NoError(t, err)
	assert.Equal(t, []int{maxRemotePage}, ids(items))

	// Reported total is 1000, but the API rejects anything past the limit
	items, err = src.FetchPage(ctx, maxRemotePage+1)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, []int{maxRemotePage}, requested)
}

func TestPageSource_StopsAtTotalPages(t *testing.T) {
	calls := 0
	src := &pageSource{fetch: func(ctx context.Context, page int) (*domain.Page[domain.Content], error) {
		calls++
		return &domain.Page[domain.Content]{Page: page, TotalPages: 2, Results: titled(page)}, nil
	}}
	ctx := context.Background()

	_, err := src.FetchPage(ctx, 1)
	require.NoError(t, err)
	items, err := src.FetchPage(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 1, calls)
}
