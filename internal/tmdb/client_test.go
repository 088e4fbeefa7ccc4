package tmdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/reel/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts Options) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts.BaseURL = srv.URL
	return NewClient(opts, nil)
}

func TestGetList_Movie(t *testing.T) {
	var gotPath, gotKey, gotPage, gotLang string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		gotPage = r.URL.Query().Get("page")
		gotLang = r.URL.Query().Get("language")
		w.Write([]byte(`{
			"page": 2,
			"total_pages": 10,
			"total_results": 200,
			"results": [
				{"id": 603, "title": "The Matrix", "release_date": "1999-03-30", "genre_ids": [28, 878], "vote_average": 8.2, "vote_count": 24000, "poster_path": "/m.jpg"}
			]
		}`))
	}, Options{APIKey: "secret", Language: "en-US"})

	page, err := c.GetList(context.Background(), domain.MediaTypeMovie, domain.CategoryPopular, 2)
	require.NoError(t, err)

	assert.Equal(t, "/movie/popular", gotPath)
	assert.Equal(t, "secret", gotKey)
	assert.Equal(t, "2", gotPage)
	assert.Equal(t, "en-US", gotLang)

	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.TotalPages)
	require.Len(t, page.Results, 1)
	m := page.Results[0]
	assert.Equal(t, 603, m.ID)
	assert.Equal(t, "The Matrix", m.Title)
	assert.Equal(t, domain.MediaTypeMovie, m.MediaType)
	assert.Equal(t, domain.CategoryPopular, m.Category)
	assert.Equal(t, domain.IntList{28, 878}, m.GenreIDs)
	assert.Equal(t, 1999, m.Year())
}

func TestGetList_TVMapsNameAndAirDate(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"page": 1, "total_pages": 1, "total_results": 1, "results": [
			{"id": 1399, "name": "Game of Thrones", "original_name": "Game of Thrones", "first_air_date": "2011-04-17"}
		]}`))
	}, Options{APIKey: "k"})

	page, err := c.GetList(context.Background(), domain.MediaTypeTV, domain.CategoryTrending, 1)
	require.NoError(t, err)

	assert.Equal(t, "/trending/tv/week", gotPath)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Game of Thrones", page.Results[0].Title)
	assert.Equal(t, "Game of Thrones", page.Results[0].OriginalTitle)
	assert.Equal(t, 2011, page.Results[0].Year())
}

func TestGetList_Paths(t *testing.T) {
	tests := []struct {
		mt   domain.MediaType
		cat  domain.Category
		path string
	}{
		{domain.MediaTypeMovie, domain.CategoryTrending, "/trending/movie/week"},
		{domain.MediaTypeMovie, domain.CategoryNowPlaying, "/movie/now_playing"},
		{domain.MediaTypeMovie, domain.CategoryUpcoming, "/movie/upcoming"},
		{domain.MediaTypeMovie, domain.CategoryTopRated, "/movie/top_rated"},
		{domain.MediaTypeMovie, domain.CategoryDiscover, "/discover/movie"},
		{domain.MediaTypeTV, domain.CategoryOnTheAir, "/tv/on_the_air"},
		{domain.MediaTypeTV, domain.CategoryAiringToday, "/tv/airing_today"},
		{domain.MediaTypeTV, domain.CategoryDiscover, "/discover/tv"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			path, err := listPath(tt.mt, tt.cat)
			require.NoError(t, err)
			assert.Equal(t, tt.path, path)
		})
	}

	_, err := listPath(domain.MediaTypeTV, domain.CategoryNowPlaying)
	assert.Error(t, err)
	_, err = listPath(domain.MediaTypeMovie, domain.CategorySearch)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	var gotAuth, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotKey = r.URL.Query().Get("api_key")
		w.Write([]byte(`{"genres": [{"id": 28, "name": "Action"}]}`))
	}, Options{APIKey: "k", AccessToken: "tok"})

	genres, err := c.GetGenres(context.Background(), domain.MediaTypeMovie)
	require.NoError(t, err)
	assert.Equal(t, []domain.Genre{{ID: 28, Name: "Action"}}, genres)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Empty(t, gotKey)
}

func TestSearch(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/movie", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		w.Write([]byte(`{"page": 1, "total_pages": 1, "total_results": 1, "results": [{"id": 1, "title": "Alien"}]}`))
	}, Options{})

	page, err := c.Search(context.Background(), domain.MediaTypeMovie, "alien ship", 1)
	require.NoError(t, err)
	assert.Equal(t, "alien ship", gotQuery)
	require.Len(t, page.Results, 1)
	assert.Equal(t, domain.CategorySearch, page.Results[0].Category)
}

func TestGetDetails_TV(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tv/1399", r.URL.Path)
		w.Write([]byte(`{
			"id": 1399, "name": "Game of Thrones", "first_air_date": "2011-04-17",
			"genres": [{"id": 18, "name": "Drama"}],
			"episode_run_time": [60], "number_of_seasons": 8, "number_of_episodes": 73,
			"tagline": "Winter is coming.", "status": "Ended"
		}`))
	}, Options{})

	d, err := c.GetDetails(context.Background(), domain.MediaTypeTV, 1399)
	require.NoError(t, err)
	assert.Equal(t, "Game of Thrones", d.Title)
	assert.Equal(t, 60, d.Runtime)
	assert.Equal(t, "1h 0m", d.FormattedRuntime())
	assert.Equal(t, 8, d.NumberOfSeasons)
	assert.Equal(t, domain.IntList{18}, d.GenreIDs)
	assert.False(t, d.FetchedAt.IsZero())
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"unauthorized", http.StatusUnauthorized, `{"status_code":7}`, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		}},
		{"not found", http.StatusNotFound, ``, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrNotFound)
		}},
		{"rate limited", http.StatusTooManyRequests, ``, func(t *testing.T, err error) {
			assert.ErrorIs(t, err, domain.ErrRateLimited)
		}},
		{"server error", http.StatusServiceUnavailable, `{"status_message":"maintenance"}`, func(t *testing.T, err error) {
			var httpErr *domain.HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
			assert.Equal(t, "maintenance", httpErr.Body)
			assert.Equal(t, domain.KindHTTP, domain.Classify(err))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, Options{})
			_, err := c.GetList(context.Background(), domain.MediaTypeMovie, domain.CategoryPopular, 1)
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestBadJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}, Options{})

	_, err := c.GetList(context.Background(), domain.MediaTypeMovie, domain.CategoryPopular, 1)
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknown, domain.Classify(err))
}

func TestOffline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Options{BaseURL: url, Timeout: time.Second}, nil)
	_, err := c.GetList(context.Background(), domain.MediaTypeMovie, domain.CategoryPopular, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOffline)
	assert.Equal(t, domain.KindTransport, domain.Classify(err))
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":1,"results":[]}`))
	}, Options{RatePerSecond: 0.001, Burst: 1})

	_, err := c.GetList(context.Background(), domain.MediaTypeMovie, domain.CategoryPopular, 1)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.GetList(ctx, domain.MediaTypeMovie, domain.CategoryPopular, 1)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrOffline)
}
