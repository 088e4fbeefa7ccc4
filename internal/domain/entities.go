package domain

import (
	"fmt"
	"strconv"
	"time"
)

// MediaType distinguishes movies from TV shows
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// ParseMediaType converts user input ("movie", "movies", "tv", "show") into a MediaType
func ParseMediaType(s string) (MediaType, error) {
	switch s {
	case "movie", "movies", "m":
		return MediaTypeMovie, nil
	case "tv", "show", "shows", "series":
		return MediaTypeTV, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// String returns the display label for the media type
func (t MediaType) String() string {
	return string(t)
}

// Label returns a human readable plural label
func (t MediaType) Label() string {
	if t == MediaTypeTV {
		return "TV Shows"
	}
	return "Movies"
}

// Category is the list bucket a content item was fetched under
type Category string

const (
	CategoryTrending    Category = "trending"
	CategoryPopular     Category = "popular"
	CategoryNowPlaying  Category = "now_playing"
	CategoryUpcoming    Category = "upcoming"
	CategoryTopRated    Category = "top_rated"
	CategoryDiscover    Category = "discover"
	CategoryOnTheAir    Category = "on_the_air"
	CategoryAiringToday Category = "airing_today"

	// CategorySearch tags search results. They are never written to the cache.
	CategorySearch Category = "search"
)

var movieCategories = []Category{
	CategoryTrending,
	CategoryPopular,
	CategoryNowPlaying,
	CategoryUpcoming,
	CategoryTopRated,
	CategoryDiscover,
}

var tvCategories = []Category{
	CategoryTrending,
	CategoryPopular,
	CategoryOnTheAir,
	CategoryAiringToday,
	CategoryTopRated,
	CategoryDiscover,
}

// Categories returns the browsable categories of a media type in display order
func Categories(mt MediaType) []Category {
	if mt == MediaTypeTV {
		return append([]Category(nil), tvCategories...)
	}
	return append([]Category(nil), movieCategories...)
}

// ValidCategory reports whether cat can be browsed for mt
func ValidCategory(mt MediaType, cat Category) bool {
	for _, c := range Categories(mt) {
		if c == cat {
			return true
		}
	}
	return false
}

// Label returns the display name of the category
func (c Category) Label() string {
	switch c {
	case CategoryTrending:
		return "Trending"
	case CategoryPopular:
		return "Popular"
	case CategoryNowPlaying:
		return "Now Playing"
	case CategoryUpcoming:
		return "Upcoming"
	case CategoryTopRated:
		return "Top Rated"
	case CategoryDiscover:
		return "Discover"
	case CategoryOnTheAir:
		return "On The Air"
	case CategoryAiringToday:
		return "Airing Today"
	case CategorySearch:
		return "Search"
	default:
		return string(c)
	}
}

// Content is a movie or TV show as it appears in a catalog list
type Content struct {
	ID               int       `json:"id" db:"id"`
	MediaType        MediaType `json:"media_type" db:"media_type"`
	Category         Category  `json:"category" db:"category"`
	Title            string    `json:"title" db:"title"` // Movie title or show name
	OriginalTitle    string    `json:"original_title" db:"original_title"`
	Overview         string    `json:"overview" db:"overview"`
	Popularity       float64   `json:"popularity" db:"popularity"`
	ReleaseDate      string    `json:"release_date" db:"release_date"` // YYYY-MM-DD, first air date for TV
	GenreIDs         IntList   `json:"genre_ids" db:"genre_ids"`
	VoteAverage      float64   `json:"vote_average" db:"vote_average"`
	VoteCount        int       `json:"vote_count" db:"vote_count"`
	PosterPath       string    `json:"poster_path" db:"poster_path"`
	BackdropPath     string    `json:"backdrop_path" db:"backdrop_path"`
	OriginalLanguage string    `json:"original_language" db:"original_language"`
	Adult            bool      `json:"adult" db:"adult"`
}

// Key returns a stable identifier combining media type and ID (e.g. "movie:603")
func (c Content) Key() string {
	return string(c.MediaType) + ":" + strconv.Itoa(c.ID)
}

// Year returns the release year, or 0 when the date is missing or malformed
func (c Content) Year() int {
	return ParseYear(c.ReleaseDate)
}

// GetDescription returns secondary info for list rows
func (c Content) GetDescription() string {
	year := c.Year()
	switch {
	case year > 0 && c.VoteCount > 0:
		return fmt.Sprintf("%d · ★ %.1f", year, c.VoteAverage)
	case year > 0:
		return strconv.Itoa(year)
	case c.VoteCount > 0:
		return fmt.Sprintf("★ %.1f", c.VoteAverage)
	default:
		return ""
	}
}

// ParseYear extracts the year from a YYYY-MM-DD date string
func ParseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// ImageURL joins an image base URL, size and path; empty path yields ""
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	return base + "/" + size + path
}

// Genre is a named genre as returned by the genre list endpoints
type Genre struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Details is the full record for a single movie or TV show
type Details struct {
	Content

	Tagline          string    `json:"tagline"`
	Status           string    `json:"status"`
	Homepage         string    `json:"homepage"`
	Runtime          int       `json:"runtime"` // Minutes; episode runtime for TV
	Genres           []Genre   `json:"genres"`
	NumberOfSeasons  int       `json:"number_of_seasons"`
	NumberOfEpisodes int       `json:"number_of_episodes"`
	FetchedAt        time.Time `json:"fetched_at"`
}

// FormattedRuntime returns the runtime in a human-readable format
func (d Details) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h := d.Runtime / 60
	mins := d.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// WishlistEntry is a locally saved movie or show, unique per (ID, MediaType)
type WishlistEntry struct {
	ID          int       `json:"id"`
	MediaType   MediaType `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path"`
	VoteAverage float64   `json:"vote_average"`
	AddedAt     time.Time `json:"added_at"`
}

// Key returns a stable identifier combining media type and ID
func (w WishlistEntry) Key() string {
	return string(w.MediaType) + ":" + strconv.Itoa(w.ID)
}

// WishlistEntryFor snapshots the display fields of a content item
func WishlistEntryFor(c Content) WishlistEntry {
	return WishlistEntry{
		ID:          c.ID,
		MediaType:   c.MediaType,
		Title:       c.Title,
		PosterPath:  c.PosterPath,
		VoteAverage: c.VoteAverage,
	}
}

// RemoteKey remembers the page neighbours of a content item fetched through the paging path.
// A nil PrevPage/NextPage marks the start/end of the remote list.
type RemoteKey struct {
	ID        int
	MediaType MediaType
	Category  Category
	PrevPage  *int
	NextPage  *int
	CreatedAt time.Time
}

// Page is one page of a remote list
type Page[T any] struct {
	Page         int
	TotalPages   int
	TotalResults int
	Results      []T
}

// PosterURL returns the full poster image URL, or "" when the item has no poster
func (c Content) PosterURL(base, size string) string {
	return ImageURL(base, size, c.PosterPath)
}
