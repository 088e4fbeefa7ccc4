package tmdb

// listResponse is the envelope of every paged endpoint
type listResponse struct {
	Page         int         `json:"page"`
	Results      []resultDTO `json:"results"`
	TotalPages   int         `json:"total_pages"`
	TotalResults int         `json:"total_results"`
}

// resultDTO covers both movie and TV list items.
// Movies use title/release_date, TV uses name/first_air_date.
type resultDTO struct {
	ID               int     `json:"id"`
	MediaType        string  `json:"media_type,omitempty"` // Only set by trending/multi endpoints
	Title            string  `json:"title,omitempty"`
	Name             string  `json:"name,omitempty"`
	OriginalTitle    string  `json:"original_title,omitempty"`
	OriginalName     string  `json:"original_name,omitempty"`
	Overview         string  `json:"overview"`
	Popularity       float64 `json:"popularity"`
	ReleaseDate      string  `json:"release_date,omitempty"`
	FirstAirDate     string  `json:"first_air_date,omitempty"`
	GenreIDs         []int   `json:"genre_ids"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	OriginalLanguage string  `json:"original_language"`
	Adult            bool    `json:"adult"`
}

// detailsDTO is the /movie/{id} and /tv/{id} payload
type detailsDTO struct {
	resultDTO

	Genres           []genreDTO `json:"genres"`
	Tagline          string     `json:"tagline"`
	Status           string     `json:"status"`
	Homepage         string     `json:"homepage"`
	Runtime          int        `json:"runtime,omitempty"`          // Movies
	EpisodeRunTime   []int      `json:"episode_run_time,omitempty"` // TV
	NumberOfSeasons  int        `json:"number_of_seasons,omitempty"`
	NumberOfEpisodes int        `json:"number_of_episodes,omitempty"`
}

type genreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type genreListResponse struct {
	Genres []genreDTO `json:"genres"`
}

// errorResponse is the body TMDB sends with non-2xx statuses
type errorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}
