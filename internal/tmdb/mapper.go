package tmdb

import (
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

// MapResults converts list items to domain content tagged with the requested category
func MapResults(results []resultDTO, mt domain.MediaType, cat domain.Category) []domain.Content {
	items := make([]domain.Content, 0, len(results))
	for _, r := range results {
		items = append(items, mapResult(r, mt, cat))
	}
	return items
}

func mapResult(r resultDTO, mt domain.MediaType, cat domain.Category) domain.Content {
	c := domain.Content{
		ID:               r.ID,
		MediaType:        mt,
		Category:         cat,
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		Overview:         r.Overview,
		Popularity:       r.Popularity,
		ReleaseDate:      r.ReleaseDate,
		GenreIDs:         domain.IntList(r.GenreIDs),
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		OriginalLanguage: r.OriginalLanguage,
		Adult:            r.Adult,
	}

	if mt == domain.MediaTypeTV {
		if c.Title == "" {
			c.Title = r.Name
		}
		if c.OriginalTitle == "" {
			c.OriginalTitle = r.OriginalName
		}
		if c.ReleaseDate == "" {
			c.ReleaseDate = r.FirstAirDate
		}
	}
	return c
}

// MapDetails converts a details payload. fetchedAt stamps the record.
func MapDetails(d detailsDTO, mt domain.MediaType, fetchedAt time.Time) *domain.Details {
	genres := MapGenres(d.Genres)
	ids := make(domain.IntList, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}

	content := mapResult(d.resultDTO, mt, "")
	if len(content.GenreIDs) == 0 {
		content.GenreIDs = ids
	}

	runtime := d.Runtime
	if runtime == 0 && len(d.EpisodeRunTime) > 0 {
		runtime = d.EpisodeRunTime[0]
	}

	return &domain.Details{
		Content:          content,
		Tagline:          d.Tagline,
		Status:           d.Status,
		Homepage:         d.Homepage,
		Runtime:          runtime,
		Genres:           genres,
		NumberOfSeasons:  d.NumberOfSeasons,
		NumberOfEpisodes: d.NumberOfEpisodes,
		FetchedAt:        fetchedAt,
	}
}

func MapGenres(dtos []genreDTO) []domain.Genre {
	genres := make([]domain.Genre, 0, len(dtos))
	for _, g := range dtos {
		genres = append(genres, domain.Genre{ID: g.ID, Name: g.Name})
	}
	return genres
}
