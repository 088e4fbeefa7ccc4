package domain

import (
	"context"
)

// CatalogRepository provides access to the remote movie-metadata API
type CatalogRepository interface {
	// GetList returns one page of a category list (popular, trending, ...)
	GetList(ctx context.Context, mt MediaType, cat Category, page int) (*Page[Content], error)

	// Discover returns one page of a media type filtered to a genre
	Discover(ctx context.Context, mt MediaType, genreID, page int) (*Page[Content], error)

	// Search returns one page of results for a free-text query
	Search(ctx context.Context, mt MediaType, query string, page int) (*Page[Content], error)

	// GetDetails returns the full record of a movie or show
	GetDetails(ctx context.Context, mt MediaType, id int) (*Details, error)

	// GetGenres returns the genre list for a media type
	GetGenres(ctx context.Context, mt MediaType) ([]Genre, error)
}
