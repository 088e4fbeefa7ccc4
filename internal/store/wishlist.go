package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/mmcdole/reel/internal/domain"
)

type wishlistRow struct {
	ID          int     `db:"id"`
	MediaType   string  `db:"media_type"`
	Title       string  `db:"title"`
	PosterPath  string  `db:"poster_path"`
	VoteAverage float64 `db:"vote_average"`
	AddedAt     int64   `db:"added_at"`
}

func (r wishlistRow) toDomain() domain.WishlistEntry {
	return domain.WishlistEntry{
		ID:          r.ID,
		MediaType:   domain.MediaType(r.MediaType),
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		VoteAverage: r.VoteAverage,
		AddedAt:     time.Unix(r.AddedAt, 0),
	}
}

// AddWishlist inserts an entry. Re-adding keeps the original added_at.
func (s *Store) AddWishlist(ctx context.Context, entry domain.WishlistEntry) error {
	added := entry.AddedAt
	if added.IsZero() {
		added = time.Now()
	}

	return s.withTx(ctx, []domain.Table{domain.TableWishlist}, func(tx *sqlx.Tx) error {
		query, args, err := sq.Insert("wishlist").
			Columns("media_type", "id", "title", "poster_path", "vote_average", "added_at").
			Values(string(entry.MediaType), entry.ID, entry.Title, entry.PosterPath, entry.VoteAverage, added.Unix()).
			Suffix("ON CONFLICT (media_type, id) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error inserting wishlist entry: %w", err)
		}
		return nil
	})
}

func (s *Store) RemoveWishlist(ctx context.Context, mt domain.MediaType, id int) error {
	return s.withTx(ctx, []domain.Table{domain.TableWishlist}, func(tx *sqlx.Tx) error {
		query, args, err := sq.Delete("wishlist").Where(sq.Eq{"media_type": string(mt), "id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error deleting wishlist entry: %w", err)
		}
		return nil
	})
}

func (s *Store) IsWishlisted(ctx context.Context, mt domain.MediaType, id int) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").From("wishlist").Where(sq.Eq{"media_type": string(mt), "id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("error constructing sql: %w", err)
	}
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("error checking wishlist: %w", err)
	}
	return count > 0, nil
}

// Wishlist returns entries newest first. An empty media type returns all entries.
func (s *Store) Wishlist(ctx context.Context, mt domain.MediaType) ([]domain.WishlistEntry, error) {
	b := sq.Select("id", "media_type", "title", "poster_path", "vote_average", "added_at").
		From("wishlist").
		OrderBy("added_at DESC", "title")
	if mt != "" {
		b = b.Where(sq.Eq{"media_type": string(mt)})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	var rows []wishlistRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting wishlist: %w", err)
	}
	entries := make([]domain.WishlistEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toDomain())
	}
	return entries, nil
}
