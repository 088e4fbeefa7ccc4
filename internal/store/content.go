package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/mmcdole/reel/internal/domain"
)

var contentColumns = []string{
	"id", "media_type", "category", "title", "original_title", "overview",
	"popularity", "release_date", "genre_ids", "vote_average", "vote_count",
	"poster_path", "backdrop_path", "original_language", "adult",
}

// remoteKeyRow is the on-disk shape of a domain.RemoteKey
type remoteKeyRow struct {
	ID        int    `db:"id"`
	MediaType string `db:"media_type"`
	Category  string `db:"category"`
	PrevPage  *int   `db:"prev_page"`
	NextPage  *int   `db:"next_page"`
	CreatedAt int64  `db:"created_at"`
}

func (r remoteKeyRow) toDomain() *domain.RemoteKey {
	return &domain.RemoteKey{
		ID:        r.ID,
		MediaType: domain.MediaType(r.MediaType),
		Category:  domain.Category(r.Category),
		PrevPage:  r.PrevPage,
		NextPage:  r.NextPage,
		CreatedAt: time.Unix(r.CreatedAt, 0),
	}
}

func bucket(mt domain.MediaType, cat domain.Category) sq.Eq {
	return sq.Eq{"media_type": string(mt), "category": string(cat)}
}

// === Lists ===

// Contents returns a window of a bucket in remote order
func (s *Store) Contents(ctx context.Context, mt domain.MediaType, cat domain.Category, offset, limit int) ([]domain.Content, error) {
	b := sq.Select(contentColumns...).
		From("content").
		Where(bucket(mt, cat)).
		OrderBy("page", "position")
	if limit > 0 {
		b = b.Limit(uint64(limit)).Offset(uint64(max(offset, 0)))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	items := []domain.Content{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting content: %w", err)
	}
	return items, nil
}

func (s *Store) CountContents(ctx context.Context, mt domain.MediaType, cat domain.Category) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From("content").Where(bucket(mt, cat)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("error constructing sql: %w", err)
	}
	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("error counting content: %w", err)
	}
	return count, nil
}

// AllContents returns every cached item of a media type across categories.
// An empty media type returns everything.
func (s *Store) AllContents(ctx context.Context, mt domain.MediaType) ([]domain.Content, error) {
	b := sq.Select(contentColumns...).From("content").OrderBy("media_type", "category", "page", "position")
	if mt != "" {
		b = b.Where(sq.Eq{"media_type": string(mt)})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	items := []domain.Content{}
	if err := s.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting content: %w", err)
	}
	return items, nil
}

// ReplaceContents swaps a bucket for a single first page without remote keys
func (s *Store) ReplaceContents(ctx context.Context, mt domain.MediaType, cat domain.Category, items []domain.Content) error {
	return s.withTx(ctx, []domain.Table{domain.TableContent, domain.TableRemoteKeys}, func(tx *sqlx.Tx) error {
		if err := clearBucket(ctx, tx, mt, cat); err != nil {
			return err
		}
		return insertContents(ctx, tx, mt, cat, 1, items)
	})
}

// === Paging ===

// RemoteKey returns the page neighbours of an item, or nil if it was never paged
func (s *Store) RemoteKey(ctx context.Context, mt domain.MediaType, cat domain.Category, id int) (*domain.RemoteKey, error) {
	query, args, err := sq.Select("id", "media_type", "category", "prev_page", "next_page", "created_at").
		From("remote_keys").
		Where(bucket(mt, cat)).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	var row remoteKeyRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching remote key: %w", err)
	}
	return row.toDomain(), nil
}

// SavePage stores one fetched page and its keys atomically. On refresh the
// bucket is emptied first. Keys are written before items.
func (s *Store) SavePage(ctx context.Context, mt domain.MediaType, cat domain.Category, page int, refresh bool, keys []domain.RemoteKey, items []domain.Content) error {
	return s.withTx(ctx, []domain.Table{domain.TableContent, domain.TableRemoteKeys}, func(tx *sqlx.Tx) error {
		if refresh {
			if err := clearBucket(ctx, tx, mt, cat); err != nil {
				return err
			}
		}
		if err := insertRemoteKeys(ctx, tx, mt, cat, keys); err != nil {
			return err
		}
		return insertContents(ctx, tx, mt, cat, page, items)
	})
}

// === Invalidation ===

func (s *Store) ClearCategory(ctx context.Context, mt domain.MediaType, cat domain.Category) error {
	return s.withTx(ctx, []domain.Table{domain.TableContent, domain.TableRemoteKeys}, func(tx *sqlx.Tx) error {
		return clearBucket(ctx, tx, mt, cat)
	})
}

// ClearCache empties every cache table. The wishlist is untouched.
func (s *Store) ClearCache(ctx context.Context) error {
	tables := []domain.Table{domain.TableContent, domain.TableRemoteKeys, domain.TableDetails, domain.TableGenres}
	return s.withTx(ctx, tables, func(tx *sqlx.Tx) error {
		for _, tbl := range tables {
			query, args, err := sq.Delete(string(tbl)).ToSql()
			if err != nil {
				return fmt.Errorf("error constructing sql: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("error clearing %s: %w", tbl, err)
			}
		}
		return nil
	})
}

// === Helpers ===

func clearBucket(ctx context.Context, tx *sqlx.Tx, mt domain.MediaType, cat domain.Category) error {
	for _, tbl := range []string{"remote_keys", "content"} {
		query, args, err := sq.Delete(tbl).Where(bucket(mt, cat)).ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error clearing %s: %w", tbl, err)
		}
	}
	return nil
}

func insertRemoteKeys(ctx context.Context, tx *sqlx.Tx, mt domain.MediaType, cat domain.Category, keys []domain.RemoteKey) error {
	if len(keys) == 0 {
		return nil
	}
	now := time.Now().Unix()
	b := sq.Replace("remote_keys").Columns("id", "media_type", "category", "prev_page", "next_page", "created_at")
	for _, k := range keys {
		created := now
		if !k.CreatedAt.IsZero() {
			created = k.CreatedAt.Unix()
		}
		b = b.Values(k.ID, string(mt), string(cat), k.PrevPage, k.NextPage, created)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting remote keys: %w", err)
	}
	return nil
}

func insertContents(ctx context.Context, tx *sqlx.Tx, mt domain.MediaType, cat domain.Category, page int, items []domain.Content) error {
	if len(items) == 0 {
		return nil
	}
	b := sq.Replace("content").Columns(append(contentColumns, "page", "position")...)
	for i, c := range items {
		b = b.Values(
			c.ID, string(mt), string(cat), c.Title, c.OriginalTitle, c.Overview,
			c.Popularity, c.ReleaseDate, c.GenreIDs, c.VoteAverage, c.VoteCount,
			c.PosterPath, c.BackdropPath, c.OriginalLanguage, c.Adult,
			page, i,
		)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("error constructing sql: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("error inserting content: %w", err)
	}
	return nil
}
