package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/mmcdole/reel/internal/domain"
)

type detailsRow struct {
	Payload   string `db:"payload"`
	FetchedAt int64  `db:"fetched_at"`
}

// Details returns the cached details record, or nil if absent
func (s *Store) Details(ctx context.Context, mt domain.MediaType, id int) (*domain.Details, error) {
	query, args, err := sq.Select("payload", "fetched_at").
		From("details").
		Where(sq.Eq{"media_type": string(mt), "id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	var row detailsRow
	err = s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching details: %w", err)
	}

	var d domain.Details
	if err := json.Unmarshal([]byte(row.Payload), &d); err != nil {
		return nil, fmt.Errorf("error decoding details: %w", err)
	}
	d.FetchedAt = time.Unix(row.FetchedAt, 0)
	return &d, nil
}

func (s *Store) SaveDetails(ctx context.Context, d *domain.Details) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("error encoding details: %w", err)
	}
	fetched := d.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}

	return s.withTx(ctx, []domain.Table{domain.TableDetails}, func(tx *sqlx.Tx) error {
		query, args, err := sq.Replace("details").
			Columns("media_type", "id", "payload", "fetched_at").
			Values(string(d.MediaType), d.ID, string(payload), fetched.Unix()).
			ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error saving details: %w", err)
		}
		return nil
	})
}

// === Genres ===

func (s *Store) Genres(ctx context.Context, mt domain.MediaType) ([]domain.Genre, error) {
	query, args, err := sq.Select("id", "name").
		From("genres").
		Where(sq.Eq{"media_type": string(mt)}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("error constructing sql: %w", err)
	}

	genres := []domain.Genre{}
	if err := s.db.SelectContext(ctx, &genres, query, args...); err != nil {
		return nil, fmt.Errorf("error selecting genres: %w", err)
	}
	return genres, nil
}

// SaveGenres replaces the genre list of a media type
func (s *Store) SaveGenres(ctx context.Context, mt domain.MediaType, genres []domain.Genre) error {
	return s.withTx(ctx, []domain.Table{domain.TableGenres}, func(tx *sqlx.Tx) error {
		query, args, err := sq.Delete("genres").Where(sq.Eq{"media_type": string(mt)}).ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error clearing genres: %w", err)
		}
		if len(genres) == 0 {
			return nil
		}

		b := sq.Insert("genres").Columns("media_type", "id", "name")
		for _, g := range genres {
			b = b.Values(string(mt), g.ID, g.Name)
		}
		query, args, err = b.ToSql()
		if err != nil {
			return fmt.Errorf("error constructing sql: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("error inserting genres: %w", err)
		}
		return nil
	})
}
