package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/mmcdole/reel/internal/domain"
)

// Store is the SQLite-backed catalog cache. It implements domain.CatalogStore
// and domain.WishlistStore on a single connection.
type Store struct {
	db      *sqlx.DB
	tracker *Tracker
	logger  *slog.Logger
}

var (
	_ domain.CatalogStore  = (*Store)(nil)
	_ domain.WishlistStore = (*Store)(nil)
)

// Open opens the cache database at path, creating parent directories and
// applying migrations. The special path ":memory:" opens a private in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache dir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	}

	dbx, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}
	// One writer, and an in-memory database only lives as long as its connection
	dbx.SetMaxOpenConns(1)

	if err := migrateUp(dbx, logger); err != nil {
		dbx.Close()
		return nil, err
	}

	return &Store{db: dbx, tracker: NewTracker(), logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Watch returns a channel that receives a signal after every committed write
// touching one of the given tables. It is closed when ctx is done.
func (s *Store) Watch(ctx context.Context, tables ...domain.Table) <-chan struct{} {
	return s.tracker.Watch(ctx, tables...)
}

// withTx runs fn in a transaction and notifies watchers of the touched tables after commit
func (s *Store) withTx(ctx context.Context, tables []domain.Table, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}
	s.tracker.Notify(tables...)
	return nil
}
