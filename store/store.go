// Package store persists price bars and their coverage in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/stocks"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// DefaultPath is where the cache lives unless configured otherwise.
const DefaultPath = "data/stocks.db"

// timeFormat is fixed width so that timestamps compare as strings.
const timeFormat = "2006-01-02T15:04:05.000000Z"

const schema = `
CREATE TABLE IF NOT EXISTS bars (
	ticker    TEXT    NOT NULL,
	interval  TEXT    NOT NULL,
	date      TEXT    NOT NULL,
	open      TEXT    NOT NULL,
	high      TEXT    NOT NULL,
	low       TEXT    NOT NULL,
	close     TEXT    NOT NULL,
	volume    INTEGER NOT NULL DEFAULT 0,
	cached_at TEXT    NOT NULL,
	PRIMARY KEY (ticker, interval, date)
);
CREATE TABLE IF NOT EXISTS coverage (
	ticker     TEXT NOT NULL,
	interval   TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date   TEXT NOT NULL,
	fetched_on TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_coverage_ticker ON coverage(ticker, interval);
CREATE INDEX IF NOT EXISTS idx_bars_cached_at ON bars(cached_at);
`

// Store is a SQLite backed stocks.Store.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
	now    func() time.Time
}

var _ stocks.Store = (*Store)(nil)

// Open opens (or creates) the database at path. A nil logger discards logs.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	// modernc.org/sqlite registers the "sqlite" driver name
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serializes writers, and keeps pragmas on the connection in use.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, logger: logger, now: time.Now}
	if err := s.configure(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Debug("cache opened", zap.String("path", path))
	return s, nil
}

// configure sets up SQLite pragmas.
func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// withTx runs f in a transaction, committed if f succeeds.
func (s *Store) withTx(ctx context.Context, f func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func parseDate(s string) (stocks.Date, error) {
	t, err := time.Parse(stocks.DateFormat, s)
	if err != nil {
		return stocks.Date{}, fmt.Errorf("invalid date %q in cache: %w", s, err)
	}
	return stocks.DateOf(t), nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}
