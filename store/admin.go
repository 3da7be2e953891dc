package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/etnz/stocks"
)

// Available returns one entry per ticker and interval stored.
func (s *Store) Available(ctx context.Context) ([]stocks.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ticker, interval, MIN(date), MAX(date), COUNT(*), MIN(cached_at), MAX(cached_at)
		FROM bars
		GROUP BY ticker, interval
		ORDER BY ticker, interval`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []stocks.Entry
	for rows.Next() {
		var (
			e                       stocks.Entry
			interval, first, last   string
			firstCached, lastCached string
		)
		if err := rows.Scan(&e.Ticker, &interval, &first, &last, &e.Count, &firstCached, &lastCached); err != nil {
			return nil, err
		}
		e.Interval = stocks.Interval(interval)
		if e.First, err = parseDate(first); err != nil {
			return nil, err
		}
		if e.Last, err = parseDate(last); err != nil {
			return nil, err
		}
		e.FirstCached, e.LastCached = parseTime(firstCached), parseTime(lastCached)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Info returns the database path, size and content.
func (s *Store) Info(ctx context.Context) (stocks.CacheInfo, error) {
	info := stocks.CacheInfo{Path: s.path}
	if fi, err := os.Stat(s.path); err == nil {
		info.Size = fi.Size()
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bars`).Scan(&info.Bars); err != nil {
		return info, err
	}
	entries, err := s.Available(ctx)
	if err != nil {
		return info, err
	}
	info.Entries = entries
	return info, nil
}

// Clear deletes the bars and coverage of ticker at interval.
// An empty ticker or interval matches everything. It returns the number of bars deleted.
func (s *Store) Clear(ctx context.Context, ticker string, interval stocks.Interval) (n int64, err error) {
	const filter = `WHERE (?1 = '' OR ticker = ?1) AND (?2 = '' OR interval = ?2)`
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bars `+filter, ticker, string(interval))
		if err != nil {
			return err
		}
		if n, err = res.RowsAffected(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM coverage `+filter, ticker, string(interval))
		return err
	})
	return n, err
}

// Cleanup deletes bars cached before now-olderThan and coverage fetched before that day.
//
// A series that lost bars also loses its whole coverage, so the next request
// pulls it again. It returns the number of bars deleted.
func (s *Store) Cleanup(ctx context.Context, olderThan time.Duration) (n int64, err error) {
	if olderThan < 0 {
		return 0, fmt.Errorf("invalid negative age %v", olderThan)
	}
	cutoff := s.now().Add(-olderThan).UTC()
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			DELETE FROM coverage WHERE (ticker, interval) IN (
				SELECT DISTINCT ticker, interval FROM bars WHERE cached_at < ?
			)`, cutoff.Format(timeFormat))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM bars WHERE cached_at < ?`, cutoff.Format(timeFormat))
		if err != nil {
			return err
		}
		if n, err = res.RowsAffected(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM coverage WHERE fetched_on < ?`, stocks.DateOf(cutoff).String())
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		_, err = s.db.ExecContext(ctx, `VACUUM`)
	}
	return n, err
}
