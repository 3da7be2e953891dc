package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/stocks"
)

const upsertBar = `
INSERT INTO bars (ticker, interval, date, open, high, low, close, volume, cached_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (ticker, interval, date) DO UPDATE SET
	open = excluded.open,
	high = excluded.high,
	low = excluded.low,
	close = excluded.close,
	volume = excluded.volume,
	cached_at = excluded.cached_at`

// Upsert inserts or replaces bars, in a single transaction.
func (s *Store) Upsert(ctx context.Context, ticker string, interval stocks.Interval, bars stocks.Series) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.upsert(ctx, tx, ticker, interval, bars)
	})
}

func (s *Store) upsert(ctx context.Context, tx *sql.Tx, ticker string, interval stocks.Interval, bars stocks.Series) error {
	if len(bars) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, upsertBar)
	if err != nil {
		return err
	}
	defer stmt.Close()

	cachedAt := s.now().UTC().Format(timeFormat)
	for _, b := range bars {
		_, err := stmt.ExecContext(ctx, ticker, string(interval), b.Date.String(),
			b.Open.String(), b.High.String(), b.Low.String(), b.Close.String(), b.Volume, cachedAt)
		if err != nil {
			return fmt.Errorf("upsert %s %s: %w", ticker, b.Date, err)
		}
	}
	return nil
}

// Bars returns the stored bars of ticker within r, sorted by date.
func (s *Store) Bars(ctx context.Context, ticker string, interval stocks.Interval, r stocks.Range) (stocks.Series, error) {
	return s.query(ctx, `
		SELECT date, open, high, low, close, volume FROM bars
		WHERE ticker = ? AND interval = ? AND date >= ? AND date <= ?
		ORDER BY date`, ticker, string(interval), r.From.String(), r.To.String())
}

// All returns every stored bar of ticker, sorted by date.
func (s *Store) All(ctx context.Context, ticker string, interval stocks.Interval) (stocks.Series, error) {
	return s.query(ctx, `
		SELECT date, open, high, low, close, volume FROM bars
		WHERE ticker = ? AND interval = ?
		ORDER BY date`, ticker, string(interval))
}

func (s *Store) query(ctx context.Context, query string, args ...any) (stocks.Series, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out stocks.Series
	for rows.Next() {
		var (
			b    stocks.Bar
			date string
		)
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		if b.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
