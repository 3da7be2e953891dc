package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/etnz/stocks"
	"go.uber.org/zap"
)

// Coverage returns the coverage segments of ticker at interval.
func (s *Store) Coverage(ctx context.Context, ticker string, interval stocks.Interval) (stocks.Coverage, error) {
	return coverage(ctx, s.db, ticker, interval)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func coverage(ctx context.Context, q querier, ticker string, interval stocks.Interval) (stocks.Coverage, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT start_date, end_date, fetched_on FROM coverage
		WHERE ticker = ? AND interval = ?
		ORDER BY start_date`, ticker, string(interval))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cov stocks.Coverage
	for rows.Next() {
		var from, to, fetched string
		if err := rows.Scan(&from, &to, &fetched); err != nil {
			return nil, err
		}
		var seg stocks.Segment
		if seg.From, err = parseDate(from); err != nil {
			return nil, err
		}
		if seg.To, err = parseDate(to); err != nil {
			return nil, err
		}
		if seg.FetchedOn, err = parseDate(fetched); err != nil {
			return nil, err
		}
		cov = append(cov, seg)
	}
	return cov, rows.Err()
}

// SaveCoverage replaces the coverage of ticker at interval.
func (s *Store) SaveCoverage(ctx context.Context, ticker string, interval stocks.Interval, cov stocks.Coverage) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return saveCoverage(ctx, tx, ticker, interval, cov)
	})
}

func saveCoverage(ctx context.Context, tx *sql.Tx, ticker string, interval stocks.Interval, cov stocks.Coverage) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM coverage WHERE ticker = ? AND interval = ?`, ticker, string(interval)); err != nil {
		return err
	}
	for _, seg := range cov {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO coverage (ticker, interval, start_date, end_date, fetched_on)
			VALUES (?, ?, ?, ?, ?)`,
			ticker, string(interval), seg.From.String(), seg.To.String(), seg.FetchedOn.String())
		if err != nil {
			return fmt.Errorf("saving coverage %v: %w", seg.Range, err)
		}
	}
	return nil
}

// Merge upserts bars and adds 'fetched' to the coverage, in a single transaction.
func (s *Store) Merge(ctx context.Context, ticker string, interval stocks.Interval, bars stocks.Series, fetched stocks.Range, today stocks.Date) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.upsert(ctx, tx, ticker, interval, bars); err != nil {
			return err
		}
		cov, err := coverage(ctx, tx, ticker, interval)
		if err != nil {
			return err
		}
		return saveCoverage(ctx, tx, ticker, interval, cov.Add(fetched, today, interval))
	})
	if err != nil {
		return err
	}
	s.logger.Debug("merged", zap.String("ticker", ticker), zap.Stringer("range", fetched), zap.Int("bars", len(bars)))
	return nil
}

// Replace deletes the bars and coverage of ticker at interval, then stores bars
// as 'fetched' on 'today', in a single transaction.
func (s *Store) Replace(ctx context.Context, ticker string, interval stocks.Interval, bars stocks.Series, fetched stocks.Range, today stocks.Date) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bars WHERE ticker = ? AND interval = ?`, ticker, string(interval)); err != nil {
			return err
		}
		if err := s.upsert(ctx, tx, ticker, interval, bars); err != nil {
			return err
		}
		return saveCoverage(ctx, tx, ticker, interval, stocks.Coverage{}.Add(fetched, today, interval))
	})
	if err != nil {
		return err
	}
	s.logger.Debug("replaced", zap.String("ticker", ticker), zap.Stringer("range", fetched), zap.Int("bars", len(bars)))
	return nil
}
