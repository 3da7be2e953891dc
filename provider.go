package stocks

import (
	"context"
	"errors"
	"time"
)

// ErrNoData is returned when a request is valid but no bar exists for it.
var ErrNoData = errors.New("no data")

// Provider is a remote source of price bars.
type Provider interface {
	// Name identifies the provider in logs and reports (e.g., "yahoo").
	Name() string
	// Fetch returns the bars of ticker within r, at the given interval.
	//
	// It returns ErrNoData if the provider knows the ticker but has no bar in r.
	Fetch(ctx context.Context, ticker string, interval Interval, r Range) (Series, error)
}

// Entry describes the bars stored for one ticker and interval.
type Entry struct {
	Ticker      string    `json:"ticker"`
	Interval    Interval  `json:"interval"`
	First       Date      `json:"first"`
	Last        Date      `json:"last"`
	Count       int       `json:"count"`
	FirstCached time.Time `json:"first_cached"`
	LastCached  time.Time `json:"last_cached"`
}

// CacheInfo summarizes the local cache.
type CacheInfo struct {
	Path    string  `json:"path"`
	Size    int64   `json:"size"` // in bytes
	Bars    int     `json:"bars"`
	Entries []Entry `json:"entries"`
}

// Store persists bars together with their coverage.
type Store interface {
	Coverage(ctx context.Context, ticker string, interval Interval) (Coverage, error)
	// Merge upserts bars and records that 'fetched' was pulled on 'today', atomically.
	Merge(ctx context.Context, ticker string, interval Interval, bars Series, fetched Range, today Date) error
	// Replace deletes every bar and the coverage of ticker at interval, then stores
	// bars as 'fetched' on 'today', atomically.
	Replace(ctx context.Context, ticker string, interval Interval, bars Series, fetched Range, today Date) error
	Bars(ctx context.Context, ticker string, interval Interval, r Range) (Series, error)
	Available(ctx context.Context) ([]Entry, error)
	Info(ctx context.Context) (CacheInfo, error)
	// Clear deletes the bars and coverage matching ticker and interval. Empty values match all.
	Clear(ctx context.Context, ticker string, interval Interval) (int64, error)
	// Cleanup deletes bars and coverage recorded before now-olderThan.
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}
