// Package analysis computes return analyses of the price series held in the local store.
//
// Analyses never access the network: the data must have been fetched before.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/stats"
)

var (
	ErrUnknownKind = errors.New("unknown analysis")
	ErrArity       = errors.New("wrong number of tickers")
)

// Kind identifies an analysis.
type Kind string

const (
	Daily      Kind = "daily"
	Weekly     Kind = "weekly"
	Intraday   Kind = "intraday"
	DailyRange Kind = "range"
	Compare    Kind = "compare"
)

// Kinds lists every analysis, in the order they are presented to users.
var Kinds = []Kind{Daily, Weekly, Intraday, DailyRange, Compare}

// Description returns a one line description of the analysis.
func (k Kind) Description() string {
	switch k {
	case Daily:
		return "Daily close to close returns distribution"
	case Weekly:
		return "Weekly returns distribution"
	case Intraday:
		return "Intraday (open to close) returns, grouped by opening gap"
	case DailyRange:
		return "Daily range measured from the previous close and from the open"
	case Compare:
		return "Returns comparison of several tickers"
	default:
		return ""
	}
}

// ParseKind returns the Kind named s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, x := range Kinds {
		if x == k {
			return k, nil
		}
	}
	return "", unknown(s)
}

func unknown(s string) error {
	names := make([]string, len(Kinds))
	for i, k := range Kinds {
		names[i] = string(k)
	}
	return &kindError{name: s, available: names}
}

type kindError struct {
	name      string
	available []string
}

func (e *kindError) Error() string {
	return fmt.Sprintf("%v %q, available: %s", ErrUnknownKind, e.name, strings.Join(e.available, ", "))
}

func (e *kindError) Unwrap() error { return ErrUnknownKind }

// Source provides the price series already stored locally.
type Source interface {
	Stored(ctx context.Context, req stocks.Request) (stocks.Series, error)
}

// Analyzer computes one kind of analysis.
type Analyzer interface {
	Kind() Kind
	Analyze(ctx context.Context, tickers ...string) (*Result, error)
}

// Result is the outcome of an analysis. Exactly one of the detail fields is set, depending on Kind.
type Result struct {
	Kind        Kind      `json:"analysis_type"`
	Description string    `json:"description"`
	Tickers     []string  `json:"tickers"`
	Requested   []string  `json:"original_tickers"`
	Generated   time.Time `json:"generated_at"`

	Returns    *Returns         `json:"returns,omitempty"`
	Intraday   *IntradayReturns `json:"intraday,omitempty"`
	DailyRange *Range           `json:"daily_range,omitempty"`
	Comparison *Comparison      `json:"comparison,omitempty"`

	Charts []string `json:"charts,omitempty"`
}

// Base returns the base name of the files produced for r.
func (r *Result) Base() string {
	names := make([]string, len(r.Tickers))
	for i, t := range r.Tickers {
		names[i] = stocks.FileSafe(t)
	}
	switch r.Kind {
	case Daily:
		return names[0] + "_returns_analysis"
	case Weekly:
		return names[0] + "_weekly_returns_analysis"
	case Intraday:
		return names[0] + "_intraday_returns_analysis"
	case DailyRange:
		return names[0] + "_daily_range_analysis"
	default:
		return strings.Join(names, "_") + "_comparison_analysis"
	}
}

// Returns is the analysis of close to close returns, daily or weekly.
type Returns struct {
	Ticker      string               `json:"ticker"`
	Interval    stocks.Interval      `json:"interval"`
	Span        stocks.Range         `json:"span"`
	Performance stocks.Performance   `json:"performance"`
	Stats       stats.Summary        `json:"stats"`
	Metrics     stats.Metrics        `json:"metrics"`
	Drawdown    *stats.DrawdownStats `json:"drawdown,omitempty"`

	Values stats.Dated `json:"-"`
}

// IntradayReturns is the analysis of open to close returns.
type IntradayReturns struct {
	Ticker  string            `json:"ticker"`
	Span    stocks.Range      `json:"span"`
	Stats   stats.Summary     `json:"stats"`
	Metrics stats.Metrics     `json:"metrics"`
	Gaps    stats.GapAnalysis `json:"gap_analysis"`

	Values stats.Dated `json:"-"`
}

// Record is a value observed on a date.
type Record struct {
	Date  stocks.Date `json:"date"`
	Value float64     `json:"value"`
}

// Range is the analysis of daily excursions, from the previous close and from the open.
type Range struct {
	Ticker    string       `json:"ticker"`
	Span      stocks.Range `json:"span"`
	TotalDays int          `json:"total_trading_days"`

	CloseGain  stats.Summary `json:"close_gain"`
	CloseLoss  stats.Summary `json:"close_loss"`
	CloseRange stats.Summary `json:"close_range"`
	OpenHigh   stats.Summary `json:"open_high"`
	OpenLow    stats.Summary `json:"open_low"`
	OpenRange  stats.Summary `json:"open_range"`

	// days the high went above the previous close, and above the open.
	CloseUpDays int `json:"close_up_days"`
	OpenUpDays  int `json:"open_up_days"`

	BestCloseGain  Record `json:"best_close_gain"`
	BestOpenHigh   Record `json:"best_open_high"`
	WorstCloseLoss Record `json:"worst_close_loss"`
	WorstOpenLow   Record `json:"worst_open_low"`

	Values stats.Ranges `json:"-"`
}

// TickerStats is the summary of one ticker in a comparison.
type TickerStats struct {
	Ticker    string        `json:"ticker"`
	Requested string        `json:"original_ticker"`
	Stats     stats.Summary `json:"stats"`

	Values stats.Dated `json:"-"`
}

// Rank is a ticker and the value it is ranked by.
type Rank struct {
	Ticker string  `json:"ticker"`
	Value  float64 `json:"value"`
}

// Rankings orders compared tickers by mean return, by risk (lowest first), and by return per unit of risk.
type Rankings struct {
	ByReturn []Rank `json:"by_return"`
	ByRisk   []Rank `json:"by_risk"`
	BySharpe []Rank `json:"by_sharpe"`
}

// Comparison is the analysis of the daily returns of several tickers.
type Comparison struct {
	Stats       []TickerStats `json:"stats"`
	Missing     []string      `json:"missing,omitempty"` // requested tickers without data
	Correlation *stats.Matrix `json:"correlation_matrix,omitempty"`
	Rankings    Rankings      `json:"rankings"`
}
