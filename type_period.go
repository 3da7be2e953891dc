package stocks

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidLookback = errors.New("invalid period")
)

// Interval is the granularity of a price series.
type Interval string

const (
	Daily   Interval = "1d"
	Weekly  Interval = "1wk"
	Monthly Interval = "1mo"
)

// Intervals lists the supported intervals.
var Intervals = []Interval{Daily, Weekly, Monthly}

func (i Interval) String() string { return string(i) }

// Name returns the singular noun for the interval (e.g., "day", "week").
func (i Interval) Name() string {
	switch i {
	case Daily:
		return "day"
	case Weekly:
		return "week"
	case Monthly:
		return "month"
	default:
		return "period"
	}
}

// Start returns the first day of the period of i that contains d.
// Weeks start on Monday, the day weekly bars are dated.
func (i Interval) Start(d Date) Date {
	switch i {
	case Weekly:
		return d.Add(-((int(d.Weekday()) + 6) % 7))
	case Monthly:
		return NewDate(d.Year(), d.Month(), 1)
	default:
		return d
	}
}

// ParseInterval parses one of "1d", "1wk" or "1mo".
// The long names "daily", "weekly", "monthly" are accepted too.
func ParseInterval(s string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1d", "daily", "day":
		return Daily, nil
	case "1wk", "weekly", "week":
		return Weekly, nil
	case "1mo", "monthly", "month":
		return Monthly, nil
	default:
		return "", fmt.Errorf("%w %q: must be one of %v", ErrInvalidInterval, s, Intervals)
	}
}

// Lookback is a period of history counted backward from an end date, like "10y" or "6mo".
type Lookback struct {
	N    int
	Unit string // one of "y", "mo", "w", "d"
}

var lookbackRE = regexp.MustCompile(`^(\d+)(y|mo|w|d)$`)

// ParseLookback parses period strings like "10y", "6mo", "2w" or "30d".
func ParseLookback(s string) (Lookback, error) {
	m := lookbackRE.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return Lookback{}, fmt.Errorf("%w %q: want a format like '10y', '6mo', '2w' or '30d'", ErrInvalidLookback, s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return Lookback{}, fmt.Errorf("%w %q: count must be positive", ErrInvalidLookback, s)
	}
	return Lookback{N: n, Unit: m[2]}, nil
}

// Days returns the span of the lookback in calendar days.
//
// A year is 365 days, and a month is 30 days.
func (l Lookback) Days() int {
	switch l.Unit {
	case "y":
		return l.N * 365
	case "mo":
		return l.N * 30
	case "w":
		return l.N * 7
	default:
		return l.N
	}
}

// Range returns the range of dates covered by the lookback ending on 'end'.
func (l Lookback) Range(end Date) Range {
	return Range{From: end.Add(-l.Days()), To: end}
}

func (l Lookback) String() string { return fmt.Sprintf("%d%s", l.N, l.Unit) }
