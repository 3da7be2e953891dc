package stocks

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV price point.
type Bar struct {
	Date   Date            `json:"date"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// Valid reports whether the bar has strictly positive prices and a coherent high/low.
func (b Bar) Valid() bool {
	if !b.Open.IsPositive() || !b.High.IsPositive() || !b.Low.IsPositive() || !b.Close.IsPositive() {
		return false
	}
	return b.High.GreaterThanOrEqual(b.Low)
}

// Series is a chronological list of bars with unique dates.
type Series []Bar

// NewSeries returns a Series from bars in any order.
// When two bars share a date, the latest one in the input wins.
func NewSeries(bars ...Bar) Series {
	var s Series
	return s.Merge(bars)
}

func byDate(a, b Bar) int { return a.Date.Compare(b.Date) }

// Merge returns a new series holding the bars of s and x.
// Bars in x replace bars of s with the same date.
func (s Series) Merge(x []Bar) Series {
	m := make(map[Date]Bar, len(s)+len(x))
	for _, b := range s {
		m[b.Date] = b
	}
	for _, b := range x {
		m[b.Date] = b
	}
	out := make(Series, 0, len(m))
	for _, b := range m {
		out = append(out, b)
	}
	slices.SortFunc(out, byDate)
	return out
}

// Between returns the bars within r.
func (s Series) Between(r Range) Series {
	var out Series
	for _, b := range s {
		if r.Contains(b.Date) {
			out = append(out, b)
		}
	}
	return out
}

// Span returns the range from the first to the last bar.
// ok is false for an empty series.
func (s Series) Span() (r Range, ok bool) {
	if len(s) == 0 {
		return Range{}, false
	}
	return Range{From: s[0].Date, To: s[len(s)-1].Date}, true
}

// Dates returns the dates of the series.
func (s Series) Dates() []Date {
	out := make([]Date, len(s))
	for i, b := range s {
		out[i] = b.Date
	}
	return out
}

func (s Series) project(f func(Bar) decimal.Decimal) []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = f(b).InexactFloat64()
	}
	return out
}

// Opens returns the open prices as floats.
func (s Series) Opens() []float64 { return s.project(func(b Bar) decimal.Decimal { return b.Open }) }

// Highs returns the high prices as floats.
func (s Series) Highs() []float64 { return s.project(func(b Bar) decimal.Decimal { return b.High }) }

// Lows returns the low prices as floats.
func (s Series) Lows() []float64 { return s.project(func(b Bar) decimal.Decimal { return b.Low }) }

// Closes returns the close prices as floats.
func (s Series) Closes() []float64 { return s.project(func(b Bar) decimal.Decimal { return b.Close }) }

// Last returns the last bar. ok is false for an empty series.
func (s Series) Last() (b Bar, ok bool) {
	if len(s) == 0 {
		return Bar{}, false
	}
	return s[len(s)-1], true
}

// At returns the bar dated d. ok is false if there is none.
func (s Series) At(d Date) (b Bar, ok bool) {
	i, found := slices.BinarySearchFunc(s, d, func(b Bar, d Date) int { return b.Date.Compare(d) })
	if !found {
		return Bar{}, false
	}
	return s[i], true
}
