// Package stats computes descriptive statistics of percent return series.
//
// Every value handled here is a percentage: a 1.5% daily return is 1.5, not 0.015.
package stats

import (
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrEmpty is returned when a statistic is asked of no value.
var ErrEmpty = errors.New("no value")

// Levels are the percentile levels reported by Describe.
var Levels = []int{1, 5, 10, 25, 50, 75, 90, 95, 99}

// Quantile is the value below which Level percent of the observations fall.
type Quantile struct {
	Level int     `json:"level"`
	Value float64 `json:"value"`
}

// Summary holds the descriptive statistics of a sample.
type Summary struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	Std      float64 `json:"std"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // excess kurtosis

	Percentiles         []Quantile `json:"percentiles"`
	PositivePercentiles []Quantile `json:"positive_percentiles,omitempty"`
	NegativePercentiles []Quantile `json:"negative_percentiles,omitempty"`
}

// Percentile returns the quantile at level, ok is false if it was not computed.
func (s Summary) Percentile(level int) (v float64, ok bool) {
	for _, q := range s.Percentiles {
		if q.Level == level {
			return q.Value, true
		}
	}
	return 0, false
}

// Describe computes the summary of values.
//
// The standard deviation is the sample one (n-1), skewness and kurtosis are the
// bias corrected sample estimators. Statistics that are undefined for a too small
// sample are reported as zero.
func Describe(values []float64) (Summary, error) {
	n := len(values)
	if n == 0 {
		return Summary{}, ErrEmpty
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	s := Summary{
		Count:       n,
		Mean:        stat.Mean(values, nil),
		Median:      percentile(sorted, 50),
		Min:         floats.Min(values),
		Max:         floats.Max(values),
		Percentiles: quantiles(sorted),
	}
	if n > 1 {
		s.Std = finite(stat.StdDev(values, nil))
	}
	if n > 2 && s.Std > 0 {
		s.Skewness = finite(stat.Skew(values, nil))
	}
	if n > 3 && s.Std > 0 {
		s.Kurtosis = finite(stat.ExKurtosis(values, nil))
	}

	// sorted is ascending: negatives first, then zeros, then positives.
	neg := sorted[:countIf(sorted, func(v float64) bool { return v < 0 })]
	pos := sorted[n-countIf(sorted, func(v float64) bool { return v > 0 }):]
	if len(pos) > 0 {
		s.PositivePercentiles = quantiles(pos)
	}
	if len(neg) > 0 {
		s.NegativePercentiles = quantiles(neg)
	}
	return s, nil
}

func quantiles(sorted []float64) []Quantile {
	out := make([]Quantile, len(Levels))
	for i, l := range Levels {
		out[i] = Quantile{Level: l, Value: percentile(sorted, float64(l))}
	}
	return out
}

// percentile interpolates linearly between the closest ranks of sorted.
// It matches the default method of most dataframe libraries (R type 7), which
// gonum's stat.Quantile does not provide.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := float64(n-1) * p / 100
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func countIf(values []float64, f func(float64) bool) int {
	n := 0
	for _, v := range values {
		if f(v) {
			n++
		}
	}
	return n
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}

// Bins returns the number of histogram bins for n values: n/50 bounded to [20, 50].
func Bins(n int) int { return min(50, max(20, n/50)) }
