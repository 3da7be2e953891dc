package stats

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Periods per year used to annualize.
const (
	TradingDays  = 252
	TradingWeeks = 52
)

// Metrics counts the direction of returns and annualizes their risk.
type Metrics struct {
	PositiveDays     int     `json:"positive_days"`
	NegativeDays     int     `json:"negative_days"`
	FlatDays         int     `json:"flat_days"`
	PositiveRatio    float64 `json:"positive_ratio"`
	NegativeRatio    float64 `json:"negative_ratio"`
	VolatilityAnnual float64 `json:"volatility_annual"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
}

// ReturnMetrics computes the metrics of daily returns.
func ReturnMetrics(returns []float64) (Metrics, error) { return AnnualizedMetrics(returns, TradingDays) }

// AnnualizedMetrics computes the metrics of returns observed periods times a year.
// The Sharpe ratio assumes a zero risk free rate, it is 0 when returns do not vary.
func AnnualizedMetrics(returns []float64, periods int) (Metrics, error) {
	n := len(returns)
	if n == 0 {
		return Metrics{}, ErrEmpty
	}
	var m Metrics
	for _, v := range returns {
		switch {
		case v > 0:
			m.PositiveDays++
		case v < 0:
			m.NegativeDays++
		default:
			m.FlatDays++
		}
	}
	m.PositiveRatio = float64(m.PositiveDays) / float64(n)
	m.NegativeRatio = float64(m.NegativeDays) / float64(n)

	var std float64
	if n > 1 {
		std = finite(stat.StdDev(returns, nil))
	}
	m.VolatilityAnnual = std * math.Sqrt(float64(periods))
	if std > 0 {
		m.SharpeRatio = stat.Mean(returns, nil) * float64(periods) / m.VolatilityAnnual
	}
	return m, nil
}

// DrawdownStats describes the declines of a price series from its running peak.
type DrawdownStats struct {
	Max         float64 `json:"max_drawdown"`          // deepest decline, in percent (<= 0)
	MaxDuration int     `json:"max_drawdown_duration"` // longest run of bars below the peak
	Current     float64 `json:"current_drawdown"`      // decline of the last bar, in percent
}

// Drawdown computes the drawdown statistics of prices.
func Drawdown(prices []float64) (DrawdownStats, error) {
	if len(prices) == 0 {
		return DrawdownStats{}, ErrEmpty
	}
	var d DrawdownStats
	peak := prices[0]
	run := 0
	for _, p := range prices {
		peak = max(peak, p)
		dd := (p - peak) / peak * 100
		d.Max = min(d.Max, dd)
		if dd < 0 {
			run++
			d.MaxDuration = max(d.MaxDuration, run)
		} else {
			run = 0
		}
		d.Current = dd
	}
	return d, nil
}

// Matrix is a symmetric correlation matrix.
// Values[i][j] is NaN when Names[i] and Names[j] share less than two dates.
type Matrix struct {
	Names  []string
	Values [][]float64
}

// At returns the correlation between a and b, ok is false if either is unknown.
func (m Matrix) At(a, b string) (v float64, ok bool) {
	i, j := -1, -1
	for k, n := range m.Names {
		if n == a {
			i = k
		}
		if n == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Values[i][j], true
}

// MarshalJSON encodes the matrix as nested objects keyed by name, undefined values are null.
func (m Matrix) MarshalJSON() ([]byte, error) {
	out := make(map[string]map[string]*float64, len(m.Names))
	for i, a := range m.Names {
		row := make(map[string]*float64, len(m.Names))
		for j, b := range m.Names {
			if v := m.Values[i][j]; !math.IsNaN(v) {
				row[b] = &v
			} else {
				row[b] = nil
			}
		}
		out[a] = row
	}
	return json.Marshal(out)
}

// Correlation computes the pairwise Pearson correlation of series.
// Each pair is correlated over the dates both series have.
func Correlation(names []string, series []Dated) Matrix {
	m := Matrix{Names: names, Values: make([][]float64, len(names))}
	for i := range names {
		m.Values[i] = make([]float64, len(names))
	}
	for i := range names {
		m.Values[i][i] = 1
		for j := i + 1; j < len(names); j++ {
			x, y := common(series[i], series[j])
			v := math.NaN()
			if len(x) > 1 {
				v = stat.Correlation(x, y, nil)
			}
			m.Values[i][j], m.Values[j][i] = v, v
		}
	}
	return m
}

// common returns the values of a and b on their shared dates, in a's order.
func common(a, b Dated) (x, y []float64) {
	idx := b.Index()
	for i, on := range a.Dates {
		if v, ok := idx[on]; ok {
			x = append(x, a.Values[i])
			y = append(y, v)
		}
	}
	return x, y
}
