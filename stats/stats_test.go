package stats

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

const tol = 1e-9

func near(t *testing.T, name string, got, want float64) {
	t.Helper()
	if !floats.EqualWithinAbs(got, want, tol) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{1, 2, 3, 4, 10})
	if err != nil {
		t.Fatalf("Describe() unexpected error: %v", err)
	}
	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	near(t, "Mean", s.Mean, 4)
	near(t, "Median", s.Median, 3)
	near(t, "Std", s.Std, 3.5355339059327378)
	near(t, "Min", s.Min, 1)
	near(t, "Max", s.Max, 10)
	near(t, "Skewness", s.Skewness, 1.697056274847714)
	near(t, "Kurtosis", s.Kurtosis, 3.152)

	for level, want := range map[int]float64{1: 1.04, 25: 2, 50: 3, 90: 7.6, 99: 9.76} {
		got, ok := s.Percentile(level)
		if !ok {
			t.Errorf("Percentile(%d) missing", level)
			continue
		}
		near(t, "Percentile", got, want)
	}
	if len(s.NegativePercentiles) != 0 {
		t.Errorf("NegativePercentiles = %v, want none", s.NegativePercentiles)
	}
	if !reflect.DeepEqual(s.PositivePercentiles, s.Percentiles) {
		t.Errorf("PositivePercentiles = %v, want %v", s.PositivePercentiles, s.Percentiles)
	}
}

func TestDescribe_SignedPercentiles(t *testing.T) {
	s, err := Describe([]float64{3, -1, 0, 1, -2})
	if err != nil {
		t.Fatalf("Describe() unexpected error: %v", err)
	}
	if len(s.NegativePercentiles) != len(Levels) || len(s.PositivePercentiles) != len(Levels) {
		t.Fatalf("got %d negative and %d positive percentiles", len(s.NegativePercentiles), len(s.PositivePercentiles))
	}
	near(t, "negative p50", s.NegativePercentiles[4].Value, -1.5)
	near(t, "positive p25", s.PositivePercentiles[3].Value, 1.5)
}

func TestDescribe_Small(t *testing.T) {
	if _, err := Describe(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Describe(nil) error = %v, want ErrEmpty", err)
	}
	s, err := Describe([]float64{2})
	if err != nil {
		t.Fatalf("Describe() unexpected error: %v", err)
	}
	if s.Std != 0 || s.Skewness != 0 || s.Kurtosis != 0 {
		t.Errorf("undefined statistics should be zero, got %+v", s)
	}
	if _, err := json.Marshal(s); err != nil {
		t.Errorf("summary of one value is not serializable: %v", err)
	}
	// constant values have no spread
	s, _ = Describe([]float64{1, 1, 1, 1, 1})
	if s.Skewness != 0 || s.Kurtosis != 0 {
		t.Errorf("constant values: skewness %v, kurtosis %v, want 0", s.Skewness, s.Kurtosis)
	}
}

func TestBins(t *testing.T) {
	tests := []struct{ n, want int }{{0, 20}, {100, 20}, {1500, 30}, {2520, 50}, {10000, 50}}
	for _, tt := range tests {
		if got := Bins(tt.n); got != tt.want {
			t.Errorf("Bins(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func series(ohlc ...[4]float64) stocks.Series {
	var bars []stocks.Bar
	on := stocks.NewDate(2024, 1, 1)
	for i, v := range ohlc {
		bars = append(bars, stocks.Bar{
			Date:  on.Add(i),
			Open:  decimal.NewFromFloat(v[0]),
			High:  decimal.NewFromFloat(v[1]),
			Low:   decimal.NewFromFloat(v[2]),
			Close: decimal.NewFromFloat(v[3]),
		})
	}
	return stocks.NewSeries(bars...)
}

func TestReturns(t *testing.T) {
	s := series(
		[4]float64{100, 100, 100, 100},
		[4]float64{102, 110, 90, 110},
		[4]float64{110, 121, 99, 99},
	)
	r := Returns(s)
	if r.Len() != 2 {
		t.Fatalf("Returns() has %d values, want 2", r.Len())
	}
	if r.Dates[0] != stocks.NewDate(2024, 1, 2) {
		t.Errorf("first return date = %v, want 2024-01-02", r.Dates[0])
	}
	near(t, "return 1", r.Values[0], 10)
	near(t, "return 2", r.Values[1], -10)

	in := IntradayReturns(s)
	if in.Len() != 3 {
		t.Fatalf("IntradayReturns() has %d values, want 3", in.Len())
	}
	near(t, "intraday 1", in.Values[1], 100*8.0/102)
	near(t, "intraday 2", in.Values[2], -10)

	g := Gaps(s)
	near(t, "gap 1", g.Values[0], 2)
	near(t, "gap 2", g.Values[1], 0)
}

func TestDailyRange(t *testing.T) {
	s := series(
		[4]float64{100, 100, 100, 100},
		[4]float64{102, 110, 90, 110},
	)
	r := DailyRange(s)
	if r.CloseGain.Len() != 1 || r.OpenRange.Len() != 1 {
		t.Fatalf("DailyRange() lengths %d/%d, want 1", r.CloseGain.Len(), r.OpenRange.Len())
	}
	near(t, "close gain", r.CloseGain.Values[0], 10)
	near(t, "close loss", r.CloseLoss.Values[0], -10)
	near(t, "close range", r.CloseRange.Values[0], 20)
	near(t, "open high", r.OpenHigh.Values[0], 100*8.0/102)
	near(t, "open low", r.OpenLow.Values[0], -100*12.0/102)
	near(t, "open range", r.OpenRange.Values[0], 100*20.0/102)
}

func TestGapGrouped(t *testing.T) {
	d := stocks.NewDate(2024, 1, 1)
	intraday := Dated{
		Dates:  []stocks.Date{d, d.Add(1), d.Add(2), d.Add(3), d.Add(4)},
		Values: []float64{9, 1, 2, -1, 0.5},
	}
	gaps := Dated{
		Dates:  []stocks.Date{d.Add(1), d.Add(2), d.Add(3), d.Add(4)},
		Values: []float64{0.3, 0.1, -0.2, 0},
	}
	a, err := GapGrouped(intraday, gaps)
	if err != nil {
		t.Fatalf("GapGrouped() unexpected error: %v", err)
	}
	if a.TotalDays != 4 || a.UpDays != 2 || a.DownDays != 1 || a.FlatDays != 1 {
		t.Errorf("GapGrouped() counts = %+v", a)
	}
	near(t, "up ratio", a.UpRatio, 0.5)
	if a.Up == nil || a.Up.Count != 2 {
		t.Fatalf("Up group = %+v, want 2 days", a.Up)
	}
	near(t, "up mean", a.Up.Stats.Mean, 1.5)
	if a.Down == nil || a.Down.Stats.Mean != -1 {
		t.Errorf("Down group = %+v, want mean -1", a.Down)
	}

	if _, err := GapGrouped(intraday, Dated{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("GapGrouped() without gaps error = %v, want ErrEmpty", err)
	}
}

func TestReturnMetrics(t *testing.T) {
	returns := []float64{1.0, -1.9801980198019802, 3.0303030303030303, -3.9215686274509802, 5.1020408163265305, 0}
	m, err := ReturnMetrics(returns)
	if err != nil {
		t.Fatalf("ReturnMetrics() unexpected error: %v", err)
	}
	if m.PositiveDays != 3 || m.NegativeDays != 2 || m.FlatDays != 1 {
		t.Errorf("ReturnMetrics() counts = %+v", m)
	}
	near(t, "PositiveRatio", m.PositiveRatio, 0.5)

	m, _ = ReturnMetrics(returns[:5])
	near(t, "VolatilityAnnual", m.VolatilityAnnual, 3.6546585283763062*math.Sqrt(252))
	if !floats.EqualWithinAbs(m.SharpeRatio, 2.806490552607687, 1e-6) {
		t.Errorf("SharpeRatio = %v, want 2.8065", m.SharpeRatio)
	}

	m, _ = ReturnMetrics([]float64{1, 1, 1})
	if m.SharpeRatio != 0 {
		t.Errorf("SharpeRatio of constant returns = %v, want 0", m.SharpeRatio)
	}
	if _, err := ReturnMetrics(nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("ReturnMetrics(nil) error = %v, want ErrEmpty", err)
	}
}

func TestDrawdown(t *testing.T) {
	d, err := Drawdown([]float64{100, 110, 99, 105, 120, 108})
	if err != nil {
		t.Fatalf("Drawdown() unexpected error: %v", err)
	}
	near(t, "Max", d.Max, -10)
	near(t, "Current", d.Current, -10)
	if d.MaxDuration != 2 {
		t.Errorf("MaxDuration = %d, want 2", d.MaxDuration)
	}

	d, _ = Drawdown([]float64{1, 2, 3})
	if d != (DrawdownStats{}) {
		t.Errorf("Drawdown() of a rising series = %+v, want zero", d)
	}
}

func TestCorrelation(t *testing.T) {
	d := stocks.NewDate(2024, 1, 1)
	a := Dated{Dates: []stocks.Date{d, d.Add(1), d.Add(2), d.Add(3)}, Values: []float64{1, 2, 3, 4}}
	b := Dated{Dates: []stocks.Date{d.Add(1), d.Add(2), d.Add(3), d.Add(4)}, Values: []float64{2, 4, 6, 100}}
	c := Dated{Dates: []stocks.Date{d.Add(4)}, Values: []float64{1}}

	m := Correlation([]string{"A", "B", "C"}, []Dated{a, b, c})
	ab, _ := m.At("A", "B")
	near(t, "corr(A,B)", ab, 1)
	if v, _ := m.At("C", "C"); v != 1 {
		t.Errorf("diagonal = %v, want 1", v)
	}
	if v, _ := m.At("A", "C"); !math.IsNaN(v) {
		t.Errorf("corr(A,C) = %v, want NaN", v)
	}
	if _, ok := m.At("A", "Z"); ok {
		t.Error("At() with an unknown name should not be ok")
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}
	var got map[string]map[string]*float64
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["A"]["C"] != nil {
		t.Errorf("undefined correlation is encoded as %v, want null", *got["A"]["C"])
	}
}
