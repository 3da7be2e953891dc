package stats

import (
	"github.com/etnz/stocks"
)

// Dated is a series of values, one per date, in chronological order.
type Dated struct {
	Dates  []stocks.Date
	Values []float64
}

// Len returns the number of values.
func (d Dated) Len() int { return len(d.Values) }

func (d *Dated) append(on stocks.Date, v float64) {
	d.Dates = append(d.Dates, on)
	d.Values = append(d.Values, v)
}

// Index returns the value for each date.
func (d Dated) Index() map[stocks.Date]float64 {
	m := make(map[stocks.Date]float64, len(d.Dates))
	for i, on := range d.Dates {
		m[on] = d.Values[i]
	}
	return m
}

func pct(from, to float64) float64 { return (to - from) / from * 100 }

// Returns computes the close to close percent change of s.
// The first bar has no previous close and yields no value.
func Returns(s stocks.Series) Dated {
	var d Dated
	closes := s.Closes()
	for i := 1; i < len(s); i++ {
		d.append(s[i].Date, pct(closes[i-1], closes[i]))
	}
	return d
}

// IntradayReturns computes the open to close percent change of each bar.
func IntradayReturns(s stocks.Series) Dated {
	var d Dated
	opens, closes := s.Opens(), s.Closes()
	for i := range s {
		d.append(s[i].Date, pct(opens[i], closes[i]))
	}
	return d
}

// Gaps computes the opening gap of each bar: the percent change from the previous close to the open.
func Gaps(s stocks.Series) Dated {
	var d Dated
	opens, closes := s.Opens(), s.Closes()
	for i := 1; i < len(s); i++ {
		d.append(s[i].Date, pct(closes[i-1], opens[i]))
	}
	return d
}

// Ranges holds the intraday excursions of a series measured from two origins.
type Ranges struct {
	CloseGain  Dated // previous close to high
	CloseLoss  Dated // previous close to low
	CloseRange Dated // CloseGain - CloseLoss
	OpenHigh   Dated // open to high
	OpenLow    Dated // open to low
	OpenRange  Dated // OpenHigh - OpenLow
}

// DailyRange computes the daily excursions of s.
// Bars are measured from the second one so that both origins share the same dates.
func DailyRange(s stocks.Series) Ranges {
	var r Ranges
	opens, highs, lows, closes := s.Opens(), s.Highs(), s.Lows(), s.Closes()
	for i := 1; i < len(s); i++ {
		on, prev := s[i].Date, closes[i-1]
		gain, loss := pct(prev, highs[i]), pct(prev, lows[i])
		r.CloseGain.append(on, gain)
		r.CloseLoss.append(on, loss)
		r.CloseRange.append(on, gain-loss)

		high, low := pct(opens[i], highs[i]), pct(opens[i], lows[i])
		r.OpenHigh.append(on, high)
		r.OpenLow.append(on, low)
		r.OpenRange.append(on, high-low)
	}
	return r
}

// Group is the summary of the intraday returns of the days sharing a gap direction.
type Group struct {
	Count int     `json:"count"`
	Stats Summary `json:"stats"`
}

// GapAnalysis splits intraday returns by opening gap direction.
type GapAnalysis struct {
	TotalDays int     `json:"total_days"`
	UpDays    int     `json:"gap_up_days"`
	DownDays  int     `json:"gap_down_days"`
	FlatDays  int     `json:"gap_flat_days"`
	UpRatio   float64 `json:"gap_up_ratio"`
	DownRatio float64 `json:"gap_down_ratio"`
	FlatRatio float64 `json:"gap_flat_ratio"`

	Up   *Group `json:"gap_up,omitempty"`
	Down *Group `json:"gap_down,omitempty"`
	Flat *Group `json:"gap_flat,omitempty"`
}

// GapGrouped classifies each day of intraday by the sign of its gap (up > 0,
// down < 0, flat == 0) and describes every non empty group.
// Days without a gap, like the first one, are ignored.
func GapGrouped(intraday, gaps Dated) (GapAnalysis, error) {
	byDate := gaps.Index()
	var up, down, flat []float64
	for i, on := range intraday.Dates {
		g, ok := byDate[on]
		if !ok {
			continue
		}
		v := intraday.Values[i]
		switch {
		case g > 0:
			up = append(up, v)
		case g < 0:
			down = append(down, v)
		default:
			flat = append(flat, v)
		}
	}
	total := len(up) + len(down) + len(flat)
	if total == 0 {
		return GapAnalysis{}, ErrEmpty
	}
	a := GapAnalysis{
		TotalDays: total,
		UpDays:    len(up),
		DownDays:  len(down),
		FlatDays:  len(flat),
		UpRatio:   float64(len(up)) / float64(total),
		DownRatio: float64(len(down)) / float64(total),
		FlatRatio: float64(len(flat)) / float64(total),
	}
	var err error
	if a.Up, err = group(up); err != nil {
		return a, err
	}
	if a.Down, err = group(down); err != nil {
		return a, err
	}
	a.Flat, err = group(flat)
	return a, err
}

func group(values []float64) (*Group, error) {
	if len(values) == 0 {
		return nil, nil
	}
	s, err := Describe(values)
	if err != nil {
		return nil, err
	}
	return &Group{Count: len(values), Stats: s}, nil
}
