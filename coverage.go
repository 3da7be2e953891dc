package stocks

import (
	"slices"
)

// Segment records that a range of dates was pulled from a provider on a given day.
//
// A provider returns what it knows on the day it is queried: the bar of the
// current period is not final yet. Therefore a segment is only trusted up to the
// day before the period containing its fetch day, unless it was fetched today.
// For daily bars that is the day before the fetch, for weekly bars the Sunday
// before, for monthly bars the last day of the previous month.
type Segment struct {
	Range
	FetchedOn Date
}

// Effective returns the part of the segment that is trusted on 'today' for bars of interval iv.
// The result may be empty.
func (s Segment) Effective(today Date, iv Interval) Range {
	if s.FetchedOn == today {
		return s.Range
	}
	r := s.Range
	if last := iv.Start(s.FetchedOn).Add(-1); r.To.After(last) {
		r.To = last
	}
	return r
}

// Coverage is the set of segments known for one ticker and interval.
// Its methods take that interval, as the trusted part of a segment depends on it.
type Coverage []Segment

// effective returns the trusted ranges of c, sorted and merged.
func (c Coverage) effective(today Date, iv Interval) []Range {
	var ranges []Range
	for _, s := range c {
		if r := s.Effective(today, iv); !r.IsEmpty() {
			ranges = append(ranges, r)
		}
	}
	slices.SortFunc(ranges, func(a, b Range) int { return a.From.Compare(b.From) })

	var out []Range
	for _, r := range ranges {
		if n := len(out); n > 0 && out[n-1].Touches(r) {
			out[n-1] = out[n-1].Union(r)
			continue
		}
		out = append(out, r)
	}
	return out
}

// Missing returns the sub-ranges of req that are not covered on 'today'.
//
// The result is sorted, non-overlapping, and each range is maximal.
// An empty result means req is fully covered.
func (c Coverage) Missing(req Range, today Date, iv Interval) []Range {
	if req.IsEmpty() {
		return nil
	}
	var gaps []Range
	cur := req.From
	for _, r := range c.effective(today, iv) {
		if r.To.Before(cur) {
			continue
		}
		if r.From.After(req.To) {
			break
		}
		if r.From.After(cur) {
			gaps = append(gaps, Range{From: cur, To: r.From.Add(-1)})
		}
		cur = r.To.Add(1)
		if cur.After(req.To) {
			return gaps
		}
	}
	return append(gaps, Range{From: cur, To: req.To})
}

// Covers reports whether req is entirely covered on 'today'.
func (c Coverage) Covers(req Range, today Date, iv Interval) bool {
	return len(c.Missing(req, today, iv)) == 0
}

// Add returns the coverage after 'r' has been fetched today.
//
// Segments whose trusted range overlaps or touches r are merged with it into a
// single segment fetched today. Other segments are kept unchanged, and segments
// with no trusted day left are dropped.
func (c Coverage) Add(r Range, today Date, iv Interval) Coverage {
	merged := r
	rest := make(Coverage, 0, len(c))
	for _, s := range c {
		if !s.Effective(today, iv).IsEmpty() {
			rest = append(rest, s)
		}
	}

	// merging may widen 'merged' enough to reach segments visited earlier.
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(rest); i++ {
			eff := rest[i].Effective(today, iv)
			if eff.Touches(merged) {
				merged = merged.Union(eff)
				rest = slices.Delete(rest, i, i+1)
				i--
				changed = true
			}
		}
	}

	out := append(rest, Segment{Range: merged, FetchedOn: today})
	slices.SortFunc(out, func(a, b Segment) int { return a.From.Compare(b.From) })
	return out
}

// Span returns the smallest range containing every trusted day.
// ok is false if nothing is covered.
func (c Coverage) Span(today Date, iv Interval) (r Range, ok bool) {
	eff := c.effective(today, iv)
	if len(eff) == 0 {
		return Range{}, false
	}
	return Range{From: eff[0].From, To: eff[len(eff)-1].To}, true
}
