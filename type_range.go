package stocks

import (
	"fmt"
	"iter"
)

// Range represents an inclusive range of dates.
type Range struct{ From, To Date }

// NewRange creates a new date range. If 'from' is after 'to', they are swapped.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains return true date is included in the range (boundaries included)
func (r Range) Contains(date Date) bool { return (!date.Before(r.From) && !date.After(r.To)) }

// Covers reports whether x is entirely inside r.
func (r Range) Covers(x Range) bool { return r.Contains(x.From) && r.Contains(x.To) }

// IsEmpty reports whether the range holds no day at all.
func (r Range) IsEmpty() bool { return r.From.After(r.To) }

// Len returns the number of days in the range.
func (r Range) Len() int {
	if r.IsEmpty() {
		return 0
	}
	return r.To.DaysSince(r.From) + 1
}

// Touches reports whether r and x overlap or are adjacent (no day in between).
func (r Range) Touches(x Range) bool {
	if r.IsEmpty() || x.IsEmpty() {
		return false
	}
	return !r.From.After(x.To.Add(1)) && !x.From.After(r.To.Add(1))
}

// Union returns the smallest range containing both r and x.
func (r Range) Union(x Range) Range {
	from, to := r.From, r.To
	if x.From.Before(from) {
		from = x.From
	}
	if x.To.After(to) {
		to = x.To
	}
	return Range{From: from, To: to}
}

// Days returns an iterator that yields each date within the range, inclusive.
func (r Range) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := r.From; !d.After(r.To); d = d.Add(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (r Range) String() string { return fmt.Sprintf("%s..%s", r.From, r.To) }
