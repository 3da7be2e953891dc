package stocks

import (
	"reflect"
	"testing"
	"time"
)

// d returns a day in 2024.
func d(month, day int) Date { return NewDate(2024, time.Month(month), day) }

func r(fromMonth, fromDay, toMonth, toDay int) Range {
	return Range{From: d(fromMonth, fromDay), To: d(toMonth, toDay)}
}

func TestSegment_Effective(t *testing.T) {
	tests := []struct {
		name  string
		seg   Segment
		today Date
		want  Range
	}{
		{"fetched today", Segment{r(1, 1, 3, 1), d(3, 1)}, d(3, 1), r(1, 1, 3, 1)},
		{"fetched on last day", Segment{r(1, 1, 3, 1), d(3, 1)}, d(3, 4), r(1, 1, 2, 29)},
		{"fetched later", Segment{r(1, 1, 2, 1), d(3, 1)}, d(3, 4), r(1, 1, 2, 1)},
		{"single day fetched that day", Segment{r(3, 1, 3, 1), d(3, 1)}, d(3, 2), Range{From: d(3, 1), To: d(2, 29)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.seg.Effective(tt.today, Daily); got != tt.want {
				t.Errorf("Effective(%v) = %v, want %v", tt.today, got, tt.want)
			}
		})
	}
}

func TestSegment_EffectivePeriods(t *testing.T) {
	// fetched on Wednesday 2024-03-06
	seg := Segment{r(1, 1, 3, 6), d(3, 6)}
	tests := []struct {
		iv    Interval
		today Date
		want  Range
	}{
		{Daily, d(3, 12), r(1, 1, 3, 5)},
		{Weekly, d(3, 12), r(1, 1, 3, 3)},  // the week of Monday 3/4 was not over
		{Monthly, d(3, 12), r(1, 1, 2, 29)}, // nor March
		{Weekly, d(3, 6), r(1, 1, 3, 6)},
	}
	for _, tt := range tests {
		if got := seg.Effective(tt.today, tt.iv); got != tt.want {
			t.Errorf("Effective(%v, %v) = %v, want %v", tt.today, tt.iv, got, tt.want)
		}
	}

	// the partial week and month are pulled again from their first day.
	cov := Coverage{seg}
	if got, want := cov.Missing(r(1, 1, 3, 12), d(3, 12), Weekly), []Range{r(3, 4, 3, 12)}; !reflect.DeepEqual(got, want) {
		t.Errorf("Missing(Weekly) = %v, want %v", got, want)
	}
	if got, want := cov.Missing(r(1, 1, 3, 12), d(3, 12), Monthly), []Range{r(3, 1, 3, 12)}; !reflect.DeepEqual(got, want) {
		t.Errorf("Missing(Monthly) = %v, want %v", got, want)
	}
}

func TestCoverage_Missing(t *testing.T) {
	today := d(6, 30)
	tests := []struct {
		name string
		cov  Coverage
		req  Range
		want []Range
	}{
		{
			name: "empty coverage",
			req:  r(1, 1, 6, 30),
			want: []Range{r(1, 1, 6, 30)},
		},
		{
			name: "fully covered",
			cov:  Coverage{{r(1, 1, 6, 30), today}},
			req:  r(2, 1, 6, 30),
		},
		{
			name: "stale tail is refetched",
			cov:  Coverage{{r(1, 1, 6, 29), d(6, 29)}},
			req:  r(1, 1, 6, 30),
			want: []Range{r(6, 29, 6, 30)},
		},
		{
			name: "head and middle gaps",
			cov: Coverage{
				{r(2, 1, 2, 29), today},
				{r(4, 1, 6, 30), today},
			},
			req:  r(1, 1, 6, 30),
			want: []Range{r(1, 1, 1, 31), r(3, 1, 3, 31)},
		},
		{
			name: "adjacent segments leave no gap",
			cov: Coverage{
				{r(4, 1, 6, 30), today},
				{r(1, 1, 3, 31), today},
			},
			req: r(1, 1, 6, 30),
		},
		{
			name: "segment outside the request",
			cov:  Coverage{{r(1, 1, 1, 31), today}},
			req:  r(3, 1, 3, 31),
			want: []Range{r(3, 1, 3, 31)},
		},
		{
			name: "empty request",
			cov:  Coverage{{r(1, 1, 1, 31), today}},
			req:  r(3, 1, 2, 1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cov.Missing(tt.req, today, Daily)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Missing(%v) = %v, want %v", tt.req, got, tt.want)
			}
		})
	}
}

func TestCoverage_Add(t *testing.T) {
	today := d(6, 30)
	tests := []struct {
		name string
		cov  Coverage
		add  Range
		want Coverage
	}{
		{
			name: "first segment",
			add:  r(1, 1, 6, 30),
			want: Coverage{{r(1, 1, 6, 30), today}},
		},
		{
			name: "tail refresh merges with stale segment",
			cov:  Coverage{{r(1, 1, 6, 29), d(6, 29)}},
			add:  r(6, 29, 6, 30),
			want: Coverage{{r(1, 1, 6, 30), today}},
		},
		{
			name: "filling a hole merges both sides",
			cov: Coverage{
				{r(1, 1, 1, 31), d(2, 10)},
				{r(3, 1, 6, 30), today},
			},
			add:  r(2, 1, 2, 29),
			want: Coverage{{r(1, 1, 6, 30), today}},
		},
		{
			name: "distant segment is kept as is",
			cov:  Coverage{{r(1, 1, 1, 31), d(2, 10)}},
			add:  r(5, 1, 6, 30),
			want: Coverage{
				{r(1, 1, 1, 31), d(2, 10)},
				{r(5, 1, 6, 30), today},
			},
		},
		{
			name: "segment without trusted day is dropped",
			cov:  Coverage{{r(3, 1, 3, 1), d(3, 1)}},
			add:  r(5, 1, 6, 30),
			want: Coverage{{r(5, 1, 6, 30), today}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cov.Add(tt.add, today, Daily)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Add(%v) = %v, want %v", tt.add, got, tt.want)
			}
			if !got.Covers(tt.add, today, Daily) {
				t.Errorf("Add(%v) does not cover the added range", tt.add)
			}
			// effective ranges never overlap
			eff := make([]Range, 0, len(got))
			for _, s := range got {
				eff = append(eff, s.Effective(today, Daily))
			}
			for i := 1; i < len(eff); i++ {
				if !eff[i].From.After(eff[i-1].To) {
					t.Errorf("Add(%v) overlapping effective ranges %v and %v", tt.add, eff[i-1], eff[i])
				}
			}
		})
	}
}

func TestCoverage_Span(t *testing.T) {
	today := d(6, 30)
	cov := Coverage{{r(1, 1, 1, 31), today}, {r(3, 1, 4, 30), today}}
	got, ok := cov.Span(today, Daily)
	if !ok || got != r(1, 1, 4, 30) {
		t.Errorf("Span() = %v, %v, want %v", got, ok, r(1, 1, 4, 30))
	}
	if _, ok := (Coverage{}).Span(today, Daily); ok {
		t.Error("Span() of empty coverage is ok")
	}
}
