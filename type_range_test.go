package stocks

import (
	"reflect"
	"slices"
	"testing"
)

func TestRange_Touches(t *testing.T) {
	jan := func(d int) Date { return NewDate(2024, 1, d) }
	tests := []struct {
		name string
		a, b Range
		want bool
	}{
		{"overlap", NewRange(jan(1), jan(10)), NewRange(jan(5), jan(15)), true},
		{"adjacent", NewRange(jan(1), jan(10)), NewRange(jan(11), jan(15)), true},
		{"adjacent reversed", NewRange(jan(11), jan(15)), NewRange(jan(1), jan(10)), true},
		{"one day apart", NewRange(jan(1), jan(10)), NewRange(jan(12), jan(15)), false},
		{"inside", NewRange(jan(1), jan(10)), NewRange(jan(3), jan(4)), true},
		{"empty", Range{From: jan(5), To: jan(4)}, NewRange(jan(1), jan(10)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Touches(tt.b); got != tt.want {
				t.Errorf("%v.Touches(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRange_Len(t *testing.T) {
	r := NewRange(NewDate(2024, 2, 27), NewDate(2024, 3, 1))
	if got := r.Len(); got != 4 {
		t.Errorf("Len() = %d, want 4", got)
	}
	if got := (Range{From: r.To, To: r.From}).Len(); got != 0 {
		t.Errorf("Len() of an empty range = %d, want 0", got)
	}
}

func TestRange_Days(t *testing.T) {
	r := NewRange(NewDate(2024, 2, 28), NewDate(2024, 3, 1))
	got := slices.Collect(r.Days())
	want := []Date{NewDate(2024, 2, 28), NewDate(2024, 2, 29), NewDate(2024, 3, 1)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Days() = %v, want %v", got, want)
	}
}

func TestNewRange_Swaps(t *testing.T) {
	a, b := NewDate(2024, 1, 1), NewDate(2024, 2, 1)
	if got := NewRange(b, a); got != (Range{From: a, To: b}) {
		t.Errorf("NewRange(%v, %v) = %v", b, a, got)
	}
}
