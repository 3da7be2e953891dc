package stocks

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func bar(on Date, close float64) Bar {
	c := decimal.NewFromFloat(close)
	return Bar{Date: on, Open: c, High: c, Low: c, Close: c, Volume: 100}
}

func TestSeries_Merge(t *testing.T) {
	s := NewSeries(bar(d(1, 3), 3), bar(d(1, 1), 1), bar(d(1, 2), 2))
	if got, want := s.Dates(), []Date{d(1, 1), d(1, 2), d(1, 3)}; !reflect.DeepEqual(got, want) {
		t.Fatalf("NewSeries() dates = %v, want %v", got, want)
	}

	s = s.Merge([]Bar{bar(d(1, 3), 30), bar(d(1, 4), 4)})
	if got, want := s.Closes(), []float64{1, 2, 30, 4}; !reflect.DeepEqual(got, want) {
		t.Errorf("Merge() closes = %v, want %v", got, want)
	}
}

func TestSeries_Between(t *testing.T) {
	s := NewSeries(bar(d(1, 1), 1), bar(d(1, 2), 2), bar(d(1, 3), 3), bar(d(1, 4), 4))
	got := s.Between(r(1, 2, 1, 3))
	if want := []float64{2, 3}; !reflect.DeepEqual(got.Closes(), want) {
		t.Errorf("Between() closes = %v, want %v", got.Closes(), want)
	}
	span, ok := got.Span()
	if !ok || span != r(1, 2, 1, 3) {
		t.Errorf("Span() = %v, %v", span, ok)
	}
	if _, ok := (Series{}).Last(); ok {
		t.Error("Last() of empty series is ok")
	}
}

func TestBar_Valid(t *testing.T) {
	b := bar(d(1, 1), 10)
	if !b.Valid() {
		t.Errorf("%v is not valid", b)
	}
	b.Low = decimal.NewFromInt(11)
	if b.Valid() {
		t.Errorf("bar with low above high is valid")
	}
	b = bar(d(1, 1), 0)
	if b.Valid() {
		t.Errorf("bar with zero prices is valid")
	}
}

func TestPerformanceOf(t *testing.T) {
	s := NewSeries(bar(d(1, 1), 100), bar(d(1, 2), 110))
	p, ok := PerformanceOf(s, "USD")
	if !ok {
		t.Fatal("PerformanceOf() not ok")
	}
	if got := p.Percent(); !got.Equal(10) {
		t.Errorf("Percent() = %v, want 10%%", got)
	}
	if got, want := p.End.String(), "$110.00"; got != want {
		t.Errorf("End = %q, want %q", got, want)
	}
	if got, want := p.Change().SignedString(), "+$10.00"; got != want {
		t.Errorf("Change() = %q, want %q", got, want)
	}
}
