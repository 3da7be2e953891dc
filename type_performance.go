package stocks

// Performance holds the first and last price over a range.
type Performance struct {
	Start, End Money
}

// PerformanceOf returns the close-to-close performance of s, priced in currency.
// ok is false when s has less than two bars.
func PerformanceOf(s Series, currency string) (p Performance, ok bool) {
	if len(s) < 2 {
		return Performance{}, false
	}
	return Performance{
		Start: M(s[0].Close, currency),
		End:   M(s[len(s)-1].Close, currency),
	}, true
}

func (p Performance) Change() Money {
	return p.End.Sub(p.Start)
}

func (p Performance) Percent() Percent {
	if p.Start.IsZero() {
		return 0
	}
	return Percent(100 * p.Change().AsFloat() / p.Start.AsFloat())
}
