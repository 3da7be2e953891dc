package yahoo

import (
	"errors"
	"fmt"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

/*
	{
	  "chart": {
	    "result": [{
	      "meta": {"currency": "USD", "symbol": "AAPL", "gmtoffset": -18000, ...},
	      "timestamp": [1704205800, 1704292200],
	      "indicators": {
	        "quote": [{"open": [...], "high": [...], "low": [...], "close": [...], "volume": [...]}],
	        "adjclose": [{"adjclose": [...]}]
	      }
	    }],
	    "error": null
	  }
	}
*/

// get evaluates path in jobj, ok is false if the path does not exist.
func get(jobj any, path string) (v any, ok bool) {
	v, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, false
	}
	return v, true
}

// chartError returns the description of the chart.error object, if any.
func chartError(jobj any) string {
	v, ok := get(jobj, "$.chart.error")
	if !ok || v == nil {
		return ""
	}
	if desc, ok := get(v, "$.description"); ok {
		return fmt.Sprint(desc)
	}
	return fmt.Sprint(v)
}

// floats converts a JSON array of n numbers. valid[i] is false for nulls.
func floats(v any, n int) (values []float64, valid []bool, err error) {
	list, ok := v.([]any)
	if !ok {
		return nil, nil, fmt.Errorf("not an array: %T", v)
	}
	if len(list) != n {
		return nil, nil, fmt.Errorf("got %d values for %d timestamps", len(list), n)
	}
	values, valid = make([]float64, n), make([]bool, n)
	for i, x := range list {
		if f, ok := x.(float64); ok {
			values[i], valid[i] = f, true
		}
	}
	return values, valid, nil
}

// parseChart extracts the adjusted bars from a decoded chart response.
//
// Rows where any of open, high, low or close is null are dropped.
func parseChart(jobj any, logger *zap.Logger) (stocks.Series, error) {
	if desc := chartError(jobj); desc != "" {
		return nil, errors.New(desc)
	}
	if _, ok := get(jobj, "$.chart.result[0]"); !ok {
		return nil, errors.New("missing chart result")
	}
	rawTS, ok := get(jobj, "$.chart.result[0].timestamp")
	if !ok || rawTS == nil {
		return nil, nil // no bar in range
	}
	timestamps, tsValid, err := floats(rawTS, lenOf(rawTS))
	if err != nil {
		return nil, fmt.Errorf("timestamp: %w", err)
	}
	n := len(timestamps)

	var offset int64
	if v, ok := get(jobj, "$.chart.result[0].meta.gmtoffset"); ok {
		if f, ok := v.(float64); ok {
			offset = int64(f)
		}
	}

	columns := make(map[string][]float64)
	valids := make(map[string][]bool)
	for _, col := range []string{"open", "high", "low", "close"} {
		v, ok := get(jobj, "$.chart.result[0].indicators.quote[0]."+col)
		if !ok {
			return nil, fmt.Errorf("missing %s prices", col)
		}
		if columns[col], valids[col], err = floats(v, n); err != nil {
			return nil, fmt.Errorf("%s: %w", col, err)
		}
	}
	volume, volumeValid := make([]float64, n), make([]bool, n)
	if v, ok := get(jobj, "$.chart.result[0].indicators.quote[0].volume"); ok {
		if volume, volumeValid, err = floats(v, n); err != nil {
			return nil, fmt.Errorf("volume: %w", err)
		}
	}
	var adj []float64
	var adjValid []bool
	if v, ok := get(jobj, "$.chart.result[0].indicators.adjclose[0].adjclose"); ok {
		if adj, adjValid, err = floats(v, n); err != nil {
			return nil, fmt.Errorf("adjclose: %w", err)
		}
	}

	bars := make([]stocks.Bar, 0, n)
	dropped := 0
	for i := range n {
		if !tsValid[i] || !valids["open"][i] || !valids["high"][i] || !valids["low"][i] || !valids["close"][i] {
			dropped++
			continue
		}
		o, h, l, c := columns["open"][i], columns["high"][i], columns["low"][i], columns["close"][i]
		// auto adjust: scale all prices by the adjusted close ratio.
		if adj != nil && adjValid[i] && c != 0 {
			ratio := adj[i] / c
			o, h, l, c = o*ratio, h*ratio, l*ratio, adj[i]
		}
		b := stocks.Bar{
			Date:  stocks.DateOf(time.Unix(int64(timestamps[i])+offset, 0).UTC()),
			Open:  price(o),
			High:  price(h),
			Low:   price(l),
			Close: price(c),
		}
		if volumeValid[i] {
			b.Volume = int64(volume[i])
		}
		if !b.Valid() {
			dropped++
			continue
		}
		bars = append(bars, b)
	}
	if dropped > 0 {
		logger.Debug("dropped incomplete rows", zap.Int("rows", dropped))
	}
	return stocks.NewSeries(bars...), nil
}

func price(f float64) decimal.Decimal { return decimal.NewFromFloat(f).Round(6) }

func lenOf(v any) int {
	list, _ := v.([]any)
	return len(list)
}
