package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2024-01-02 and 2024-01-03 at 14:30 UTC, 2024-01-04 has a null open.
const chartJSON = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL", "gmtoffset": -18000},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {
        "quote": [{
          "open":   [100.0, 110.0, null],
          "high":   [105.0, 115.0, 120.0],
          "low":    [95.0, 105.0, 100.0],
          "close":  [102.0, 112.0, 110.0],
          "volume": [1000, null, 3000]
        }],
        "adjclose": [{"adjclose": [51.0, 112.0, 110.0]}]
      }
    }],
    "error": null
  }
}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL), WithRate(0), WithRetries(2, time.Millisecond))
}

var jan = stocks.NewRange(stocks.NewDate(2024, 1, 1), stocks.NewDate(2024, 1, 31))

func TestFetch(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Write([]byte(chartJSON))
	})

	bars, err := c.Fetch(context.Background(), "AAPL", stocks.Daily, jan)
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", got.URL.Path)
	assert.Equal(t, "1d", got.URL.Query().Get("interval"))
	assert.Equal(t, "1704067200", got.URL.Query().Get("period1"))
	assert.Equal(t, "1706745600", got.URL.Query().Get("period2"))
	assert.NotEmpty(t, got.Header.Get("User-Agent"))

	require.Len(t, bars, 2, "the row with a null open is dropped")
	assert.Equal(t, []stocks.Date{stocks.NewDate(2024, 1, 2), stocks.NewDate(2024, 1, 3)}, bars.Dates())

	// first row is adjusted by 51/102
	first := bars[0]
	assert.True(t, first.Open.Equal(decimal.NewFromInt(50)), "open %v", first.Open)
	assert.True(t, first.High.Equal(decimal.NewFromFloat(52.5)), "high %v", first.High)
	assert.True(t, first.Close.Equal(decimal.NewFromInt(51)), "close %v", first.Close)
	assert.EqualValues(t, 1000, first.Volume)
	assert.EqualValues(t, 0, bars[1].Volume)
}

func TestFetch_IndexTickerIsEscaped(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.Write([]byte(chartJSON))
	})
	_, err := c.Fetch(context.Background(), "^GSPC", stocks.Weekly, jan)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/%5EGSPC", path)
}

func TestFetch_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"meta":{"symbol":"AAPL"},"indicators":{"quote":[{}]}}],"error":null}}`))
	})
	_, err := c.Fetch(context.Background(), "AAPL", stocks.Daily, jan)
	assert.ErrorIs(t, err, stocks.ErrNoData)
}

func TestFetch_MissingPrices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[1704205800],"indicators":{"quote":[{"close":[1.0]}]}}],"error":null}}`))
	})
	_, err := c.Fetch(context.Background(), "AAPL", stocks.Daily, jan)
	assert.ErrorContains(t, err, "missing open prices")
}

func TestFetch_ChartError(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})
	_, err := c.Fetch(context.Background(), "NOPE", stocks.Daily, jan)
	assert.ErrorContains(t, err, "symbol may be delisted")
	assert.False(t, errors.Is(err, stocks.ErrNoData))
	assert.EqualValues(t, 1, calls.Load(), "not found is not retried")
}

func TestFetch_RetriesThrottled(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(chartJSON))
	})
	bars, err := c.Fetch(context.Background(), "AAPL", stocks.Daily, jan)
	require.NoError(t, err)
	assert.Len(t, bars, 2)
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetch_GivesUp(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Fetch(context.Background(), "AAPL", stocks.Daily, jan)
	assert.ErrorContains(t, err, "502")
	assert.EqualValues(t, 3, calls.Load(), "one call and two retries")
}
