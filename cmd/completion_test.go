package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickersIn_MissingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "stocks.db")
	assert.Empty(t, tickersIn(path))
	_, err := os.Stat(filepath.Dir(path))
	assert.True(t, os.IsNotExist(err), "completion must not create the cache")
}

func TestTickersIn(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stocks.db")
	db, err := store.Open(path, nil)
	require.NoError(t, err)
	day := stocks.NewDate(2024, 3, 1)
	c := decimal.NewFromInt(100)
	bars := stocks.NewSeries(stocks.Bar{Date: day, Open: c, High: c, Low: c, Close: c, Volume: 1})
	for _, s := range []struct {
		ticker   string
		interval stocks.Interval
	}{{"AAPL", stocks.Daily}, {"AAPL", stocks.Weekly}, {"MSFT", stocks.Daily}} {
		require.NoError(t, db.Merge(ctx, s.ticker, s.interval, bars, stocks.NewRange(day, day), day))
	}
	require.NoError(t, db.Close())

	assert.Equal(t, []string{"AAPL", "MSFT"}, tickersIn(path))
}

func TestCompletion(t *testing.T) {
	c := Completion()

	topics := c.Sub["topic"].Args.Predict("")
	assert.Contains(t, topics, "fetch")
	assert.Contains(t, topics, "extensions")
	assert.NotContains(t, topics, "readme")

	for _, k := range analysis.Kinds {
		name := string(k)
		if k == analysis.Daily {
			name = "analyze"
		}
		assert.Contains(t, c.Sub, name)
	}
}
