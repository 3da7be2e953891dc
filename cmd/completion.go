package cmd

import (
	"context"
	"os"

	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/docs"
	"github.com/etnz/stocks/store"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// cachedTickers predicts the tickers already in the cache.
func cachedTickers(prefix string) []string {
	config, err := LoadConfig(*configFile)
	if err != nil {
		return nil
	}
	if *dbFile != "" {
		config.Data.DB = *dbFile
	}
	return tickersIn(config.Data.DB)
}

// tickersIn returns the tickers stored in the database at path.
// A missing database is not created.
func tickersIn(path string) []string {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	db, err := store.Open(path, nil)
	if err != nil {
		return nil
	}
	defer db.Close()
	entries, err := db.Available(context.Background())
	if err != nil {
		return nil
	}
	var tickers []string
	seen := make(map[string]bool)
	for _, e := range entries {
		if !seen[e.Ticker] {
			seen[e.Ticker] = true
			tickers = append(tickers, e.Ticker)
		}
	}
	return tickers
}

var intervals = predict.Set{"1d", "1wk", "1mo"}

// Completion describes the command line for shell completion.
//
// Install it with COMP_INSTALL=1 sap.
func Completion() *complete.Command {
	tickers := complete.PredictFunc(cachedTickers)
	frontMatter := map[string]complete.Predictor{"frontmatter": predict.Files("*")}
	sub := map[string]*complete.Command{
		"fetch": {
			Flags: map[string]complete.Predictor{
				"period":   predict.Set{"1y", "5y", "10y", "6mo"},
				"interval": intervals,
				"from":     predict.Something,
				"to":       predict.Something,
				"force":    predict.Nothing,
			},
			Args: tickers,
		},
		"list": {},
		"cache": {Sub: map[string]*complete.Command{
			"info":    {},
			"clear":   {Flags: map[string]complete.Predictor{"interval": intervals, "all": predict.Nothing}, Args: tickers},
			"cleanup": {Flags: map[string]complete.Predictor{"older-than": predict.Something}},
		}},
		"search":  {Args: predict.Something},
		"topic":   {Flags: map[string]complete.Predictor{"list": predict.Nothing}, Args: predict.Set(docs.Names())},
		"analyze": {Flags: frontMatter, Args: tickers},
	}
	for _, k := range analysis.Kinds {
		if k != analysis.Daily {
			sub[string(k)] = &complete.Command{Flags: frontMatter, Args: tickers}
		}
	}
	return &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"config":        predict.Files("*.toml"),
			"db":            predict.Files("*.db"),
			"provider":      predict.Set{"yahoo", "eodhd"},
			"eodhd-api-key": predict.Something,
			"no-charts":     predict.Nothing,
			"html":          predict.Nothing,
			"v":             predict.Nothing,
		},
	}
}
