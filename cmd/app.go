// Package cmd implements the sap command line application: fetch stock prices
// into the local cache and analyze their returns.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"text/template"
	"time"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/chart"
	"github.com/etnz/stocks/eodhd"
	"github.com/etnz/stocks/report"
	"github.com/etnz/stocks/store"
	"github.com/etnz/stocks/yahoo"
	"github.com/google/subcommands"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(&topicCmd{}, "")

	c.Register(&fetchCmd{}, "data")
	c.Register(&listCmd{}, "data")
	c.Register(&cacheCmd{}, "data")
	c.Register(&searchCmd{}, "data")

	c.Register(&analyzeCmd{}, "analysis")
	for _, kind := range []analysis.Kind{analysis.Weekly, analysis.Intraday, analysis.DailyRange, analysis.Compare} {
		c.Register(&analysisCmd{kind: kind}, "analysis")
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile  = flag.String("config", "", "Path to the TOML configuration file. Defaults to "+DefaultConfigFile+" if it exists.")
	dbFile      = flag.String("db", "", "Path to the SQLite cache. Overrides [data] db.")
	provider    = flag.String("provider", "", "Market data provider (yahoo, eodhd). Overrides [data] provider.")
	eodhdAPIKey = flag.String("eodhd-api-key", "", "EODHD API key. This flag takes precedence over the "+eodhd.APIKeyEnv+" environment variable. You can get one at https://eodhd.com/")
	noCharts    = flag.Bool("no-charts", false, "Do not render charts.")
	html        = flag.Bool("html", false, "Also save analysis reports as HTML.")
	Verbose     = flag.Bool("v", false, "Log debug information to stderr.")
)

// app holds what the commands share, built from the configuration and the global flags.
type app struct {
	config *Config
	logger *zap.Logger
	store  *store.Store
}

// newApp loads the configuration, applies the global flags and opens the cache.
func newApp() (*app, error) {
	config, err := LoadConfig(*configFile)
	if err != nil {
		return nil, err
	}
	if *dbFile != "" {
		config.Data.DB = *dbFile
	}
	if *provider != "" {
		config.Data.Provider = *provider
	}
	if *eodhdAPIKey != "" {
		config.EODHD.APIKey = *eodhdAPIKey
	}
	if *noCharts {
		config.Output.NoCharts = true
	}
	if *html {
		config.Output.HTML = true
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(config.Log.Level, *Verbose)
	if err != nil {
		return nil, err
	}
	db, err := store.Open(config.Data.DB, logger)
	if err != nil {
		return nil, err
	}
	return &app{config: config, logger: logger, store: db}, nil
}

// Close releases the cache and flushes the logs.
func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing cache: %v\n", err)
	}
	_ = a.logger.Sync()
}

// newLogger returns a production logger at level, or a development logger at debug level when verbose.
func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopmentConfig().Build()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("config: invalid log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

// provider returns the configured market data provider.
func (a *app) provider() (stocks.Provider, error) {
	switch a.config.Data.Provider {
	case "eodhd":
		opts := []eodhd.Option{eodhd.WithBaseURL(a.config.EODHD.BaseURL), eodhd.WithLogger(a.logger)}
		if a.config.EODHD.CacheDir != "" {
			opts = append(opts, eodhd.WithCacheDir(a.config.EODHD.CacheDir))
		}
		return eodhd.New(a.config.EODHD.APIKey, opts...)
	default:
		return yahoo.New(
			yahoo.WithBaseURL(a.config.Yahoo.BaseURL),
			yahoo.WithRate(a.config.Yahoo.Rate),
			yahoo.WithRetries(a.config.Yahoo.Retries, time.Second),
			yahoo.WithLogger(a.logger),
		), nil
	}
}

// service returns a data service pulling from the configured provider.
func (a *app) service() (*stocks.Service, error) {
	p, err := a.provider()
	if err != nil {
		return nil, err
	}
	return stocks.NewService(a.store, p, a.logger), nil
}

// offline returns a data service that only reads the cache.
func (a *app) offline() *stocks.Service {
	return stocks.NewService(a.store, nil, a.logger)
}

// lookback returns the default period of history.
func (a *app) lookback() stocks.Lookback {
	// validated when the configuration was loaded
	l, _ := stocks.ParseLookback(a.config.Data.Period)
	return l
}

// factory returns an analyzer factory over the cache.
func (a *app) factory() *analysis.Factory {
	f := analysis.NewFactory(a.offline(), a.logger)
	f.Lookback = a.lookback()
	f.Currency = a.config.Data.Currency
	return f
}

// charts returns the chart writer, or nil if charts are disabled.
func (a *app) charts() *chart.Writer {
	if a.config.Output.NoCharts {
		return nil
	}
	return chart.New(a.config.Output.Charts, a.logger)
}

// reports returns the results writer, with an optional front matter template.
func (a *app) reports(frontMatter string) (*report.Writer, error) {
	w := report.New(a.config.Output.Results, a.logger)
	w.HTML = a.config.Output.HTML
	if frontMatter != "" {
		tpl, err := template.ParseFiles(frontMatter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse front matter template: %w", err)
		}
		w.FrontMatter = tpl
	}
	return w, nil
}
