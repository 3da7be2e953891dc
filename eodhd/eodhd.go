// Package eodhd fetches prices and searches securities on eodhd.com.
package eodhd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/etnz/stocks"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// nice to redirect to https://eodhd.com/financial-summary/AAPL.US

// DefaultBaseURL is the EODHD API host.
const DefaultBaseURL = "https://eodhd.com"

// APIKeyEnv is the environment variable holding the API key.
const APIKeyEnv = "EODHD_API_KEY"

var ErrMissingAPIKey = errors.New("missing EODHD API key: use -eodhd-api-key or set " + APIKeyEnv + ", get one at https://eodhd.com/")

// Client is a stocks.Provider backed by the EODHD end of day API.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client // plain client, the store caches prices
	daily   *http.Client // disk cached, expires daily
	monthly *http.Client // disk cached, expires monthly
	limiter *rate.Limiter
	logger  *zap.Logger

	cacheDir string
}

var _ stocks.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, mostly for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") } }

// WithCacheDir sets where the search responses are kept.
func WithCacheDir(dir string) Option { return func(c *Client) { c.cacheDir = dir } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// WithRate limits requests to 'perSecond' (no limit if <= 0).
func WithRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New returns a client for apiKey. If apiKey is empty, it is read from the environment.
func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv(APIKeyEnv)
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 1),
		logger:  zap.NewNop(),

		cacheDir: os.TempDir(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.daily = newCachingClient(c.cacheDir, stocks.Daily, c.logger)
	c.monthly = newCachingClient(c.cacheDir, stocks.Monthly, c.logger)
	return c, nil
}

func (c *Client) Name() string { return "eodhd" }

// Ticker returns the EODHD symbol for ticker.
//
// Indices ("^GSPC") live on the virtual INDX exchange, and tickers without an
// exchange suffix are assumed to be US listed.
func Ticker(ticker string) string {
	if strings.HasPrefix(ticker, "^") {
		return strings.TrimPrefix(ticker, "^") + ".INDX"
	}
	if strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + ".US"
}

// Fetch returns the adjusted bars of ticker within r.
func (c *Client) Fetch(ctx context.Context, ticker string, interval stocks.Interval, r stocks.Range) (stocks.Series, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	bars, err := fetchBars(ctx, c.http, c.baseURL, c.apiKey, Ticker(ticker), interval, r)
	if err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, stocks.ErrNoData
	}
	return bars, nil
}
