// Package yahoo fetches historical prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/etnz/stocks"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public chart API host.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (compatible; sap/1.0)"

// Client is a stocks.Provider backed by the Yahoo Finance chart API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	maxRetries     uint64
	initialBackoff time.Duration
}

var _ stocks.Provider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, mostly for tests.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithHTTPClient sets the http client used for requests.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

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

// WithRetries sets how many times a throttled or failed request is retried, and the first delay.
func WithRetries(n uint64, initial time.Duration) Option {
	return func(c *Client) { c.maxRetries, c.initialBackoff = n, initial }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

// New returns a Client with 2 requests per second and 3 retries by default.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:        DefaultBaseURL,
		http:           &http.Client{Timeout: 30 * time.Second},
		limiter:        rate.NewLimiter(2, 1),
		logger:         zap.NewNop(),
		maxRetries:     3,
		initialBackoff: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

func (c *Client) Name() string { return "yahoo" }

// Fetch returns the split and dividend adjusted bars of ticker within r.
func (c *Client) Fetch(ctx context.Context, ticker string, interval stocks.Interval, r stocks.Range) (stocks.Series, error) {
	q := url.Values{}
	q.Set("period1", fmt.Sprint(r.From.Time().Unix()))
	// period2 is exclusive.
	q.Set("period2", fmt.Sprint(r.To.Add(1).Time().Unix()))
	q.Set("interval", string(interval))
	q.Set("events", "div,split")
	q.Set("includeAdjustedClose", "true")
	addr := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(ticker), q.Encode())

	jobj, err := c.get(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	bars, err := parseChart(jobj, c.logger)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, stocks.ErrNoData
	}
	return bars, nil
}

// statusError is a non 200 response.
type statusError struct {
	status      string
	code        int
	description string // from the chart.error object, if any
}

func (e *statusError) Error() string {
	if e.description != "" {
		return fmt.Sprintf("%s: %s", e.status, e.description)
	}
	return e.status
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

// get performs a rate limited GET and decodes the JSON response, retrying throttled and server errors.
func (c *Client) get(ctx context.Context, addr string) (any, error) {
	var jobj any
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			serr := &statusError{status: resp.Status, code: resp.StatusCode}
			var body any
			if json.NewDecoder(resp.Body).Decode(&body) == nil {
				serr.description = chartError(body)
			}
			if serr.retryable() {
				return serr
			}
			return backoff.Permanent(serr)
		}
		jobj = nil
		if err := json.NewDecoder(resp.Body).Decode(&jobj); err != nil {
			return backoff.Permanent(fmt.Errorf("invalid json: %w", err))
		}
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initialBackoff
	b := backoff.WithContext(backoff.WithMaxRetries(eb, c.maxRetries), ctx)
	err := backoff.RetryNotify(op, b, func(err error, d time.Duration) {
		c.logger.Warn("retrying yahoo request", zap.Error(err), zap.Duration("in", d))
	})
	if err != nil {
		return nil, err
	}
	return jobj, nil
}
