package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/etnz/stocks"
	"github.com/shopspring/decimal"
)

// This file contains functions to access the EODHD API.

// periods maps intervals to the 'period' parameter of the eod endpoint.
var periods = map[stocks.Interval]string{
	stocks.Daily:   "d",
	stocks.Weekly:  "w",
	stocks.Monthly: "m",
}

// fetchBars returns the bars of an EODHD ticker ("SYMBOL.EXCHANGE") within r.
func fetchBars(ctx context.Context, client *http.Client, base, apiKey, ticker string, interval stocks.Interval, r stocks.Range) (stocks.Series, error) {
	// https://eodhd.com/api/eod/NVD.F?api_token=demo&fmt=json
	// [
	//	{
	//		"date": "2024-02-13",
	//		"open": 675.066,
	//		"high": 684.219,
	//		"low": 648.659,
	//		"close": 668.445,
	//		"adjusted_close": 67.705,
	//		"volume": 0
	//	  },
	// bounds are included in the response, and time is limited to 1 year with free subscription.
	period, ok := periods[interval]
	if !ok {
		return nil, fmt.Errorf("%w %q", stocks.ErrInvalidInterval, interval)
	}
	addr := fmt.Sprintf("%s/api/eod/%s?fmt=json&api_token=%s&from=%s&to=%s&period=%s",
		base, url.PathEscape(ticker), url.QueryEscape(apiKey), r.From, r.To, period)

	type Info struct {
		Date          stocks.Date     `json:"date"`
		Open          decimal.Decimal `json:"open"`
		High          decimal.Decimal `json:"high"`
		Low           decimal.Decimal `json:"low"`
		Close         decimal.Decimal `json:"close"`
		AdjustedClose decimal.Decimal `json:"adjusted_close"`
		Volume        float64         `json:"volume"`
	}

	// that's the payload
	content := make([]Info, 0)
	if err := jwget(ctx, client, addr, &content); err != nil {
		return nil, fmt.Errorf("eodhd %s: %w", ticker, err)
	}

	bars := make([]stocks.Bar, 0, len(content))
	for _, info := range content {
		b := stocks.Bar{
			Date:   info.Date,
			Open:   info.Open,
			High:   info.High,
			Low:    info.Low,
			Close:  info.Close,
			Volume: int64(info.Volume),
		}
		// adjust all prices by the adjusted close ratio.
		if info.AdjustedClose.IsPositive() && info.Close.IsPositive() && !info.AdjustedClose.Equal(info.Close) {
			ratio := info.AdjustedClose.Div(info.Close)
			b.Open = b.Open.Mul(ratio).Round(6)
			b.High = b.High.Mul(ratio).Round(6)
			b.Low = b.Low.Mul(ratio).Round(6)
			b.Close = info.AdjustedClose
		}
		if b.Valid() {
			bars = append(bars, b)
		}
	}
	return stocks.NewSeries(bars...), nil
}

// fetchMicToExchangeCode returns a map of MIC to EODHD's internal exchange code.
//
// This is required since EODHD use its own id for exchange places.
func fetchMicToExchangeCode(ctx context.Context, client *http.Client, base, apiKey string) (map[string]string, error) {
	// https://eodhd.com/api/exchanges-list/?api_token=demo&fmt=json
	// [
	// {
	// 	"Name": "Frankfurt Exchange",
	// 	"Code": "F",
	// 	"OperatingMIC": "XFRA",
	// 	"Country": "Germany",
	// 	"Currency": "EUR",
	//   },
	addr := fmt.Sprintf("%s/api/exchanges-list/?fmt=json&api_token=%s", base, url.QueryEscape(apiKey))

	// the response is a list of exchanges, each with a Code and OperatingMIC
	type Info struct {
		Code         string
		OperatingMIC string // could be a comma separated list of MICs
	}

	content := make([]Info, 0)
	if err := jwget(ctx, client, addr, &content); err != nil {
		return nil, err
	}
	result := make(map[string]string)
	for _, info := range content {
		for _, mic := range strings.Split(info.OperatingMIC, ",") {
			if mic = strings.TrimSpace(mic); mic != "" {
				result[mic] = info.Code
			}
		}
	}
	return result, nil
}
