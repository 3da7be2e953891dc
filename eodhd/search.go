package eodhd

import (
	"context"
	"fmt"
	"net/url"
	"slices"

	"github.com/etnz/stocks"
)

// SearchResult matches the structure of a single item in the EODHD search API response.
type SearchResult struct {
	Code              string      `json:"Code"`
	Exchange          string      `json:"Exchange"`
	Name              string      `json:"Name"`
	Type              string      `json:"Type"`
	Country           string      `json:"Country"`
	Currency          string      `json:"Currency"`
	ISIN              string      `json:"ISIN"`
	PreviousClose     float64     `json:"previousClose"`
	PreviousCloseDate stocks.Date `json:"previousCloseDate"`
	MIC               string      `json:"-"` // Populated by Search, not from API directly.
}

// Ticker returns the symbol to use with the fetch command ("AAPL" for US listings, "SAP.XETRA" otherwise).
func (r SearchResult) Ticker() string {
	if r.Exchange == "US" {
		return r.Code
	}
	return r.Code + "." + r.Exchange
}

// Search searches for securities by name, ticker or ISIN.
//
// Results are cached on disk for the day.
func (c *Client) Search(ctx context.Context, term string) ([]SearchResult, error) {
	apiURL := fmt.Sprintf("%s/api/search/%s?api_token=%s&fmt=json", c.baseURL, url.PathEscape(term), url.QueryEscape(c.apiKey))

	var results []SearchResult
	if err := jwget(ctx, c.daily, apiURL, &results); err != nil {
		return nil, err
	}
	// Search results reference an exchange code that could match multiple MIC (only for the US apparently).
	mic2Exchange, err := fetchMicToExchangeCode(ctx, c.monthly, c.baseURL, c.apiKey)
	if err != nil {
		return nil, err
	}
	// Reverse the map.
	exchange2mic := make(map[string][]string)
	for k, v := range mic2Exchange {
		exchange2mic[v] = append(exchange2mic[v], k)
	}

	// Now we fully rebuild the search result list with potentially different MIC
	newResults := make([]SearchResult, 0, len(results))
	for _, result := range results {
		mics := exchange2mic[result.Exchange]
		if len(mics) == 0 {
			newResults = append(newResults, result)
			continue
		}
		slices.Sort(mics)
		for _, mic := range mics {
			r := result
			r.MIC = mic
			newResults = append(newResults, r)
		}
	}
	return newResults, nil
}
