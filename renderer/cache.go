package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/etnz/stocks"
	"github.com/etnz/stocks/eodhd"
	md "github.com/nao1215/markdown"
)

const cachedFormat = "2006-01-02 15:04"

// Size formats a number of bytes with binary units.
func Size(n int64) string { return humanize.IBytes(uint64(max(n, 0))) }

// AvailableMarkdown renders the series stored in the cache.
func AvailableMarkdown(entries []stocks.Entry) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Available Data")
	if len(entries) == 0 {
		doc.PlainText("The cache is empty, use `sap fetch <ticker>` to fill it.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Interval", "From", "To", "Bars", "Last Fetched"},
	}
	for _, e := range entries {
		table.Rows = append(table.Rows, []string{
			e.Ticker,
			e.Interval.String(),
			e.First.String(),
			e.Last.String(),
			strconv.Itoa(e.Count),
			e.LastCached.Local().Format(cachedFormat),
		})
	}
	doc.Table(table)
	return doc.String()
}

// CacheInfoMarkdown renders a description of the cache.
func CacheInfoMarkdown(info stocks.CacheInfo) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Cache")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{md.Bold("Database"), md.Code(info.Path)},
		Rows: [][]string{
			{"Size", Size(info.Size)},
			{"Series", strconv.Itoa(len(info.Entries))},
			{"Bars", strconv.Itoa(info.Bars)},
		},
	})
	if len(info.Entries) > 0 {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight},
			Header:    []string{"Ticker", "Interval", "Bars", "First Cached", "Last Cached"},
		}
		for _, e := range info.Entries {
			table.Rows = append(table.Rows, []string{
				e.Ticker,
				e.Interval.String(),
				strconv.Itoa(e.Count),
				e.FirstCached.Local().Format(cachedFormat),
				e.LastCached.Local().Format(cachedFormat),
			})
		}
		doc.H2("Series")
		doc.Table(table)
	}
	return doc.String()
}

// FetchMarkdown renders the outcome of fetching several tickers.
func FetchMarkdown(results []stocks.Result, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Fetch Summary")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignLeft},
		Header:    []string{"Ticker", "Interval", "Bars", "From", "To", "Last Close", "Status"},
	}
	failed := 0
	for _, r := range results {
		ticker, err := stocks.NormalizeTicker(r.Request.Ticker)
		if err != nil {
			ticker = r.Request.Ticker
		}
		interval := r.Request.Interval
		if interval == "" {
			interval = stocks.Daily
		}
		if r.Err != nil {
			failed++
			table.Rows = append(table.Rows, []string{ticker, interval.String(), "", "", "", "", "❌ " + r.Err.Error()})
			continue
		}
		row := []string{ticker, interval.String(), strconv.Itoa(len(r.Series)), "", "", "", "✅"}
		if span, ok := r.Series.Span(); ok {
			row[3], row[4] = span.From.String(), span.To.String()
		}
		if last, ok := r.Series.Last(); ok {
			row[5] = stocks.M(last.Close, currency).String()
		}
		if p, ok := stocks.PerformanceOf(r.Series, currency); ok {
			row[6] = "✅ " + p.Percent().SignedString()
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
	if failed > 0 {
		doc.PlainText(fmt.Sprintf("%d of %d failed.", failed, len(results)))
	}
	return doc.String()
}

// SearchMarkdown renders search results with the ticker to use for each.
func SearchMarkdown(term string, results []eodhd.SearchResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Search %q", term))
	if len(results) == 0 {
		doc.PlainText("No results.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignLeft, md.AlignRight},
		Header:    []string{"Ticker", "Name", "Type", "Exchange", "ISIN", "Prev. Close"},
	}
	for _, r := range results {
		exchange := r.Exchange
		if r.MIC != "" {
			exchange += " (" + r.MIC + ")"
		}
		close := stocks.M(r.PreviousClose, r.Currency).String()
		if !r.PreviousCloseDate.IsZero() {
			close += " on " + r.PreviousCloseDate.String()
		}
		table.Rows = append(table.Rows, []string{md.Code(r.Ticker()), r.Name, r.Type, exchange, r.ISIN, close})
	}
	doc.Table(table)
	return doc.String()
}
