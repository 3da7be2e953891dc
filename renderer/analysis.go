package renderer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/stats"
	md "github.com/nao1215/markdown"
)

// Analysis renders an analysis result to markdown.
func Analysis(r *analysis.Result) string {
	switch {
	case r.Returns != nil:
		return ReturnsMarkdown(r)
	case r.Intraday != nil:
		return IntradayMarkdown(r)
	case r.DailyRange != nil:
		return RangeMarkdown(r)
	case r.Comparison != nil:
		return ComparisonMarkdown(r)
	default:
		return ""
	}
}

func pct(v float64) string { return stocks.Percent(v).String() }

func signed(v float64) string { return stocks.Percent(v).SignedString() }

func ratio(v float64) string { return stocks.Percent(100 * v).String() }

func num(v float64) string { return strconv.FormatFloat(v, 'f', 3, 64) }

func adjective(i stocks.Interval) string {
	switch i {
	case stocks.Weekly:
		return "Weekly"
	case stocks.Monthly:
		return "Monthly"
	default:
		return "Daily"
	}
}

// summaryRows are the central statistics of s, labelled.
func summaryRows(s stats.Summary) [][]string {
	return [][]string{
		{"Count", strconv.Itoa(s.Count)},
		{"Mean", pct(s.Mean)},
		{"Median", pct(s.Median)},
		{"Standard Deviation", pct(s.Std)},
		{"Max", pct(s.Max)},
		{"Min", pct(s.Min)},
		{"Skewness", num(s.Skewness)},
		{"Excess Kurtosis", num(s.Kurtosis)},
	}
}

// percentilesTable renders the overall, positive and negative percentiles side by side.
func percentilesTable(doc *md.Markdown, s stats.Summary) {
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Percentile", "All", "Up", "Down"},
	}
	cell := func(qs []stats.Quantile, i int) string {
		if i >= len(qs) {
			return ""
		}
		return pct(qs[i].Value)
	}
	for i, q := range s.Percentiles {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d%%", q.Level),
			pct(q.Value),
			cell(s.PositivePercentiles, i),
			cell(s.NegativePercentiles, i),
		})
	}
	doc.Table(table)
}

func header(doc *md.Markdown, title string, r *analysis.Result, span stocks.Range) {
	doc.H1(title)
	doc.PlainText(fmt.Sprintf("%s, from %s to %s.\n", r.Description, span.From, span.To))
}

func charts(doc *md.Markdown, r *analysis.Result) {
	if len(r.Charts) == 0 {
		return
	}
	doc.H2("Charts")
	for _, c := range r.Charts {
		doc.PlainText(md.Image(c, c))
	}
}

// ReturnsMarkdown renders a daily or weekly returns analysis.
func ReturnsMarkdown(r *analysis.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	x := r.Returns

	header(doc, fmt.Sprintf("%s %s Returns", x.Ticker, adjective(x.Interval)), r, x.Span)

	if !x.Performance.Start.IsZero() {
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{md.Bold("Last Close"), md.Bold(x.Performance.End.String())},
			Rows: [][]string{
				{"First Close", x.Performance.Start.String()},
				{"Change", x.Performance.Change().SignedString()},
				{"Return", x.Performance.Percent().SignedString()},
			},
		})
	}

	doc.H2("Statistics")
	rows := summaryRows(x.Stats)
	rows = append(rows,
		[]string{"Annual Volatility", pct(x.Metrics.VolatilityAnnual)},
		[]string{"Sharpe Ratio", num(x.Metrics.SharpeRatio)},
	)
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Statistic", "Value"},
		Rows:      rows,
	})

	doc.H2("Distribution")
	m := x.Metrics
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Direction", "Periods", "Ratio"},
		Rows: [][]string{
			{"Up", strconv.Itoa(m.PositiveDays), ratio(m.PositiveRatio)},
			{"Down", strconv.Itoa(m.NegativeDays), ratio(m.NegativeRatio)},
			{"Flat", strconv.Itoa(m.FlatDays), ""},
		},
	})

	if d := x.Drawdown; d != nil {
		doc.H2("Drawdown")
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Drawdown", "Value"},
			Rows: [][]string{
				{"Max Drawdown", signed(d.Max)},
				{"Longest Drawdown", fmt.Sprintf("%d bars", d.MaxDuration)},
				{"Current Drawdown", signed(d.Current)},
			},
		})
	}

	doc.H2("Percentiles")
	percentilesTable(doc, x.Stats)
	charts(doc, r)
	return doc.String()
}

// IntradayMarkdown renders an intraday returns analysis.
func IntradayMarkdown(r *analysis.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	x := r.Intraday

	header(doc, x.Ticker+" Intraday Returns", r, x.Span)

	doc.H2("Statistics")
	rows := summaryRows(x.Stats)
	rows = append(rows,
		[]string{"Annual Volatility", pct(x.Metrics.VolatilityAnnual)},
		[]string{"Sharpe Ratio", num(x.Metrics.SharpeRatio)},
		[]string{"Up Days", fmt.Sprintf("%d (%s)", x.Metrics.PositiveDays, ratio(x.Metrics.PositiveRatio))},
		[]string{"Down Days", fmt.Sprintf("%d (%s)", x.Metrics.NegativeDays, ratio(x.Metrics.NegativeRatio))},
		[]string{"Flat Days", strconv.Itoa(x.Metrics.FlatDays)},
	)
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Statistic", "Value"},
		Rows:      rows,
	})

	doc.H2("Percentiles")
	percentilesTable(doc, x.Stats)

	g := x.Gaps
	doc.H2("By Opening Gap")
	doc.PlainText(fmt.Sprintf("%d days with a previous close.\n", g.TotalDays))
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Gap", "Days", "Ratio", "Mean", "Median", "Std", "Min", "Max"},
	}
	for _, row := range []struct {
		name  string
		days  int
		ratio float64
		group *stats.Group
	}{
		{"Up", g.UpDays, g.UpRatio, g.Up},
		{"Down", g.DownDays, g.DownRatio, g.Down},
		{"Flat", g.FlatDays, g.FlatRatio, g.Flat},
	} {
		if row.group == nil {
			continue
		}
		s := row.group.Stats
		table.Rows = append(table.Rows, []string{
			row.name, strconv.Itoa(row.days), ratio(row.ratio),
			pct(s.Mean), pct(s.Median), pct(s.Std), pct(s.Min), pct(s.Max),
		})
	}
	doc.Table(table)
	charts(doc, r)
	return doc.String()
}

// RangeMarkdown renders a daily range analysis.
func RangeMarkdown(r *analysis.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	x := r.DailyRange

	header(doc, x.Ticker+" Daily Range", r, x.Span)
	doc.PlainText(fmt.Sprintf("%d trading days.\n", x.TotalDays))

	columns := []struct {
		name string
		s    stats.Summary
	}{
		{"Close to High", x.CloseGain},
		{"Close to Low", x.CloseLoss},
		{"Close Range", x.CloseRange},
		{"Open to High", x.OpenHigh},
		{"Open to Low", x.OpenLow},
		{"Open Range", x.OpenRange},
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Measure", "Mean", "Median", "Std", "Min", "Max"},
	}
	for _, c := range columns {
		table.Rows = append(table.Rows, []string{c.name, pct(c.s.Mean), pct(c.s.Median), pct(c.s.Std), pct(c.s.Min), pct(c.s.Max)})
	}
	doc.H2("Statistics")
	doc.Table(table)

	doc.H2("Percentiles")
	pt := md.TableSet{Alignment: []md.TableAlignment{md.AlignRight}, Header: []string{"Percentile"}}
	for _, c := range columns {
		pt.Alignment = append(pt.Alignment, md.AlignRight)
		pt.Header = append(pt.Header, c.name)
	}
	for i, l := range stats.Levels {
		row := []string{fmt.Sprintf("%d%%", l)}
		for _, c := range columns {
			row = append(row, pct(c.s.Percentiles[i].Value))
		}
		pt.Rows = append(pt.Rows, row)
	}
	doc.Table(pt)

	doc.H2("Records")
	up := func(n int) string { return fmt.Sprintf("%d (%s)", n, ratio(float64(n)/float64(x.TotalDays))) }
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight},
		Header:    []string{"Record", "Value", "Date"},
		Rows: [][]string{
			{"Highest Close to High", signed(x.BestCloseGain.Value), x.BestCloseGain.Date.String()},
			{"Highest Open to High", signed(x.BestOpenHigh.Value), x.BestOpenHigh.Date.String()},
			{"Lowest Close to Low", signed(x.WorstCloseLoss.Value), x.WorstCloseLoss.Date.String()},
			{"Lowest Open to Low", signed(x.WorstOpenLow.Value), x.WorstOpenLow.Date.String()},
			{"Days Above Previous Close", up(x.CloseUpDays), ""},
			{"Days Above Open", up(x.OpenUpDays), ""},
		},
	})
	charts(doc, r)
	return doc.String()
}

// ComparisonMarkdown renders a comparison of several tickers.
func ComparisonMarkdown(r *analysis.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	c := r.Comparison

	doc.H1("Returns Comparison")
	if len(c.Missing) > 0 {
		doc.PlainText(fmt.Sprintf("No data for %v.\n", c.Missing))
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight, md.AlignRight},
		Header:    []string{"Ticker", "Days", "Mean", "Std", "Min", "Max", "Skewness", "Kurtosis"},
	}
	for _, ts := range c.Stats {
		s := ts.Stats
		table.Rows = append(table.Rows, []string{
			ts.Ticker, strconv.Itoa(s.Count), pct(s.Mean), pct(s.Std), pct(s.Min), pct(s.Max), num(s.Skewness), num(s.Kurtosis),
		})
	}
	doc.H2("Daily Returns")
	doc.Table(table)

	if m := c.Correlation; m != nil {
		doc.H2("Correlation")
		ct := md.TableSet{Alignment: []md.TableAlignment{md.AlignLeft}, Header: []string{""}}
		for _, n := range m.Names {
			ct.Alignment = append(ct.Alignment, md.AlignRight)
			ct.Header = append(ct.Header, n)
		}
		for i, n := range m.Names {
			row := []string{md.Bold(n)}
			for j := range m.Names {
				row = append(row, correlation(m.Values[i][j]))
			}
			ct.Rows = append(ct.Rows, row)
		}
		doc.Table(ct)
	}

	doc.H2("Rankings")
	rt := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight, md.AlignLeft, md.AlignRight},
		Header:    []string{"#", "By Return", "Mean", "By Risk", "Std", "By Sharpe", "Ratio"},
	}
	rk := c.Rankings
	for i := range rk.ByReturn {
		rt.Rows = append(rt.Rows, []string{
			strconv.Itoa(i + 1),
			rk.ByReturn[i].Ticker, pct(rk.ByReturn[i].Value),
			rk.ByRisk[i].Ticker, pct(rk.ByRisk[i].Value),
			rk.BySharpe[i].Ticker, num(rk.BySharpe[i].Value),
		})
	}
	doc.Table(rt)
	charts(doc, r)
	return doc.String()
}

func correlation(v float64) string {
	if v != v { // NaN
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
