// Package stocks provides the types and the data service of a stock analysis
// platform. It is designed to be local-first: price history is pulled once from
// a market data provider and then served from a local cache.
//
// The core functionalities include:
//   - Price Series: daily, weekly or monthly OHLCV bars (Bar, Series) priced
//     with decimals, and the periods they span (Date, Range, Lookback).
//   - Coverage: the record of which days were already requested from the
//     provider, used to decide whether a request is a cache hit and which
//     sub-ranges are missing.
//   - Data Service: Service answers a Request from the Store, pulls the missing
//     days from the Provider, merges them without duplicates and falls back to
//     cached bars when the provider fails.
//
// Implementations live in sub packages: store (SQLite), yahoo and eodhd
// (providers). Statistics, analyses, charts and reports are built on top of
// the Service in the stats, analysis, chart, renderer and report packages.
//
// This package serves as the foundational logic for the `sap` command-line
// tool.
package stocks
