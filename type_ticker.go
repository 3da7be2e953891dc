package stocks

import (
	"errors"
	"strings"
)

var ErrEmptyTicker = errors.New("ticker must be a non-empty string")

// aliases maps user friendly index names to the symbol the market data providers know.
var aliases = map[string]string{
	"SPX":  "^GSPC",
	"NDX":  "^NDX",
	"DJI":  "^DJI",
	"VIX":  "^VIX",
	"RUT":  "^RUT",
	"COMP": "^IXIC",
}

// NormalizeTicker trims and upper-cases a ticker, and resolves index aliases (SPX is ^GSPC).
func NormalizeTicker(ticker string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(ticker))
	if t == "" {
		return "", ErrEmptyTicker
	}
	if alias, ok := aliases[t]; ok {
		return alias, nil
	}
	return t, nil
}

// FileSafe returns a version of the ticker usable in file names ("^GSPC" becomes "GSPC").
func FileSafe(ticker string) string {
	r := strings.NewReplacer("^", "", "/", "-", "\\", "-", ":", "-", " ", "_")
	return r.Replace(ticker)
}
