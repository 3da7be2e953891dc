package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/etnz/stocks"
	"github.com/etnz/stocks/chart"
	"github.com/etnz/stocks/eodhd"
	"github.com/etnz/stocks/report"
	"github.com/etnz/stocks/store"
	"github.com/etnz/stocks/yahoo"
	"github.com/pelletier/go-toml/v2"
)

// DefaultConfigFile is read when present and no -config flag is given.
const DefaultConfigFile = "sap.toml"

// Config holds the user settings of the sap command.
type Config struct {
	Data struct {
		DB       string `toml:"db"`
		Provider string `toml:"provider"` // yahoo or eodhd
		Period   string `toml:"period"`
		Interval string `toml:"interval"`
		Currency string `toml:"currency"`
	} `toml:"data"`
	EODHD struct {
		APIKey   string `toml:"api_key"`
		BaseURL  string `toml:"base_url"`
		CacheDir string `toml:"cache_dir"`
	} `toml:"eodhd"`
	Yahoo struct {
		BaseURL string  `toml:"base_url"`
		Rate    float64 `toml:"rate"`    // requests per second
		Retries uint64  `toml:"retries"` // for throttled and failed requests
	} `toml:"yahoo"`
	Output struct {
		Charts  string `toml:"charts"`
		Results string `toml:"results"`
		HTML    bool   `toml:"html"`
		// NoCharts disables chart rendering.
		NoCharts bool `toml:"no_charts"`
	} `toml:"output"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	c := &Config{}
	c.Data.DB = store.DefaultPath
	c.Data.Provider = "yahoo"
	c.Data.Period = stocks.DefaultLookback.String()
	c.Data.Interval = stocks.Daily.String()
	c.Data.Currency = "USD"
	c.EODHD.BaseURL = eodhd.DefaultBaseURL
	c.Yahoo.BaseURL = yahoo.DefaultBaseURL
	c.Yahoo.Rate = 2
	c.Yahoo.Retries = 3
	c.Output.Charts = chart.DefaultDir
	c.Output.Results = report.DefaultDir
	c.Log.Level = "info"
	return c
}

// LoadConfig reads the configuration file at path over the defaults, then applies
// the environment. An empty path reads DefaultConfigFile if it exists.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	applyEnvOverrides(config)
	return config, config.Validate()
}

func applyEnvOverrides(config *Config) {
	if key := os.Getenv(eodhd.APIKeyEnv); key != "" {
		config.EODHD.APIKey = key
	}
	if db := os.Getenv(EnvDB); db != "" {
		config.Data.DB = db
	}
}

// Validate checks the values that are parsed later on.
func (c *Config) Validate() error {
	if _, err := stocks.ParseLookback(c.Data.Period); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := stocks.ParseInterval(c.Data.Interval); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Data.Provider {
	case "yahoo", "eodhd":
	default:
		return fmt.Errorf("config: unknown provider %q, available: yahoo, eodhd", c.Data.Provider)
	}
	return nil
}
