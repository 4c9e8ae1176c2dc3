// Package config loads simulator configuration from YAML or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Defaults applied when a field is left unset.
var (
	DefaultStartingCash = decimal.NewFromInt(100000)
	DefaultFeeRate      = decimal.NewFromFloat(0.001)
)

const (
	defaultPollPriceInterval = 5 * time.Second
	defaultBookInterval      = 3 * time.Second
	defaultDataDir           = "./data"
	defaultListenAddr        = ":8080"
)

// Config holds the full simulator configuration.
type Config struct {
	StartingCash      decimal.Decimal
	FeeRate           decimal.Decimal
	PollPriceInterval time.Duration
	BookInterval      time.Duration
	QuoteProvider     string
	PredictionURL     string
	PredictionAPIKey  string
	DataDir           string
	ListenAddr        string
	Seed              int64
}

// ConfigTmp mirrors the YAML layout; decimals travel as strings. The setup
// wizard marshals it when generating a config file.
type ConfigTmp struct {
	StartingCash      string        `yaml:"starting_cash,omitempty"`
	FeeRate           string        `yaml:"fee_rate,omitempty"`
	PollPriceInterval time.Duration `yaml:"poll_price_interval,omitempty"`
	BookInterval      time.Duration `yaml:"book_interval,omitempty"`
	QuoteProvider     string        `yaml:"quote_provider,omitempty"`
	PredictionURL     string        `yaml:"prediction_url,omitempty"`
	PredictionAPIKey  string        `yaml:"prediction_api_key,omitempty"`
	DataDir           string        `yaml:"data_dir,omitempty"`
	ListenAddr        string        `yaml:"listen_addr,omitempty"`
	Seed              int64         `yaml:"seed,omitempty"`
}

// Get parses configuration from --config YAML when provided, CLI flags
// otherwise.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	cash := flag.String("cash", DefaultStartingCash.String(), "starting virtual cash")
	fee := flag.String("fee", DefaultFeeRate.String(), "flat fee rate, e.g. 0.001 means 0.1%")
	pollInterval := flag.Duration("pollpriceinterval", defaultPollPriceInterval, "chart price animation interval")
	bookInterval := flag.Duration("bookinterval", defaultBookInterval, "order book perturbation interval")
	quoteProvider := flag.String("quoteprovider", "", "live quote provider: binance, bybit or empty for simulation only")
	dataDir := flag.String("datadir", defaultDataDir, "directory for persisted state")
	listenAddr := flag.String("listen", defaultListenAddr, "HTTP listen address")
	seed := flag.Int64("seed", 0, "rng seed, 0 means time-based")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	startingCash, err := decimal.NewFromString(*cash)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --cash provided, --cash=%s: %w", *cash, err)
	}
	feeRate, err := decimal.NewFromString(*fee)
	if err != nil {
		return Config{}, fmt.Errorf("invalid --fee provided, --fee=%s: %w", *fee, err)
	}

	cfg := Config{
		StartingCash:      startingCash,
		FeeRate:           feeRate,
		PollPriceInterval: *pollInterval,
		BookInterval:      *bookInterval,
		QuoteProvider:     *quoteProvider,
		PredictionURL:     os.Getenv("PREDICTION_API_URL"),
		PredictionAPIKey:  os.Getenv("PREDICTION_API_KEY"),
		DataDir:           *dataDir,
		ListenAddr:        *listenAddr,
		Seed:              *seed,
	}
	return cfg.validated()
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		StartingCash:      DefaultStartingCash,
		FeeRate:           DefaultFeeRate,
		PollPriceInterval: tmp.PollPriceInterval,
		BookInterval:      tmp.BookInterval,
		QuoteProvider:     tmp.QuoteProvider,
		PredictionURL:     tmp.PredictionURL,
		PredictionAPIKey:  tmp.PredictionAPIKey,
		DataDir:           tmp.DataDir,
		ListenAddr:        tmp.ListenAddr,
		Seed:              tmp.Seed,
	}

	if tmp.StartingCash != "" {
		cfg.StartingCash, err = decimal.NewFromString(tmp.StartingCash)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'starting_cash' param in yaml config: %w", err)
		}
	}
	if tmp.FeeRate != "" {
		cfg.FeeRate, err = decimal.NewFromString(tmp.FeeRate)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'fee_rate' param in yaml config: %w", err)
		}
	}

	return cfg.validated()
}

func (c Config) validated() (Config, error) {
	if c.StartingCash.LessThanOrEqual(decimal.Zero) {
		return Config{}, fmt.Errorf("starting cash must be positive, got %s", c.StartingCash)
	}
	if c.FeeRate.IsNegative() || c.FeeRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Config{}, fmt.Errorf("fee rate must be in [0, 1), got %s", c.FeeRate)
	}
	switch c.QuoteProvider {
	case "", "binance", "bybit":
	default:
		return Config{}, fmt.Errorf("unsupported quote provider: %s", c.QuoteProvider)
	}

	if c.PollPriceInterval <= 0 {
		c.PollPriceInterval = defaultPollPriceInterval
	}
	if c.BookInterval <= 0 {
		c.BookInterval = defaultBookInterval
	}
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}

	return c, nil
}
