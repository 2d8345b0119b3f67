package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Default desk configuration, used when a yaml field is omitted.
var (
	defaultAssets = []string{"BTC", "ETH", "SOL", "BNB", "XRP", "ADA", "DOGE", "MATIC", "LTC", "AVAX"}

	defaultHoldings = map[string]string{
		"BTC":   "0.005",
		"ETH":   "0.15",
		"SOL":   "3.2",
		"MATIC": "50",
	}

	defaultFavorites = []string{"BTC", "ETH", "LTC", "ADA"}
)

const (
	defaultStartingCash  = "2500"
	defaultQuote         = "USDT"
	defaultPollInterval  = 15 * time.Second
	defaultKlineInterval = "1h"
	defaultKlineLimit    = 50
	defaultBookDepth     = 10
	defaultTradesLimit   = 50
	defaultHistoryCap    = 30
	defaultFavoritesPath = "favorites.json"
	defaultListenAddr    = ":8087"
)

// Config is the fully parsed desk configuration.
type Config struct {
	Platform          string
	Quote             string
	Assets            []string
	StartingCash      decimal.Decimal
	StartingHoldings  map[string]decimal.Decimal
	PollPriceInterval time.Duration
	KlinesInterval    string
	KlinesLimit       int
	OrderBookDepth    int
	TradesLimit       int
	HistoryCap        int
	FavoritesPath     string
	DefaultFavorites  []string
	ListenAddr        string
}

// ConfigTmp mirrors the yaml document before decimal fields are parsed.
type ConfigTmp struct {
	Platform          string            `yaml:"platform,omitempty"`
	Quote             string            `yaml:"quote,omitempty"`
	Assets            []string          `yaml:"assets,omitempty"`
	StartingCashStr   string            `yaml:"starting_cash,omitempty"`
	StartingHoldings  map[string]string `yaml:"starting_holdings,omitempty"`
	PollPriceInterval time.Duration     `yaml:"poll_price_interval,omitempty"`
	KlinesInterval    string            `yaml:"klines_interval,omitempty"`
	KlinesLimit       int               `yaml:"klines_limit,omitempty"`
	OrderBookDepth    int               `yaml:"orderbook_depth,omitempty"`
	TradesLimit       int               `yaml:"trades_limit,omitempty"`
	HistoryCap        int               `yaml:"history_cap,omitempty"`
	FavoritesPath     string            `yaml:"favorites_path,omitempty"`
	DefaultFavorites  []string          `yaml:"default_favorites,omitempty"`
	ListenAddr        string            `yaml:"listen_addr,omitempty"`
}

// Get parses the configuration from the yaml file named by --config, or
// from CLI flags when no file is given.
func Get() (*Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	platform := flag.String("platform", "binance", "market data platform: binance or bybit")
	quote := flag.String("quote", defaultQuote, "quote asset symbol")
	pollInterval := flag.Duration("pollpriceinterval", defaultPollInterval, "poll market price interval")
	cash := flag.String("startingcash", defaultStartingCash, "starting cash balance in the quote asset")
	listen := flag.String("listen", defaultListenAddr, "web dashboard listen address")
	favoritesPath := flag.String("favorites", defaultFavoritesPath, "path to the favorites file")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	startingCash, err := decimal.NewFromString(*cash)
	if err != nil {
		return nil, fmt.Errorf("invalid --startingcash provided, --startingcash=%s", *cash)
	}

	cfg := &Config{
		Platform:          strings.ToLower(*platform),
		Quote:             strings.ToUpper(*quote),
		Assets:            defaultAssets,
		StartingCash:      startingCash,
		PollPriceInterval: *pollInterval,
		KlinesInterval:    defaultKlineInterval,
		KlinesLimit:       defaultKlineLimit,
		OrderBookDepth:    defaultBookDepth,
		TradesLimit:       defaultTradesLimit,
		HistoryCap:        defaultHistoryCap,
		FavoritesPath:     *favoritesPath,
		DefaultFavorites:  defaultFavorites,
		ListenAddr:        *listen,
	}
	if cfg.StartingHoldings, err = parseHoldings(defaultHoldings); err != nil {
		return nil, err
	}
	return validate(cfg)
}

func getYaml(path string) (*Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return nil, err
	}
	return FromTmp(tmp)
}

// FromTmp converts the raw yaml document into a validated Config,
// filling every omitted field with its default.
func FromTmp(tmp ConfigTmp) (*Config, error) {
	cfg := &Config{
		Platform:          strings.ToLower(tmp.Platform),
		Quote:             strings.ToUpper(tmp.Quote),
		Assets:            tmp.Assets,
		PollPriceInterval: tmp.PollPriceInterval,
		KlinesInterval:    tmp.KlinesInterval,
		KlinesLimit:       tmp.KlinesLimit,
		OrderBookDepth:    tmp.OrderBookDepth,
		TradesLimit:       tmp.TradesLimit,
		HistoryCap:        tmp.HistoryCap,
		FavoritesPath:     tmp.FavoritesPath,
		DefaultFavorites:  tmp.DefaultFavorites,
		ListenAddr:        tmp.ListenAddr,
	}

	if cfg.Platform == "" {
		cfg.Platform = "binance"
	}
	if cfg.Quote == "" {
		cfg.Quote = defaultQuote
	}
	if len(cfg.Assets) == 0 {
		cfg.Assets = defaultAssets
	}
	for i, a := range cfg.Assets {
		cfg.Assets[i] = strings.ToUpper(a)
	}
	if cfg.PollPriceInterval == 0 {
		cfg.PollPriceInterval = defaultPollInterval
	}
	if cfg.KlinesInterval == "" {
		cfg.KlinesInterval = defaultKlineInterval
	}
	if cfg.KlinesLimit == 0 {
		cfg.KlinesLimit = defaultKlineLimit
	}
	if cfg.OrderBookDepth == 0 {
		cfg.OrderBookDepth = defaultBookDepth
	}
	if cfg.TradesLimit == 0 {
		cfg.TradesLimit = defaultTradesLimit
	}
	if cfg.HistoryCap == 0 {
		cfg.HistoryCap = defaultHistoryCap
	}
	if cfg.FavoritesPath == "" {
		cfg.FavoritesPath = defaultFavoritesPath
	}
	if len(cfg.DefaultFavorites) == 0 {
		cfg.DefaultFavorites = defaultFavorites
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}

	var err error
	if tmp.StartingCashStr == "" {
		cfg.StartingCash, _ = decimal.NewFromString(defaultStartingCash)
	} else {
		cfg.StartingCash, err = decimal.NewFromString(tmp.StartingCashStr)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'starting_cash' param in yaml config (must be a decimal), error: %w", err)
		}
	}

	holdings := tmp.StartingHoldings
	if len(holdings) == 0 {
		holdings = defaultHoldings
	}
	if cfg.StartingHoldings, err = parseHoldings(holdings); err != nil {
		return nil, err
	}

	return validate(cfg)
}

// SeedHoldings returns the starting holdings expanded to cover every
// configured asset, with zero quantity where no override exists.
func (c *Config) SeedHoldings() map[string]decimal.Decimal {
	seed := make(map[string]decimal.Decimal, len(c.Assets))
	for _, asset := range c.Assets {
		seed[asset] = decimal.Zero
	}
	for asset, qty := range c.StartingHoldings {
		if _, ok := seed[asset]; ok {
			seed[asset] = qty
		}
	}
	return seed
}

func parseHoldings(in map[string]string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(in))
	for asset, qtyStr := range in {
		qty, err := decimal.NewFromString(qtyStr)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'starting_holdings' quantity for %s (must be a decimal), error: %w", asset, err)
		}
		if qty.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("negative 'starting_holdings' quantity for %s", asset)
		}
		out[strings.ToUpper(asset)] = qty
	}
	return out, nil
}

func validate(cfg *Config) (*Config, error) {
	switch cfg.Platform {
	case "binance", "bybit":
	default:
		return nil, fmt.Errorf("unsupported platform: %s", cfg.Platform)
	}
	if cfg.StartingCash.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("negative 'starting_cash' param")
	}
	if cfg.PollPriceInterval < time.Second {
		return nil, fmt.Errorf("'poll_price_interval' must be at least 1s")
	}
	return cfg, nil
}
