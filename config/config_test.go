package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTmp_Defaults(t *testing.T) {
	cfg, err := FromTmp(ConfigTmp{})
	require.NoError(t, err)

	assert.Equal(t, "binance", cfg.Platform)
	assert.Equal(t, "USDT", cfg.Quote)
	assert.Equal(t, defaultAssets, cfg.Assets)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(2500)))
	assert.Equal(t, defaultPollInterval, cfg.PollPriceInterval)
	assert.Equal(t, 30, cfg.HistoryCap)
	assert.Equal(t, defaultFavorites, cfg.DefaultFavorites)
	assert.True(t, cfg.StartingHoldings["BTC"].Equal(decimal.NewFromFloat(0.005)))
}

func TestFromTmp_Overrides(t *testing.T) {
	cfg, err := FromTmp(ConfigTmp{
		Platform:          "bybit",
		Quote:             "usdt",
		Assets:            []string{"btc", "eth"},
		StartingCashStr:   "10000",
		StartingHoldings:  map[string]string{"btc": "1.5"},
		PollPriceInterval: 5 * time.Second,
		ListenAddr:        ":9000",
	})
	require.NoError(t, err)

	assert.Equal(t, "bybit", cfg.Platform)
	assert.Equal(t, []string{"BTC", "ETH"}, cfg.Assets)
	assert.True(t, cfg.StartingCash.Equal(decimal.NewFromInt(10000)))
	assert.True(t, cfg.StartingHoldings["BTC"].Equal(decimal.NewFromFloat(1.5)))
	assert.Equal(t, ":9000", cfg.ListenAddr)
}

func TestFromTmp_Invalid(t *testing.T) {
	tests := []struct {
		name string
		tmp  ConfigTmp
	}{
		{"bad platform", ConfigTmp{Platform: "kraken"}},
		{"bad cash", ConfigTmp{StartingCashStr: "lots"}},
		{"negative cash", ConfigTmp{StartingCashStr: "-5"}},
		{"bad holding quantity", ConfigTmp{StartingHoldings: map[string]string{"BTC": "a few"}}},
		{"negative holding", ConfigTmp{StartingHoldings: map[string]string{"BTC": "-1"}}},
		{"poll interval too small", ConfigTmp{PollPriceInterval: 50 * time.Millisecond}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromTmp(tc.tmp)
			assert.Error(t, err)
		})
	}
}

func TestSeedHoldings(t *testing.T) {
	cfg, err := FromTmp(ConfigTmp{
		Assets:           []string{"BTC", "ETH", "SOL"},
		StartingHoldings: map[string]string{"BTC": "0.5", "DOGE": "100"},
	})
	require.NoError(t, err)

	seed := cfg.SeedHoldings()
	require.Len(t, seed, 3)
	assert.True(t, seed["BTC"].Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, seed["ETH"].Equal(decimal.Zero))
	// DOGE is not a configured asset, the override is dropped
	_, ok := seed["DOGE"]
	assert.False(t, ok)
}
