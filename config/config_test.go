package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestGetYaml_FullConfig(t *testing.T) {
	path := writeConfig(t, `
starting_cash: "50000"
fee_rate: "0.002"
poll_price_interval: 10s
book_interval: 5s
quote_provider: binance
listen_addr: ":9090"
data_dir: "/tmp/papertrade"
seed: 42
`)

	cfg, err := getYaml(path)
	require.NoError(t, err)
	assert.Equal(t, "50000", cfg.StartingCash.String())
	assert.Equal(t, "0.002", cfg.FeeRate.String())
	assert.Equal(t, 10*time.Second, cfg.PollPriceInterval)
	assert.Equal(t, 5*time.Second, cfg.BookInterval)
	assert.Equal(t, "binance", cfg.QuoteProvider)
	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestGetYaml_DefaultsApplied(t *testing.T) {
	path := writeConfig(t, `quote_provider: bybit`)

	cfg, err := getYaml(path)
	require.NoError(t, err)
	assert.True(t, cfg.StartingCash.Equal(DefaultStartingCash))
	assert.True(t, cfg.FeeRate.Equal(DefaultFeeRate))
	assert.Equal(t, defaultPollPriceInterval, cfg.PollPriceInterval)
	assert.Equal(t, defaultListenAddr, cfg.ListenAddr)
	assert.NotZero(t, cfg.Seed)
}

func TestGetYaml_InvalidDecimal(t *testing.T) {
	path := writeConfig(t, `starting_cash: "a lot"`)

	_, err := getYaml(path)
	assert.Error(t, err)
}

func TestValidated_RejectsBadValues(t *testing.T) {
	base := Config{
		StartingCash: DefaultStartingCash,
		FeeRate:      DefaultFeeRate,
	}

	negative := base
	negative.StartingCash = decimal.NewFromInt(-1)
	_, err := negative.validated()
	assert.Error(t, err)

	feeTooHigh := base
	feeTooHigh.FeeRate = decimal.NewFromInt(1)
	_, err = feeTooHigh.validated()
	assert.Error(t, err)

	badProvider := base
	badProvider.QuoteProvider = "kraken"
	_, err = badProvider.validated()
	assert.Error(t, err)
}

func TestValidated_ZeroFeeAllowed(t *testing.T) {
	cfg := Config{
		StartingCash: DefaultStartingCash,
		FeeRate:      decimal.Zero,
	}
	got, err := cfg.validated()
	require.NoError(t, err)
	assert.True(t, got.FeeRate.IsZero())
}
