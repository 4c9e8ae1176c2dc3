package pricer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

func TestNextPrice_ZeroHoursIsNoop(t *testing.T) {
	sim := NewSimulator(1)
	price := decimal.NewFromInt(100)

	next := sim.NextPrice(price, domain.AssetClassEquity, 0, nil)
	assert.True(t, next.Equal(price))
}

func TestNextPrice_NeverBelowFloor(t *testing.T) {
	sim := NewSimulator(42)
	price := decimal.NewFromInt(100)
	floor := decimal.NewFromInt(1) // 1% of 100

	// extreme bearish prediction with huge volatility tries to push the
	// price through the floor over many steps
	prediction := &domain.MarketPrediction{
		Symbol:          "TEST",
		DailyVolatility: 50,
		Trend:           domain.TrendBearish,
		AnnualReturn:    -0.99,
	}

	for i := 0; i < 1000; i++ {
		next := sim.NextPrice(price, domain.AssetClassCrypto, 1, prediction)
		require.True(t, next.GreaterThanOrEqual(floor),
			"step %d produced %s below floor %s", i, next, floor)
	}
}

func TestNextPrice_DeterministicForSeed(t *testing.T) {
	a := NewSimulator(7)
	b := NewSimulator(7)
	price := decimal.NewFromInt(250)

	for i := 0; i < 50; i++ {
		pa := a.NextPrice(price, domain.AssetClassEquity, 1, nil)
		pb := b.NextPrice(price, domain.AssetClassEquity, 1, nil)
		require.True(t, pa.Equal(pb), "step %d diverged: %s vs %s", i, pa, pb)
		price = pa
	}
}

func TestNextPrice_AlwaysPositive(t *testing.T) {
	sim := NewSimulator(99)
	price := decimal.NewFromFloat(0.5)

	for i := 0; i < 500; i++ {
		price = sim.NextPrice(price, domain.AssetClassCrypto, 1, nil)
		require.True(t, price.IsPositive())
	}
}

func TestNextPrice_LargeElapsedDoesNotOverflow(t *testing.T) {
	sim := NewSimulator(3)
	price := decimal.NewFromInt(100)

	// months of elapsed time in a single call; growth is expected and
	// accepted, the result just has to stay a positive number
	next := sim.NextPrice(price, domain.AssetClassEquity, 24*90, nil)
	assert.True(t, next.IsPositive())
}

func TestResolveParams_TrendBias(t *testing.T) {
	bullish := &domain.MarketPrediction{DailyVolatility: 0.02, Trend: domain.TrendBullish, AnnualReturn: 0.1}
	bearish := &domain.MarketPrediction{DailyVolatility: 0.02, Trend: domain.TrendBearish, AnnualReturn: 0.1}
	neutral := &domain.MarketPrediction{DailyVolatility: 0.02, Trend: domain.TrendNeutral, AnnualReturn: 0.1}

	driftBull, _ := resolveParams(domain.AssetClassEquity, bullish)
	driftBear, _ := resolveParams(domain.AssetClassEquity, bearish)
	driftNeut, _ := resolveParams(domain.AssetClassEquity, neutral)

	assert.Greater(t, driftBull, driftNeut)
	assert.Less(t, driftBear, driftNeut)
}

func TestResolveParams_FallbackToClassDefaults(t *testing.T) {
	drift, vol := resolveParams(domain.AssetClassCrypto, nil)
	params := domain.AssetClassCrypto.DefaultParams()

	assert.Equal(t, params.HourlyDrift, drift)
	assert.Equal(t, params.DailyVolatility, vol)

	// prediction with zero volatility keeps class volatility
	_, vol2 := resolveParams(domain.AssetClassFX, &domain.MarketPrediction{AnnualReturn: 0.05})
	assert.Equal(t, domain.AssetClassFX.DefaultParams().DailyVolatility, vol2)
}
