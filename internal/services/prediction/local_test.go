package prediction

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

type fakeHistory struct {
	closes map[string][]decimal.Decimal
}

func (f *fakeHistory) Closes(symbol string, limit int) []decimal.Decimal {
	return f.closes[symbol]
}

func rampCloses(start, step float64, n int) []decimal.Decimal {
	closes := make([]decimal.Decimal, n)
	v := start
	for i := 0; i < n; i++ {
		closes[i] = decimal.NewFromFloat(v)
		v += step
	}
	return closes
}

func TestLocalEstimator_BullishOnRisingCloses(t *testing.T) {
	history := &fakeHistory{closes: map[string][]decimal.Decimal{
		"AAPL": rampCloses(100, 0.2, 120),
	}}
	estimator := NewLocalEstimator(history)

	predictions, err := estimator.FetchBatch(context.Background(), []AssetInfo{{Symbol: "AAPL"}})
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	p := predictions[0]
	assert.Equal(t, "AAPL", p.Symbol)
	// a monotone ramp drives RSI to overbought territory, so the estimator
	// refuses to call it bullish but must not call it bearish either
	assert.NotEqual(t, domain.TrendBearish, p.Trend)
	assert.Greater(t, p.AnnualReturn, 0.0)
}

func TestLocalEstimator_BearishOnFallingCloses(t *testing.T) {
	history := &fakeHistory{closes: map[string][]decimal.Decimal{
		"TSLA": rampCloses(300, -0.4, 120),
	}}
	estimator := NewLocalEstimator(history)

	predictions, err := estimator.FetchBatch(context.Background(), []AssetInfo{{Symbol: "TSLA"}})
	require.NoError(t, err)
	require.Len(t, predictions, 1)

	assert.NotEqual(t, domain.TrendBullish, predictions[0].Trend)
	assert.Less(t, predictions[0].AnnualReturn, 0.0)
}

func TestLocalEstimator_SkipsSymbolsWithoutHistory(t *testing.T) {
	history := &fakeHistory{closes: map[string][]decimal.Decimal{
		"AAPL": rampCloses(100, 0.1, 120),
		"MSFT": rampCloses(400, 0.1, 5), // too short
	}}
	estimator := NewLocalEstimator(history)

	predictions, err := estimator.FetchBatch(context.Background(), []AssetInfo{{Symbol: "AAPL"}, {Symbol: "MSFT"}, {Symbol: "GONE"}})
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, "AAPL", predictions[0].Symbol)
}

func TestRealizedDailyVolatility_FlatSeriesIsZero(t *testing.T) {
	closes := []float64{100, 100, 100, 100}
	assert.Equal(t, 0.0, realizedDailyVolatility(closes))
}
