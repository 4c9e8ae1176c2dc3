package advancer

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/services/prediction"
	"go.uber.org/zap"
)

// stepPricer multiplies the price by a fixed factor each step so outcomes
// are exactly predictable.
type stepPricer struct {
	factor decimal.Decimal
	calls  int
}

func (p *stepPricer) NextPrice(current decimal.Decimal, class domain.AssetClass, hours float64, pred *domain.MarketPrediction) decimal.Decimal {
	p.calls++
	return current.Mul(p.factor)
}

type recordingSink struct {
	stamps []time.Time
	totals []decimal.Decimal
}

func (r *recordingSink) Record(ts time.Time, cash, positionsValue decimal.Decimal) {
	r.stamps = append(r.stamps, ts)
	r.totals = append(r.totals, cash.Add(positionsValue))
}

func testCatalog() []*domain.Asset {
	return []*domain.Asset{
		{ID: "aapl", Symbol: "AAPL", Class: domain.AssetClassEquity, Price: decimal.NewFromInt(100)},
	}
}

func TestCatchUp_SubHourIsNoop(t *testing.T) {
	now := time.Now()
	pricer := &stepPricer{factor: decimal.NewFromInt(2)}
	adv := New(testCatalog(), pricer, nil, nil, nil, func() time.Time { return now }, zap.NewNop())

	portfolio := domain.NewPortfolio(decimal.NewFromInt(100000), now.Add(-30*time.Minute))
	out := adv.CatchUp(context.Background(), portfolio)

	assert.Same(t, portfolio, out, "sub-hour gap must return the portfolio unchanged")
	assert.Equal(t, 0, pricer.calls)
}

func TestCatchUp_ReplaysWholeHours(t *testing.T) {
	now := time.Now()
	catalog := testCatalog()
	pricer := &stepPricer{factor: decimal.RequireFromString("1.1")}
	sink := &recordingSink{}
	adv := New(catalog, pricer, nil, sink, nil, func() time.Time { return now }, zap.NewNop())

	lastUpdate := now.Add(-3*time.Hour - 30*time.Minute)
	portfolio := domain.NewPortfolio(decimal.NewFromInt(1000), lastUpdate)
	pos, err := domain.NewPosition("AAPL", decimal.NewFromInt(10), decimal.NewFromInt(100))
	require.NoError(t, err)
	portfolio.Positions = append(portfolio.Positions, pos)
	portfolio.Recalculate()

	out := adv.CatchUp(context.Background(), portfolio)

	// 3 whole hours replayed, fraction dropped
	assert.Equal(t, 3, pricer.calls)
	require.Len(t, sink.stamps, 3)
	assert.Equal(t, lastUpdate.Add(1*time.Hour), sink.stamps[0])
	assert.Equal(t, lastUpdate.Add(3*time.Hour), sink.stamps[2])

	// price: 100 * 1.1^3 = 133.1; position revalued, total recomputed
	expectedPrice := decimal.RequireFromString("133.1")
	assert.True(t, catalog[0].Price.Equal(expectedPrice), "price = %s", catalog[0].Price)
	outPos := out.Position("AAPL")
	require.NotNil(t, outPos)
	assert.True(t, outPos.CurrentValue.Equal(decimal.RequireFromString("1331")))
	assert.True(t, out.TotalValue.Equal(out.Cash.Add(out.PositionsValue())))
	assert.Equal(t, now, out.LastUpdate)
}

func TestCatchUp_IdempotentSecondCall(t *testing.T) {
	now := time.Now()
	pricer := &stepPricer{factor: decimal.RequireFromString("1.05")}
	adv := New(testCatalog(), pricer, nil, nil, nil, func() time.Time { return now }, zap.NewNop())

	portfolio := domain.NewPortfolio(decimal.NewFromInt(5000), now.Add(-2*time.Hour))

	first := adv.CatchUp(context.Background(), portfolio)
	second := adv.CatchUp(context.Background(), first)

	assert.Same(t, first, second, "immediate second catch-up must not re-simulate")
	assert.True(t, first.TotalValue.Equal(second.TotalValue))
}

type failingFetcher struct{ calls int }

func (f *failingFetcher) FetchBatch(ctx context.Context, assets []prediction.AssetInfo) ([]domain.MarketPrediction, error) {
	f.calls++
	return nil, context.DeadlineExceeded
}

func TestCatchUp_PredictionFailureDegradesSilently(t *testing.T) {
	now := time.Now()
	fetcher := &failingFetcher{}
	cache := prediction.NewCache(prediction.DefaultTTL, fetcher, func() time.Time { return now }, zap.NewNop())
	pricer := &stepPricer{factor: decimal.NewFromInt(1)}
	adv := New(testCatalog(), pricer, cache, nil, nil, func() time.Time { return now }, zap.NewNop())

	portfolio := domain.NewPortfolio(decimal.NewFromInt(1000), now.Add(-1*time.Hour))

	out := adv.CatchUp(context.Background(), portfolio)

	assert.Equal(t, 1, fetcher.calls)
	require.NotNil(t, out)
	assert.Equal(t, 1, pricer.calls, "simulation proceeds on static parameters")
}
