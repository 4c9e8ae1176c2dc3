package prediction

import (
	"context"
	"math"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

const (
	emaFastPeriod = 20
	emaSlowPeriod = 50
	rsiPeriod     = 14

	rsiOverbought = 70.0
	rsiOversold   = 30.0
)

// CloseHistory provides recent closing prices per symbol, oldest first.
type CloseHistory interface {
	Closes(symbol string, limit int) []decimal.Decimal
}

// LocalEstimator synthesizes predictions from the simulator's own price
// history when no remote prediction service is configured. Trend comes from
// an EMA20/EMA50 crossover confirmed by RSI14, volatility from realized log
// returns.
type LocalEstimator struct {
	history CloseHistory
}

// NewLocalEstimator creates an estimator over the given close history.
func NewLocalEstimator(history CloseHistory) *LocalEstimator {
	return &LocalEstimator{history: history}
}

// FetchBatch implements Fetcher. Symbols without enough history are simply
// skipped; callers fall back to static class parameters for them.
func (e *LocalEstimator) FetchBatch(ctx context.Context, assets []AssetInfo) ([]domain.MarketPrediction, error) {
	if e.history == nil {
		return nil, errors.New("local estimator has no close history")
	}

	predictions := make([]domain.MarketPrediction, 0, len(assets))
	for _, asset := range assets {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		closes := e.history.Closes(asset.Symbol, emaSlowPeriod*2)
		p, err := estimate(asset.Symbol, closes)
		if err != nil {
			continue
		}
		predictions = append(predictions, p)
	}

	return predictions, nil
}

func estimate(symbol string, closes []decimal.Decimal) (domain.MarketPrediction, error) {
	if len(closes) < emaSlowPeriod+1 {
		return domain.MarketPrediction{}, errors.Errorf("not enough closes for %s: need %d, got %d", symbol, emaSlowPeriod+1, len(closes))
	}

	floats := make([]float64, len(closes))
	for i, c := range closes {
		floats[i], _ = c.Float64()
	}

	emaFast := lastOf(trend.NewEmaWithPeriod[float64](emaFastPeriod), floats)
	emaSlow := lastOf(trend.NewEmaWithPeriod[float64](emaSlowPeriod), floats)

	rsi := momentum.NewRsiWithPeriod[float64](rsiPeriod)
	rsiValues := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(floats)))
	lastRSI := 50.0
	if len(rsiValues) > 0 {
		lastRSI = rsiValues[len(rsiValues)-1]
	}

	direction := domain.TrendNeutral
	switch {
	case emaFast > emaSlow && lastRSI < rsiOverbought:
		direction = domain.TrendBullish
	case emaFast < emaSlow && lastRSI > rsiOversold:
		direction = domain.TrendBearish
	}

	dailyVol := realizedDailyVolatility(floats)

	// annualize the latest hourly EMA slope as the drift estimate
	annualReturn := 0.0
	if emaSlow > 0 {
		annualReturn = (emaFast/emaSlow - 1) * 12
	}

	risk := domain.RiskMedium
	switch {
	case dailyVol >= 0.04:
		risk = domain.RiskHigh
	case dailyVol <= 0.01:
		risk = domain.RiskLow
	}

	return domain.MarketPrediction{
		Symbol:          symbol,
		DailyVolatility: dailyVol,
		Trend:           direction,
		AnnualReturn:    annualReturn,
		Risk:            risk,
	}, nil
}

func lastOf(ema *trend.Ema[float64], values []float64) float64 {
	out := helper.ChanToSlice(ema.Compute(helper.SliceToChan(values)))
	if len(out) == 0 {
		return 0
	}
	return out[len(out)-1]
}

// realizedDailyVolatility is the stddev of hourly log returns scaled to a
// day.
func realizedDailyVolatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * math.Sqrt(24)
}
