// Package pricer implements the stochastic price engine driving the
// simulation. Each step is a geometric random walk whose drift and
// volatility come either from a market prediction or from static
// per-asset-class defaults.
package pricer

import (
	"math"
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

const (
	// priceFloorFraction keeps a step from producing a degenerate price:
	// the result never drops below 1% of the input.
	priceFloorFraction = 0.01

	hoursPerYear = 365 * 24

	trendBullishFactor = 1.5
	trendBearishFactor = 0.5
)

// Simulator produces successive prices for assets. The random source is
// injected so tests can fix a seed and assert exact outputs.
type Simulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a Simulator seeded with the given value.
func NewSimulator(seed int64) *Simulator {
	return &Simulator{rng: rand.New(rand.NewSource(seed))}
}

// NextPrice advances the price by hoursElapsed simulated hours. A nil
// prediction means static class parameters. hoursElapsed == 0 returns the
// input unchanged; very large values are accepted as-is, exponential growth
// included.
func (s *Simulator) NextPrice(current decimal.Decimal, class domain.AssetClass, hoursElapsed float64, prediction *domain.MarketPrediction) decimal.Decimal {
	if hoursElapsed == 0 || !current.IsPositive() {
		return current
	}

	drift, volatility := resolveParams(class, prediction)

	s.mu.Lock()
	z := s.rng.NormFloat64()
	s.mu.Unlock()

	shock := z * volatility / math.Sqrt(24) * math.Sqrt(hoursElapsed)

	cur, _ := current.Float64()
	next := cur * math.Exp(drift*hoursElapsed+shock)

	floor := cur * priceFloorFraction
	if next < floor {
		next = floor
	}

	return decimal.NewFromFloat(next)
}

// resolveParams converts a prediction into hourly drift and daily volatility,
// falling back to class defaults when none is supplied.
func resolveParams(class domain.AssetClass, prediction *domain.MarketPrediction) (drift, volatility float64) {
	if prediction == nil {
		params := class.DefaultParams()
		return params.HourlyDrift, params.DailyVolatility
	}

	drift = prediction.AnnualReturn / hoursPerYear
	volatility = prediction.DailyVolatility
	if volatility <= 0 {
		volatility = class.DefaultParams().DailyVolatility
	}

	switch prediction.Trend {
	case domain.TrendBullish:
		drift *= trendBullishFactor
	case domain.TrendBearish:
		drift *= trendBearishFactor
	}

	return drift, volatility
}
