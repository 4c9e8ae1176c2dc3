// Package advancer reconciles elapsed wall-clock time into simulated hourly
// price steps, replaying the price engine over the asset catalog and
// backfilling the value history.
package advancer

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/services/prediction"
	"go.uber.org/zap"
)

// Pricer produces the next simulated price for an asset.
type Pricer interface {
	NextPrice(current decimal.Decimal, class domain.AssetClass, hoursElapsed float64, p *domain.MarketPrediction) decimal.Decimal
}

// Recorder appends portfolio-value snapshots.
type Recorder interface {
	Record(ts time.Time, cash, positionsValue decimal.Decimal)
}

// PredictionSource serves cached predictions and refreshes them in batch.
type PredictionSource interface {
	Get(symbol string) (domain.MarketPrediction, bool)
	Refresh(ctx context.Context, assets []prediction.AssetInfo)
}

// PriceSink observes every simulated close (feeds the local estimator).
type PriceSink interface {
	Append(symbol string, price decimal.Decimal)
}

// Advancer replays the hours a portfolio missed while the process was away.
type Advancer struct {
	catalog     []*domain.Asset
	pricer      Pricer
	predictions PredictionSource
	recorder    Recorder
	priceSink   PriceSink
	now         func() time.Time
	logger      *zap.Logger
}

// New creates an Advancer. predictions, recorder and priceSink may be nil.
func New(catalog []*domain.Asset, pricer Pricer, predictions PredictionSource, recorder Recorder, priceSink PriceSink, now func() time.Time, logger *zap.Logger) *Advancer {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advancer{
		catalog:     catalog,
		pricer:      pricer,
		predictions: predictions,
		recorder:    recorder,
		priceSink:   priceSink,
		now:         now,
		logger:      logger,
	}
}

// CatchUp simulates the whole hours elapsed since the portfolio's last
// update. Sub-hour gaps are a no-op returning the input unchanged. Each
// replayed hour moves every catalog asset one pricer step, revalues the
// positions and appends one backdated snapshot, so the history line stays a
// smooth hourly series instead of one jump. Prediction fetch failures
// degrade silently to static class parameters; this method never fails.
func (a *Advancer) CatchUp(ctx context.Context, portfolio *domain.Portfolio) *domain.Portfolio {
	now := a.now()
	elapsed := now.Sub(portfolio.LastUpdate).Hours()
	if elapsed < 1 {
		return portfolio
	}
	steps := int(math.Floor(elapsed))

	if a.predictions != nil {
		a.predictions.Refresh(ctx, a.assetInfos())
	}

	next := portfolio.Clone()

	a.logger.Info("catching up simulated time",
		zap.Int("hours", steps),
		zap.Time("last_update", portfolio.LastUpdate))

	for step := 1; step <= steps; step++ {
		for _, asset := range a.catalog {
			prev := asset.Price
			newPrice := a.pricer.NextPrice(prev, asset.Class, 1, a.predictionFor(asset.Symbol))
			asset.ApplyPrice(newPrice, prev)
			if a.priceSink != nil {
				a.priceSink.Append(asset.Symbol, newPrice)
			}
			if pos := next.Position(asset.Symbol); pos != nil {
				pos.Revalue(newPrice)
			}
		}
		if a.recorder != nil {
			stamp := portfolio.LastUpdate.Add(time.Duration(step) * time.Hour)
			a.recorder.Record(stamp, next.Cash, next.PositionsValue())
		}
	}

	next.LastUpdate = now
	next.Recalculate()
	return next
}

func (a *Advancer) predictionFor(symbol string) *domain.MarketPrediction {
	if a.predictions == nil {
		return nil
	}
	p, ok := a.predictions.Get(symbol)
	if !ok {
		return nil
	}
	return &p
}

func (a *Advancer) assetInfos() []prediction.AssetInfo {
	infos := make([]prediction.AssetInfo, 0, len(a.catalog))
	for _, asset := range a.catalog {
		price, _ := asset.Price.Float64()
		change, _ := asset.ChangePercent.Float64()
		infos = append(infos, prediction.AssetInfo{
			Symbol:        asset.Symbol,
			Name:          asset.Name,
			Price:         price,
			Class:         asset.Class.String(),
			ChangePercent: change,
		})
	}
	return infos
}
