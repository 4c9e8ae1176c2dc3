// Package internal wires the simulation core together: catalog, price
// engine, ledger, history, order books and persistence.
package internal

import (
	"context"
	"sync"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/config"
	"github.com/vadiminshakov/papertrade/internal/clients"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/events"
	"github.com/vadiminshakov/papertrade/internal/services/advancer"
	"github.com/vadiminshakov/papertrade/internal/services/history"
	"github.com/vadiminshakov/papertrade/internal/services/ledger"
	"github.com/vadiminshakov/papertrade/internal/services/orderbook"
	"github.com/vadiminshakov/papertrade/internal/services/pricer"
	"github.com/vadiminshakov/papertrade/internal/services/prediction"
	"github.com/vadiminshakov/papertrade/internal/storage/kv"
	"github.com/vadiminshakov/papertrade/internal/storage/snapshots"
	"github.com/vadiminshakov/papertrade/internal/storage/state"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// bookVolatility is the per-tick quantity jitter applied to order books.
const bookVolatility = 0.15

// quoteTimeout bounds a single live-quote request so a slow exchange never
// delays a price tick past the next one.
const quoteTimeout = 3 * time.Second

// Simulator is the application root. All portfolio swaps happen under mu so
// readers always observe a fully applied state.
type Simulator struct {
	cfg    config.Config
	logger *zap.Logger

	mu        sync.RWMutex
	portfolio *domain.Portfolio
	catalog   []*domain.Asset
	refPrices map[string]decimal.Decimal
	books     map[string]*domain.OrderBook

	engine      *pricer.Simulator
	ledger      *ledger.Service
	advancer    *advancer.Advancer
	bookGen     *orderbook.Generator
	priceLog    *history.PriceLog
	recorder    *history.Recorder
	predictions *prediction.Cache
	quotes      clients.QuoteProvider
	stateStore  *state.Store
	snapshotWAL *snapshots.WALStore
	broadcaster *events.SnapshotBroadcaster
}

// NewSimulator builds the full object graph and restores persisted state.
func NewSimulator(cfg config.Config, logger *zap.Logger) (*Simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fileKV, err := kv.NewFileStore(cfg.DataDir)
	if err != nil {
		return nil, errors.Wrap(err, "init kv store")
	}
	stateStore := state.NewStore(fileKV, logger)

	snapshotWAL, err := snapshots.NewWALStore(cfg.DataDir + "/wal")
	if err != nil {
		return nil, errors.Wrap(err, "init snapshot WAL")
	}

	broadcaster := events.NewSnapshotBroadcaster(256)
	recorder := history.NewRecorder(snapshotWAL, broadcaster, logger)
	priceLog := history.NewPriceLog(0)
	engine := pricer.NewSimulator(cfg.Seed)
	catalog := domain.DefaultCatalog()

	var fetcher prediction.Fetcher
	if cfg.PredictionURL != "" {
		fetcher = clients.NewPredictionClient(cfg.PredictionURL, cfg.PredictionAPIKey)
	} else {
		fetcher = prediction.NewLocalEstimator(priceLog)
	}
	predictions := prediction.NewCache(prediction.DefaultTTL, fetcher, time.Now, logger)

	var quotes clients.QuoteProvider
	switch cfg.QuoteProvider {
	case "binance":
		quotes = clients.NewBinanceQuoteProvider(binance.NewClient("", ""))
	case "bybit":
		quotes = clients.NewBybitQuoteProvider(bybit.NewClient())
	}

	s := &Simulator{
		cfg:         cfg,
		logger:      logger,
		catalog:     catalog,
		refPrices:   make(map[string]decimal.Decimal, len(catalog)),
		books:       make(map[string]*domain.OrderBook, len(catalog)),
		engine:      engine,
		ledger:      ledger.New(cfg.FeeRate, recorder, stateStore, time.Now, logger),
		advancer:    advancer.New(catalog, engine, predictions, recorder, priceLog, time.Now, logger),
		bookGen:     orderbook.NewGenerator(cfg.Seed+1, 0),
		priceLog:    priceLog,
		recorder:    recorder,
		predictions: predictions,
		quotes:      quotes,
		stateStore:  stateStore,
		snapshotWAL: snapshotWAL,
		broadcaster: broadcaster,
	}

	if err := s.restore(); err != nil {
		return nil, err
	}

	for _, asset := range catalog {
		s.refPrices[asset.Symbol] = asset.Price
		s.books[asset.Symbol] = s.bookGen.Generate(asset.Symbol, asset.Price)
	}

	return s, nil
}

func (s *Simulator) restore() error {
	restored, err := s.stateStore.Load()
	if err != nil {
		return errors.Wrap(err, "restore portfolio")
	}
	if restored == nil {
		s.portfolio = domain.NewPortfolio(s.cfg.StartingCash, time.Now())
		if err := s.stateStore.Save(s.portfolio); err != nil {
			return errors.Wrap(err, "persist fresh portfolio")
		}
		s.logger.Info("created fresh portfolio", zap.String("cash", s.cfg.StartingCash.String()))
	} else {
		// stored positions carry no market value; revalue them at the
		// catalog prices before anything reads the portfolio
		for _, pos := range restored.Positions {
			if asset := s.Asset(pos.Symbol); asset != nil {
				pos.Revalue(asset.Price)
			}
		}
		restored.Recalculate()
		s.portfolio = restored
		s.logger.Info("restored portfolio",
			zap.String("cash", restored.Cash.String()),
			zap.Int("positions", len(restored.Positions)),
			zap.Int("trades", len(restored.Trades)))
	}

	records, err := s.snapshotWAL.SnapshotsAfter(0)
	if err != nil {
		s.logger.Warn("failed to restore snapshot history", zap.Error(err))
		return nil
	}
	restoredSnapshots := make([]domain.PortfolioSnapshot, 0, len(records))
	for _, r := range records {
		restoredSnapshots = append(restoredSnapshots, r.Snapshot)
	}
	s.recorder.Restore(restoredSnapshots)
	return nil
}

// Run drives the simulation loops until the context is cancelled.
func (s *Simulator) Run(ctx context.Context) error {
	// reconcile time missed while the process was down
	s.CatchUp(ctx)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.priceLoop(ctx) })
	g.Go(func() error { return s.bookLoop(ctx) })
	return g.Wait()
}

// Close releases persistent resources.
func (s *Simulator) Close() error {
	return s.snapshotWAL.Close()
}

// CatchUp replays whole hours elapsed since the last update and swaps the
// advanced portfolio in. It never fails; prediction problems degrade to
// static parameters inside the advancer.
func (s *Simulator) CatchUp(ctx context.Context) *domain.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.advancer.CatchUp(ctx, s.portfolio)
	if next != s.portfolio {
		s.portfolio = next
		if err := s.stateStore.Save(next); err != nil {
			s.logger.Warn("failed to persist portfolio after catch-up", zap.Error(err))
		}
		s.repriceBooksLocked()
	}
	return next
}

// Portfolio returns the current state after a lazy catch-up, mirroring the
// on-page-visit reconciliation of the UI.
func (s *Simulator) Portfolio(ctx context.Context) *domain.Portfolio {
	return s.CatchUp(ctx)
}

// SubmitTrade validates and executes a trade intent, swapping in the new
// portfolio on success.
func (s *Simulator) SubmitTrade(ctx context.Context, symbol string, side domain.Side, quantity decimal.Decimal) (*domain.Portfolio, error) {
	asset := s.Asset(symbol)
	if asset == nil {
		return nil, errors.Errorf("unknown asset: %s", symbol)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := s.ledger.Execute(s.portfolio, asset, side, quantity)
	if err != nil {
		return nil, err
	}
	s.portfolio = next
	return next, nil
}

// Asset returns the catalog entry for the symbol, or nil.
func (s *Simulator) Asset(symbol string) *domain.Asset {
	for _, a := range s.catalog {
		if a.Symbol == symbol {
			return a
		}
	}
	return nil
}

// Assets returns the catalog.
func (s *Simulator) Assets() []*domain.Asset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Asset, len(s.catalog))
	copy(out, s.catalog)
	return out
}

// OrderBook returns the current synthesized book for the symbol.
func (s *Simulator) OrderBook(symbol string) (*domain.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[symbol]
	return book, ok
}

// History returns buffered portfolio-value snapshots, oldest first.
func (s *Simulator) History() []domain.PortfolioSnapshot {
	return s.recorder.Snapshots()
}

// SnapshotsAfter exposes the WAL log for SSE streaming.
func (s *Simulator) SnapshotsAfter(index uint64) ([]domain.PortfolioSnapshotRecord, error) {
	return s.snapshotWAL.SnapshotsAfter(index)
}

// priceLoop animates catalog prices between trades. It never touches the
// ledger: position values are refreshed on executions and catch-ups only.
func (s *Simulator) priceLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollPriceInterval)
	defer ticker.Stop()

	stepHours := s.cfg.PollPriceInterval.Hours()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.animatePrices(ctx, stepHours)
		}
	}
}

func (s *Simulator) animatePrices(ctx context.Context, stepHours float64) {
	// quotes go over the network, so they are fetched before taking the
	// lock; a hung exchange must not stall trades and reads
	live := s.fetchLiveQuotes(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, asset := range s.catalog {
		newPrice, ok := live[asset.Symbol]
		if !ok {
			var pred *domain.MarketPrediction
			if p, found := s.predictions.Get(asset.Symbol); found {
				pred = &p
			}
			newPrice = s.engine.NextPrice(asset.Price, asset.Class, stepHours, pred)
		}
		asset.ApplyPrice(newPrice, s.refPrices[asset.Symbol])
		s.priceLog.Append(asset.Symbol, newPrice)
	}
	s.repriceBooksLocked()
}

// fetchLiveQuotes asks the configured provider for every crypto asset, each
// request bounded by quoteTimeout. Invalid payloads are rejected and the
// simulated path continues undisturbed for that symbol.
func (s *Simulator) fetchLiveQuotes(ctx context.Context) map[string]decimal.Decimal {
	if s.quotes == nil {
		return nil
	}

	live := make(map[string]decimal.Decimal)
	for _, asset := range s.catalog {
		if asset.Class != domain.AssetClassCrypto {
			continue
		}

		qctx, cancel := context.WithTimeout(ctx, quoteTimeout)
		quote, err := s.quotes.GetQuote(qctx, asset.Symbol)
		cancel()
		if err != nil {
			s.logger.Warn("live quote fetch failed, keeping simulated price",
				zap.String("symbol", asset.Symbol), zap.Error(err))
			continue
		}
		if ctx.Err() != nil {
			// run loop torn down while the fetch was in flight
			return nil
		}
		if err := quote.Validate(); err != nil {
			s.logger.Warn("rejected live quote",
				zap.String("symbol", asset.Symbol), zap.Error(err))
			continue
		}
		live[asset.Symbol] = quote.Price
	}
	return live
}

func (s *Simulator) repriceBooksLocked() {
	for _, asset := range s.catalog {
		book, ok := s.books[asset.Symbol]
		if !ok {
			s.books[asset.Symbol] = s.bookGen.Generate(asset.Symbol, asset.Price)
			continue
		}
		s.books[asset.Symbol] = s.bookGen.Reprice(book, asset.Price)
	}
}

// bookLoop jitters order book quantities so the depth display stays alive
// between price moves.
func (s *Simulator) bookLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.BookInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.mu.Lock()
			for symbol, book := range s.books {
				s.books[symbol] = s.bookGen.Perturb(book, bookVolatility)
			}
			s.mu.Unlock()
		}
	}
}
