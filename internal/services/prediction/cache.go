// Package prediction manages time-boxed market predictions used to steer
// the price engine's drift and volatility.
package prediction

import (
	"context"
	"sync"
	"time"

	"github.com/vadiminshakov/papertrade/internal/domain"
	"go.uber.org/zap"
)

// DefaultTTL is how long a prediction stays usable after it was fetched.
const DefaultTTL = 24 * time.Hour

// AssetInfo is the per-asset payload sent to a prediction provider.
type AssetInfo struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Class         string  `json:"assetClass"`
	ChangePercent float64 `json:"changePercent"`
}

// Fetcher supplies predictions for a batch of assets. Symbols missing from
// the response simply stay absent from the cache.
type Fetcher interface {
	FetchBatch(ctx context.Context, assets []AssetInfo) ([]domain.MarketPrediction, error)
}

// Cache stores predictions per symbol with a fixed TTL. Expired entries are
// treated as absent and evicted on the next read. The clock is injectable
// so tests can control expiry deterministically.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]domain.MarketPrediction
	ttl     time.Duration
	now     func() time.Time
	fetcher Fetcher
	logger  *zap.Logger
}

// NewCache creates a prediction cache. fetcher may be nil, in which case
// Refresh is a no-op and all lookups miss.
func NewCache(ttl time.Duration, fetcher Fetcher, now func() time.Time, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]domain.MarketPrediction),
		ttl:     ttl,
		now:     now,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Get returns the prediction for the symbol, or false when absent or expired.
func (c *Cache) Get(symbol string) (domain.MarketPrediction, bool) {
	c.mu.RLock()
	entry, ok := c.entries[symbol]
	c.mu.RUnlock()
	if !ok {
		return domain.MarketPrediction{}, false
	}

	if c.now().Sub(entry.FetchedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, symbol)
		c.mu.Unlock()
		return domain.MarketPrediction{}, false
	}

	return entry, true
}

// Put stores a prediction, stamping it with the current time when unset.
func (c *Cache) Put(symbol string, p domain.MarketPrediction) {
	if p.FetchedAt.IsZero() {
		p.FetchedAt = c.now()
	}
	c.mu.Lock()
	c.entries[symbol] = p
	c.mu.Unlock()
}

// Refresh fetches predictions for the whole asset list at once. A fetch
// failure leaves the cache untouched: callers see misses and the pricer
// degrades to static class parameters. The error is never escalated.
func (c *Cache) Refresh(ctx context.Context, assets []AssetInfo) {
	if c.fetcher == nil || len(assets) == 0 {
		return
	}

	predictions, err := c.fetcher.FetchBatch(ctx, assets)
	if err != nil {
		c.logger.Warn("prediction fetch failed, falling back to static parameters", zap.Error(err))
		return
	}
	if ctx.Err() != nil {
		// the originating request was torn down while we waited, the
		// results no longer belong to anyone
		return
	}

	for _, p := range predictions {
		c.Put(p.Symbol, p)
	}
}
