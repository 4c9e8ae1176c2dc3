package prediction

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"go.uber.org/zap"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

type fakeFetcher struct {
	predictions []domain.MarketPrediction
	err         error
	calls       int
}

func (f *fakeFetcher) FetchBatch(ctx context.Context, assets []AssetInfo) ([]domain.MarketPrediction, error) {
	f.calls++
	return f.predictions, f.err
}

func TestCache_PutGet(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cache := NewCache(DefaultTTL, nil, clock.Now, zap.NewNop())

	cache.Put("BTCUSDT", domain.MarketPrediction{Symbol: "BTCUSDT", Trend: domain.TrendBullish})

	got, ok := cache.Get("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, domain.TrendBullish, got.Trend)

	_, ok = cache.Get("ETHUSDT")
	assert.False(t, ok)
}

func TestCache_ExpiryEvictsOnRead(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	cache := NewCache(DefaultTTL, nil, clock.Now, zap.NewNop())

	cache.Put("AAPL", domain.MarketPrediction{Symbol: "AAPL"})

	clock.Advance(23 * time.Hour)
	_, ok := cache.Get("AAPL")
	assert.True(t, ok, "prediction inside TTL must be served")

	clock.Advance(2 * time.Hour)
	_, ok = cache.Get("AAPL")
	assert.False(t, ok, "prediction past TTL must be treated as absent")
}

func TestCache_RefreshPopulatesBatch(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	fetcher := &fakeFetcher{predictions: []domain.MarketPrediction{
		{Symbol: "AAPL", Trend: domain.TrendNeutral, FetchedAt: clock.t},
		{Symbol: "BTCUSDT", Trend: domain.TrendBullish, FetchedAt: clock.t},
	}}
	cache := NewCache(DefaultTTL, fetcher, clock.Now, zap.NewNop())

	cache.Refresh(context.Background(), []AssetInfo{{Symbol: "AAPL"}, {Symbol: "BTCUSDT"}})

	_, ok := cache.Get("AAPL")
	assert.True(t, ok)
	_, ok = cache.Get("BTCUSDT")
	assert.True(t, ok)
}

func TestCache_RefreshFailureLeavesCacheUntouched(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	fetcher := &fakeFetcher{err: errors.New("upstream down")}
	cache := NewCache(DefaultTTL, fetcher, clock.Now, zap.NewNop())

	cache.Put("AAPL", domain.MarketPrediction{Symbol: "AAPL", Trend: domain.TrendBearish})

	cache.Refresh(context.Background(), []AssetInfo{{Symbol: "AAPL"}})

	got, ok := cache.Get("AAPL")
	require.True(t, ok, "failed refresh must not evict existing entries")
	assert.Equal(t, domain.TrendBearish, got.Trend)
}

func TestCache_RefreshDiscardsStaleResultAfterCancel(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	fetcher := &fakeFetcher{predictions: []domain.MarketPrediction{{Symbol: "AAPL"}}}
	cache := NewCache(DefaultTTL, fetcher, clock.Now, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cache.Refresh(ctx, []AssetInfo{{Symbol: "AAPL"}})

	_, ok := cache.Get("AAPL")
	assert.False(t, ok, "results arriving after teardown must not be committed")
}
