package orderbook

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

func TestGenerate_Ordering(t *testing.T) {
	gen := NewGenerator(1, 0)
	book := gen.Generate("BTCUSDT", decimal.NewFromInt(65000))

	require.Len(t, book.Bids, DefaultLevels)
	require.Len(t, book.Asks, DefaultLevels)

	for i := 1; i < len(book.Bids); i++ {
		require.True(t, book.Bids[i].Price.LessThan(book.Bids[i-1].Price),
			"bids must be strictly descending at level %d", i)
	}
	for i := 1; i < len(book.Asks); i++ {
		require.True(t, book.Asks[i].Price.GreaterThan(book.Asks[i-1].Price),
			"asks must be strictly ascending at level %d", i)
	}

	assert.True(t, book.BestBid().LessThan(book.BestAsk()), "spread must be positive")
	assert.True(t, book.Spread().IsPositive())
}

func TestGenerate_PositiveQuantities(t *testing.T) {
	gen := NewGenerator(2, 0)
	book := gen.Generate("AAPL", decimal.NewFromInt(190))

	for _, lvl := range append(book.Bids, book.Asks...) {
		require.True(t, lvl.Quantity.IsPositive())
	}
}

func TestPerturb_KeepsPricesAndPositiveQuantities(t *testing.T) {
	gen := NewGenerator(3, 0)
	book := gen.Generate("ETHUSDT", decimal.NewFromInt(3400))

	perturbed := gen.Perturb(book, 0.99)

	require.Len(t, perturbed.Bids, len(book.Bids))
	for i := range perturbed.Bids {
		assert.True(t, perturbed.Bids[i].Price.Equal(book.Bids[i].Price))
		assert.True(t, perturbed.Bids[i].Quantity.IsPositive())
	}
	for i := range perturbed.Asks {
		assert.True(t, perturbed.Asks[i].Price.Equal(book.Asks[i].Price))
		assert.True(t, perturbed.Asks[i].Quantity.IsPositive())
	}
}

func TestReprice_PreservesShape(t *testing.T) {
	gen := NewGenerator(4, 0)
	book := gen.Generate("SPY", decimal.NewFromInt(520))

	newMid := decimal.NewFromInt(540)
	repriced := gen.Reprice(book, newMid)

	ratio := newMid.Div(book.BestBid())
	for i := range repriced.Bids {
		assert.True(t, repriced.Bids[i].Price.Equal(book.Bids[i].Price.Mul(ratio)))
		assert.True(t, repriced.Bids[i].Quantity.Equal(book.Bids[i].Quantity))
	}

	// ordering invariants survive repricing
	for i := 1; i < len(repriced.Bids); i++ {
		require.True(t, repriced.Bids[i].Price.LessThan(repriced.Bids[i-1].Price))
	}
	require.True(t, repriced.BestBid().LessThan(repriced.BestAsk()))
}

func TestReprice_EmptyBookRegenerates(t *testing.T) {
	gen := NewGenerator(5, 0)
	regenerated := gen.Reprice(&domain.OrderBook{Symbol: "QQQ"}, decimal.NewFromInt(440))
	require.NotNil(t, regenerated)
	assert.NotEmpty(t, regenerated.Bids)
}
