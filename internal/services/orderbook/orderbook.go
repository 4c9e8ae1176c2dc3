// Package orderbook fabricates two-sided depth ladders around a mid-price
// for chart animation. The books are cosmetic: nothing here touches the
// ledger.
package orderbook

import (
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

const (
	// DefaultLevels is the number of price levels per side.
	DefaultLevels = 20
	// defaultSpreadFraction is the bid/ask gap as a fraction of mid.
	defaultSpreadFraction = 0.001
	// defaultStepFraction is the distance between adjacent levels as a
	// fraction of mid.
	defaultStepFraction = 0.0005
	// defaultMaxQuantity is the quantity ceiling at the top of the book.
	defaultMaxQuantity = 100.0
	// minQuantity keeps perturbed levels from reaching zero.
	minQuantity = 0.1
	// depthDecay shrinks the quantity ceiling per level away from mid,
	// modeling thinner liquidity deeper in the book.
	depthDecay = 0.92
)

// Generator synthesizes and maintains order books. The random source is
// injected for reproducible tests.
type Generator struct {
	mu     sync.Mutex
	rng    *rand.Rand
	levels int
}

// NewGenerator creates a generator with the given seed and levels per side.
// levels <= 0 selects the default depth.
func NewGenerator(seed int64, levels int) *Generator {
	if levels <= 0 {
		levels = DefaultLevels
	}
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		levels: levels,
	}
}

// Generate builds a fresh book around the mid-price: bids below
// mid - spread/2 descending, asks above mid + spread/2 ascending, each level
// stepping further from mid with a decaying quantity ceiling.
func (g *Generator) Generate(symbol string, mid decimal.Decimal) *domain.OrderBook {
	g.mu.Lock()
	defer g.mu.Unlock()

	midF, _ := mid.Float64()
	halfSpread := midF * defaultSpreadFraction / 2
	step := midF * defaultStepFraction

	book := &domain.OrderBook{
		Symbol: symbol,
		Bids:   make([]domain.BookLevel, 0, g.levels),
		Asks:   make([]domain.BookLevel, 0, g.levels),
	}

	ceiling := defaultMaxQuantity
	for i := 0; i < g.levels; i++ {
		offset := halfSpread + float64(i)*step
		bidQty := g.levelQuantity(ceiling)
		askQty := g.levelQuantity(ceiling)

		book.Bids = append(book.Bids, domain.BookLevel{
			Price:    decimal.NewFromFloat(midF - offset),
			Quantity: decimal.NewFromFloat(bidQty),
		})
		book.Asks = append(book.Asks, domain.BookLevel{
			Price:    decimal.NewFromFloat(midF + offset),
			Quantity: decimal.NewFromFloat(askQty),
		})

		ceiling *= depthDecay
	}

	return book
}

// Perturb jitters every level's quantity by up to ±volatility fraction,
// never letting a level drop to zero. Prices stay put.
func (g *Generator) Perturb(book *domain.OrderBook, volatility float64) *domain.OrderBook {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := &domain.OrderBook{
		Symbol: book.Symbol,
		Bids:   perturbSide(g.rng, book.Bids, volatility),
		Asks:   perturbSide(g.rng, book.Asks, volatility),
	}
	return out
}

// Reprice rescales all levels by the ratio of the new mid-price to the old
// best bid, preserving the book's shape instead of regenerating it.
func (g *Generator) Reprice(book *domain.OrderBook, newMid decimal.Decimal) *domain.OrderBook {
	oldBestBid := book.BestBid()
	if !oldBestBid.IsPositive() {
		return g.Generate(book.Symbol, newMid)
	}
	ratio := newMid.Div(oldBestBid)

	out := &domain.OrderBook{
		Symbol: book.Symbol,
		Bids:   scaleSide(book.Bids, ratio),
		Asks:   scaleSide(book.Asks, ratio),
	}
	return out
}

func (g *Generator) levelQuantity(ceiling float64) float64 {
	qty := g.rng.Float64() * ceiling
	if qty < minQuantity {
		qty = minQuantity
	}
	return qty
}

func perturbSide(rng *rand.Rand, levels []domain.BookLevel, volatility float64) []domain.BookLevel {
	out := make([]domain.BookLevel, len(levels))
	for i, lvl := range levels {
		qty, _ := lvl.Quantity.Float64()
		qty *= 1 + (rng.Float64()*2-1)*volatility
		if qty < minQuantity {
			qty = minQuantity
		}
		out[i] = domain.BookLevel{Price: lvl.Price, Quantity: decimal.NewFromFloat(qty)}
	}
	return out
}

func scaleSide(levels []domain.BookLevel, ratio decimal.Decimal) []domain.BookLevel {
	out := make([]domain.BookLevel, len(levels))
	for i, lvl := range levels {
		out[i] = domain.BookLevel{Price: lvl.Price.Mul(ratio), Quantity: lvl.Quantity}
	}
	return out
}
