package domain

import "github.com/shopspring/decimal"

// BookLevel is a single price+quantity entry in a synthesized order book.
type BookLevel struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// OrderBook is a two-sided depth ladder around a mid-price. Bids are sorted
// descending by price, asks ascending; best bid is always below best ask.
type OrderBook struct {
	Symbol string      `json:"symbol"`
	Bids   []BookLevel `json:"bids"`
	Asks   []BookLevel `json:"asks"`
}

// BestBid returns the highest bid, or zero when the book is empty.
func (b *OrderBook) BestBid() decimal.Decimal {
	if len(b.Bids) == 0 {
		return decimal.Zero
	}
	return b.Bids[0].Price
}

// BestAsk returns the lowest ask, or zero when the book is empty.
func (b *OrderBook) BestAsk() decimal.Decimal {
	if len(b.Asks) == 0 {
		return decimal.Zero
	}
	return b.Asks[0].Price
}

// Spread is the gap between best ask and best bid.
func (b *OrderBook) Spread() decimal.Decimal {
	return b.BestAsk().Sub(b.BestBid())
}
