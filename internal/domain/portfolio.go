package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio is the aggregate root of the virtual ledger: cash, open
// positions and the append-only trade log (newest first). TotalValue is
// derived; Recalculate keeps it equal to cash plus the positions sum.
type Portfolio struct {
	Cash       decimal.Decimal `json:"cash"`
	TotalValue decimal.Decimal `json:"total_value"`
	Positions  []*Position     `json:"positions"`
	Trades     []*Trade        `json:"trades"`
	LastUpdate time.Time       `json:"last_update"`
}

// NewPortfolio creates a portfolio with the given starting cash.
func NewPortfolio(startingCash decimal.Decimal, now time.Time) *Portfolio {
	return &Portfolio{
		Cash:       startingCash,
		TotalValue: startingCash,
		LastUpdate: now,
	}
}

// Position returns the open position for the symbol, or nil.
func (p *Portfolio) Position(symbol string) *Position {
	for _, pos := range p.Positions {
		if pos.Symbol == symbol {
			return pos
		}
	}
	return nil
}

// RemovePosition drops the symbol from the active position set.
func (p *Portfolio) RemovePosition(symbol string) {
	for i, pos := range p.Positions {
		if pos.Symbol == symbol {
			p.Positions = append(p.Positions[:i], p.Positions[i+1:]...)
			return
		}
	}
}

// PositionsValue sums the current value of all open positions.
func (p *Portfolio) PositionsValue() decimal.Decimal {
	total := decimal.Zero
	for _, pos := range p.Positions {
		total = total.Add(pos.CurrentValue)
	}
	return total
}

// Recalculate refreshes the derived total value.
func (p *Portfolio) Recalculate() {
	p.TotalValue = p.Cash.Add(p.PositionsValue())
}

// RecordTrade prepends the trade to the log, newest first.
func (p *Portfolio) RecordTrade(t *Trade) {
	p.Trades = append([]*Trade{t}, p.Trades...)
}

// Clone returns a deep copy. The ledger mutates a clone and swaps it in
// wholesale so readers never observe a half-applied trade.
func (p *Portfolio) Clone() *Portfolio {
	clone := &Portfolio{
		Cash:       p.Cash,
		TotalValue: p.TotalValue,
		LastUpdate: p.LastUpdate,
		Positions:  make([]*Position, 0, len(p.Positions)),
		Trades:     make([]*Trade, 0, len(p.Trades)),
	}
	for _, pos := range p.Positions {
		clone.Positions = append(clone.Positions, pos.Clone())
	}
	// trades are immutable records, sharing pointers is safe
	clone.Trades = append(clone.Trades, p.Trades...)
	return clone
}
