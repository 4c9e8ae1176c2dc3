package domain

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Position is a holding of a single asset. A position with zero quantity
// never exists in a portfolio's active set; it is removed on full sell.
type Position struct {
	Symbol            string          `json:"symbol"`
	Quantity          decimal.Decimal `json:"quantity"`
	AvgCost           decimal.Decimal `json:"avg_cost"`
	CurrentValue      decimal.Decimal `json:"current_value"`
	ProfitLoss        decimal.Decimal `json:"profit_loss"`
	ProfitLossPercent decimal.Decimal `json:"profit_loss_percent"`
}

// NewPosition opens a position at the given execution price.
func NewPosition(symbol string, quantity, price decimal.Decimal) (*Position, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("position quantity must be greater than zero")
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("position price must be greater than zero")
	}

	p := &Position{
		Symbol:   symbol,
		Quantity: quantity,
		AvgCost:  price,
	}
	p.Revalue(price)

	return p, nil
}

// AddLot blends the new lot into the average cost:
// (oldAvgCost*oldQty + price*qty) / (oldQty + qty).
func (p *Position) AddLot(quantity, price decimal.Decimal) {
	totalQty := p.Quantity.Add(quantity)
	existingNotional := p.AvgCost.Mul(p.Quantity)
	addedNotional := price.Mul(quantity)
	p.AvgCost = existingNotional.Add(addedNotional).Div(totalQty)
	p.Quantity = totalQty
	p.Revalue(price)
}

// Reduce removes quantity from the position, leaving the cost basis
// unchanged. Returns true when the position is fully closed.
func (p *Position) Reduce(quantity, price decimal.Decimal) bool {
	p.Quantity = p.Quantity.Sub(quantity)
	if p.Quantity.LessThanOrEqual(decimal.Zero) {
		return true
	}
	p.Revalue(price)
	return false
}

// Revalue recomputes derived value and PnL fields at the given market price.
func (p *Position) Revalue(price decimal.Decimal) {
	p.CurrentValue = p.Quantity.Mul(price)
	costBasis := p.Quantity.Mul(p.AvgCost)
	p.ProfitLoss = p.CurrentValue.Sub(costBasis)
	if costBasis.IsPositive() {
		p.ProfitLossPercent = p.ProfitLoss.Div(costBasis).Mul(decimal.NewFromInt(100))
	} else {
		p.ProfitLossPercent = decimal.Zero
	}
}

// Clone returns a deep copy.
func (p *Position) Clone() *Position {
	clone := *p
	return &clone
}
