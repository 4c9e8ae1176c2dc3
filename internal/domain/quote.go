package domain

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// QuoteSource tells whether a quote came from a live feed or the simulation.
type QuoteSource string

const (
	QuoteSourceLive      QuoteSource = "live"
	QuoteSourceSimulated QuoteSource = "simulated"
)

// LiveQuote is a point-in-time market quote from an external provider.
type LiveQuote struct {
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	Change24h        decimal.Decimal `json:"change_24h"`
	ChangePercent24h decimal.Decimal `json:"change_percent_24h"`
	High24h          decimal.Decimal `json:"high_24h"`
	Low24h           decimal.Decimal `json:"low_24h"`
	Volume24h        decimal.Decimal `json:"volume_24h"`
	LastUpdated      time.Time       `json:"last_updated"`
	Source           QuoteSource     `json:"source"`
}

// ErrInvalidLiveQuote marks a live payload whose price is unusable; the
// simulated price path continues undisturbed.
var ErrInvalidLiveQuote = errors.New("invalid live quote")

// Validate rejects quotes that must not override the simulated price.
func (q *LiveQuote) Validate() error {
	if q.Source != QuoteSourceLive {
		return errors.Wrap(ErrInvalidLiveQuote, "source is not live")
	}
	f, _ := q.Price.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) || q.Price.LessThanOrEqual(decimal.Zero) {
		return errors.Wrapf(ErrInvalidLiveQuote, "price %s is not a positive finite number", q.Price)
	}
	return nil
}
