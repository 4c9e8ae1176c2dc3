package clients

import (
	"context"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

// QuoteProvider fetches a live market quote for a symbol.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (*domain.LiveQuote, error)
}

// BinanceQuoteProvider pulls 24h ticker statistics from the Binance public
// API without requiring authentication.
type BinanceQuoteProvider struct {
	client *binance.Client
}

// NewBinanceQuoteProvider creates a provider over an unauthenticated client.
func NewBinanceQuoteProvider(client *binance.Client) *BinanceQuoteProvider {
	return &BinanceQuoteProvider{client: client}
}

// GetQuote fetches the current quote. The returned quote still has to pass
// domain validation before it may override a simulated price.
func (p *BinanceQuoteProvider) GetQuote(ctx context.Context, symbol string) (*domain.LiveQuote, error) {
	stats, err := p.client.NewListPriceChangeStatsService().Symbol(symbol).Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch binance stats for %s", symbol)
	}
	if len(stats) == 0 {
		return nil, errors.Errorf("binance API returned empty stats for %s", symbol)
	}
	s := stats[0]

	price, err := decimal.NewFromString(s.LastPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "parse binance price for %s", symbol)
	}
	change := parseOrZero(s.PriceChange)
	changePercent := parseOrZero(s.PriceChangePercent)
	high := parseOrZero(s.HighPrice)
	low := parseOrZero(s.LowPrice)
	volume := parseOrZero(s.Volume)

	return &domain.LiveQuote{
		Symbol:           symbol,
		Price:            price,
		Change24h:        change,
		ChangePercent24h: changePercent,
		High24h:          high,
		Low24h:           low,
		Volume24h:        volume,
		LastUpdated:      time.Now(),
		Source:           domain.QuoteSourceLive,
	}, nil
}

func parseOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
