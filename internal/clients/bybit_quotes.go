package clients

import (
	"context"
	"time"

	"github.com/hirokisan/bybit/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

// BybitQuoteProvider pulls spot ticker data from the Bybit V5 public API.
type BybitQuoteProvider struct {
	client *bybit.Client
}

// NewBybitQuoteProvider creates a provider over an unauthenticated client.
func NewBybitQuoteProvider(client *bybit.Client) *BybitQuoteProvider {
	return &BybitQuoteProvider{client: client}
}

// GetQuote fetches the current spot ticker for the symbol.
func (p *BybitQuoteProvider) GetQuote(ctx context.Context, symbol string) (*domain.LiveQuote, error) {
	sym := bybit.SymbolV5(symbol)

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: bybit.CategoryV5Spot,
		Symbol:   &sym,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch bybit ticker for %s", symbol)
	}
	if len(result.Result.Spot.List) == 0 {
		return nil, errors.Errorf("bybit API returned empty tickers for %s", symbol)
	}
	t := result.Result.Spot.List[0]

	price, err := decimal.NewFromString(t.LastPrice)
	if err != nil {
		return nil, errors.Wrapf(err, "parse bybit price for %s", symbol)
	}

	prev := parseOrZero(t.PrevPrice24H)
	changePercent := parseOrZero(t.Price24HPcnt).Mul(decimal.NewFromInt(100))

	return &domain.LiveQuote{
		Symbol:           symbol,
		Price:            price,
		Change24h:        price.Sub(prev),
		ChangePercent24h: changePercent,
		High24h:          parseOrZero(t.HighPrice24H),
		Low24h:           parseOrZero(t.LowPrice24H),
		Volume24h:        parseOrZero(t.Volume24H),
		LastUpdated:      time.Now(),
		Source:           domain.QuoteSourceLive,
	}, nil
}
