package domain

import "github.com/shopspring/decimal"

// AssetClass groups catalog instruments by the market they trade on.
type AssetClass string

const (
	AssetClassEquity    AssetClass = "equity"
	AssetClassETF       AssetClass = "etf"
	AssetClassCrypto    AssetClass = "crypto"
	AssetClassCommodity AssetClass = "commodity"
	AssetClassFX        AssetClass = "fx"
)

func (c AssetClass) String() string {
	return string(c)
}

// ClassParams are the fallback random-walk parameters used when no market
// prediction is available for an asset.
type ClassParams struct {
	DailyVolatility float64
	HourlyDrift     float64
}

const hoursPerYear = 365 * 24

// classDefaults hold rough historical figures per market. Crypto is the
// most volatile, FX the least.
var classDefaults = map[AssetClass]ClassParams{
	AssetClassEquity:    {DailyVolatility: 0.015, HourlyDrift: 0.08 / hoursPerYear},
	AssetClassETF:       {DailyVolatility: 0.01, HourlyDrift: 0.07 / hoursPerYear},
	AssetClassCrypto:    {DailyVolatility: 0.05, HourlyDrift: 0.15 / hoursPerYear},
	AssetClassCommodity: {DailyVolatility: 0.012, HourlyDrift: 0.04 / hoursPerYear},
	AssetClassFX:        {DailyVolatility: 0.006, HourlyDrift: 0.01 / hoursPerYear},
}

// DefaultParams returns the static parameters for the class. Unknown classes
// fall back to equity figures.
func (c AssetClass) DefaultParams() ClassParams {
	if params, ok := classDefaults[c]; ok {
		return params
	}
	return classDefaults[AssetClassEquity]
}

// Asset is a tradable catalog instrument with its current simulated price.
type Asset struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Class         AssetClass      `json:"class"`
	Price         decimal.Decimal `json:"price"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent decimal.Decimal `json:"change_percent"`
}

var hundred = decimal.NewFromInt(100)

// ApplyPrice moves the asset to newPrice and recomputes the displayed change
// against the reference price.
func (a *Asset) ApplyPrice(newPrice, reference decimal.Decimal) {
	a.Price = newPrice
	a.Change = newPrice.Sub(reference)
	if reference.IsPositive() {
		a.ChangePercent = a.Change.Div(reference).Mul(hundred)
	} else {
		a.ChangePercent = decimal.Zero
	}
}

// DefaultCatalog returns the built-in instrument universe.
func DefaultCatalog() []*Asset {
	entries := []struct {
		symbol string
		name   string
		class  AssetClass
		price  string
	}{
		{"AAPL", "Apple Inc.", AssetClassEquity, "190"},
		{"MSFT", "Microsoft Corp.", AssetClassEquity, "410"},
		{"TSLA", "Tesla Inc.", AssetClassEquity, "250"},
		{"SPY", "SPDR S&P 500 ETF", AssetClassETF, "520"},
		{"QQQ", "Invesco QQQ Trust", AssetClassETF, "440"},
		{"BTCUSDT", "Bitcoin", AssetClassCrypto, "65000"},
		{"ETHUSDT", "Ethereum", AssetClassCrypto, "3400"},
		{"XAUUSD", "Gold Spot", AssetClassCommodity, "2300"},
		{"WTIUSD", "WTI Crude Oil", AssetClassCommodity, "82"},
		{"EURUSD", "Euro / US Dollar", AssetClassFX, "1.08"},
	}

	catalog := make([]*Asset, 0, len(entries))
	for _, e := range entries {
		catalog = append(catalog, &Asset{
			ID:     e.symbol,
			Symbol: e.symbol,
			Name:   e.name,
			Class:  e.class,
			Price:  decimal.RequireFromString(e.price),
		})
	}
	return catalog
}
