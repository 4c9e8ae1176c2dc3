package domain

import "time"

// Trend qualitative direction of expected price action.
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

// IsValid checks if the Trend value is valid.
func (t Trend) IsValid() bool {
	return t == TrendBullish || t == TrendBearish || t == TrendNeutral
}

// RiskLevel coarse risk classification attached to a prediction.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// MarketPrediction is an externally supplied drift/volatility estimate for a
// symbol. Absent or expired predictions mean the pricer falls back to static
// per-class parameters.
type MarketPrediction struct {
	Symbol          string    `json:"symbol"`
	DailyVolatility float64   `json:"daily_volatility"`
	Trend           Trend     `json:"trend"`
	AnnualReturn    float64   `json:"annual_return"`
	Risk            RiskLevel `json:"risk_level"`
	FetchedAt       time.Time `json:"fetched_at"`
}
