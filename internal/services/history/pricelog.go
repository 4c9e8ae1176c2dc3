package history

import (
	"sync"

	"github.com/shopspring/decimal"
)

// defaultPriceLogCap bounds per-symbol close history.
const defaultPriceLogCap = 500

// PriceLog keeps a bounded per-symbol series of closing prices, oldest
// first. It backs the local trend estimator.
type PriceLog struct {
	mu     sync.RWMutex
	closes map[string][]decimal.Decimal
	cap    int
}

// NewPriceLog creates a price log; cap <= 0 selects the default capacity.
func NewPriceLog(cap int) *PriceLog {
	if cap <= 0 {
		cap = defaultPriceLogCap
	}
	return &PriceLog{
		closes: make(map[string][]decimal.Decimal),
		cap:    cap,
	}
}

// Append records a close for the symbol, evicting the oldest past capacity.
func (l *PriceLog) Append(symbol string, price decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	series := append(l.closes[symbol], price)
	if len(series) > l.cap {
		series = series[len(series)-l.cap:]
	}
	l.closes[symbol] = series
}

// Closes returns up to limit most recent closes for the symbol, oldest
// first. limit <= 0 returns the whole series.
func (l *PriceLog) Closes(symbol string, limit int) []decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	series := l.closes[symbol]
	if limit > 0 && len(series) > limit {
		series = series[len(series)-limit:]
	}
	out := make([]decimal.Decimal, len(series))
	copy(out, series)
	return out
}
