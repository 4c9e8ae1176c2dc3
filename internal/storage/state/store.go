// Package state persists the full portfolio so restarts keep cash,
// positions and the trade log.
package state

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"github.com/vadiminshakov/papertrade/internal/storage/kv"
	"go.uber.org/zap"
)

const (
	// portfolioKey is the fixed identifier of the serialized portfolio.
	portfolioKey = "portfolio_state"
	// schemaVersion is bumped on incompatible layout changes; a mismatch
	// resets the store instead of deserializing incorrectly.
	schemaVersion = "v1"
)

// Store reads and writes portfolio state through a kv.Store.
type Store struct {
	kv     kv.Store
	logger *zap.Logger
}

// NewStore creates a portfolio state store.
func NewStore(store kv.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{kv: store, logger: logger}
}

// storedState is the on-disk envelope.
type storedState struct {
	Schema    string          `json:"schema"`
	Portfolio storedPortfolio `json:"portfolio"`
}

// storedPortfolio is a serializable snapshot of domain.Portfolio. Decimal
// fields travel as strings to avoid float precision loss.
type storedPortfolio struct {
	Cash       string           `json:"cash"`
	Positions  []storedPosition `json:"positions"`
	Trades     []storedTrade    `json:"trades"`
	LastUpdate time.Time        `json:"last_update"`
}

type storedPosition struct {
	Symbol   string `json:"symbol"`
	Quantity string `json:"quantity"`
	AvgCost  string `json:"avg_cost"`
}

type storedTrade struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"ts"`
}

// Save writes the portfolio. The kv layer guarantees the write is
// all-or-nothing, so a restart cannot observe a half-applied trade.
func (s *Store) Save(p *domain.Portfolio) error {
	if s == nil || s.kv == nil {
		return nil
	}

	stored := storedPortfolio{
		Cash:       p.Cash.String(),
		LastUpdate: p.LastUpdate,
		Positions:  make([]storedPosition, 0, len(p.Positions)),
		Trades:     make([]storedTrade, 0, len(p.Trades)),
	}
	for _, pos := range p.Positions {
		stored.Positions = append(stored.Positions, storedPosition{
			Symbol:   pos.Symbol,
			Quantity: pos.Quantity.String(),
			AvgCost:  pos.AvgCost.String(),
		})
	}
	for _, t := range p.Trades {
		stored.Trades = append(stored.Trades, storedTrade{
			ID:        t.ID,
			Symbol:    t.Symbol,
			Side:      t.Side.String(),
			Quantity:  t.Quantity.String(),
			Price:     t.Price.String(),
			Total:     t.Total.String(),
			Timestamp: t.Timestamp,
		})
	}

	payload, err := json.Marshal(storedState{Schema: schemaVersion, Portfolio: stored})
	if err != nil {
		return errors.Wrap(err, "encode portfolio state")
	}

	return s.kv.Set(portfolioKey, payload)
}

// Load reads the portfolio, returning nil when nothing usable is stored. A
// schema mismatch resets the store safely rather than mis-deserializing.
func (s *Store) Load() (*domain.Portfolio, error) {
	if s == nil || s.kv == nil {
		return nil, nil
	}

	payload, ok, err := s.kv.Get(portfolioKey)
	if err != nil {
		return nil, errors.Wrap(err, "read portfolio state")
	}
	if !ok || len(payload) == 0 {
		return nil, nil
	}

	var stored storedState
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, errors.Wrap(err, "decode portfolio state")
	}
	if stored.Schema != schemaVersion {
		s.logger.Warn("portfolio state schema mismatch, resetting store",
			zap.String("found", stored.Schema),
			zap.String("want", schemaVersion))
		if err := s.kv.Delete(portfolioKey); err != nil {
			return nil, errors.Wrap(err, "reset portfolio state")
		}
		return nil, nil
	}

	return toPortfolio(stored.Portfolio)
}

func toPortfolio(stored storedPortfolio) (*domain.Portfolio, error) {
	cash, err := decimal.NewFromString(stored.Cash)
	if err != nil {
		return nil, errors.Wrap(err, "decode cash")
	}

	p := &domain.Portfolio{
		Cash:       cash,
		LastUpdate: stored.LastUpdate,
	}
	for _, sp := range stored.Positions {
		quantity, err := decimal.NewFromString(sp.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s quantity", sp.Symbol)
		}
		avgCost, err := decimal.NewFromString(sp.AvgCost)
		if err != nil {
			return nil, errors.Wrapf(err, "decode %s avg cost", sp.Symbol)
		}
		pos := &domain.Position{Symbol: sp.Symbol, Quantity: quantity, AvgCost: avgCost}
		pos.Revalue(avgCost)
		p.Positions = append(p.Positions, pos)
	}
	for _, st := range stored.Trades {
		quantity, err := decimal.NewFromString(st.Quantity)
		if err != nil {
			return nil, errors.Wrapf(err, "decode trade %s quantity", st.ID)
		}
		price, err := decimal.NewFromString(st.Price)
		if err != nil {
			return nil, errors.Wrapf(err, "decode trade %s price", st.ID)
		}
		total, err := decimal.NewFromString(st.Total)
		if err != nil {
			return nil, errors.Wrapf(err, "decode trade %s total", st.ID)
		}
		p.Trades = append(p.Trades, &domain.Trade{
			ID:        st.ID,
			Symbol:    st.Symbol,
			Side:      domain.Side(st.Side),
			Quantity:  quantity,
			Price:     price,
			Total:     total,
			Timestamp: st.Timestamp,
		})
	}

	p.Recalculate()
	return p, nil
}
