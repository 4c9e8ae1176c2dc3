// Package ledger turns trade intents into consistent portfolio state: buy
// and sell execution with fee deduction, average-cost blending and an
// append-only trade log.
package ledger

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"go.uber.org/zap"
)

// DefaultFeeRate is the flat commission applied to both sides of a trade.
var DefaultFeeRate = decimal.NewFromFloat(0.001)

// minSubmitInterval throttles successive submissions from the same session.
const minSubmitInterval = time.Second

var (
	// ErrInsufficientFunds rejects a buy whose cost plus fee exceeds cash.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInsufficientShares rejects a sell exceeding the held quantity.
	ErrInsufficientShares = errors.New("insufficient shares")
	// ErrSubmissionInFlight rejects a submission while another one is
	// still being applied.
	ErrSubmissionInFlight = errors.New("trade submission already in flight")
	// ErrThrottled rejects a submission arriving within the minimum
	// interval after the previous one.
	ErrThrottled = errors.New("trade submitted too soon after previous one")
)

// Recorder receives a history snapshot after every successful execution.
type Recorder interface {
	Record(ts time.Time, cash, positionsValue decimal.Decimal)
}

// Persister writes the full portfolio state before an execution is
// considered complete.
type Persister interface {
	Save(p *domain.Portfolio) error
}

// Service executes trades against a portfolio. Every mutation is applied to
// a fresh clone which is persisted and returned atomically; the caller swaps
// its state wholesale, so readers never observe a half-applied trade.
type Service struct {
	mu         sync.Mutex
	feeRate    decimal.Decimal
	recorder   Recorder
	store      Persister
	logger     *zap.Logger
	now        func() time.Time
	lastSubmit time.Time
	inFlight   bool
}

// New creates a ledger service. recorder and store may be nil in tests.
func New(feeRate decimal.Decimal, recorder Recorder, store Persister, now func() time.Time, logger *zap.Logger) *Service {
	if feeRate.IsNegative() {
		feeRate = DefaultFeeRate
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		feeRate:  feeRate,
		recorder: recorder,
		store:    store,
		now:      now,
		logger:   logger,
	}
}

// Execute applies a buy or sell to a clone of the portfolio and returns the
// new state. Domain-rule violations come back as wrapped sentinel errors and
// leave the input untouched. Callers must reject non-positive quantities
// before calling.
func (s *Service) Execute(portfolio *domain.Portfolio, asset *domain.Asset, side domain.Side, quantity decimal.Decimal) (*domain.Portfolio, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	next := portfolio.Clone()
	ts := s.now()

	total := asset.Price.Mul(quantity)
	fee := total.Mul(s.feeRate)

	var tradeTotal decimal.Decimal
	switch side {
	case domain.SideBuy:
		cost := total.Add(fee)
		if next.Cash.LessThan(cost) {
			return nil, errors.Wrapf(ErrInsufficientFunds, "need %s, have %s", cost, next.Cash)
		}
		next.Cash = next.Cash.Sub(cost)
		if pos := next.Position(asset.Symbol); pos != nil {
			pos.AddLot(quantity, asset.Price)
		} else {
			pos, err := domain.NewPosition(asset.Symbol, quantity, asset.Price)
			if err != nil {
				return nil, errors.Wrap(err, "open position")
			}
			next.Positions = append(next.Positions, pos)
		}
		tradeTotal = cost
	case domain.SideSell:
		pos := next.Position(asset.Symbol)
		if pos == nil || pos.Quantity.LessThan(quantity) {
			return nil, errors.Wrapf(ErrInsufficientShares, "sell %s %s", quantity, asset.Symbol)
		}
		proceeds := total.Sub(fee)
		next.Cash = next.Cash.Add(proceeds)
		if closed := pos.Reduce(quantity, asset.Price); closed {
			next.RemovePosition(asset.Symbol)
		}
		tradeTotal = proceeds
	default:
		return nil, errors.Errorf("unknown trade side: %s", side)
	}

	trade := &domain.Trade{
		ID:        uuid.NewString(),
		Symbol:    asset.Symbol,
		Side:      side,
		Quantity:  quantity,
		Price:     asset.Price,
		Total:     tradeTotal,
		Timestamp: ts,
	}
	next.RecordTrade(trade)
	next.Recalculate()

	if s.store != nil {
		if err := s.store.Save(next); err != nil {
			return nil, errors.Wrap(err, "persist portfolio")
		}
	}
	if s.recorder != nil {
		s.recorder.Record(ts, next.Cash, next.PositionsValue())
	}

	s.stampSubmitted(ts)

	s.logger.Info("trade executed",
		zap.String("id", trade.ID),
		zap.String("symbol", asset.Symbol),
		zap.String("side", side.String()),
		zap.String("quantity", quantity.String()),
		zap.String("price", asset.Price.String()),
		zap.String("total", tradeTotal.String()))

	return next, nil
}

// acquire enforces the single-submission and debounce guards. The throttle
// clock is stamped only after a successful execution, so a rejected order
// does not delay the user's corrected retry.
func (s *Service) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return ErrSubmissionInFlight
	}
	if !s.lastSubmit.IsZero() && s.now().Sub(s.lastSubmit) < minSubmitInterval {
		return ErrThrottled
	}
	s.inFlight = true
	return nil
}

func (s *Service) stampSubmitted(ts time.Time) {
	s.mu.Lock()
	s.lastSubmit = ts
	s.mu.Unlock()
}

func (s *Service) release() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}
