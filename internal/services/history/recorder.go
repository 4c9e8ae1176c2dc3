// Package history keeps bounded records of portfolio value and asset prices
// for charting and trend estimation.
package history

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"go.uber.org/zap"
)

// MaxSnapshots caps the in-memory snapshot ring; the oldest entry is evicted
// once the cap would be exceeded.
const MaxSnapshots = 500

// Sink receives every snapshot for durable storage.
type Sink interface {
	Save(snapshot domain.PortfolioSnapshot) error
}

// Broadcaster fans snapshots out to in-process subscribers.
type Broadcaster interface {
	Publish(snapshot domain.PortfolioSnapshot)
}

// Recorder appends timestamped portfolio-value snapshots to a bounded FIFO
// ring, mirroring each one to the sink and broadcaster when present.
type Recorder struct {
	mu          sync.RWMutex
	snapshots   []domain.PortfolioSnapshot
	sink        Sink
	broadcaster Broadcaster
	logger      *zap.Logger
}

// NewRecorder creates a recorder. sink and broadcaster may be nil.
func NewRecorder(sink Sink, broadcaster Broadcaster, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		snapshots:   make([]domain.PortfolioSnapshot, 0, MaxSnapshots),
		sink:        sink,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Record appends a snapshot with totalValue = cash + positionsValue.
func (r *Recorder) Record(ts time.Time, cash, positionsValue decimal.Decimal) {
	snapshot := domain.PortfolioSnapshot{
		Timestamp:      ts,
		TotalValue:     cash.Add(positionsValue).String(),
		Cash:           cash.String(),
		PositionsValue: positionsValue.String(),
	}

	r.mu.Lock()
	r.snapshots = append(r.snapshots, snapshot)
	if len(r.snapshots) > MaxSnapshots {
		r.snapshots = r.snapshots[len(r.snapshots)-MaxSnapshots:]
	}
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.Save(snapshot); err != nil {
			r.logger.Warn("failed to persist portfolio snapshot", zap.Error(err))
		}
	}
	if r.broadcaster != nil {
		r.broadcaster.Publish(snapshot)
	}
}

// Snapshots returns a copy of the buffered snapshots, oldest first.
func (r *Recorder) Snapshots() []domain.PortfolioSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PortfolioSnapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Restore seeds the ring from previously persisted snapshots, keeping at
// most the newest MaxSnapshots entries.
func (r *Recorder) Restore(snapshots []domain.PortfolioSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(snapshots) > MaxSnapshots {
		snapshots = snapshots[len(snapshots)-MaxSnapshots:]
	}
	r.snapshots = append(r.snapshots[:0], snapshots...)
}
