package history

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
	"go.uber.org/zap"
)

type fakeSink struct {
	saved []domain.PortfolioSnapshot
	err   error
}

func (f *fakeSink) Save(s domain.PortfolioSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, s)
	return nil
}

func TestRecorder_RecordComputesTotal(t *testing.T) {
	r := NewRecorder(nil, nil, zap.NewNop())

	r.Record(time.Now(), decimal.NewFromInt(98999), decimal.NewFromInt(1000))

	snapshots := r.Snapshots()
	require.Len(t, snapshots, 1)
	assert.Equal(t, "99999", snapshots[0].TotalValue)
	assert.Equal(t, "98999", snapshots[0].Cash)
	assert.Equal(t, "1000", snapshots[0].PositionsValue)
}

func TestRecorder_BoundedFIFO(t *testing.T) {
	r := NewRecorder(nil, nil, zap.NewNop())

	base := time.Now()
	for i := 0; i < MaxSnapshots+25; i++ {
		r.Record(base.Add(time.Duration(i)*time.Hour), decimal.NewFromInt(int64(i)), decimal.Zero)
	}

	snapshots := r.Snapshots()
	require.Len(t, snapshots, MaxSnapshots)
	// the 25 oldest entries were evicted
	assert.Equal(t, "25", snapshots[0].Cash)
	assert.Equal(t, "524", snapshots[len(snapshots)-1].Cash)
}

func TestRecorder_MirrorsToSink(t *testing.T) {
	sink := &fakeSink{}
	r := NewRecorder(sink, nil, zap.NewNop())

	r.Record(time.Now(), decimal.NewFromInt(100), decimal.NewFromInt(50))

	require.Len(t, sink.saved, 1)
	assert.Equal(t, "150", sink.saved[0].TotalValue)
}

func TestRecorder_SinkFailureDoesNotDropRingEntry(t *testing.T) {
	sink := &fakeSink{err: errors.New("disk full")}
	r := NewRecorder(sink, nil, zap.NewNop())

	r.Record(time.Now(), decimal.NewFromInt(100), decimal.Zero)

	assert.Len(t, r.Snapshots(), 1)
}

func TestPriceLog_BoundedPerSymbol(t *testing.T) {
	log := NewPriceLog(10)

	for i := 0; i < 15; i++ {
		log.Append("AAPL", decimal.NewFromInt(int64(100+i)))
	}
	log.Append("MSFT", decimal.NewFromInt(400))

	closes := log.Closes("AAPL", 0)
	require.Len(t, closes, 10)
	assert.True(t, closes[0].Equal(decimal.NewFromInt(105)))
	assert.True(t, closes[9].Equal(decimal.NewFromInt(114)))

	limited := log.Closes("AAPL", 3)
	require.Len(t, limited, 3)
	assert.True(t, limited[0].Equal(decimal.NewFromInt(112)))

	assert.Len(t, log.Closes("MSFT", 0), 1)
	assert.Empty(t, log.Closes("GONE", 0))
}
