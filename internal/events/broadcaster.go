// Package events fans portfolio snapshots out to in-process subscribers.
package events

import (
	"sync"

	"github.com/vadiminshakov/papertrade/internal/domain"
)

// SnapshotBroadcaster delivers snapshots to all subscribers via buffered
// channels. It keeps the API intentionally small so call sites can stay
// straightforward.
type SnapshotBroadcaster struct {
	mu     sync.RWMutex
	subs   map[chan domain.PortfolioSnapshot]struct{}
	buffer int
}

// NewSnapshotBroadcaster creates a broadcaster with the given per-subscriber
// buffer.
func NewSnapshotBroadcaster(buffer int) *SnapshotBroadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &SnapshotBroadcaster{
		subs:   make(map[chan domain.PortfolioSnapshot]struct{}),
		buffer: buffer,
	}
}

// Publish sends the snapshot to all subscribers, dropping if a reader is slow.
func (b *SnapshotBroadcaster) Publish(s domain.PortfolioSnapshot) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- s:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives snapshots until Unsubscribe is
// called.
func (b *SnapshotBroadcaster) Subscribe() chan domain.PortfolioSnapshot {
	ch := make(chan domain.PortfolioSnapshot, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *SnapshotBroadcaster) Unsubscribe(ch chan domain.PortfolioSnapshot) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
