package domain

import "time"

// PortfolioSnapshot captures portfolio value at an instant for charting.
// String fields avoid float precision issues when consumed by web/UI layers.
type PortfolioSnapshot struct {
	Timestamp      time.Time `json:"ts"`
	TotalValue     string    `json:"total_value"`
	Cash           string    `json:"cash"`
	PositionsValue string    `json:"positions_value"`
}

// PortfolioSnapshotRecord bundles a snapshot with its log index.
type PortfolioSnapshotRecord struct {
	Index    uint64
	Snapshot PortfolioSnapshot
}
