package snapshots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/papertrade/internal/domain"
)

func newTestStore(t *testing.T) *WALStore {
	t.Helper()
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSnapshot(total string) domain.PortfolioSnapshot {
	return domain.PortfolioSnapshot{
		Timestamp:      time.Now().UTC(),
		TotalValue:     total,
		Cash:           total,
		PositionsValue: "0",
	}
}

func TestWALStore_SaveAndReadBack(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testSnapshot("100000")))
	require.NoError(t, store.Save(testSnapshot("100250")))
	require.NoError(t, store.Save(testSnapshot("99800")))

	records, err := store.SnapshotsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "100000", records[0].Snapshot.TotalValue)
	assert.Equal(t, "100250", records[1].Snapshot.TotalValue)
	assert.Equal(t, "99800", records[2].Snapshot.TotalValue)

	// indexes are strictly increasing and match CurrentIndex at the tail
	assert.Less(t, records[0].Index, records[1].Index)
	assert.Less(t, records[1].Index, records[2].Index)
	assert.Equal(t, store.CurrentIndex(), records[2].Index)
}

func TestWALStore_SnapshotsAfterSkipsConsumedIndexes(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Save(testSnapshot("1")))
	require.NoError(t, store.Save(testSnapshot("2")))

	records, err := store.SnapshotsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	tail, err := store.SnapshotsAfter(records[0].Index)
	require.NoError(t, err)
	require.Len(t, tail, 1)
	assert.Equal(t, "2", tail[0].Snapshot.TotalValue)

	empty, err := store.SnapshotsAfter(records[1].Index)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
