package snapshots

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

func TestJournalRoundTrip(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	for _, balance := range []float64{1, 2, 3} {
		require.NoError(t, store.Save(domain.NewBalanceSnapshot(balance)))
	}

	records, err := store.SnapshotsAfter(0)
	require.NoError(t, err)
	require.Len(t, records, 3)

	for i, record := range records {
		require.Equal(t, float64(i+1), record.Snapshot.Balance)
		if i > 0 {
			require.Greater(t, record.Index, records[i-1].Index)
		}
	}
}

func TestSnapshotsAfterCurrentIndexIsEmpty(t *testing.T) {
	store, err := NewWALStore(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(domain.NewBalanceSnapshot(10)))

	records, err := store.SnapshotsAfter(store.CurrentIndex())
	require.NoError(t, err)
	require.Empty(t, records)
}
