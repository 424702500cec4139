package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "balance_history.json"))
	require.NoError(t, err)

	return store
}

func TestLoadMissingFile(t *testing.T) {
	store := newTestStore(t)

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, snapshots)
}

func TestLoadMalformedFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("{not json"), 0o644))

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, snapshots)
}

func TestAppendRoundTrip(t *testing.T) {
	store := newTestStore(t)

	snapshot, err := store.Append(42.5)
	require.NoError(t, err)
	require.Equal(t, 42.5, snapshot.Balance)
	require.NotEmpty(t, snapshot.Timestamp)

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, snapshot, snapshots[0])
}

func TestLoadIdempotent(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Append(1)
	require.NoError(t, err)
	_, err = store.Append(2)
	require.NoError(t, err)

	first, err := store.Load()
	require.NoError(t, err)
	second, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestAppendTrimsToCap(t *testing.T) {
	store := newTestStore(t)

	total := maxLen + 10
	for i := 0; i < total; i++ {
		_, err := store.Append(float64(i))
		require.NoError(t, err)
	}

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, maxLen)

	// the oldest entries are dropped, order of the survivors is preserved
	require.Equal(t, float64(total-maxLen), snapshots[0].Balance)
	require.Equal(t, float64(total-1), snapshots[maxLen-1].Balance)
}

func TestAppendDropsOldestWhenFull(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < maxLen; i++ {
		_, err := store.Append(float64(i))
		require.NoError(t, err)
	}

	_, err := store.Append(42.0)
	require.NoError(t, err)

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, maxLen)
	require.Equal(t, 1.0, snapshots[0].Balance, "oldest original element is removed")
	require.Equal(t, 42.0, snapshots[maxLen-1].Balance)
}

func TestAppendRepairsMalformedFile(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.path, []byte("garbage"), 0o644))

	_, err := store.Append(7)
	require.NoError(t, err)

	snapshots, err := store.Load()
	require.NoError(t, err)
	require.Len(t, snapshots, 1)
	require.Equal(t, 7.0, snapshots[0].Balance)
}
