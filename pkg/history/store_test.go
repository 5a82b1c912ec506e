package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id, err := store.StartRun(ctx)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	require.NoError(t, store.FinishRun(ctx, id, 17, 9, 2))

	runs, err := store.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, 17, runs[0].Queries)
	assert.Equal(t, 9, runs[0].Downloaded)
	assert.Equal(t, 2, runs[0].Failed)
	assert.False(t, runs[0].FinishedAt.IsZero())
}

func TestFinishUnknownRun(t *testing.T) {
	store := openTestStore(t)
	assert.Error(t, store.FinishRun(context.Background(), "missing", 0, 0, 0))
}

func TestRecordAndListDownloads(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	id, err := store.StartRun(ctx)
	require.NoError(t, err)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, name := range []string{"a.ogg", "b.ogg", "c.ogg"} {
		require.NoError(t, store.RecordDownload(ctx, Download{
			RunID:        id,
			Category:     "ambiance",
			Query:        "forest ambiance",
			URL:          "https://opengameart.org/sites/default/files/" + name,
			Path:         "audio/ambiance/" + name,
			Size:         int64(100 + i),
			SHA256:       "sum-" + name,
			DownloadedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := store.RecentDownloads(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "audio/ambiance/c.ogg", recent[0].Path)
	assert.Equal(t, "audio/ambiance/b.ogg", recent[1].Path)
	assert.Equal(t, int64(102), recent[0].Size)
	assert.True(t, recent[0].DownloadedAt.Equal(base.Add(2*time.Minute)))

	found, err := store.HasChecksum(ctx, "sum-a.ogg")
	require.NoError(t, err)
	assert.True(t, found)

	found, err = store.HasChecksum(ctx, "sum-z.ogg")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestOpenFileDatabasePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	id, err := store.StartRun(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.Runs(ctx, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.True(t, runs[0].FinishedAt.IsZero())
}
