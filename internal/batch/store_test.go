package batch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MimeLyc/movie-sub-pipeline/internal/chunker"
)

func testChunks() []chunker.Chunk {
	return []chunker.Chunk{
		{ID: 0, StartIndex: 1, EndIndex: 5},
		{ID: 1, StartIndex: 6, EndIndex: 10},
		{ID: 2, StartIndex: 11, EndIndex: 12},
	}
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.db")
	store, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestStore_InitializeAndSummarize(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	summary, err := store.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Pending: 3}, summary)

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, 0, all[0].ChunkID)
	assert.Equal(t, 1, all[0].StartIndex)
	assert.Equal(t, 5, all[0].EndIndex)
	assert.Equal(t, StatusPending, all[0].Status)
}

func TestStore_Transitions(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	require.NoError(t, store.MarkSent(ctx, 0))
	state, ok, err := store.Get(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusSent, state.Status)

	result := map[int]string{1: "Unu", 2: "Doi", 3: "Trei", 4: "Patru", 5: "Cinci"}
	require.NoError(t, store.MarkCompleted(ctx, 0, result))
	state, ok, err = store.Get(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, result, state.Result)
	assert.Empty(t, state.Error)

	require.NoError(t, store.MarkFailed(ctx, 1, "response missing cue index 7"))
	state, ok, err = store.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Equal(t, "response missing cue index 7", state.Error)
	assert.Nil(t, state.Result)
}

func TestStore_MarkFailedClearsResult(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	require.NoError(t, store.MarkCompleted(ctx, 2, map[int]string{11: "a", 12: "b"}))
	require.NoError(t, store.MarkFailed(ctx, 2, "manual reset"))

	state, _, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, state.Status)
	assert.Nil(t, state.Result)
}

func TestStore_TransitionUnknownChunk(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	err := store.MarkSent(ctx, 99)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not tracked")
}

func TestStore_PendingExcludesOnlyCompleted(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	require.NoError(t, store.MarkCompleted(ctx, 0, map[int]string{1: "x"}))
	require.NoError(t, store.MarkSent(ctx, 1))
	require.NoError(t, store.MarkFailed(ctx, 2, "boom"))

	pending, err := store.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	// sent and failed chunks are retried; order is by chunk id
	assert.Equal(t, 1, pending[0].ChunkID)
	assert.Equal(t, StatusSent, pending[0].Status)
	assert.Equal(t, 2, pending[1].ChunkID)
	assert.Equal(t, StatusFailed, pending[1].Status)
}

func TestStore_InitializeIsIdempotent(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	result := map[int]string{1: "a", 2: "b", 3: "c", 4: "d", 5: "e"}
	require.NoError(t, store.MarkCompleted(ctx, 0, result))

	// a second run must keep completed work untouched
	require.NoError(t, store.Initialize(ctx, testChunks()))

	state, _, err := store.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, result, state.Result)
}

func TestStore_InitializeRejectsChangedRanges(t *testing.T) {
	t.Parallel()

	store, _ := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Initialize(ctx, testChunks()))

	changed := testChunks()
	changed[1].StartIndex = 7

	err := store.Initialize(ctx, changed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cue range changed")
}

func TestStore_DurableAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "batch.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Initialize(ctx, testChunks()))
	require.NoError(t, store.MarkCompleted(ctx, 1, map[int]string{6: "q"}))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reopened.Close() })

	summary, err := reopened.Summarize(ctx)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Pending: 2, Completed: 1}, summary)

	state, ok, err := reopened.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, map[int]string{6: "q"}, state.Result)
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusCompleted.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusSent.Terminal())
	assert.False(t, StatusFailed.Terminal())
}
