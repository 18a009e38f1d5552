package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aquacoord/aqua/internal/types"
)

func setupTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(context.Background(), filepath.Join(dir, "aqua.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpenAppliesSchemaAndIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aqua.db")
	ctx := context.Background()

	store1, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	require.NoError(t, store1.Close())

	store2, err := Open(ctx, path, Options{})
	require.NoError(t, err)
	defer store2.Close()

	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestConfigRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetConfig(ctx, "dead_threshold", "300"))
	v, err := store.GetConfig(ctx, "dead_threshold")
	require.NoError(t, err)
	require.Equal(t, "300", v)

	v, err = store.GetConfig(ctx, "nonexistent")
	require.NoError(t, err)
	require.Equal(t, "", v)

	all, err := store.GetAllConfig(ctx)
	require.NoError(t, err)
	require.Equal(t, "300", all["dead_threshold"])
}

func newTestTask(id, title string) *types.Task {
	now := time.Now().UTC()
	return &types.Task{
		ID:         id,
		Title:      title,
		Status:     types.TaskPending,
		Priority:   types.DefaultPriority,
		CreatedAt:  now,
		UpdatedAt:  now,
		MaxRetries: types.DefaultMaxRetries,
		Version:    1,
	}
}

// TestTaskCountsSeedsAllStatuses covers the status-breakdown aggregate
// (spec.md §12, grounded on original_source's get_task_counts): every
// known status appears even with zero rows, and counts track inserts.
func TestTaskCountsSeedsAllStatuses(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	counts, err := store.TaskCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, counts[types.TaskPending])
	require.Equal(t, 0, counts[types.TaskDone])
	require.Contains(t, counts, types.TaskAbandoned)

	require.NoError(t, store.AddTask(ctx, newTestTask("t1", "one")))
	require.NoError(t, store.AddTask(ctx, newTestTask("t2", "two")))

	counts, err = store.TaskCounts(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, counts[types.TaskPending])
	require.Equal(t, 0, counts[types.TaskClaimed])
}

// TestCompleteTaskRequiresMatchingClaimant guards the claimed_by predicate
// fix: an agent that doesn't hold the claim cannot complete or fail it,
// even when the task is in the claimed state.
func TestCompleteTaskRequiresMatchingClaimant(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	task := newTestTask("t1", "one")
	require.NoError(t, store.AddTask(ctx, task))
	_, err := store.ClaimSpecificTask(ctx, "agent-a", "t1", 1)
	require.NoError(t, err)

	err = store.CompleteTask(ctx, "t1", "agent-b", "done")
	require.Error(t, err, "agent-b never claimed t1")

	err = store.FailTask(ctx, "t1", "agent-b", "boom")
	require.Error(t, err, "agent-b never claimed t1")

	require.NoError(t, store.CompleteTask(ctx, "t1", "agent-a", "done"))
}
