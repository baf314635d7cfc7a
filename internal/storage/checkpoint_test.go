package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCheckpoints(t *testing.T) (*SQLiteStorage, *CheckpointManager) {
	t.Helper()
	store, cleanup := createTestStorage(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	require.NoError(t, store.CreateTransaction(ctx, newExpense("t1", "Groceries", "10.50", day(2025, 1, 1))))
	require.NoError(t, store.CreateTransaction(ctx, newExpense("t2", "Dining", "25", day(2025, 1, 2))))

	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)
	return store, manager
}

func TestCheckpointManager_Create(t *testing.T) {
	_, manager := setupCheckpoints(t)
	ctx := context.Background()

	info, err := manager.Create(ctx, "before-import", "Before OFX import")
	require.NoError(t, err)
	assert.Equal(t, "before-import", info.ID)
	assert.Equal(t, "Before OFX import", info.Description)
	assert.Equal(t, 2, info.Transactions)
	assert.Equal(t, ExpectedSchemaVersion, info.SchemaVersion)
	assert.Positive(t, info.FileSize)
	assert.False(t, info.IsAuto)

	assert.FileExists(t, filepath.Join(manager.checkpointsDir, "before-import.db"))
	assert.FileExists(t, filepath.Join(manager.checkpointsDir, "before-import.meta.json"))

	_, err = manager.Create(ctx, "before-import", "")
	assert.ErrorIs(t, err, ErrCheckpointExists)

	for _, bad := range []string{"../escape", "a/b", `a\b`} {
		_, err := manager.Create(ctx, bad, "")
		assert.ErrorIs(t, err, ErrInvalidCheckpointID, bad)
	}

	generated, err := manager.Create(ctx, "", "")
	require.NoError(t, err)
	assert.Contains(t, generated.ID, "checkpoint-")
}

func TestCheckpointManager_ListAndInfo(t *testing.T) {
	_, manager := setupCheckpoints(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "first", "")
	require.NoError(t, err)
	_, err = manager.Create(ctx, "second", "")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(manager.checkpointsDir, "junk.meta.json"), []byte("{"), 0600))

	list, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID)

	info, err := manager.Info(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "first", info.ID)

	_, err = manager.Info(ctx, "missing")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestCheckpointManager_Restore(t *testing.T) {
	store, manager := setupCheckpoints(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "safe", "")
	require.NoError(t, err)
	require.NoError(t, store.DeleteTransaction(ctx, "t1"))

	require.NoError(t, manager.Restore(ctx, "safe"))

	reopened, err := NewSQLiteStorage(store.Path())
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	txns, err := reopened.GetTransactions(ctx, allTransactions())
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	assert.ErrorIs(t, manager.Restore(ctx, "missing"), ErrCheckpointNotFound)
}

func TestCheckpointManager_RestoreRejectsCorrupted(t *testing.T) {
	_, manager := setupCheckpoints(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "broken", "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(manager.checkpointsDir, "broken.db"), []byte("not a database"), 0600))

	assert.ErrorIs(t, manager.Restore(ctx, "broken"), ErrCheckpointCorrupted)
}

func TestCheckpointManager_Delete(t *testing.T) {
	_, manager := setupCheckpoints(t)
	ctx := context.Background()

	_, err := manager.Create(ctx, "gone", "")
	require.NoError(t, err)
	require.NoError(t, manager.Delete(ctx, "gone"))

	assert.NoFileExists(t, filepath.Join(manager.checkpointsDir, "gone.db"))
	assert.ErrorIs(t, manager.Delete(ctx, "gone"), ErrCheckpointNotFound)

	var n int
	require.NoError(t, manager.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM checkpoint_metadata WHERE id = 'gone'`).Scan(&n))
	assert.Zero(t, n)
}

func TestCheckpointManager_AutoCheckpointPrunes(t *testing.T) {
	_, manager := setupCheckpoints(t)
	ctx := context.Background()

	for i := 0; i < maxAutoCheckpoints+2; i++ {
		_, err := manager.create(ctx, "auto-close-"+string(rune('a'+i)), "", true)
		require.NoError(t, err)
	}
	info, err := manager.AutoCheckpoint(ctx, "close")
	require.NoError(t, err)
	assert.True(t, info.IsAuto)

	list, err := manager.List(ctx)
	require.NoError(t, err)
	auto := 0
	for _, cp := range list {
		if cp.IsAuto {
			auto++
		}
	}
	assert.Equal(t, maxAutoCheckpoints, auto)
	assert.Equal(t, info.ID, list[0].ID, "newest auto-checkpoint survives")
}

func TestNewCheckpointManager_RequiresFile(t *testing.T) {
	_, err := NewCheckpointManager(nil, ":memory:")
	assert.Error(t, err)
}
