package index

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestPendingLifecycle(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	_, ok, err := l.Pending(ctx, "task-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l.RecordPending(ctx, "task-1", "ev-1"))
	require.NoError(t, l.RecordPending(ctx, "task-1", "ev-2"))

	eventID, ok, err := l.Pending(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ev-2", eventID)

	require.NoError(t, l.Confirm(ctx, "task-1"))
	_, ok, err = l.Pending(ctx, "task-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Confirming an unknown task is a no-op.
	assert.NoError(t, l.Confirm(ctx, "task-404"))
}

func TestLedgerPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.RecordPending(ctx, "task-1", "ev-1"))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()

	eventID, ok, err := l.Pending(ctx, "task-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ev-1", eventID)
}

func TestRunHistory(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, l.RecordRun(ctx, Run{Kind: "sync", RunID: "r1", StartedAt: start, FinishedAt: start.Add(time.Second), Summary: "created=1"}))
	require.NoError(t, l.RecordRun(ctx, Run{Kind: "notify", RunID: "r2", StartedAt: start, FinishedAt: start}))
	require.NoError(t, l.RecordRun(ctx, Run{Kind: "sync", RunID: "r3", StartedAt: start, FinishedAt: start, Error: "boom"}))

	runs, err := l.LastRuns(ctx, "sync", 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].RunID)
	assert.Equal(t, "boom", runs[0].Error)
	assert.Equal(t, "r1", runs[1].RunID)
	assert.Equal(t, "created=1", runs[1].Summary)
	assert.True(t, runs[1].StartedAt.Equal(start))
}
