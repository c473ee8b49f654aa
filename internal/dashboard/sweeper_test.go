package dashboard

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

func startTestSweeper(t *testing.T, store *Store, clk clock.Clock) {
	t.Helper()
	sw := NewSweeper(SweeperConfig{}, store, clk, zap.NewNop())
	sw.Start()
	t.Cleanup(sw.Stop)
	// Let the sweep goroutine register its tickers before the clock moves.
	time.Sleep(10 * time.Millisecond)
}

func TestFastSweepEvictsStaleCompleted(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(DefaultCaps())

	store.UpsertOperation(op(1, model.StatusCompleted, clk.Now().Add(-10*time.Minute)))
	store.UpsertOperation(op(2, model.StatusCompleted, clk.Now().Add(-30*time.Second)))
	store.UpsertOperation(op(3, model.StatusActive, clk.Now().Add(-3*time.Hour)))

	startTestSweeper(t, store, clk)
	clk.Add(time.Minute)

	require.Eventually(t, func() bool {
		return len(store.Snapshot().Operations) == 2
	}, 2*time.Second, 10*time.Millisecond)

	snap := store.Snapshot()
	for _, o := range snap.Operations {
		assert.NotEqual(t, int64(1), o.ID, "stale completed operation must be gone")
	}
}

func TestFastSweepNeverTouchesActive(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(DefaultCaps())

	for i := int64(1); i <= 5; i++ {
		store.UpsertOperation(op(i, model.StatusActive, clk.Now().Add(-24*time.Hour)))
	}

	startTestSweeper(t, store, clk)
	clk.Add(10 * time.Minute)
	time.Sleep(50 * time.Millisecond)

	assert.Len(t, store.Snapshot().Operations, 5)
}

func TestSlowSweepEnforcesCeilings(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(DefaultCaps())

	// Bulk payload past every arrival cap; active so the fast sweep leaves
	// them alone.
	ops := make([]model.Operation, 30)
	blocks := make([]model.Block, 30)
	for i := range ops {
		ops[i] = op(int64(i), model.StatusActive, clk.Now())
		blocks[i] = blk(int64(i))
	}
	store.ApplyInitial(model.InitialData{Operations: ops, Blocks: blocks})

	startTestSweeper(t, store, clk)
	clk.Add(5 * time.Minute)

	require.Eventually(t, func() bool {
		snap := store.Snapshot()
		return len(snap.Operations) <= 10 && len(snap.Blocks) <= 15 && len(snap.Discoveries) <= 20
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStopCancelsTimers(t *testing.T) {
	clk := clock.NewMock()
	store := NewStore(DefaultCaps())
	store.UpsertOperation(op(1, model.StatusCompleted, clk.Now().Add(-time.Hour)))

	sw := NewSweeper(SweeperConfig{}, store, clk, zap.NewNop())
	sw.Start()
	time.Sleep(10 * time.Millisecond)
	sw.Stop()

	clk.Add(time.Hour)
	time.Sleep(50 * time.Millisecond)

	// No sweep ran after Stop.
	assert.Len(t, store.Snapshot().Operations, 1)
}
