package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

func op(id int64, status string, start time.Time) model.Operation {
	return model.Operation{
		ID:        id,
		WorkType:  "riemann_zero",
		MinerID:   fmt.Sprintf("miner_%d", id),
		StartTime: start,
		Status:    status,
	}
}

func blk(id int64) model.Block {
	return model.Block{ID: id, Index: id, BlockHash: fmt.Sprintf("hash_%d", id)}
}

func disc(id int64) model.Discovery {
	return model.Discovery{ID: id, WorkType: "prime_pattern", ScientificValue: 1200}
}

func TestUpsertOperationCapAndUniqueness(t *testing.T) {
	s := NewStore(DefaultCaps())
	now := time.Now()

	// Far more operations than the cap, with some repeated IDs.
	for i := 0; i < 50; i++ {
		s.UpsertOperation(op(int64(i%20), model.StatusActive, now))
	}

	snap := s.Snapshot()
	assert.LessOrEqual(t, len(snap.Operations), 10)

	seen := map[int64]bool{}
	for _, o := range snap.Operations {
		assert.False(t, seen[o.ID], "duplicate operation id %d", o.ID)
		seen[o.ID] = true
	}
}

func TestUpsertOperationReplacesInPlace(t *testing.T) {
	s := NewStore(DefaultCaps())
	now := time.Now()

	first := op(7, model.StatusActive, now)
	first.Progress = 0.1
	s.UpsertOperation(first)

	second := op(7, model.StatusActive, now)
	second.Progress = 0.8
	s.UpsertOperation(second)

	snap := s.Snapshot()
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, int64(7), snap.Operations[0].ID)
	assert.Equal(t, 0.8, snap.Operations[0].Progress)
}

func TestDiscoveriesKeepTenMostRecent(t *testing.T) {
	s := NewStore(DefaultCaps())

	for i := int64(1); i <= 14; i++ {
		s.AddDiscovery(disc(i))
	}

	snap := s.Snapshot()
	require.Len(t, snap.Discoveries, 10)
	// Most recent first.
	for i, d := range snap.Discoveries {
		assert.Equal(t, int64(14-i), d.ID)
	}
}

func TestBlocksKeepTenMostRecentInArrivalOrder(t *testing.T) {
	s := NewStore(DefaultCaps())

	for i := int64(1); i <= 12; i++ {
		s.AddBlock(blk(i), nil)
	}

	snap := s.Snapshot()
	require.Len(t, snap.Blocks, 10)
	for i, b := range snap.Blocks {
		assert.Equal(t, int64(12-i), b.ID)
	}
}

func TestBundledDiscoveriesCapped(t *testing.T) {
	s := NewStore(DefaultCaps())

	for i := int64(1); i <= 8; i++ {
		s.AddDiscovery(disc(i))
	}
	bundle := []model.Discovery{disc(100), disc(101), disc(102), disc(103)}
	s.AddBlock(blk(1), bundle)

	snap := s.Snapshot()
	require.Len(t, snap.Discoveries, 10)
	// Bundle lands in front, prior entries pushed back and truncated.
	assert.Equal(t, int64(100), snap.Discoveries[0].ID)
	assert.Equal(t, int64(103), snap.Discoveries[3].ID)
	assert.Equal(t, int64(8), snap.Discoveries[4].ID)
}

func TestApplyInitialRoundTrip(t *testing.T) {
	s := NewStore(DefaultCaps())
	now := time.Now().UTC().Truncate(time.Second)

	metrics := model.NetworkMetrics{Timestamp: now, ActiveMiners: 9, BlocksPerHour: 8}
	ops := []model.Operation{
		op(1, model.StatusActive, now), op(2, model.StatusActive, now),
		op(3, model.StatusActive, now), op(4, model.StatusActive, now),
		op(5, model.StatusCompleted, now),
	}
	blocks := []model.Block{blk(1), blk(2), blk(3)}

	s.ApplyInitial(model.InitialData{Metrics: &metrics, Operations: ops, Blocks: blocks})

	snap := s.Snapshot()
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, metrics, *snap.Metrics)
	assert.Equal(t, ops, snap.Operations)
	assert.Equal(t, blocks, snap.Blocks)
	assert.True(t, s.HasInitialData())
}

func TestApplyInitialAbsentFieldsUntouched(t *testing.T) {
	s := NewStore(DefaultCaps())
	s.AddBlock(blk(1), nil)
	s.ReplaceMetrics(model.NetworkMetrics{ActiveMiners: 3})

	// Only operations present: blocks and metrics must survive.
	s.ApplyInitial(model.InitialData{Operations: []model.Operation{op(1, model.StatusActive, time.Now())}})

	snap := s.Snapshot()
	require.Len(t, snap.Blocks, 1)
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, 3, snap.Metrics.ActiveMiners)
	require.Len(t, snap.Operations, 1)
}

func TestReplaceMetricsWholesale(t *testing.T) {
	s := NewStore(DefaultCaps())
	s.ReplaceMetrics(model.NetworkMetrics{ActiveMiners: 3, BlocksPerHour: 8})
	s.ReplaceMetrics(model.NetworkMetrics{ActiveMiners: 5})

	snap := s.Snapshot()
	require.NotNil(t, snap.Metrics)
	assert.Equal(t, 5, snap.Metrics.ActiveMiners)
	// Wholesale replacement: fields absent from the new snapshot are zero,
	// never carried over from the previous one.
	assert.Zero(t, snap.Metrics.BlocksPerHour)
}

func TestSweepCompletedDropsOnlyStaleCompleted(t *testing.T) {
	s := NewStore(DefaultCaps())
	now := time.Now()

	s.UpsertOperation(op(1, model.StatusCompleted, now.Add(-10*time.Minute))) // stale completed
	s.UpsertOperation(op(2, model.StatusCompleted, now.Add(-1*time.Minute)))  // recent completed
	s.UpsertOperation(op(3, model.StatusActive, now.Add(-2*time.Hour)))       // ancient but active

	s.SweepCompleted(now, 5*time.Minute)

	snap := s.Snapshot()
	require.Len(t, snap.Operations, 2)
	ids := []int64{snap.Operations[0].ID, snap.Operations[1].ID}
	assert.Contains(t, ids, int64(2))
	assert.Contains(t, ids, int64(3))
}

func TestEnforceCeilingsCatchesBulkPayloads(t *testing.T) {
	s := NewStore(DefaultCaps())

	// initial_data replaces wholesale and can exceed the arrival caps.
	ops := make([]model.Operation, 25)
	blocks := make([]model.Block, 25)
	for i := range ops {
		ops[i] = op(int64(i), model.StatusActive, time.Now())
		blocks[i] = blk(int64(i))
	}
	s.ApplyInitial(model.InitialData{Operations: ops, Blocks: blocks})
	for i := int64(0); i < 35; i++ {
		s.AddDiscovery(disc(i))
	}

	s.EnforceCeilings()

	snap := s.Snapshot()
	assert.LessOrEqual(t, len(snap.Operations), 10)
	assert.LessOrEqual(t, len(snap.Blocks), 15)
	assert.LessOrEqual(t, len(snap.Discoveries), 20)
}

func TestSnapshotIsDefensiveCopy(t *testing.T) {
	s := NewStore(DefaultCaps())
	s.AddBlock(blk(1), nil)

	snap := s.Snapshot()
	snap.Blocks[0].BlockHash = "tampered"
	snap.Metrics = &model.NetworkMetrics{ActiveMiners: 99}

	again := s.Snapshot()
	assert.Equal(t, "hash_1", again.Blocks[0].BlockHash)
	assert.Nil(t, again.Metrics)
}
