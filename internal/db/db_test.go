package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, Open(filepath.Join(dir, "test.db")))
	t.Cleanup(Close)
}

func TestOpenIsIdempotent(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, Open("ignored-while-open"))
}

func TestBlockRoundTrip(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC().Truncate(time.Millisecond)

	b := &model.Block{
		Index:                0,
		Timestamp:            now,
		PreviousHash:         "0000000000000000000000000000000000000000000000000000000000000000",
		MerkleRoot:           "discovery_1",
		BlockHash:            "abc123",
		Difficulty:           50,
		Nonce:                42,
		TotalScientificValue: 1850.5,
		MinerID:              "miner_1",
		EnergyConsumed:       0.08,
		KnowledgeCreated:     1,
	}
	require.NoError(t, InsertBlock(b))
	require.NotZero(t, b.ID)

	got, err := GetBlock(b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestLatestBlockEmptyChain(t *testing.T) {
	setupTestDB(t)
	tip, err := LatestBlock()
	require.NoError(t, err)
	assert.Nil(t, tip)
}

func TestListBlocksNewestFirst(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, InsertBlock(&model.Block{
			Index: i, Timestamp: now, PreviousHash: "p", MerkleRoot: "m",
			BlockHash: "h", MinerID: "miner_1",
		}))
	}

	blocks, err := ListBlocks(3)
	require.NoError(t, err)
	require.Len(t, blocks, 3)
	assert.Equal(t, int64(4), blocks[0].Index)
	assert.Equal(t, int64(2), blocks[2].Index)

	tip, err := LatestBlock()
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.Equal(t, int64(4), tip.Index)
}

func TestDiscoveryAccounting(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, InsertDiscovery(&model.Discovery{
			WorkType: "yang_mills", Difficulty: 60, ScientificValue: 1500,
			Timestamp: now, WorkerID: "miner_1",
		}))
	}
	require.NoError(t, InsertDiscovery(&model.Discovery{
		WorkType: "prime_pattern", Difficulty: 40, ScientificValue: 1200,
		Timestamp: now.Add(-2 * time.Hour), WorkerID: "miner_2",
	}))

	n, err := CountDiscoveries()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	sum, err := SumScientificValueSince(now.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 4500.0, sum)
}

func TestOperationLifecycle(t *testing.T) {
	setupTestDB(t)
	now := time.Now().UTC()

	op := &model.Operation{
		WorkType: "riemann_zero", MinerID: "miner_1",
		StartTime: now, EstimatedCompletion: now.Add(100 * time.Second),
		Difficulty: 50, Status: model.StatusActive,
	}
	require.NoError(t, InsertOperation(op))
	require.NotZero(t, op.ID)

	active, err := ListActiveOperations()
	require.NoError(t, err)
	require.Len(t, active, 1)

	require.NoError(t, UpdateOperation(op.ID, 1.0, model.StatusCompleted))

	active, err = ListActiveOperations()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestMetricsLatest(t *testing.T) {
	setupTestDB(t)

	latest, err := LatestMetrics()
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, InsertMetrics(model.NetworkMetrics{
		Timestamp: time.Now().UTC(), ActiveMiners: 8, BlocksPerHour: 6,
	}))
	require.NoError(t, InsertMetrics(model.NetworkMetrics{
		Timestamp: time.Now().UTC(), ActiveMiners: 9, BlocksPerHour: 7,
	}))

	latest, err = LatestMetrics()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 9, latest.ActiveMiners)
}
