package platform

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/db"
	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

var operationsStarted = promauto.NewCounter(prometheus.CounterOpts{
	Name: "miningd_operations_started_total",
	Help: "Mining operations started, autonomous and requested.",
})

// ManagerConfig tunes the autonomous mining pool.
type ManagerConfig struct {
	Miners          int
	MinDifficulty   int
	MaxDifficulty   int
	MinRestInterval time.Duration
	MaxRestInterval time.Duration
	MetricsInterval time.Duration
}

// Manager runs the autonomous miners, prices their output, persists blocks
// and discoveries, and pushes live envelopes through the hub.
type Manager struct {
	cfg    ManagerConfig
	hub    *Hub
	engine *Engine
	clk    clock.Clock
	log    *zap.Logger
	wg     sync.WaitGroup
}

// NewManager wires the mining pool. The clock is injected so tests can
// drive the miners with a mock.
func NewManager(cfg ManagerConfig, hub *Hub, engine *Engine, clk clock.Clock, log *zap.Logger) *Manager {
	if cfg.Miners <= 0 {
		cfg.Miners = 8
	}
	if cfg.MinDifficulty <= 0 {
		cfg.MinDifficulty = 40
	}
	if cfg.MaxDifficulty < cfg.MinDifficulty {
		cfg.MaxDifficulty = cfg.MinDifficulty + 40
	}
	if cfg.MinRestInterval <= 0 {
		cfg.MinRestInterval = 15 * time.Second
	}
	if cfg.MaxRestInterval < cfg.MinRestInterval {
		cfg.MaxRestInterval = cfg.MinRestInterval * 3
	}
	if cfg.MetricsInterval <= 0 {
		cfg.MetricsInterval = 30 * time.Second
	}
	return &Manager{
		cfg:    cfg,
		hub:    hub,
		engine: engine,
		clk:    clk,
		log:    log.Named("mining"),
	}
}

// Run starts the miner pool and the metrics collector, and blocks until ctx
// is cancelled and every in-flight operation has drained.
func (m *Manager) Run(ctx context.Context) {
	m.log.Info("starting autonomous miners", zap.Int("miners", m.cfg.Miners))

	for i := 0; i < m.cfg.Miners; i++ {
		minerID := fmt.Sprintf("miner_%s", uuid.NewString()[:8])
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.runMiner(ctx, minerID)
		}()
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.collectMetrics(ctx)
	}()

	<-ctx.Done()
	m.wg.Wait()
	m.log.Info("miners stopped")
}

func (m *Manager) runMiner(ctx context.Context, minerID string) {
	for {
		difficulty := m.cfg.MinDifficulty + m.engine.Intn(m.cfg.MaxDifficulty-m.cfg.MinDifficulty+1)
		workType := model.WorkTypes[m.engine.Intn(len(model.WorkTypes))]

		if _, err := m.StartOperation(ctx, workType, difficulty, minerID); err != nil {
			m.log.Error("start operation", zap.String("miner", minerID), zap.Error(err))
		}

		restRange := int(m.cfg.MaxRestInterval - m.cfg.MinRestInterval)
		rest := m.cfg.MinRestInterval
		if restRange > 0 {
			rest += time.Duration(m.engine.Intn(restRange))
		}
		if !m.sleep(ctx, rest) {
			return
		}
	}
}

// StartOperation records a new mining operation and executes it in the
// background. Used by the autonomous miners and the REST start endpoint.
func (m *Manager) StartOperation(ctx context.Context, workType string, difficulty int, minerID string) (*model.Operation, error) {
	now := m.clk.Now().UTC()
	op := &model.Operation{
		WorkType:            workType,
		MinerID:             minerID,
		StartTime:           now,
		EstimatedCompletion: now.Add(time.Duration(difficulty) * 2 * time.Second),
		Progress:            0,
		Difficulty:          difficulty,
		Status:              model.StatusActive,
	}
	if err := db.InsertOperation(op); err != nil {
		return nil, fmt.Errorf("insert operation: %w", err)
	}
	operationsStarted.Inc()
	m.hub.Broadcast(model.KindMiningProgress, op)
	m.log.Info("operation started",
		zap.Int64("id", op.ID),
		zap.String("workType", workType),
		zap.Int("difficulty", difficulty))

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.execute(ctx, *op)
	}()
	return op, nil
}

// execute walks one operation through computing and validating to a mined
// block with its discovery.
func (m *Manager) execute(ctx context.Context, op model.Operation) {
	result := m.engine.Compute(op.WorkType, op.Difficulty)
	total := time.Duration(result.ComputationTime * float64(time.Second))

	if !m.sleep(ctx, total/10) {
		return
	}
	m.advance(&op, 0.1, model.StatusActive)

	if !m.sleep(ctx, total-total/10) {
		return
	}
	m.advance(&op, 0.8, model.StatusActive)

	valuation := Appraise(result)
	discovery := &model.Discovery{
		WorkType:        op.WorkType,
		Difficulty:      op.Difficulty,
		ScientificValue: valuation.TotalValue,
		Timestamp:       m.clk.Now().UTC(),
		WorkerID:        op.MinerID,
	}
	if err := db.InsertDiscovery(discovery); err != nil {
		m.log.Error("insert discovery", zap.Error(err))
		m.advance(&op, 1.0, model.StatusFailed)
		return
	}

	block, err := m.chainBlock(discovery, result)
	if err != nil {
		m.log.Error("chain block", zap.Error(err))
		m.advance(&op, 1.0, model.StatusFailed)
		return
	}

	m.advance(&op, 1.0, model.StatusCompleted)
	m.hub.Broadcast(model.KindBlockMined, model.BlockMined{
		Block:       *block,
		Discoveries: []model.Discovery{*discovery},
	})
	m.hub.Broadcast(model.KindDiscoveryMade, model.DiscoveryMade{Discovery: *discovery})

	m.log.Info("operation completed",
		zap.Int64("id", op.ID),
		zap.Int64("block", block.Index),
		zap.Float64("value", valuation.TotalValue))
}

// advance persists and broadcasts an operation state change.
func (m *Manager) advance(op *model.Operation, progress float64, status string) {
	op.Progress = progress
	op.Status = status
	if err := db.UpdateOperation(op.ID, progress, status); err != nil {
		m.log.Error("update operation", zap.Int64("id", op.ID), zap.Error(err))
	}
	m.hub.Broadcast(model.KindMiningProgress, op)
}

// chainBlock appends a block carrying the discovery to the chain tip.
func (m *Manager) chainBlock(d *model.Discovery, result WorkResult) (*model.Block, error) {
	tip, err := db.LatestBlock()
	if err != nil {
		return nil, fmt.Errorf("latest block: %w", err)
	}

	prevHash := "0000000000000000000000000000000000000000000000000000000000000000"
	var index int64
	if tip != nil {
		prevHash = tip.BlockHash
		index = tip.Index + 1
	}

	block := &model.Block{
		Index:                index,
		Timestamp:            m.clk.Now().UTC(),
		PreviousHash:         prevHash,
		MerkleRoot:           fmt.Sprintf("discovery_%d", d.ID),
		Difficulty:           d.Difficulty,
		Nonce:                int64(m.engine.Intn(1 << 30)),
		TotalScientificValue: d.ScientificValue,
		MinerID:              d.WorkerID,
		EnergyConsumed:       result.EnergyConsumed,
		KnowledgeCreated:     1,
	}
	block.BlockHash = hashBlock(block)

	if err := db.InsertBlock(block); err != nil {
		return nil, fmt.Errorf("insert block: %w", err)
	}
	return block, nil
}

func hashBlock(b *model.Block) string {
	h := sha256.Sum256([]byte(fmt.Sprintf("%d|%s|%s|%d|%d",
		b.Index, b.PreviousHash, b.MerkleRoot, b.Nonce, b.Timestamp.UnixMilli())))
	return hex.EncodeToString(h[:])
}

// collectMetrics samples network-wide metrics on a fixed cadence, persists
// each sample and broadcasts it.
func (m *Manager) collectMetrics(ctx context.Context) {
	ticker := m.clk.Ticker(m.cfg.MetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.sampleMetrics(); err != nil {
				m.log.Error("collect metrics", zap.Error(err))
			}
		}
	}
}

func (m *Manager) sampleMetrics() error {
	now := m.clk.Now().UTC()

	active, err := db.ListActiveOperations()
	if err != nil {
		return err
	}
	blocksLastHour, err := db.CountBlocksSince(now.Add(-time.Hour))
	if err != nil {
		return err
	}
	recentEnergy, err := db.SumEnergyRecentBlocks(10)
	if err != nil {
		return err
	}
	valueLastHour, err := db.SumScientificValueSince(now.Add(-time.Hour))
	if err != nil {
		return err
	}
	totalDifficulty, err := db.SumActiveDifficulty()
	if err != nil {
		return err
	}
	knowledge, err := db.CountDiscoveries()
	if err != nil {
		return err
	}

	avgBlockTime := 0.0
	if blocksLastHour > 0 {
		avgBlockTime = 3600 / float64(blocksLastHour)
	}

	metrics := model.NetworkMetrics{
		Timestamp:             now,
		ActiveMiners:          len(active) + m.cfg.Miners,
		BlocksPerHour:         float64(blocksLastHour),
		EnergyEfficiency:      -recentEnergy * 100,
		ScientificValue:       valueLastHour,
		AverageBlockTime:      avgBlockTime,
		NetworkHashrate:       float64(totalDifficulty) * 1000,
		TotalKnowledgeCreated: knowledge,
	}
	if err := db.InsertMetrics(metrics); err != nil {
		return err
	}
	m.hub.Broadcast(model.KindMetricsUpdate, metrics)
	return nil
}

func (m *Manager) sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := m.clk.Timer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
