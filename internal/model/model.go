// Package model defines the wire-level records shared by the platform
// backend, the dashboard sync client, and the persistence layer. All records
// serialize to the camelCase JSON the dashboard protocol uses.
package model

import (
	"encoding/json"
	"time"
)

// Envelope is one inbound message unit: a kind discriminant plus a
// kind-specific payload. Envelopes are immutable once received.
type Envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Envelope kinds understood by the dashboard.
const (
	KindInitialData    = "initial_data"
	KindMetricsUpdate  = "metrics_update"
	KindMiningProgress = "mining_progress"
	KindBlockMined     = "block_mined"
	KindDiscoveryMade  = "discovery_made"
)

// Mining operation statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusPending   = "pending"
)

// WorkTypes are the mathematical problem classes the platform mines.
var WorkTypes = []string{
	"riemann_zero",
	"prime_pattern",
	"yang_mills",
	"navier_stokes",
	"goldbach_verification",
	"birch_swinnerton_dyer",
	"elliptic_curve_crypto",
	"lattice_crypto",
	"poincare_conjecture",
}

// NetworkMetrics is a point-in-time snapshot of network-wide performance.
type NetworkMetrics struct {
	Timestamp              time.Time `json:"timestamp"`
	ActiveMiners           int       `json:"activeMiners"`
	BlocksPerHour          float64   `json:"blocksPerHour"`
	EnergyEfficiency       float64   `json:"energyEfficiency"`
	ScientificValue        float64   `json:"scientificValueGenerated"`
	AverageBlockTime       float64   `json:"averageBlockTime"`
	NetworkHashrate        float64   `json:"networkHashrate"`
	TotalKnowledgeCreated  int       `json:"totalKnowledgeCreated"`
}

// Operation is a mining operation in flight or recently finished.
type Operation struct {
	ID                  int64     `json:"id"`
	WorkType            string    `json:"operationType"`
	MinerID             string    `json:"minerId"`
	StartTime           time.Time `json:"startTime"`
	EstimatedCompletion time.Time `json:"estimatedCompletion"`
	Progress            float64   `json:"progress"`
	Difficulty          int       `json:"difficulty"`
	Status              string    `json:"status"`
}

// Block is a mined block chained to its predecessor by hash.
type Block struct {
	ID                   int64     `json:"id"`
	Index                int64     `json:"index"`
	Timestamp            time.Time `json:"timestamp"`
	PreviousHash         string    `json:"previousHash"`
	MerkleRoot           string    `json:"merkleRoot"`
	BlockHash            string    `json:"blockHash"`
	Difficulty           int       `json:"difficulty"`
	Nonce                int64     `json:"nonce"`
	TotalScientificValue float64   `json:"totalScientificValue"`
	MinerID              string    `json:"minerId"`
	EnergyConsumed       float64   `json:"energyConsumed"`
	KnowledgeCreated     int       `json:"knowledgeCreated"`
}

// Discovery is a piece of completed mathematical work with an assigned
// scientific value.
type Discovery struct {
	ID              int64     `json:"id"`
	WorkType        string    `json:"workType"`
	Difficulty      int       `json:"difficulty"`
	ScientificValue float64   `json:"scientificValue"`
	Timestamp       time.Time `json:"timestamp"`
	WorkerID        string    `json:"workerId"`
}

// InitialData is the payload of an initial_data envelope. Nil fields were
// absent on the wire; an empty non-nil slice was an explicit empty list.
type InitialData struct {
	Metrics    *NetworkMetrics `json:"metrics,omitempty"`
	Operations []Operation     `json:"operations,omitempty"`
	Blocks     []Block         `json:"blocks,omitempty"`
}

// BlockMined is the payload of a block_mined envelope. A block may carry the
// discoveries that funded it.
type BlockMined struct {
	Block       Block       `json:"block"`
	Discoveries []Discovery `json:"discoveries,omitempty"`
}

// DiscoveryMade is the payload of a discovery_made envelope.
type DiscoveryMade struct {
	Discovery Discovery `json:"discovery"`
}

// NewEnvelope marshals a payload into an envelope of the given kind.
func NewEnvelope(kind string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Kind: kind, Data: data}, nil
}
