// Package platform implements the simulated productive-mining backend: a
// pool of autonomous miners computing mathematical work, a valuation engine
// pricing the results, a websocket hub broadcasting live updates, and the
// HTTP API the dashboard reads from.
package platform

import (
	"fmt"
	"math/rand"
	"sync"
)

// WorkResult is the outcome of one simulated computation.
type WorkResult struct {
	WorkType        string
	Difficulty      int
	ComputationTime float64 // seconds
	EnergyConsumed  float64 // kWh
	Summary         string
	Verified        bool
}

// energyRates gives each work type its energy draw in kWh per compute
// second.
var energyRates = map[string]float64{
	"riemann_zero":           0.05,
	"prime_pattern":          0.06,
	"yang_mills":             0.08,
	"navier_stokes":          0.07,
	"goldbach_verification":  0.04,
	"birch_swinnerton_dyer":  0.06,
	"elliptic_curve_crypto":  0.05,
	"lattice_crypto":         0.06,
	"poincare_conjecture":    0.07,
}

// Engine produces simulated mathematical work. It is a computation stub:
// results are randomized within plausible ranges, with cost scaling on
// difficulty.
type Engine struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewEngine creates an engine seeded from seed.
func NewEngine(seed int64) *Engine {
	return &Engine{rng: rand.New(rand.NewSource(seed))}
}

// Compute runs one unit of simulated work.
func (e *Engine) Compute(workType string, difficulty int) WorkResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	rate, ok := energyRates[workType]
	if !ok {
		rate = 0.05
	}
	// Harder problems take longer, with jitter.
	ct := float64(difficulty) * (0.01 + e.rng.Float64()*0.04)

	return WorkResult{
		WorkType:        workType,
		Difficulty:      difficulty,
		ComputationTime: ct,
		EnergyConsumed:  ct * rate,
		Summary:         fmt.Sprintf("%s solved at difficulty %d", workType, difficulty),
		Verified:        e.rng.Float64() < 0.95,
	}
}

// Intn returns a random int in [0, n) from the engine's source.
func (e *Engine) Intn(n int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Intn(n)
}
