// Package dashboard maintains a bounded, continuously-updated local view of
// server-pushed mining state over a long-lived websocket that may drop and
// must reconnect. It is the data layer the dashboard views read from; all
// writes flow through the message router or the retention sweeper.
package dashboard

import (
	"sync"
	"time"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

// Caps bounds the four state containers. Arrival caps are enforced on every
// insert; ceilings are enforced by the slow sweep and deliberately differ
// from the arrival caps for blocks and discoveries.
type Caps struct {
	Operations         int
	Blocks             int
	Discoveries        int
	OperationsCeiling  int
	BlocksCeiling      int
	DiscoveriesCeiling int
}

// DefaultCaps returns the caps the live dashboard runs with.
func DefaultCaps() Caps {
	return Caps{
		Operations:         10,
		Blocks:             10,
		Discoveries:        10,
		OperationsCeiling:  10,
		BlocksCeiling:      15,
		DiscoveriesCeiling: 20,
	}
}

// Snapshot is a read-only copy of the current dashboard state.
type Snapshot struct {
	Connected   bool
	Metrics     *model.NetworkMetrics
	Operations  []model.Operation
	Blocks      []model.Block
	Discoveries []model.Discovery
}

// Store holds the four bounded containers plus the connectivity flag. One
// store exists per dashboard session. Every mutation enforces its cap before
// releasing the lock, so no reader can observe an over-capacity container.
type Store struct {
	mu          sync.RWMutex
	caps        Caps
	connected   bool
	seeded      bool // an initial_data payload has been applied
	metrics     *model.NetworkMetrics
	operations  []model.Operation
	blocks      []model.Block
	discoveries []model.Discovery
}

// NewStore creates an empty store. Zero or negative cap values fall back to
// the defaults.
func NewStore(caps Caps) *Store {
	def := DefaultCaps()
	if caps.Operations <= 0 {
		caps.Operations = def.Operations
	}
	if caps.Blocks <= 0 {
		caps.Blocks = def.Blocks
	}
	if caps.Discoveries <= 0 {
		caps.Discoveries = def.Discoveries
	}
	if caps.OperationsCeiling <= 0 {
		caps.OperationsCeiling = def.OperationsCeiling
	}
	if caps.BlocksCeiling <= 0 {
		caps.BlocksCeiling = def.BlocksCeiling
	}
	if caps.DiscoveriesCeiling <= 0 {
		caps.DiscoveriesCeiling = def.DiscoveriesCeiling
	}
	return &Store{caps: caps}
}

// Snapshot returns a defensive copy of the current state. Callers may hold
// it indefinitely without observing later mutations.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Connected:   s.connected,
		Operations:  append([]model.Operation(nil), s.operations...),
		Blocks:      append([]model.Block(nil), s.blocks...),
		Discoveries: append([]model.Discovery(nil), s.discoveries...),
	}
	if s.metrics != nil {
		m := *s.metrics
		snap.Metrics = &m
	}
	return snap
}

// Connected reports current transport health.
func (s *Store) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// HasInitialData reports whether an initial_data payload has been applied,
// either from the socket or from the REST fallback poller.
func (s *Store) HasInitialData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seeded
}

// setConnected flips the connectivity flag. Only the connection manager
// calls this.
func (s *Store) setConnected(up bool) {
	s.mu.Lock()
	s.connected = up
	s.mu.Unlock()
}

// ApplyInitial replaces containers wholesale for each field present in the
// payload. Absent (nil) fields leave their container untouched.
func (s *Store) ApplyInitial(data model.InitialData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seeded = true
	if data.Metrics != nil {
		m := *data.Metrics
		s.metrics = &m
	}
	if data.Operations != nil {
		s.operations = append([]model.Operation(nil), data.Operations...)
	}
	if data.Blocks != nil {
		s.blocks = append([]model.Block(nil), data.Blocks...)
	}
}

// ReplaceMetrics swaps the metrics snapshot atomically.
func (s *Store) ReplaceMetrics(m model.NetworkMetrics) {
	s.mu.Lock()
	s.metrics = &m
	s.mu.Unlock()
}

// UpsertOperation replaces the operation with a matching ID in place, or
// prepends it, then truncates to the arrival cap. IDs stay unique.
func (s *Store) UpsertOperation(op model.Operation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.operations {
		if s.operations[i].ID == op.ID {
			s.operations[i] = op
			return
		}
	}
	s.operations = prepend(s.operations, op, s.caps.Operations)
}

// AddBlock prepends a block, truncating to the arrival cap. Any bundled
// discoveries are prepended to the discovery list under its own cap.
func (s *Store) AddBlock(b model.Block, discoveries []model.Discovery) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocks = prepend(s.blocks, b, s.caps.Blocks)
	if len(discoveries) > 0 {
		s.discoveries = append(append([]model.Discovery(nil), discoveries...), s.discoveries...)
		s.discoveries = truncate(s.discoveries, s.caps.Discoveries)
	}
}

// AddDiscovery prepends one discovery, truncating to the arrival cap.
func (s *Store) AddDiscovery(d model.Discovery) {
	s.mu.Lock()
	s.discoveries = prepend(s.discoveries, d, s.caps.Discoveries)
	s.mu.Unlock()
}

// SweepCompleted removes operations that finished more than maxAge ago.
// Active operations are never removed here, regardless of age.
func (s *Store) SweepCompleted(now time.Time, maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.operations[:0]
	for _, op := range s.operations {
		if op.Status == model.StatusCompleted && now.Sub(op.StartTime) > maxAge {
			continue
		}
		kept = append(kept, op)
	}
	s.operations = kept
}

// EnforceCeilings unconditionally truncates all three lists to their sweep
// ceilings. This catches bulk payloads that bypassed the arrival caps.
func (s *Store) EnforceCeilings() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.operations = truncate(s.operations, s.caps.OperationsCeiling)
	s.blocks = truncate(s.blocks, s.caps.BlocksCeiling)
	s.discoveries = truncate(s.discoveries, s.caps.DiscoveriesCeiling)
}

func prepend[T any](list []T, v T, limit int) []T {
	list = append([]T{v}, list...)
	return truncate(list, limit)
}

func truncate[T any](list []T, limit int) []T {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}
