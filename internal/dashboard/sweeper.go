package dashboard

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// SweeperConfig sets the two retention timers.
type SweeperConfig struct {
	FastInterval    time.Duration // completed-operation eviction cadence
	SlowInterval    time.Duration // absolute-ceiling enforcement cadence
	CompletedMaxAge time.Duration // completed operations older than this are dropped
}

// Sweeper runs two independent periodic retention passes over the store: a
// fast sweep evicting stale completed operations, and a slow sweep enforcing
// the absolute ceilings on all three lists.
type Sweeper struct {
	cfg   SweeperConfig
	store *Store
	clk   clock.Clock
	log   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSweeper creates a sweeper for store. Zero intervals get the defaults
// (60s fast, 5m slow, 5m max age).
func NewSweeper(cfg SweeperConfig, store *Store, clk clock.Clock, log *zap.Logger) *Sweeper {
	if cfg.FastInterval <= 0 {
		cfg.FastInterval = time.Minute
	}
	if cfg.SlowInterval <= 0 {
		cfg.SlowInterval = 5 * time.Minute
	}
	if cfg.CompletedMaxAge <= 0 {
		cfg.CompletedMaxAge = 5 * time.Minute
	}
	return &Sweeper{
		cfg:   cfg,
		store: store,
		clk:   clk,
		log:   log.Named("sweeper"),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start launches both timers. Stop cancels them.
func (s *Sweeper) Start() {
	go s.run()
}

// Stop cancels both timers and waits for the sweep goroutine to exit.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

func (s *Sweeper) run() {
	defer close(s.done)

	fast := s.clk.Ticker(s.cfg.FastInterval)
	defer fast.Stop()
	slow := s.clk.Ticker(s.cfg.SlowInterval)
	defer slow.Stop()

	for {
		select {
		case <-fast.C:
			s.store.SweepCompleted(s.clk.Now(), s.cfg.CompletedMaxAge)
		case <-slow.C:
			s.store.EnforceCeilings()
		case <-s.stop:
			return
		}
	}
}
