package dashboard

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/config"
)

// Session bundles one store, its router, connection manager, retention
// sweeper and REST fallback poller into a single lifecycle: construct,
// Start, read snapshots, Close. Consumers hold the session by reference;
// there is no package-level state.
type Session struct {
	ID      string
	store   *Store
	router  *Router
	client  *Client
	sweeper *Sweeper
	poller  *Poller
	log     *zap.Logger
}

// NewSession wires a dashboard session from config. The clock is injected so
// tests can drive reconnects and sweeps with a mock.
func NewSession(cfg config.DashboardConfig, clk clock.Clock, log *zap.Logger) (*Session, error) {
	log = log.Named("dashboard")

	store := NewStore(Caps{
		Operations:         cfg.Caps.Operations,
		Blocks:             cfg.Caps.Blocks,
		Discoveries:        cfg.Caps.Discoveries,
		OperationsCeiling:  cfg.Caps.OperationsCeiling,
		BlocksCeiling:      cfg.Caps.BlocksCeiling,
		DiscoveriesCeiling: cfg.Caps.DiscoveriesCeiling,
	})
	router := NewRouter(store, log)

	client, err := NewClient(ClientConfig{
		ServerURL:      cfg.ServerURL,
		ReconnectDelay: cfg.ReconnectDelay,
		BackoffEnabled: cfg.BackoffEnabled,
		BackoffMax:     cfg.BackoffMax,
	}, store, router, clk, log)
	if err != nil {
		return nil, err
	}

	sweeper := NewSweeper(SweeperConfig{
		FastInterval:    cfg.FastSweepInterval,
		SlowInterval:    cfg.SlowSweepInterval,
		CompletedMaxAge: cfg.CompletedMaxAge,
	}, store, clk, log)

	poller := NewPoller(PollerConfig{
		ServerURL: cfg.ServerURL,
		Interval:  cfg.PollInterval,
	}, store, router, clk, log)

	return &Session{
		ID:      uuid.NewString(),
		store:   store,
		router:  router,
		client:  client,
		sweeper: sweeper,
		poller:  poller,
		log:     log,
	}, nil
}

// Start opens the connection and launches the sweeps and the fallback
// poller.
func (s *Session) Start() {
	s.log.Info("session starting", zap.String("session", s.ID))
	s.client.Establish()
	s.sweeper.Start()
	s.poller.Start()
}

// Close tears the session down: socket closed, reconnect cancelled, both
// sweep timers stopped, poller stopped. Safe on every exit path.
func (s *Session) Close() {
	s.poller.Stop()
	s.sweeper.Stop()
	s.client.Close()
	s.log.Info("session closed", zap.String("session", s.ID))
}

// Snapshot exposes the read interface: connectivity plus the four
// containers, as defensive copies.
func (s *Session) Snapshot() Snapshot {
	return s.store.Snapshot()
}

// Connected reports current transport health.
func (s *Session) Connected() bool {
	return s.store.Connected()
}

// WaitSeeded blocks until initial data arrives or the timeout elapses.
// Lets the terminal dashboard paint a populated first frame.
func (s *Session) WaitSeeded(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.store.HasInitialData() {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}
	return s.store.HasInitialData()
}
