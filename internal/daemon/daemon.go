// Package daemon wires the platform subsystems together: database, websocket
// hub, autonomous miners and the HTTP API.
package daemon

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/config"
	"github.com/beanapologist/ProductiveMining-sub001/internal/db"
	"github.com/beanapologist/ProductiveMining-sub001/internal/platform"
)

// Daemon orchestrates all backend subsystems.
type Daemon struct {
	cfg       *config.Config
	log       *zap.Logger
	startTime time.Time

	hub     *platform.Hub
	manager *platform.Manager
	httpSrv *platform.Server

	cancel  context.CancelFunc
	miners  chan struct{}
	stopCh  chan struct{}
}

// New creates a daemon instance. Nothing starts until Start.
func New(cfg *config.Config, log *zap.Logger) *Daemon {
	return &Daemon{
		cfg:    cfg,
		log:    log.Named("daemon"),
		miners: make(chan struct{}),
		stopCh: make(chan struct{}),
	}
}

// Start initializes and starts all subsystems in order.
func (d *Daemon) Start() error {
	d.startTime = time.Now()

	if err := os.MkdirAll(d.cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if err := db.Open(d.cfg.DBPath()); err != nil {
		return fmt.Errorf("db open: %w", err)
	}

	d.hub = platform.NewHub(d.log)
	engine := platform.NewEngine(time.Now().UnixNano())
	d.manager = platform.NewManager(platform.ManagerConfig{
		Miners:          d.cfg.Platform.Miners,
		MinDifficulty:   d.cfg.Platform.MinDifficulty,
		MaxDifficulty:   d.cfg.Platform.MaxDifficulty,
		MinRestInterval: d.cfg.Platform.MinRestInterval,
		MaxRestInterval: d.cfg.Platform.MaxRestInterval,
		MetricsInterval: d.cfg.Platform.MetricsInterval,
	}, d.hub, engine, clock.New(), d.log)

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	go func() {
		d.manager.Run(ctx)
		close(d.miners)
	}()

	d.httpSrv = platform.NewServer(d.cfg.API.Bind, d.cfg.API.Port, d.manager, d.hub, d.log)
	port, err := d.httpSrv.Start()
	if err != nil {
		return fmt.Errorf("http start: %w", err)
	}

	go d.statusLoop()

	d.log.Info("all systems online", zap.Int("port", port))
	return nil
}

func (d *Daemon) statusLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-d.stopCh:
			return
		case <-ticker.C:
			tip, _ := db.LatestBlock()
			discoveries, _ := db.CountDiscoveries()
			active, _ := db.ListActiveOperations()

			height := int64(-1)
			if tip != nil {
				height = tip.Index
			}
			d.log.Info("status",
				zap.Int64("height", height),
				zap.Int("discoveries", discoveries),
				zap.Int("activeOps", len(active)),
				zap.Int("wsClients", d.hub.ClientCount()))
		}
	}
}

// Stop shuts down all subsystems and waits for the miners to drain.
func (d *Daemon) Stop() {
	d.log.Info("shutting down")
	close(d.stopCh)

	if d.httpSrv != nil {
		d.httpSrv.Stop()
	}
	if d.cancel != nil {
		d.cancel()
		<-d.miners
	}
	db.Close()

	d.log.Info("shutdown complete")
}

// Uptime reports how long the daemon has been running.
func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}
