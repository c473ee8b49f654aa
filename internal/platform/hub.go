package platform

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

var (
	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "miningd_websocket_clients",
		Help: "Currently connected dashboard clients.",
	})
	wsBroadcasts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "miningd_websocket_broadcasts_total",
		Help: "Envelopes broadcast to dashboard clients, by kind.",
	}, []string{"kind"})
)

// Hub fans envelopes out to every connected dashboard client. Clients whose
// socket errors on write are dropped.
type Hub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
	log   *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		log:   log.Named("hub"),
	}
}

// Register adds a client connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = struct{}{}
	n := len(h.conns)
	h.mu.Unlock()

	wsClients.Set(float64(n))
	h.log.Info("client connected", zap.Int("total", n))
}

// Unregister removes a client connection and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	_, known := h.conns[conn]
	delete(h.conns, conn)
	n := len(h.conns)
	h.mu.Unlock()

	conn.Close()
	if known {
		wsClients.Set(float64(n))
		h.log.Info("client disconnected", zap.Int("total", n))
	}
}

// Broadcast sends one envelope to every connected client. Write failures
// drop the client; the broadcast itself never fails.
func (h *Hub) Broadcast(kind string, payload any) {
	env, err := model.NewEnvelope(kind, payload)
	if err != nil {
		h.log.Error("encode envelope", zap.String("kind", kind), zap.Error(err))
		return
	}
	raw, err := json.Marshal(env)
	if err != nil {
		h.log.Error("encode envelope", zap.String("kind", kind), zap.Error(err))
		return
	}

	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.conns, conn)
		conn.Close()
	}
	n := len(h.conns)
	h.mu.Unlock()

	wsBroadcasts.WithLabelValues(kind).Inc()
	if len(dead) > 0 {
		wsClients.Set(float64(n))
		h.log.Warn("dropped unresponsive clients", zap.Int("dropped", len(dead)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}
