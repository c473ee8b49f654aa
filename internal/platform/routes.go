package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/beanapologist/ProductiveMining-sub001/internal/db"
	"github.com/beanapologist/ProductiveMining-sub001/internal/model"
)

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)
	mux.HandleFunc("GET /api/blocks", s.handleBlocks)
	mux.HandleFunc("GET /api/blocks/{id}", s.handleBlock)
	mux.HandleFunc("GET /api/discoveries", s.handleDiscoveries)
	mux.HandleFunc("GET /api/discoveries/{id}", s.handleDiscovery)
	mux.HandleFunc("GET /api/mining/operations", s.handleOperations)
	mux.HandleFunc("POST /api/mining/start", s.handleMiningStart)
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func queryLimit(r *http.Request, def int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{
		"status":     "ok",
		"version":    "0.1.0",
		"ws_clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := db.LatestMetrics()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if metrics == nil {
		writeJSON(w, map[string]interface{}{})
		return
	}
	writeJSON(w, metrics)
}

func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	blocks, err := db.ListBlocks(queryLimit(r, 50))
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if blocks == nil {
		blocks = []model.Block{}
	}
	writeJSON(w, blocks)
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, 400, "invalid block id")
		return
	}
	block, err := db.GetBlock(id)
	if err != nil {
		writeError(w, 404, "block not found")
		return
	}
	writeJSON(w, block)
}

func (s *Server) handleDiscoveries(w http.ResponseWriter, r *http.Request) {
	discoveries, err := db.ListDiscoveries(queryLimit(r, 50))
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if discoveries == nil {
		discoveries = []model.Discovery{}
	}
	writeJSON(w, discoveries)
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, 400, "invalid discovery id")
		return
	}
	discovery, err := db.GetDiscovery(id)
	if err != nil {
		writeError(w, 404, "discovery not found")
		return
	}
	writeJSON(w, discovery)
}

func (s *Server) handleOperations(w http.ResponseWriter, r *http.Request) {
	operations, err := db.ListActiveOperations()
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	if operations == nil {
		operations = []model.Operation{}
	}
	writeJSON(w, operations)
}

type miningStartRequest struct {
	OperationType string `json:"operationType"`
	Difficulty    int    `json:"difficulty"`
}

func (s *Server) handleMiningStart(w http.ResponseWriter, r *http.Request) {
	var req miningStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, 400, "invalid request body")
		return
	}
	if req.OperationType == "" {
		req.OperationType = model.WorkTypes[s.manager.engine.Intn(len(model.WorkTypes))]
	}
	if req.Difficulty <= 0 {
		req.Difficulty = 25
	}

	// The operation outlives the request; do not tie it to r.Context().
	minerID := "miner_api_" + uuid.NewString()[:8]
	op, err := s.manager.StartOperation(context.Background(), req.OperationType, req.Difficulty, minerID)
	if err != nil {
		writeError(w, 500, err.Error())
		return
	}
	writeJSON(w, op)
}

// initialData assembles the snapshot sent to each new WebSocket client.
func initialData() (model.InitialData, error) {
	var snapshot model.InitialData

	metrics, err := db.LatestMetrics()
	if err != nil {
		return snapshot, err
	}
	operations, err := db.ListActiveOperations()
	if err != nil {
		return snapshot, err
	}
	blocks, err := db.ListBlocks(10)
	if err != nil {
		return snapshot, err
	}

	snapshot.Metrics = metrics
	snapshot.Operations = operations
	snapshot.Blocks = blocks
	return snapshot, nil
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	snapshot, err := initialData()
	if err != nil {
		s.log.Error("initial data", zap.Error(err))
		conn.Close()
		return
	}
	env, err := model.NewEnvelope(model.KindInitialData, snapshot)
	if err != nil {
		conn.Close()
		return
	}
	if err := conn.WriteJSON(env); err != nil {
		conn.Close()
		return
	}

	s.hub.Register(conn)
	defer s.hub.Unregister(conn)

	// Clients never send application frames; drain until the peer goes away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
