package platform

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// corsMiddleware allows cross-origin requests from browser dashboards.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Server is the HTTP and WebSocket API for the mining platform.
type Server struct {
	httpSrv  *http.Server
	manager  *Manager
	hub      *Hub
	upgrader websocket.Upgrader
	bind     string
	port     int
	log      *zap.Logger
}

// NewServer creates the API server. It does not bind until Start.
func NewServer(bind string, port int, manager *Manager, hub *Hub, log *zap.Logger) *Server {
	s := &Server{
		manager: manager,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		bind: bind,
		port: port,
		log:  log.Named("api"),
	}
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Handler: corsMiddleware(mux),
	}
	return s
}

// Start pre-acquires the port and begins serving.
// If the primary port is in use, it falls back to port+1.
// Returns the actual port bound.
func (s *Server) Start() (int, error) {
	addr := fmt.Sprintf("%s:%d", s.bind, s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fallbackPort := s.port + 1
		fallbackAddr := fmt.Sprintf("%s:%d", s.bind, fallbackPort)
		ln, err = net.Listen("tcp", fallbackAddr)
		if err != nil {
			return 0, fmt.Errorf("listen on %s and fallback %s: %w", addr, fallbackAddr, err)
		}
		s.log.Warn("using fallback port",
			zap.Int("fallback", fallbackPort),
			zap.Int("primary", s.port))
		s.port = fallbackPort
	}
	if s.port == 0 {
		s.port = ln.Addr().(*net.TCPAddr).Port
	}

	s.log.Info("listening", zap.String("bind", s.bind), zap.Int("port", s.port))
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("serve", zap.Error(err))
		}
	}()
	return s.port, nil
}

// Port returns the bound port once Start has succeeded.
func (s *Server) Port() int {
	return s.port
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.httpSrv.Shutdown(ctx)
	s.log.Info("stopped")
}
