package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/D3nizG/sennet/pkg/match"
)

// ServerConfig holds the server configuration.
type ServerConfig struct {
	Host              string        // Host to bind to (default "localhost")
	Port              int           // Port to listen on (default 8080)
	ReadTimeout       time.Duration // Read timeout (default 30s)
	WriteTimeout      time.Duration // Write timeout (default 0: SSE/WS need open writes)
	IdleTimeout       time.Duration // Idle timeout (default 60s)
	MaxCommandWorkers int           // Max concurrent game commands (default 256)
	MaxCreateWorkers  int           // Max concurrent game creations (default 16)
}

// DefaultConfig returns a ServerConfig with sensible defaults.
func DefaultConfig() ServerConfig {
	return ServerConfig{
		Host:        "localhost",
		Port:        8080,
		ReadTimeout: 30 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

// Server is the HTTP gateway over the orchestrator.
type Server struct {
	config   ServerConfig
	orch     *match.Orchestrator
	hub      *Hub
	handlers *Handlers
	server   *http.Server
	pool     *WorkerPool
	version  string
}

// NewServer creates a gateway server. The hub must be the same one the
// orchestrator notifies.
func NewServer(orch *match.Orchestrator, hub *Hub, config ServerConfig, version string) *Server {
	pool := NewWorkerPool(PoolConfig{
		MaxCommandWorkers: config.MaxCommandWorkers,
		MaxCreateWorkers:  config.MaxCreateWorkers,
	})
	return &Server{
		config:   config,
		orch:     orch,
		hub:      hub,
		handlers: NewHandlers(orch, hub, pool, version),
		pool:     pool,
		version:  version,
	}
}

// Hub returns the notification hub.
func (s *Server) Hub() *Hub { return s.hub }

// Pool returns the worker pool for monitoring.
func (s *Server) Pool() *WorkerPool { return s.pool }

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handlers.Health)
	mux.HandleFunc("POST /api/games", s.handlers.CreateGame)
	mux.HandleFunc("GET /api/games/{id}", s.handlers.GetGame)
	mux.HandleFunc("GET /api/games/{id}/moves", s.handlers.GetMoves)
	mux.HandleFunc("GET /api/games/{id}/events", s.handlers.StreamGame)
	mux.HandleFunc("POST /api/games/{id}/faceoff", s.handlers.StartFaceoff)
	mux.HandleFunc("POST /api/games/{id}/faceoff/roll", s.handlers.FaceoffRoll)
	mux.HandleFunc("POST /api/games/{id}/roll", s.handlers.Roll)
	mux.HandleFunc("POST /api/games/{id}/move", s.handlers.Move)
	mux.HandleFunc("POST /api/games/{id}/resign", s.handlers.Resign)
	mux.HandleFunc("GET /api/ws/{id}", s.handlers.WebSocket)

	return corsMiddleware(loggingMiddleware(mux))
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.setupRoutes(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	log.Printf("Starting sennet server v%s on %s", s.version, addr)
	log.Printf("Endpoints:")
	log.Printf("  GET  /api/health                   - Health check")
	log.Printf("  POST /api/games                    - Create game")
	log.Printf("  GET  /api/games/{id}               - Game state")
	log.Printf("  GET  /api/games/{id}/moves         - Legal moves")
	log.Printf("  GET  /api/games/{id}/events        - SSE spectator stream")
	log.Printf("  POST /api/games/{id}/faceoff       - Start the initial-roll faceoff")
	log.Printf("  POST /api/games/{id}/faceoff/roll  - Submit a faceoff roll")
	log.Printf("  POST /api/games/{id}/roll          - Roll the die")
	log.Printf("  POST /api/games/{id}/move          - Apply a move")
	log.Printf("  POST /api/games/{id}/resign        - Resign")
	log.Printf("  WS   /api/ws/{id}                  - Realtime channel")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.orch.Close()
	return s.server.Shutdown(ctx)
}

// ListenAndServeWithGracefulShutdown starts the server and handles shutdown signals.
func (s *Server) ListenAndServeWithGracefulShutdown() error {
	errChan := make(chan error, 1)

	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-quit:
		log.Printf("Received signal %v, shutting down...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
