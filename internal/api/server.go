package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/optionfolio/risk-backend/internal/montecarlo"
	"github.com/optionfolio/risk-backend/pkg/types"
)

// Server is the HTTP/WebSocket API server for the dashboard.
type Server struct {
	logger     *zap.Logger
	config     *types.ServerConfig
	router     *mux.Router
	httpServer *http.Server
	upgrader   websocket.Upgrader
	engine     *montecarlo.Engine
	hub        *Hub
}

// SimulationRequest is the POST /api/v1/simulations payload.
type SimulationRequest struct {
	Trades     []*types.Trade             `json:"trades"`
	Parameters types.SimulationParameters `json:"parameters"`
}

// NewServer creates a new API server around an engine.
func NewServer(logger *zap.Logger, config *types.ServerConfig, engine *montecarlo.Engine) *Server {
	s := &Server{
		logger: logger,
		config: config,
		router: mux.NewRouter(),
		engine: engine,
		hub:    NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Desktop dashboard connects from a file:// webview.
				return true
			},
		},
	}

	engine.SetProgressFunc(func(completed, total int) {
		s.hub.Broadcast(MsgTypeSimulationProgress, map[string]int{
			"completed": completed,
			"total":     total,
		})
	})

	s.setupRoutes()
	return s
}

// setupRoutes configures HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/api/v1/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/api/v1/simulations", s.handleRunSimulation).Methods("POST")
	s.router.HandleFunc(s.config.WebSocketPath, s.handleWebSocket)

	if s.config.EnableMetrics {
		s.router.Handle("/metrics", promhttp.Handler())
	}
}

// Start starts the HTTP server and the WebSocket hub.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(s.router)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	go s.hub.Run()

	s.logger.Info("starting API server", zap.String("addr", addr))
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the underlying router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// handleRunSimulation runs the engine synchronously and returns the
// full result bundle.
func (s *Server) handleRunSimulation(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	s.hub.Broadcast(MsgTypeSimulationStarted, map[string]interface{}{
		"numSimulations":   req.Parameters.NumSimulations,
		"simulationLength": req.Parameters.SimulationLength,
		"resampleMethod":   req.Parameters.ResampleMethod,
	})

	started := time.Now()
	bundle, err := s.engine.Run(r.Context(), req.Trades, req.Parameters)
	simulationDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		simulationsTotal.WithLabelValues("failed").Inc()
		s.hub.Broadcast(MsgTypeSimulationFailed, map[string]string{"error": err.Error()})

		status := http.StatusBadRequest
		if errors.Is(err, montecarlo.ErrInsufficientTrades) || errors.Is(err, montecarlo.ErrInsufficientResamplePool) {
			status = http.StatusUnprocessableEntity
		}
		s.writeError(w, status, err)
		return
	}

	simulationsTotal.WithLabelValues("completed").Inc()
	simulatedPaths.Add(float64(len(bundle.Paths)))
	s.hub.Broadcast(MsgTypeSimulationCompleted, map[string]interface{}{
		"id":         bundle.ID,
		"statistics": bundle.Statistics,
	})

	s.writeJSON(w, http.StatusOK, bundle)
}

// handleWebSocket upgrades the connection and registers the client.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 64),
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump()
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encoding response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
