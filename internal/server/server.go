package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/arvelez/sentrycam/internal/config"
	"github.com/arvelez/sentrycam/internal/fanout"
	"github.com/arvelez/sentrycam/internal/metrics"
	"github.com/arvelez/sentrycam/internal/model"
)

// Server exposes the WebSocket upgrade endpoint and the read-only
// metrics API. It owns neither the registry nor the engine; both are
// passed in by the composition root.
type Server struct {
	cfg      config.ServerConfig
	engine   *metrics.Engine
	registry *fanout.Registry
	logger   *slog.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New creates the ingress server.
func New(cfg config.ServerConfig, engine *metrics.Engine, registry *fanout.Registry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		engine:   engine,
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			// Subscribers are unauthenticated by design; origin
			// filtering is the deployment proxy's concern.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWS)
	mux.HandleFunc("POST /events", s.handleEvents)
	mux.HandleFunc("POST /timings", s.handleTimings)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	s.httpSrv = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}

	return s
}

// Handler returns the route handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start begins serving in the background.
func (s *Server) Start(ctx context.Context) error {
	go func() {
		s.logger.Info("http server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server failed", "error", err)
		}
	}()
	return nil
}

// Stop shuts the server down, letting in-flight requests finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// handleWS upgrades the connection and registers it as a subscriber.
// The read loop only watches for the client going away; inbound frames
// carry no meaning in this protocol.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	transport := fanout.NewWSTransport(conn, s.cfg.WriteTimeout)
	id := s.registry.Connect(transport)

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				s.registry.Disconnect(id)
				return
			}
		}
	}()
}

// handleEvents accepts one motion event, counts it, and broadcasts it.
// Broadcast is fire-and-forget: delivery failures never surface here.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var event model.MotionEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if event.CameraID == "" {
		http.Error(w, "camera_id is required", http.StatusBadRequest)
		return
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	if event.Suppressed {
		s.engine.IncrementCounter(metrics.EventsSuppressed)
	} else {
		s.engine.IncrementCounter(metrics.EventsCreated)
	}

	s.registry.Broadcast(event)
	w.WriteHeader(http.StatusAccepted)
}

// handleTimings records one inference pass against the engine.
func (s *Server) handleTimings(w http.ResponseWriter, r *http.Request) {
	var timing model.StageTiming
	if err := json.NewDecoder(r.Body).Decode(&timing); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if _, ok := metrics.ParseStage(timing.Stage); !ok {
		http.Error(w, "unknown stage", http.StatusBadRequest)
		return
	}

	s.engine.RecordTimingName(timing.Stage, timing.Millis)
	w.WriteHeader(http.StatusAccepted)
}

// handleMetrics returns a freshly collected snapshot. The collection
// includes the blocking CPU sample, so this endpoint takes ~100ms.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	snapshot := s.engine.Collect()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		s.logger.Warn("encode metrics response failed", "error", err)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"subscribers": s.registry.Count(),
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		s.logger.Warn("encode health response failed", "error", err)
	}
}
