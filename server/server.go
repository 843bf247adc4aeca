package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/crewmesh/crewmesh/fanout"
	"github.com/crewmesh/crewmesh/logging"
	"github.com/crewmesh/crewmesh/orchestrator"
)

// Server exposes the query, status and streaming endpoints.
type Server struct {
	orch    *orchestrator.Orchestrator
	manager *fanout.Manager
	logger  logging.Logger
	addr    string

	httpSrv   *http.Server
	boundAddr string
}

// New creates a server for the given coordination context.
func New(orch *orchestrator.Orchestrator, manager *fanout.Manager, addr string, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Server{orch: orch, manager: manager, addr: addr, logger: logger}
}

// BoundAddr returns the actual listen address once Start has bound it.
func (s *Server) BoundAddr() string { return s.boundAddr }

// Start begins serving. It blocks until the context is cancelled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /ws", s.handleWS)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.boundAddr = listener.Addr().String()
	s.httpSrv = &http.Server{Handler: mux}
	s.logger.Info("server started", "addr", s.boundAddr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
	}()

	if err := s.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

type queryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

// handleQuery always answers HTTP 200 with a best-effort response; routing
// and agent failures are absorbed by the orchestrator's synthesis fallback.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	res, err := s.orch.HandleComplexQuery(r.Context(), req.Query, req.UserID)
	if err != nil {
		s.logger.Error("query handling failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.orch.GetSystemStatus())
}

// wsControl is the control frame observers send to manage topic
// subscriptions.
type wsControl struct {
	Action string `json:"action"` // subscribe or unsubscribe
	Topic  string `json:"topic"`
}

// handleWS attaches a streaming observer. The periodic snapshot loop pushes
// frames; the read loop here only consumes subscription control frames and
// detects the peer going away. Cleanup is idempotent either way the channel
// closes.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err)
		return
	}

	id := s.manager.Connect(fanout.NewWebsocketSender(conn), r.URL.Query().Get("client_id"))
	defer s.manager.Disconnect(id)

	for {
		var ctrl wsControl
		if err := wsjson.Read(r.Context(), conn, &ctrl); err != nil {
			return
		}
		switch ctrl.Action {
		case "subscribe":
			s.manager.Subscribe(id, ctrl.Topic)
		case "unsubscribe":
			s.manager.Unsubscribe(id, ctrl.Topic)
		}
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
