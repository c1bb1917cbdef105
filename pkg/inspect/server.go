package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-loom/loom/pkg/errors"
)

// Server exposes a Recorder over HTTP for inspector tooling.
//
// Endpoints:
//
//	GET /state/objects              object registry, creation order
//	GET /state/events?limit=&kind=  retained events, optionally filtered
//	GET /state/stats                session summary
//	GET /state/live                 websocket stream of events as they happen
//	GET /health                     liveness probe
type Server struct {
	recorder *Recorder
	hub      *hub

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a Server for rec. The live feed subscribes to rec.Bus
// once, permanently; clients come and go on their own channels.
func NewServer(rec *Recorder) *Server {
	return &Server{
		recorder: rec,
		hub:      newHub(rec),
	}
}

// Start binds the listener and serves in the background. Port 0 picks an
// ephemeral port; the bound port is returned. Starting an already-running
// server returns its current port.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return s.listener.Addr().(*net.TCPAddr).Port, nil
	}

	// Bind first to fail fast on port conflicts.
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return 0, fmt.Errorf("inspect server listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/state/objects", s.handleObjects)
	mux.HandleFunc("/state/events", s.handleEvents)
	mux.HandleFunc("/state/stats", s.handleStats)
	mux.HandleFunc("/state/live", s.hub.handleLive)
	mux.HandleFunc("/health", handleHealth)

	server := &http.Server{Handler: mux}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
			errors.Report(&errors.LoomError{
				Op:   "inspect.Server.Serve",
				Kind: errors.KindUnknown,
				Err:  err,
			})
		}
	}()

	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Stop disconnects live clients and shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()

	s.hub.closeAll()
	if server == nil {
		return nil
	}
	return server.Shutdown(ctx)
}

func (s *Server) handleObjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer recoverHandler(w)

	resp := struct {
		Session string         `json:"session"`
		Objects []ObjectStatus `json:"objects"`
	}{
		Session: s.recorder.Session(),
		Objects: s.recorder.Objects(),
	}
	writeJSON(w, resp)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer recoverHandler(w)

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	kind := r.URL.Query().Get("kind")

	resp := struct {
		Session string  `json:"session"`
		Events  []Event `json:"events"`
	}{
		Session: s.recorder.Session(),
		Events:  s.recorder.Events(limit, kind),
	}
	writeJSON(w, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer recoverHandler(w)

	writeJSON(w, s.recorder.Stats())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func recoverHandler(w http.ResponseWriter) {
	if rec := recover(); rec != nil {
		http.Error(w, fmt.Sprintf("panic: %v", rec), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
