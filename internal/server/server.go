package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"media-resizer/internal/logging"
	"media-resizer/internal/resizer"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunState is the snapshot served on /progress.
type RunState struct {
	Running    bool             `json:"running"`
	Folder     string           `json:"folder,omitempty"`
	StartedAt  *time.Time       `json:"startedAt,omitempty"`
	FinishedAt *time.Time       `json:"finishedAt,omitempty"`
	Progress   resizer.Progress `json:"progress"`
	Fraction   float64          `json:"fraction"`
	SavedMB    float64          `json:"savedMB"`
}

// Server is the optional status server. It exposes metrics and the progress of
// the current or most recent run.
type Server struct {
	addr    string
	router  *mux.Router
	httpSrv *http.Server
	started time.Time

	mu       sync.RWMutex
	listener net.Listener
	state    RunState
}

// New builds the router. Nothing listens until Start.
func New(addr string) *Server {
	s := &Server{
		addr:    addr,
		started: time.Now(),
	}
	s.router = s.setupRouter()
	s.httpSrv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogger, instrument)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/healthz", s.healthCheck).Methods("GET", "HEAD")
	r.HandleFunc("/progress", s.progress).Methods("GET")
	r.HandleFunc("/version", s.version).Methods("GET")
	return r
}

// Router exposes the routes for logging and tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("status server listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("status server error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// RunStarted resets the progress snapshot for a new run.
func (s *Server) RunStarted(folder string) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = RunState{Running: true, Folder: folder, StartedAt: &now}
}

// UpdateProgress records the latest progress event.
func (s *Server) UpdateProgress(p resizer.Progress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Progress = p
	s.state.Fraction = p.Fraction()
	s.state.SavedMB = p.SavedMB()
}

// RunFinished marks the run complete. The last progress stays visible.
func (s *Server) RunFinished() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Running = false
	s.state.FinishedAt = &now
}

// State returns a copy of the current snapshot.
func (s *Server) State() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}
