package status

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server provides HTTP endpoints for health monitoring.
type Server struct {
	source ConnectivitySource
	server *http.Server
}

// NewServer creates a status server reading from the given source.
func NewServer(source ConnectivitySource, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		source: source,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/health/detailed", s.handleDetailed)
	mux.Handle("/metrics", promhttp.Handler())

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := classify(s.source.State())

	w.Header().Set("Content-Type", "application/json")
	if st == StatusCritical {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"status": string(st)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	state := s.source.State()
	report := Report{
		Status:              classify(state),
		ConnectionState:     state.String(),
		ConsecutiveFailures: s.source.ConsecutiveFailures(),
		LastCheck:           s.source.LastCheck(),
		Detail:              s.source.StatusString(),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}
